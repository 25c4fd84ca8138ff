// Copyright (C) 2024 Erelia Studio
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config resolves the compiler's project configuration: the
// optional lumina.yaml file next to the input, the LUMINA_INCLUDE_PATH
// environment list, and the PATH fallback used as a last resort when
// resolving includes.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ProjectFileName is the name of the optional per-project configuration
// file, looked up in the directory of the input file.
const ProjectFileName = "lumina.yaml"

// Project is the content of a lumina.yaml file.
type Project struct {
	// IncludeDirs are extra include directories, relative paths resolved
	// against the directory holding the configuration file.
	IncludeDirs []string `yaml:"include_dirs"`
	// Defines are object-like macros applied before any source text, as
	// if «#define name value» lines were prepended to the unit.
	Defines map[string]string `yaml:"defines"`
}

// Config is the fully resolved configuration for one compiler run.
type Config struct {
	// IncludeDirs is the ordered include search list: project dirs first,
	// then LUMINA_INCLUDE_PATH entries.
	IncludeDirs []string
	// PathDirs is the PATH fallback list.
	PathDirs []string
	// Defines are the project-level macro definitions.
	Defines map[string]string
}

// SplitPathList splits a platform path list («:» separated on Unix, «;»
// on Windows), dropping empty entries.
func SplitPathList(list string) []string {
	var out []string
	for _, dir := range filepath.SplitList(list) {
		if dir != "" {
			out = append(out, dir)
		}
	}
	return out
}

// ReadPathListFromEnv splits the value of the named environment variable.
func ReadPathListFromEnv(name string) []string {
	return SplitPathList(os.Getenv(name))
}

// loadProject reads a lumina.yaml next to inputPath, if present.
func loadProject(inputPath string) (*Project, error) {
	path := filepath.Join(filepath.Dir(inputPath), ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}
	project := &Project{}
	if err := yaml.Unmarshal(data, project); err != nil {
		return nil, errors.Wrapf(err, "cannot parse %s", path)
	}
	return project, nil
}

// Load resolves the configuration for compiling inputPath.
func Load(inputPath string) (*Config, error) {
	cfg := &Config{
		PathDirs: ReadPathListFromEnv("PATH"),
		Defines:  map[string]string{},
	}

	project, err := loadProject(inputPath)
	if err != nil {
		return nil, err
	}
	if project != nil {
		base := filepath.Dir(inputPath)
		for _, dir := range project.IncludeDirs {
			if dir == "" {
				continue
			}
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(base, dir)
			}
			cfg.IncludeDirs = append(cfg.IncludeDirs, dir)
		}
		for name, value := range project.Defines {
			cfg.Defines[name] = value
		}
	}

	cfg.IncludeDirs = append(cfg.IncludeDirs, ReadPathListFromEnv("LUMINA_INCLUDE_PATH")...)
	return cfg, nil
}
