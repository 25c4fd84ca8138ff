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

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ereliastudio/lumina/lumina/config"
)

func TestSplitPathList(t *testing.T) {
	list := strings.Join([]string{"/a", "", "/b"}, string(os.PathListSeparator))
	assert.Equal(t, []string{"/a", "/b"}, config.SplitPathList(list))
	assert.Nil(t, config.SplitPathList(""))
}

func TestLoadWithoutProjectFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "shader.lum")

	t.Setenv("LUMINA_INCLUDE_PATH", "/includes/a")
	cfg, err := config.Load(input)
	require.NoError(t, err)
	assert.Equal(t, []string{"/includes/a"}, cfg.IncludeDirs)
	assert.Empty(t, cfg.Defines)
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "shader.lum")
	project := `
include_dirs:
  - shared
  - /abs/includes
defines:
  MAX_LIGHTS: "8"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ProjectFileName), []byte(project), 0666))

	t.Setenv("LUMINA_INCLUDE_PATH", "/env/includes")
	cfg, err := config.Load(input)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "shared"),
		"/abs/includes",
		"/env/includes",
	}, cfg.IncludeDirs)
	assert.Equal(t, map[string]string{"MAX_LIGHTS": "8"}, cfg.Defines)
}

func TestLoadRejectsMalformedProjectFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "shader.lum")
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ProjectFileName), []byte(":\t not yaml ["), 0666))

	_, err := config.Load(input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot parse")
}
