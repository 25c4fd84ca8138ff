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

// The lumina-compiler command compiles a Lumina shader source file into
// a JSON manifest embedding the GLSL 450 vertex and fragment sources.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/ereliastudio/lumina/core/app"
	"github.com/ereliastudio/lumina/core/log"
	"github.com/ereliastudio/lumina/lumina/codegen"
	"github.com/ereliastudio/lumina/lumina/config"
	"github.com/ereliastudio/lumina/lumina/diag"
	"github.com/ereliastudio/lumina/lumina/parser"
	"github.com/ereliastudio/lumina/lumina/preprocessor"
	"github.com/ereliastudio/lumina/lumina/sema"
	"github.com/ereliastudio/lumina/lumina/source"
)

const (
	exitArgError    = 2
	exitOpenFailure = 3
	exitWriteError  = 4
	exitStageErrors = 5
)

var debug = flag.Bool("d", false, "dump the token table, AST summary and GLSL sources")

func init() {
	flag.BoolVar(debug, "debug", false, "alias of -d")
}

func main() {
	app.Name = "lumina-compiler"
	app.ShortHelp = "Compiles Lumina shader sources to GLSL 450 plus a JSON manifest"
	app.ShortUsage = "<input-path> <output-path>"
	app.Run(run)
}

func run(ctx context.Context) error {
	if *debug {
		ctx = log.PutFilter(ctx, log.Debug)
	}

	args := flag.Args()
	if len(args) != 2 {
		return app.ExitCode(exitArgError,
			errors.Errorf("usage: %s [-d|--debug] <input-path> <output-path>", app.Name))
	}
	inputPath, outputPath := args[0], args[1]

	cfg, err := config.Load(inputPath)
	if err != nil {
		return err
	}

	diags := diag.New()
	manager := source.NewManager(&preprocessor.Preprocessor{
		IncludeDirs: cfg.IncludeDirs,
		PathDirs:    cfg.PathDirs,
		Defines:     cfg.Defines,
	})

	abortOnErrors := func(stage string, previous int) bool {
		if diags.Count() > previous {
			fmt.Fprintf(os.Stderr, "Compilation aborted after %s due to errors.\n", stage)
			return true
		}
		return false
	}

	// 1) Retrieve tokens.
	before := diags.Count()
	tokens, err := manager.LoadFile(inputPath)
	if err != nil {
		return err
	}
	if abortOnErrors("lexing", before) {
		return app.ExitCode(exitStageErrors, nil)
	}
	if *debug {
		dumpTokens(tokens)
	}

	// 2) Parse.
	before = diags.Count()
	instructions := parser.Parse(tokens, diags)
	if abortOnErrors("syntax analysis", before) {
		return app.ExitCode(exitStageErrors, nil)
	}
	if *debug {
		dumpInstructions(instructions)
	}

	// 3) Semantic checks.
	before = diags.Count()
	analyzed := sema.Analyze(instructions, diags)
	if abortOnErrors("semantic analysis", before) {
		return app.ExitCode(exitStageErrors, nil)
	}

	// 4) Codegen.
	output := codegen.Generate(analyzed)
	if *debug {
		fmt.Printf("\n=== Vertex Shader ===\n%s\n", output.VertexSource)
		fmt.Printf("\n=== Fragment Shader ===\n%s\n", output.FragmentSource)
	}

	// 5) Output.
	file, err := os.Create(outputPath)
	if err != nil {
		return app.ExitCode(exitOpenFailure, errors.Wrapf(err, "cannot open output: %s", outputPath))
	}
	if _, err := file.WriteString(output.JSON); err != nil {
		file.Close()
		return app.ExitCode(exitWriteError, errors.Wrapf(err, "write failed: %s", outputPath))
	}
	if err := file.Close(); err != nil {
		return app.ExitCode(exitWriteError, errors.Wrapf(err, "write failed: %s", outputPath))
	}

	log.D(ctx, "wrote %d bytes to %s", len(output.JSON), outputPath)
	fmt.Printf("Compilation complete: %s\n", outputPath)
	return nil
}
