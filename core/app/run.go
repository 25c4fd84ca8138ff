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

// Package app provides the bootstrap shared by all command line tools:
// flag handling, usage text, the root logging context and the mapping
// from returned errors to process exit codes.
package app

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ereliastudio/lumina/core/log"
)

var (
	// Name is the full name of the application.
	Name string
	// ShortHelp should be set to add a help message to the usage text.
	ShortHelp = ""
	// ShortUsage is usage text for the additional non-flag arguments.
	ShortUsage = ""
	// ExitFuncForTesting can be set to change the behaviour on exit.
	// It defaults to os.Exit.
	ExitFuncForTesting = os.Exit
)

// exitError carries a specific process exit code alongside its cause.
type exitError struct {
	code  int
	cause error
}

func (e *exitError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.cause.Error()
}

// ExitCode returns an error that makes Run terminate the process with the
// given code. A nil cause exits silently.
func ExitCode(code int, cause error) error {
	return &exitError{code: code, cause: cause}
}

// Usage prints the usage message to stderr.
func Usage() {
	w := os.Stderr
	if ShortHelp != "" {
		fmt.Fprintln(w, Name, "-", ShortHelp)
	}
	fmt.Fprintln(w, "usage:", Name, "[flags]", ShortUsage)
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
}

// Run parses the command line, builds the root context and invokes main.
// It does not return; the process exits with the code derived from the
// error main returned.
func Run(main func(ctx context.Context) error) {
	flag.Usage = Usage
	flag.Parse()

	ctx := log.Background()

	err := main(ctx)
	if err == nil {
		ExitFuncForTesting(0)
		return
	}
	if exit, ok := err.(*exitError); ok {
		if exit.cause != nil {
			fmt.Fprintf(os.Stderr, "%s\n", exit.cause)
		}
		ExitFuncForTesting(exit.code)
		return
	}
	fmt.Fprintf(os.Stderr, "error: %s\n", err)
	ExitFuncForTesting(1)
}
