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

// Package diag accumulates recoverable compilation diagnostics.
//
// The sink is threaded explicitly through the parser and the analyzer.
// Every diagnostic is an error; there are no warnings. Each is printed
// immediately in «path:line:col: message» form and counted, so the driver
// can abort the pipeline after any stage that reported.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/ereliastudio/lumina/lumina/token"
)

// Diagnostic is a single reported error with its source anchor.
type Diagnostic struct {
	// At is the token the error is anchored to.
	At token.Token
	// Message is the error text.
	Message string
}

// Error implements error.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.At.Origin, d.At.Start.Line, d.At.Start.Column, d.Message)
}

// Diagnostics collects errors reported across the compilation stages.
type Diagnostics struct {
	// Writer receives every diagnostic as it is reported. Defaults to
	// stderr when nil.
	Writer io.Writer

	errors []Diagnostic
}

// New returns a sink that prints to stderr.
func New() *Diagnostics {
	return &Diagnostics{Writer: os.Stderr}
}

func (d *Diagnostics) writer() io.Writer {
	if d.Writer != nil {
		return d.Writer
	}
	return os.Stderr
}

// Errorf reports an error anchored to the given token.
func (d *Diagnostics) Errorf(at token.Token, format string, args ...interface{}) {
	entry := Diagnostic{At: at, Message: fmt.Sprintf(format, args...)}
	d.errors = append(d.errors, entry)
	fmt.Fprintf(d.writer(), "%s\n", entry.Error())
}

// Notef prints supporting detail for the most recent diagnostic without
// incrementing the error count.
func (d *Diagnostics) Notef(format string, args ...interface{}) {
	fmt.Fprintf(d.writer(), format+"\n", args...)
}

// Count returns the number of errors reported so far.
func (d *Diagnostics) Count() int {
	return len(d.errors)
}

// Errors returns the reported diagnostics in order.
func (d *Diagnostics) Errors() []Diagnostic {
	return d.errors
}

// Messages returns just the message texts, in report order.
func (d *Diagnostics) Messages() []string {
	out := make([]string, len(d.errors))
	for i, e := range d.errors {
		out[i] = e.Message
	}
	return out
}
