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

package diag_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ereliastudio/lumina/lumina/diag"
	"github.com/ereliastudio/lumina/lumina/token"
)

func TestErrorfFormatsAndCounts(t *testing.T) {
	var output strings.Builder
	diags := &diag.Diagnostics{Writer: &output}
	assert.Zero(t, diags.Count())

	at := token.Token{
		Origin:  "shader.lum",
		Content: "uv",
		Start:   token.Location{Line: 12, Column: 4},
	}
	diags.Errorf(at, "Identifier '%s' is not declared", "uv")

	assert.Equal(t, 1, diags.Count())
	assert.Equal(t, "shader.lum:12:4: Identifier 'uv' is not declared\n", output.String())
	assert.Equal(t, []string{"Identifier 'uv' is not declared"}, diags.Messages())
}

func TestNotefDoesNotCount(t *testing.T) {
	var output strings.Builder
	diags := &diag.Diagnostics{Writer: &output}
	diags.Notef("  Provided: (%s)", "float")
	assert.Zero(t, diags.Count())
	assert.Equal(t, "  Provided: (float)\n", output.String())
}

func TestErrorsPreserveOrder(t *testing.T) {
	diags := &diag.Diagnostics{Writer: &strings.Builder{}}
	diags.Errorf(token.Token{Origin: "a.lum"}, "first")
	diags.Errorf(token.Token{Origin: "b.lum"}, "second")
	errors := diags.Errors()
	assert.Equal(t, "first", errors[0].Message)
	assert.Equal(t, "second", errors[1].Message)
}
