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

package preprocessor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ereliastudio/lumina/lumina/preprocessor"
	"github.com/ereliastudio/lumina/lumina/token"
	"github.com/ereliastudio/lumina/lumina/tokenizer"
)

func contents(tokens []token.Token) []string {
	var out []string
	for _, tok := range tokens {
		if tok.Type == token.EndOfFile {
			continue
		}
		out = append(out, tok.Content)
	}
	return out
}

func process(t *testing.T, pre *preprocessor.Preprocessor, origin, source string) ([]token.Token, error) {
	t.Helper()
	tokens, err := tokenizer.TokenizeString(origin, source)
	require.NoError(t, err)
	return pre.Process(tokens)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

func TestDefineExpansion(t *testing.T) {
	pre := &preprocessor.Preprocessor{}
	out, err := process(t, pre, "test.lum", "#define SIZE 4 * 2\nint values[SIZE];")
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "values", "[", "4", "*", "2", "]", ";"}, contents(out))
}

func TestDefineChains(t *testing.T) {
	pre := &preprocessor.Preprocessor{}
	out, err := process(t, pre, "test.lum", "#define A B\n#define B 7\nint x = A;")
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "x", "=", "7", ";"}, contents(out))
}

func TestRecursiveMacroIsFatal(t *testing.T) {
	pre := &preprocessor.Preprocessor{}
	_, err := process(t, pre, "test.lum", "#define A A\nint x = A;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Recursive macro expansion of \"A\"")
}

func TestConfigDefinesAreSeeded(t *testing.T) {
	pre := &preprocessor.Preprocessor{
		Defines: map[string]string{"WIDTH": "640"},
	}
	out, err := process(t, pre, "test.lum", "int w = WIDTH;")
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "w", "=", "640", ";"}, contents(out))
}

func TestIncludeRelativeToFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "common.lum", "int shared;")
	main := writeFile(t, dir, "main.lum", "#include \"common.lum\"\nint own;")

	data, err := os.ReadFile(main)
	require.NoError(t, err)
	pre := &preprocessor.Preprocessor{}
	out, err := process(t, pre, main, string(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "shared", ";", "int", "own", ";"}, contents(out))
}

func TestIncludeFromIncludeDirs(t *testing.T) {
	libDir := t.TempDir()
	writeFile(t, libDir, "lib.lum", "float pi;")
	srcDir := t.TempDir()
	main := writeFile(t, srcDir, "main.lum", "#include <lib.lum>")

	data, err := os.ReadFile(main)
	require.NoError(t, err)
	pre := &preprocessor.Preprocessor{IncludeDirs: []string{libDir}}
	out, err := process(t, pre, main, string(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"float", "pi", ";"}, contents(out))
}

func TestMissingIncludeIsFatal(t *testing.T) {
	pre := &preprocessor.Preprocessor{}
	_, err := process(t, pre, filepath.Join(t.TempDir(), "main.lum"), "#include \"missing.lum\"")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot find include file 'missing.lum'")
}

func TestIncludeCycleIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.lum", "#include \"b.lum\"")
	writeFile(t, dir, "b.lum", "#include \"a.lum\"")
	main := writeFile(t, dir, "main.lum", "#include \"a.lum\"")

	data, err := os.ReadFile(main)
	require.NoError(t, err)
	pre := &preprocessor.Preprocessor{}
	_, err = pre.Process(mustTokenize(t, main, string(data)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Recursive include detected")
}

func mustTokenize(t *testing.T, origin, source string) []token.Token {
	t.Helper()
	tokens, err := tokenizer.TokenizeString(origin, source)
	require.NoError(t, err)
	return tokens
}

func TestSingleTrailingEndOfFile(t *testing.T) {
	pre := &preprocessor.Preprocessor{}
	out, err := process(t, pre, "test.lum", "int x;")
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, token.EndOfFile, out[len(out)-1].Type)
	for _, tok := range out[:len(out)-1] {
		assert.NotEqual(t, token.EndOfFile, tok.Type)
	}
}

func TestMacrosDoNotExpandInsideDefineOfOtherLines(t *testing.T) {
	// A directive consumes only the tokens of its own line.
	pre := &preprocessor.Preprocessor{}
	out, err := process(t, pre, "test.lum", "#define ONE 1\nint a = ONE;\nint b = 2;")
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "a", "=", "1", ";", "int", "b", "=", "2", ";"}, contents(out))
}
