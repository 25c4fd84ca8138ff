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

package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ereliastudio/lumina/lumina/preprocessor"
	"github.com/ereliastudio/lumina/lumina/source"
	"github.com/ereliastudio/lumina/lumina/token"
)

func TestLoadFileTokenizesAndPreprocesses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.lum")
	require.NoError(t, os.WriteFile(path, []byte("#define TWO 2\nint x = TWO;"), 0666))

	manager := source.NewManager(&preprocessor.Preprocessor{})
	tokens, err := manager.LoadFile(path)
	require.NoError(t, err)

	var contents []string
	for _, tok := range tokens {
		if tok.Type != token.EndOfFile {
			contents = append(contents, tok.Content)
		}
	}
	assert.Equal(t, []string{"int", "x", "=", "2", ";"}, contents)
	assert.Equal(t, token.EndOfFile, tokens[len(tokens)-1].Type)
}

func TestLoadFileCachesByCanonicalPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.lum")
	require.NoError(t, os.WriteFile(path, []byte("int x;"), 0666))

	manager := source.NewManager(&preprocessor.Preprocessor{})
	first, err := manager.LoadFile(path)
	require.NoError(t, err)

	// A later rewrite is not observed: the cache serves the same run.
	require.NoError(t, os.WriteFile(path, []byte("int y;"), 0666))
	second, err := manager.LoadFile(filepath.Join(dir, ".", "main.lum"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadMissingFile(t *testing.T) {
	manager := source.NewManager(&preprocessor.Preprocessor{})
	_, err := manager.LoadFile(filepath.Join(t.TempDir(), "absent.lum"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read")
}
