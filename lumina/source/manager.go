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

// Package source caches the preprocessed token list of each loaded file.
//
// A Manager lives for the duration of one compiler invocation. The first
// load of a path runs the tokenizer and the preprocessor; later loads of
// the same canonical path return the cached list.
package source

import (
	"path/filepath"

	"github.com/ereliastudio/lumina/lumina/preprocessor"
	"github.com/ereliastudio/lumina/lumina/token"
	"github.com/ereliastudio/lumina/lumina/tokenizer"
)

// Manager maps canonical paths to cached token lists.
type Manager struct {
	pre   *preprocessor.Preprocessor
	cache map[string][]token.Token
}

// NewManager returns a manager that preprocesses with pre.
func NewManager(pre *preprocessor.Preprocessor) *Manager {
	return &Manager{
		pre:   pre,
		cache: map[string][]token.Token{},
	}
}

// normalizePath canonicalizes path without requiring it to exist.
func normalizePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// LoadFile returns the preprocessed token list for path.
func (m *Manager) LoadFile(path string) ([]token.Token, error) {
	normalized := normalizePath(path)
	if cached, ok := m.cache[normalized]; ok {
		return cached, nil
	}

	tokens, err := tokenizer.Tokenize(normalized)
	if err != nil {
		return nil, err
	}
	tokens, err = m.pre.Process(tokens)
	if err != nil {
		return nil, err
	}

	m.cache[normalized] = tokens
	return tokens, nil
}
