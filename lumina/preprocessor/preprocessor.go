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

// Package preprocessor expands «#include» and object-like «#define»
// directives over the raw token list of one translation unit.
//
// Includes resolve relative to the including file, then against the
// configured include directories, then against PATH. Recursive includes
// and recursive macro expansion are fatal.
package preprocessor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ereliastudio/lumina/lumina/token"
	"github.com/ereliastudio/lumina/lumina/tokenizer"
)

// Preprocessor holds the include search lists and predefined macros for
// one translation unit.
type Preprocessor struct {
	// IncludeDirs is consulted after the directory of the including file.
	IncludeDirs []string
	// PathDirs is the last-resort search list, normally from PATH.
	PathDirs []string
	// Defines are macros predefined before any source token, keyed by
	// name with replacement source text as value.
	Defines map[string]string
}

type macro struct {
	replacement []token.Token
}

type state struct {
	macros         map[string]macro
	expansionStack []string
	includeStack   []string
}

func errorPrefix(at token.Token) string {
	return fmt.Sprintf("%s:%d:%d: ", at.Origin, at.Start.Line, at.Start.Column)
}

// Process rewrites tokens, expanding directives and macros. The result
// ends in exactly one EndOfFile token.
func (p *Preprocessor) Process(tokens []token.Token) ([]token.Token, error) {
	if len(tokens) == 0 {
		return tokens, nil
	}

	st := &state{macros: map[string]macro{}}
	if err := p.seedDefines(st); err != nil {
		return nil, err
	}

	out := make([]token.Token, 0, len(tokens))
	var err error
	out, err = p.process(tokens, out, st)
	if err != nil {
		return nil, err
	}

	if len(out) == 0 || out[len(out)-1].Type != token.EndOfFile {
		eof := tokens[len(tokens)-1]
		eof.Type = token.EndOfFile
		eof.Content = ""
		out = append(out, eof)
	}
	return out, nil
}

// seedDefines registers the configuration-level macros, tokenizing each
// replacement text as if it came from a synthetic file.
func (p *Preprocessor) seedDefines(st *state) error {
	for name, value := range p.Defines {
		replacement, err := tokenizer.TokenizeString("<define:"+name+">", value)
		if err != nil {
			return errors.Wrapf(err, "invalid definition of %q", name)
		}
		// Drop the EndOfFile terminator.
		st.macros[name] = macro{replacement: replacement[:len(replacement)-1]}
	}
	return nil
}

func (p *Preprocessor) process(tokens []token.Token, out []token.Token, st *state) ([]token.Token, error) {
	for index := 0; index < len(tokens); {
		tok := tokens[index]

		if tok.Type == token.Hash && index+1 < len(tokens) {
			switch tokens[index+1].Type {
			case token.KeywordDefine:
				next, err := consumeDefine(tokens, index, st)
				if err != nil {
					return nil, err
				}
				index = next
				continue
			case token.KeywordInclude:
				var err error
				out, index, err = p.handleInclude(tokens, index, out, st)
				if err != nil {
					return nil, err
				}
				continue
			}
		}

		if tok.Type == token.EndOfFile {
			break
		}

		var err error
		out, err = appendWithExpansion(tok, out, st)
		if err != nil {
			return nil, err
		}
		index++
	}
	return out, nil
}

func appendWithExpansion(tok token.Token, out []token.Token, st *state) ([]token.Token, error) {
	if tok.Type != token.Identifier {
		return append(out, tok), nil
	}
	m, ok := st.macros[tok.Content]
	if !ok {
		return append(out, tok), nil
	}

	for _, expanding := range st.expansionStack {
		if expanding == tok.Content {
			msg := errorPrefix(tok) + fmt.Sprintf("Recursive macro expansion of %q", tok.Content)
			if len(st.expansionStack) > 0 {
				msg += " (expansion stack: " + strings.Join(st.expansionStack, " -> ") + ")"
			}
			return nil, errors.New(msg)
		}
	}

	st.expansionStack = append(st.expansionStack, tok.Content)
	var err error
	for _, replacement := range m.replacement {
		out, err = appendWithExpansion(replacement, out, st)
		if err != nil {
			return nil, err
		}
	}
	st.expansionStack = st.expansionStack[:len(st.expansionStack)-1]
	return out, nil
}

// consumeDefine registers «#define NAME tokens-to-end-of-line» and
// returns the index just past the directive.
func consumeDefine(tokens []token.Token, hashIndex int, st *state) (int, error) {
	hash := tokens[hashIndex]
	directiveLine := hash.Start.Line

	if hashIndex+2 >= len(tokens) {
		return 0, errors.New(errorPrefix(hash) + "Incomplete #define directive")
	}
	name := tokens[hashIndex+2]
	if name.Type != token.Identifier {
		return 0, errors.New(errorPrefix(tokens[hashIndex+1]) + "Expected identifier in #define directive")
	}

	end := hashIndex + 3
	for end < len(tokens) {
		candidate := tokens[end]
		if candidate.Type == token.EndOfFile || candidate.Start.Line != directiveLine {
			break
		}
		end++
	}

	replacement := make([]token.Token, end-(hashIndex+3))
	copy(replacement, tokens[hashIndex+3:end])
	st.macros[name.Content] = macro{replacement: replacement}
	return end, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// canonicalize normalizes a path that is known to exist.
func canonicalize(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// unescapeStringLiteral processes the backslash escapes of a quoted
// include operand body.
func unescapeStringLiteral(body string) string {
	var out strings.Builder
	out.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case 't':
				out.WriteByte('\t')
			case '\\':
				out.WriteByte('\\')
			case '"':
				out.WriteByte('"')
			default:
				out.WriteByte(body[i])
			}
		} else {
			out.WriteByte(c)
		}
	}
	return out.String()
}

func decodeIncludeOperand(tok token.Token) (string, error) {
	text := tok.Content
	if len(text) < 2 {
		return "", errors.New(errorPrefix(tok) + "Malformed include operand")
	}
	switch tok.Type {
	case token.StringLiteral:
		return unescapeStringLiteral(text[1 : len(text)-1]), nil
	case token.HeaderLiteral:
		return text[1 : len(text)-1], nil
	}
	return "", errors.New(errorPrefix(tok) + "Expected string or header literal")
}

func tryResolveAgainst(requested string, dirs []string) (string, bool) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, requested)
		if fileExists(candidate) {
			return canonicalize(candidate), true
		}
	}
	return "", false
}

func (p *Preprocessor) resolveIncludePath(operand token.Token) (string, error) {
	raw, err := decodeIncludeOperand(operand)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", errors.New(errorPrefix(operand) + "#include target cannot be empty")
	}

	if filepath.IsAbs(raw) {
		if !fileExists(raw) {
			return "", errors.Errorf("%sCannot find include file '%s'", errorPrefix(operand), raw)
		}
		return canonicalize(raw), nil
	}

	searchDirs := make([]string, 0, len(p.IncludeDirs)+1)
	if base := filepath.Dir(operand.Origin); base != "" {
		searchDirs = append(searchDirs, base)
	}
	searchDirs = append(searchDirs, p.IncludeDirs...)

	if resolved, ok := tryResolveAgainst(raw, searchDirs); ok {
		return resolved, nil
	}
	if resolved, ok := tryResolveAgainst(raw, p.PathDirs); ok {
		return resolved, nil
	}
	return "", errors.Errorf("%sCannot find include file '%s'", errorPrefix(operand), raw)
}

func (p *Preprocessor) handleInclude(tokens []token.Token, hashIndex int, out []token.Token, st *state) ([]token.Token, int, error) {
	hash := tokens[hashIndex]
	directiveLine := hash.Start.Line

	if hashIndex+2 >= len(tokens) {
		return nil, 0, errors.New(errorPrefix(hash) + "Incomplete #include directive")
	}
	operand := tokens[hashIndex+2]
	if operand.Type != token.StringLiteral && operand.Type != token.HeaderLiteral {
		return nil, 0, errors.New(errorPrefix(operand) + "Expected file literal in #include")
	}

	resolved, err := p.resolveIncludePath(operand)
	if err != nil {
		return nil, 0, err
	}

	for _, active := range st.includeStack {
		if active == resolved {
			return nil, 0, errors.Errorf("%sRecursive include detected for '%s'", errorPrefix(operand), resolved)
		}
	}

	included, err := tokenizer.Tokenize(resolved)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "%sFailed to include '%s'", errorPrefix(operand), resolved)
	}

	st.includeStack = append(st.includeStack, resolved)
	out, err = p.process(included, out, st)
	st.includeStack = st.includeStack[:len(st.includeStack)-1]
	if err != nil {
		return nil, 0, err
	}

	next := hashIndex + 3
	for next < len(tokens) {
		candidate := tokens[next]
		if candidate.Type == token.EndOfFile || candidate.Start.Line != directiveLine {
			break
		}
		next++
	}
	return out, next, nil
}
