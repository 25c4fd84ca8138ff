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

package tokenizer

import (
	"strings"

	"github.com/ereliastudio/lumina/lumina/token"
)

// reader walks a source string keeping the line/column cursor in step
// with the byte offset.
type reader struct {
	source string
	offset int
	line   int
	column int
}

func newReader(source string) *reader {
	return &reader{source: source, line: 1}
}

func (r *reader) isEOF() bool {
	return r.offset >= len(r.source)
}

// peek returns the byte n positions ahead of the cursor, or 0 at EOF.
func (r *reader) peek(n int) byte {
	if r.offset+n >= len(r.source) {
		return 0
	}
	return r.source[r.offset+n]
}

// advance consumes one byte, updating the cursor.
func (r *reader) advance() byte {
	if r.isEOF() {
		return 0
	}
	c := r.source[r.offset]
	r.offset++
	if c == '\n' {
		r.line++
		r.column = 0
	} else {
		r.column++
	}
	return c
}

// location returns the current cursor position.
func (r *reader) location() token.Location {
	return token.Location{Line: r.line, Column: r.column}
}

// slice returns the source text between begin and the cursor.
func (r *reader) slice(begin int) string {
	return r.source[begin:r.offset]
}

// normalizeLineEndings rewrites \r\n and lone \r to \n.
func normalizeLineEndings(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	return strings.ReplaceAll(input, "\r", "\n")
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentifierStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentifierBody(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}
