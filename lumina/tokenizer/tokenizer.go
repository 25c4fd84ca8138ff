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

// Package tokenizer converts a Lumina source file into a token list.
//
// Lexical failures are fatal: they are returned as errors and abort the
// whole compilation, there is no recovery below the parser.
package tokenizer

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/ereliastudio/lumina/lumina/token"
)

// Tokenize reads the file at path and scans it into a token list
// terminated by a single EndOfFile token.
func Tokenize(path string) ([]token.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}
	return TokenizeString(path, string(data))
}

// TokenizeString scans source, attributing every token to origin.
func TokenizeString(origin, source string) ([]token.Token, error) {
	s := &scanner{
		origin: origin,
		reader: newReader(normalizeLineEndings(source)),
	}
	return s.run()
}

type scanner struct {
	origin string
	*reader
	tokens []token.Token
}

func (s *scanner) errorf(at token.Location, format string, args ...interface{}) error {
	return errors.Errorf("%s:%d:%d: %s", s.origin, at.Line, at.Column, fmt.Sprintf(format, args...))
}

func (s *scanner) emit(begin int, t token.Type, start token.Location) {
	s.tokens = append(s.tokens, token.Token{
		Origin:  s.origin,
		Type:    t,
		Content: s.slice(begin),
		Start:   start,
		End:     s.location(),
	})
}

// skipTrivia consumes whitespace and comments. An unterminated block
// comment is fatal.
func (s *scanner) skipTrivia() error {
	for !s.isEOF() {
		c := s.peek(0)
		if isWhitespace(c) {
			s.advance()
			continue
		}
		if c == '/' && s.peek(1) == '/' {
			s.advance()
			s.advance()
			for !s.isEOF() && s.peek(0) != '\n' {
				s.advance()
			}
			continue
		}
		if c == '/' && s.peek(1) == '*' {
			start := s.location()
			s.advance()
			s.advance()
			closed := false
			for !s.isEOF() {
				if s.peek(0) == '*' && s.peek(1) == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				return s.errorf(s.location(), "Unterminated block comment that started at line %d", start.Line)
			}
			continue
		}
		break
	}
	return nil
}

func (s *scanner) lexIdentifier() {
	start := s.location()
	begin := s.offset
	s.advance()
	for !s.isEOF() && isIdentifierBody(s.peek(0)) {
		s.advance()
	}
	s.emit(begin, token.LookupKeyword(s.slice(begin)), start)
}

func (s *scanner) lexNumber(leadingDot bool) error {
	start := s.location()
	begin := s.offset
	isFloat := false

	if leadingDot {
		isFloat = true
		s.advance()
		if !isDigit(s.peek(0)) {
			return s.errorf(s.location(), "Malformed floating-point literal")
		}
	}

	if !leadingDot && s.peek(0) == '0' && (s.peek(1) == 'x' || s.peek(1) == 'X') {
		s.advance()
		s.advance()
		if !isHexDigit(s.peek(0)) {
			return s.errorf(s.location(), "Malformed hexadecimal literal")
		}
		for !s.isEOF() && isHexDigit(s.peek(0)) {
			s.advance()
		}
		if s.peek(0) == 'u' || s.peek(0) == 'U' {
			s.advance()
		}
		s.emit(begin, token.IntegerLiteral, start)
		return nil
	}

	for !s.isEOF() && isDigit(s.peek(0)) {
		s.advance()
	}

	if !leadingDot && s.peek(0) == '.' {
		isFloat = true
		s.advance()
		for !s.isEOF() && isDigit(s.peek(0)) {
			s.advance()
		}
	}

	if s.peek(0) == 'e' || s.peek(0) == 'E' {
		isFloat = true
		s.advance()
		if s.peek(0) == '+' || s.peek(0) == '-' {
			s.advance()
		}
		if !isDigit(s.peek(0)) {
			return s.errorf(s.location(), "Malformed exponent in numeric literal")
		}
		for !s.isEOF() && isDigit(s.peek(0)) {
			s.advance()
		}
	}

	if s.peek(0) == 'f' || s.peek(0) == 'F' {
		isFloat = true
		s.advance()
	} else if !isFloat && (s.peek(0) == 'u' || s.peek(0) == 'U') {
		s.advance()
	}

	t := token.IntegerLiteral
	if isFloat {
		t = token.FloatLiteral
	}
	s.emit(begin, t, start)
	return nil
}

func (s *scanner) lexString() error {
	start := s.location()
	begin := s.offset
	s.advance()

	closed := false
	escaping := false
	for !s.isEOF() {
		c := s.advance()
		if !escaping && c == '\n' {
			return s.errorf(s.location(), "Unterminated string literal")
		}
		if !escaping && c == '"' {
			closed = true
			break
		}
		escaping = !escaping && c == '\\'
	}
	if !closed {
		return s.errorf(s.location(), "Unterminated string literal")
	}
	s.emit(begin, token.StringLiteral, start)
	return nil
}

func (s *scanner) lexHeader() error {
	start := s.location()
	begin := s.offset
	s.advance()

	closed := false
	for !s.isEOF() {
		c := s.advance()
		if c == '>' {
			closed = true
			break
		}
		if c == '\n' {
			return s.errorf(s.location(), "Unterminated header literal")
		}
	}
	if !closed {
		return s.errorf(s.location(), "Unterminated header literal")
	}
	s.emit(begin, token.HeaderLiteral, start)
	return nil
}

// afterInclude reports whether the previous token is the include keyword,
// which turns a following «<» into a header literal.
func (s *scanner) afterInclude() bool {
	return len(s.tokens) > 0 && s.tokens[len(s.tokens)-1].Type == token.KeywordInclude
}

func (s *scanner) run() ([]token.Token, error) {
	for {
		if err := s.skipTrivia(); err != nil {
			return nil, err
		}
		if s.isEOF() {
			break
		}

		c := s.peek(0)
		if isIdentifierStart(c) {
			s.lexIdentifier()
			continue
		}
		if isDigit(c) || (c == '.' && isDigit(s.peek(1))) {
			if err := s.lexNumber(c == '.'); err != nil {
				return nil, err
			}
			continue
		}

		start := s.location()
		begin := s.offset
		var t token.Type

		switch c {
		case '#':
			s.advance()
			t = token.Hash
		case '"':
			if err := s.lexString(); err != nil {
				return nil, err
			}
			continue
		case '<':
			if s.afterInclude() {
				if err := s.lexHeader(); err != nil {
					return nil, err
				}
				continue
			}
			s.advance()
			t = token.Less
			if s.peek(0) == '<' {
				s.advance()
				t = token.ShiftLeft
				if s.peek(0) == '=' {
					s.advance()
					t = token.ShiftLeftEqual
				}
			} else if s.peek(0) == '=' {
				s.advance()
				t = token.LessEqual
			}
		case '>':
			s.advance()
			t = token.Greater
			if s.peek(0) == '>' {
				s.advance()
				t = token.ShiftRight
				if s.peek(0) == '=' {
					s.advance()
					t = token.ShiftRightEqual
				}
			} else if s.peek(0) == '=' {
				s.advance()
				t = token.GreaterEqual
			}
		case '(':
			s.advance()
			t = token.LeftParen
		case ')':
			s.advance()
			t = token.RightParen
		case '{':
			s.advance()
			t = token.LeftBrace
		case '}':
			s.advance()
			t = token.RightBrace
		case '[':
			s.advance()
			t = token.LeftBracket
		case ']':
			s.advance()
			t = token.RightBracket
		case ';':
			s.advance()
			t = token.Semicolon
		case ',':
			s.advance()
			t = token.Comma
		case '.':
			s.advance()
			t = token.Dot
		case ':':
			s.advance()
			t = token.Colon
			if s.peek(0) == ':' {
				s.advance()
				t = token.DoubleColon
			}
		case '+':
			s.advance()
			t = token.Plus
			if s.peek(0) == '+' {
				s.advance()
				t = token.PlusPlus
			} else if s.peek(0) == '=' {
				s.advance()
				t = token.PlusEqual
			}
		case '-':
			s.advance()
			t = token.Minus
			if s.peek(0) == '>' {
				s.advance()
				t = token.Arrow
			} else if s.peek(0) == '-' {
				s.advance()
				t = token.MinusMinus
			} else if s.peek(0) == '=' {
				s.advance()
				t = token.MinusEqual
			}
		case '*':
			s.advance()
			t = token.Star
			if s.peek(0) == '=' {
				s.advance()
				t = token.StarEqual
			}
		case '/':
			s.advance()
			t = token.Slash
			if s.peek(0) == '=' {
				s.advance()
				t = token.SlashEqual
			}
		case '%':
			s.advance()
			t = token.Percent
			if s.peek(0) == '=' {
				s.advance()
				t = token.PercentEqual
			}
		case '!':
			s.advance()
			t = token.Bang
			if s.peek(0) == '=' {
				s.advance()
				t = token.BangEqual
			}
		case '=':
			s.advance()
			t = token.Assign
			if s.peek(0) == '=' {
				s.advance()
				t = token.Equal
			}
		case '&':
			s.advance()
			t = token.Ampersand
			if s.peek(0) == '&' {
				s.advance()
				t = token.AmpersandAmpersand
			} else if s.peek(0) == '=' {
				s.advance()
				t = token.AmpersandEqual
			}
		case '|':
			s.advance()
			t = token.Pipe
			if s.peek(0) == '|' {
				s.advance()
				t = token.PipePipe
			} else if s.peek(0) == '=' {
				s.advance()
				t = token.PipeEqual
			}
		case '^':
			s.advance()
			t = token.Caret
			if s.peek(0) == '=' {
				s.advance()
				t = token.CaretEqual
			}
		case '?':
			s.advance()
			t = token.Question
		case '~':
			s.advance()
			t = token.Tilde
		default:
			return nil, s.errorf(s.location(), "Unexpected character %q", string(c))
		}

		s.emit(begin, t, start)
	}

	s.tokens = append(s.tokens, token.Token{
		Origin: s.origin,
		Type:   token.EndOfFile,
		Start:  s.location(),
		End:    s.location(),
	})
	return s.tokens, nil
}
