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

package tokenizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ereliastudio/lumina/lumina/token"
	"github.com/ereliastudio/lumina/lumina/tokenizer"
)

func kinds(tokens []token.Token) []token.Type {
	out := make([]token.Type, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestScanKinds(t *testing.T) {
	for _, test := range []struct {
		name     string
		source   string
		expected []token.Type
	}{
		{
			name:   "identifiers and keywords",
			source: "struct position Texture true",
			expected: []token.Type{
				token.KeywordStruct, token.Identifier, token.KeywordTexture,
				token.KeywordTrue, token.EndOfFile,
			},
		},
		{
			name:   "pipeline declaration",
			source: "Input -> VertexPass : Vector3 position;",
			expected: []token.Type{
				token.KeywordInput, token.Arrow, token.KeywordVertexPass,
				token.Colon, token.Identifier, token.Identifier,
				token.Semicolon, token.EndOfFile,
			},
		},
		{
			name:   "numbers",
			source: "1 2u 3.5 4.0f .25 1e10 1.5e-3 0x1F 0xABu",
			expected: []token.Type{
				token.IntegerLiteral, token.IntegerLiteral, token.FloatLiteral,
				token.FloatLiteral, token.FloatLiteral, token.FloatLiteral,
				token.FloatLiteral, token.IntegerLiteral, token.IntegerLiteral,
				token.EndOfFile,
			},
		},
		{
			name:   "longest match operators",
			source: "<<= << <= < >>= >> >= > == = ++ += + -> -- -= -",
			expected: []token.Type{
				token.ShiftLeftEqual, token.ShiftLeft, token.LessEqual, token.Less,
				token.ShiftRightEqual, token.ShiftRight, token.GreaterEqual, token.Greater,
				token.Equal, token.Assign, token.PlusPlus, token.PlusEqual, token.Plus,
				token.Arrow, token.MinusMinus, token.MinusEqual, token.Minus,
				token.EndOfFile,
			},
		},
		{
			name:   "logical and bitwise",
			source: "&& &= & || |= | ^= ^ != ! ~ ? :: :",
			expected: []token.Type{
				token.AmpersandAmpersand, token.AmpersandEqual, token.Ampersand,
				token.PipePipe, token.PipeEqual, token.Pipe,
				token.CaretEqual, token.Caret, token.BangEqual, token.Bang,
				token.Tilde, token.Question, token.DoubleColon, token.Colon,
				token.EndOfFile,
			},
		},
		{
			name:     "comments are skipped",
			source:   "a // line comment\n/* block\ncomment */ b",
			expected: []token.Type{token.Identifier, token.Identifier, token.EndOfFile},
		},
		{
			name:     "empty input",
			source:   "",
			expected: []token.Type{token.EndOfFile},
		},
		{
			name:   "string literal",
			source: `"hello \"world\""`,
			expected: []token.Type{
				token.StringLiteral, token.EndOfFile,
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			tokens, err := tokenizer.TokenizeString("test.lum", test.source)
			require.NoError(t, err)
			assert.Equal(t, test.expected, kinds(tokens))
		})
	}
}

func TestHeaderLiteralOnlyAfterInclude(t *testing.T) {
	tokens, err := tokenizer.TokenizeString("test.lum", "#include <common.lum>")
	require.NoError(t, err)
	assert.Equal(t, []token.Type{
		token.Hash, token.KeywordInclude, token.HeaderLiteral, token.EndOfFile,
	}, kinds(tokens))
	assert.Equal(t, "<common.lum>", tokens[2].Content)

	tokens, err = tokenizer.TokenizeString("test.lum", "a < b")
	require.NoError(t, err)
	assert.Equal(t, []token.Type{
		token.Identifier, token.Less, token.Identifier, token.EndOfFile,
	}, kinds(tokens))
}

func TestFatalErrors(t *testing.T) {
	for _, test := range []struct {
		name    string
		source  string
		message string
	}{
		{"unterminated block comment", "/* never closed", "Unterminated block comment"},
		{"unterminated string", "\"abc\ndef\"", "Unterminated string literal"},
		{"unterminated header", "#include <foo\n", "Unterminated header literal"},
		{"bad exponent", "1e+", "Malformed exponent in numeric literal"},
		{"bad hex", "0x", "Malformed hexadecimal literal"},
		{"unexpected character", "@", "Unexpected character"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := tokenizer.TokenizeString("test.lum", test.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.message)
			assert.Contains(t, err.Error(), "test.lum:")
		})
	}
}

func TestPositions(t *testing.T) {
	tokens, err := tokenizer.TokenizeString("test.lum", "ab cd\nef")
	require.NoError(t, err)
	require.Len(t, tokens, 4)

	assert.Equal(t, 1, tokens[0].Start.Line)
	assert.Equal(t, 0, tokens[0].Start.Column)
	assert.Equal(t, 1, tokens[1].Start.Line)
	assert.Equal(t, 3, tokens[1].Start.Column)
	assert.Equal(t, 2, tokens[2].Start.Line)
	assert.Equal(t, 0, tokens[2].Start.Column)

	// Spans never run backwards across lines.
	for _, tok := range tokens {
		assert.LessOrEqual(t, tok.Start.Line, tok.End.Line, tok.String())
	}
}

func TestLineEndingNormalization(t *testing.T) {
	unix, err := tokenizer.TokenizeString("test.lum", "a\nb")
	require.NoError(t, err)
	windows, err := tokenizer.TokenizeString("test.lum", "a\r\nb")
	require.NoError(t, err)
	assert.Equal(t, kinds(unix), kinds(windows))
	assert.Equal(t, unix[1].Start, windows[1].Start)
}
