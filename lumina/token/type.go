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

package token

// Type is the closed set of token kinds.
type Type int

const (
	// EndOfFile terminates every token list.
	EndOfFile Type = iota
	// Identifier is a name: «[A-Za-z_][A-Za-z0-9_]*» that is not a keyword.
	Identifier
	// IntegerLiteral is a decimal or hexadecimal integer, optionally «u» suffixed.
	IntegerLiteral
	// FloatLiteral is a literal with a fraction, exponent or «f» suffix.
	FloatLiteral
	// StringLiteral is a «"…"» quoted literal, escapes included.
	StringLiteral
	// HeaderLiteral is a «<…>» literal, only produced after «#include».
	HeaderLiteral

	Hash
	Colon
	DoubleColon
	Semicolon
	Comma
	Dot

	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket

	Less
	LessEqual
	Greater
	GreaterEqual
	ShiftLeft
	ShiftRight
	Arrow

	Assign
	Equal

	Plus
	PlusEqual
	PlusPlus
	Minus
	MinusEqual
	MinusMinus
	Star
	StarEqual
	Slash
	SlashEqual
	Percent
	PercentEqual

	Bang
	BangEqual
	Ampersand
	AmpersandAmpersand
	AmpersandEqual
	Pipe
	PipePipe
	PipeEqual
	Caret
	CaretEqual
	ShiftLeftEqual
	ShiftRightEqual
	Tilde
	Question

	KeywordInclude
	KeywordStruct
	KeywordNamespace
	KeywordAttributeBlock
	KeywordConstantBlock
	KeywordTexture
	KeywordAs
	KeywordConstant
	KeywordAttribute
	KeywordDefine
	KeywordReturn
	KeywordIf
	KeywordElse
	KeywordFor
	KeywordWhile
	KeywordDo
	KeywordBreak
	KeywordContinue
	KeywordConst
	KeywordDiscard
	KeywordThis
	KeywordInput
	KeywordOutput
	KeywordVertexPass
	KeywordFragmentPass
	KeywordTrue
	KeywordFalse
)

var typeNames = map[Type]string{
	EndOfFile:             "EndOfFile",
	Identifier:            "Identifier",
	IntegerLiteral:        "IntegerLiteral",
	FloatLiteral:          "FloatLiteral",
	StringLiteral:         "StringLiteral",
	HeaderLiteral:         "HeaderLiteral",
	Hash:                  "Hash",
	Colon:                 "Colon",
	DoubleColon:           "DoubleColon",
	Semicolon:             "Semicolon",
	Comma:                 "Comma",
	Dot:                   "Dot",
	LeftParen:             "LeftParen",
	RightParen:            "RightParen",
	LeftBrace:             "LeftBrace",
	RightBrace:            "RightBrace",
	LeftBracket:           "LeftBracket",
	RightBracket:          "RightBracket",
	Less:                  "Less",
	LessEqual:             "LessEqual",
	Greater:               "Greater",
	GreaterEqual:          "GreaterEqual",
	ShiftLeft:             "ShiftLeft",
	ShiftRight:            "ShiftRight",
	Arrow:                 "Arrow",
	Assign:                "Assign",
	Equal:                 "Equal",
	Plus:                  "Plus",
	PlusEqual:             "PlusEqual",
	PlusPlus:              "PlusPlus",
	Minus:                 "Minus",
	MinusEqual:            "MinusEqual",
	MinusMinus:            "MinusMinus",
	Star:                  "Star",
	StarEqual:             "StarEqual",
	Slash:                 "Slash",
	SlashEqual:            "SlashEqual",
	Percent:               "Percent",
	PercentEqual:          "PercentEqual",
	Bang:                  "Bang",
	BangEqual:             "BangEqual",
	Ampersand:             "Ampersand",
	AmpersandAmpersand:    "AmpersandAmpersand",
	AmpersandEqual:        "AmpersandEqual",
	Pipe:                  "Pipe",
	PipePipe:              "PipePipe",
	PipeEqual:             "PipeEqual",
	Caret:                 "Caret",
	CaretEqual:            "CaretEqual",
	ShiftLeftEqual:        "ShiftLeftEqual",
	ShiftRightEqual:       "ShiftRightEqual",
	Tilde:                 "Tilde",
	Question:              "Question",
	KeywordInclude:        "KeywordInclude",
	KeywordStruct:         "KeywordStruct",
	KeywordNamespace:      "KeywordNamespace",
	KeywordAttributeBlock: "KeywordAttributeBlock",
	KeywordConstantBlock:  "KeywordConstantBlock",
	KeywordTexture:        "KeywordTexture",
	KeywordAs:             "KeywordAs",
	KeywordConstant:       "KeywordConstant",
	KeywordAttribute:      "KeywordAttribute",
	KeywordDefine:         "KeywordDefine",
	KeywordReturn:         "KeywordReturn",
	KeywordIf:             "KeywordIf",
	KeywordElse:           "KeywordElse",
	KeywordFor:            "KeywordFor",
	KeywordWhile:          "KeywordWhile",
	KeywordDo:             "KeywordDo",
	KeywordBreak:          "KeywordBreak",
	KeywordContinue:       "KeywordContinue",
	KeywordConst:          "KeywordConst",
	KeywordDiscard:        "KeywordDiscard",
	KeywordThis:           "KeywordThis",
	KeywordInput:          "KeywordInput",
	KeywordOutput:         "KeywordOutput",
	KeywordVertexPass:     "KeywordVertexPass",
	KeywordFragmentPass:   "KeywordFragmentPass",
	KeywordTrue:           "KeywordTrue",
	KeywordFalse:          "KeywordFalse",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

var keywords = map[string]Type{
	"include":        KeywordInclude,
	"struct":         KeywordStruct,
	"namespace":      KeywordNamespace,
	"AttributeBlock": KeywordAttributeBlock,
	"ConstantBlock":  KeywordConstantBlock,
	"Texture":        KeywordTexture,
	"as":             KeywordAs,
	"constant":       KeywordConstant,
	"attribute":      KeywordAttribute,
	"define":         KeywordDefine,
	"return":         KeywordReturn,
	"if":             KeywordIf,
	"else":           KeywordElse,
	"for":            KeywordFor,
	"while":          KeywordWhile,
	"do":             KeywordDo,
	"break":          KeywordBreak,
	"continue":       KeywordContinue,
	"const":          KeywordConst,
	"discard":        KeywordDiscard,
	"this":           KeywordThis,
	"Input":          KeywordInput,
	"Output":         KeywordOutput,
	"VertexPass":     KeywordVertexPass,
	"FragmentPass":   KeywordFragmentPass,
	"true":           KeywordTrue,
	"false":          KeywordFalse,
}

// LookupKeyword returns the keyword type for word, or Identifier when the
// word is not a keyword.
func LookupKeyword(word string) Type {
	if t, ok := keywords[word]; ok {
		return t
	}
	return Identifier
}
