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

// Package parser implements the recursive-descent parser converting a
// preprocessed token stream into the abstract syntax tree.
//
// The parser is the only component that constructs AST nodes. On a
// syntax error it reports a diagnostic, skips to the next
// synchronization boundary and resumes, so a single run can surface
// several errors.
package parser

import (
	"github.com/ereliastudio/lumina/core/fault"
	"github.com/ereliastudio/lumina/lumina/ast"
	"github.com/ereliastudio/lumina/lumina/diag"
	"github.com/ereliastudio/lumina/lumina/token"
)

// ParseErrorLimit is the maximum number of errors before a parse is
// aborted.
var ParseErrorLimit = 10

// abortParse is panicked when a parse cannot usefully continue. It is
// recovered at the top level so the tree built so far is still returned.
const abortParse = fault.Const("abort")

// Parse consumes tokens and returns the instruction sequence. Syntax
// errors are reported to diags; the returned tree covers everything that
// could still be parsed.
func Parse(tokens []token.Token, diags *diag.Diagnostics) []ast.Instruction {
	p := &parser{tokens: tokens, diags: diags, startErrors: diags.Count()}
	defer func() {
		if err := recover(); err != nil && err != abortParse {
			panic(err)
		}
	}()
	p.parseTranslationUnit()
	return p.instructions
}

type parser struct {
	tokens       []token.Token
	pos          int
	diags        *diag.Diagnostics
	startErrors  int
	instructions []ast.Instruction
}

// current returns the token at the cursor. Past the end it returns the
// final EndOfFile token.
func (p *parser) current() token.Token {
	return p.peek(0)
}

func (p *parser) peek(n int) token.Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		if len(p.tokens) == 0 {
			return token.Token{Type: token.EndOfFile}
		}
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *parser) at(t token.Type) bool {
	return p.current().Type == t
}

func (p *parser) atEOF() bool {
	return p.at(token.EndOfFile)
}

// next consumes and returns the current token.
func (p *parser) next() token.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// accept consumes the current token if it has the given type.
func (p *parser) accept(t token.Type) (token.Token, bool) {
	if p.at(t) {
		return p.next(), true
	}
	return token.Token{}, false
}

// expect consumes a token of the given type or reports what was wanted.
func (p *parser) expect(t token.Type, what string) (token.Token, bool) {
	if tok, ok := p.accept(t); ok {
		return tok, true
	}
	p.errorf("Expected %s", what)
	return token.Token{}, false
}

func (p *parser) errorf(format string, args ...interface{}) {
	p.diags.Errorf(p.current(), format, args...)
	if p.diags.Count()-p.startErrors >= ParseErrorLimit {
		panic(abortParse)
	}
}

// synchronize advances to the next statement or declaration boundary
// after a syntax error. Semicolons and closing braces are consumed; the
// top-level keywords are left for the caller.
func (p *parser) synchronize() {
	for !p.atEOF() {
		switch p.current().Type {
		case token.Semicolon, token.RightBrace:
			p.next()
			return
		case token.KeywordNamespace, token.KeywordStruct, token.KeywordAttributeBlock,
			token.KeywordConstantBlock, token.KeywordTexture, token.KeywordInput,
			token.KeywordVertexPass, token.KeywordFragmentPass:
			return
		}
		p.next()
	}
}

// stageForKeyword maps a stage keyword token to its Stage value.
func stageForKeyword(t token.Type) (ast.Stage, bool) {
	switch t {
	case token.KeywordInput:
		return ast.StageInput, true
	case token.KeywordVertexPass:
		return ast.StageVertexPass, true
	case token.KeywordFragmentPass:
		return ast.StageFragmentPass, true
	case token.KeywordOutput:
		return ast.StageOutput, true
	}
	return 0, false
}
