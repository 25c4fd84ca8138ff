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

package parser

import (
	"github.com/ereliastudio/lumina/lumina/ast"
	"github.com/ereliastudio/lumina/lumina/token"
)

// parseBlock parses «{ statement… }».
func (p *parser) parseBlock() *ast.Block {
	if _, ok := p.expect(token.LeftBrace, `"{"`); !ok {
		return nil
	}
	block := &ast.Block{}
	for !p.at(token.RightBrace) && !p.atEOF() {
		before := p.pos
		if statement := p.parseStatement(); statement != nil {
			block.Statements = append(block.Statements, statement)
		}
		if p.pos == before {
			p.next()
		}
	}
	p.expect(token.RightBrace, `"}"`)
	return block
}

func (p *parser) parseStatement() ast.Statement {
	switch p.current().Type {
	case token.LeftBrace:
		if block := p.parseBlock(); block != nil {
			return block
		}
		return nil
	case token.KeywordIf:
		return p.parseIf()
	case token.KeywordWhile:
		return p.parseWhile()
	case token.KeywordDo:
		return p.parseDoWhile()
	case token.KeywordFor:
		return p.parseFor()
	case token.KeywordReturn:
		return p.parseReturn()
	case token.KeywordBreak:
		p.next()
		p.expect(token.Semicolon, `";"`)
		return &ast.Break{}
	case token.KeywordContinue:
		p.next()
		p.expect(token.Semicolon, `";"`)
		return &ast.Continue{}
	case token.KeywordDiscard:
		p.next()
		p.expect(token.Semicolon, `";"`)
		return &ast.Discard{}
	case token.Semicolon:
		// An empty statement; skip it.
		p.next()
		return nil
	}

	if p.isDeclarationStart() {
		return p.parseVariableStatement()
	}
	return p.parseExpressionStatement()
}

func (p *parser) parseVariableStatement() ast.Statement {
	t, ok := p.parseTypeName()
	if !ok {
		p.synchronize()
		return nil
	}
	declarators, ok := p.parseDeclarators()
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.Semicolon, `";"`); !ok {
		p.synchronize()
	}
	return &ast.VariableStatement{Declaration: ast.VariableDeclaration{Type: t, Declarators: declarators}}
}

func (p *parser) parseExpressionStatement() ast.Statement {
	expression := p.parseExpression()
	if expression == nil {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.Semicolon, `";"`); !ok {
		p.synchronize()
	}
	return &ast.ExpressionStatement{Expression: expression}
}

// if (cond) stmt [else stmt]
func (p *parser) parseIf() ast.Statement {
	p.next()
	if _, ok := p.expect(token.LeftParen, `"("`); !ok {
		p.synchronize()
		return nil
	}
	condition := p.parseExpression()
	if condition == nil {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.RightParen, `")"`); !ok {
		p.synchronize()
		return nil
	}
	then := p.parseStatement()
	if then == nil {
		return nil
	}
	statement := &ast.If{Condition: condition, Then: then}
	if _, ok := p.accept(token.KeywordElse); ok {
		statement.Else = p.parseStatement()
	}
	return statement
}

// while (cond) stmt
func (p *parser) parseWhile() ast.Statement {
	p.next()
	if _, ok := p.expect(token.LeftParen, `"("`); !ok {
		p.synchronize()
		return nil
	}
	condition := p.parseExpression()
	if condition == nil {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.RightParen, `")"`); !ok {
		p.synchronize()
		return nil
	}
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return &ast.While{Condition: condition, Body: body}
}

// do stmt while (cond) ;
func (p *parser) parseDoWhile() ast.Statement {
	p.next()
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	if _, ok := p.expect(token.KeywordWhile, `"while"`); !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.LeftParen, `"("`); !ok {
		p.synchronize()
		return nil
	}
	condition := p.parseExpression()
	if condition == nil {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.RightParen, `")"`); !ok {
		p.synchronize()
		return nil
	}
	p.expect(token.Semicolon, `";"`)
	return &ast.DoWhile{Body: body, Condition: condition}
}

// for (init; cond; incr) stmt — any header part may be empty.
func (p *parser) parseFor() ast.Statement {
	p.next()
	if _, ok := p.expect(token.LeftParen, `"("`); !ok {
		p.synchronize()
		return nil
	}

	statement := &ast.For{}
	if _, ok := p.accept(token.Semicolon); !ok {
		if p.isDeclarationStart() {
			statement.Initializer = p.parseVariableStatement()
		} else {
			statement.Initializer = p.parseExpressionStatement()
		}
		if statement.Initializer == nil {
			return nil
		}
	}

	if _, ok := p.accept(token.Semicolon); !ok {
		condition := p.parseExpression()
		if condition == nil {
			p.synchronize()
			return nil
		}
		statement.Condition = condition
		if _, ok := p.expect(token.Semicolon, `";"`); !ok {
			p.synchronize()
			return nil
		}
	}

	if !p.at(token.RightParen) {
		increment := p.parseExpression()
		if increment == nil {
			p.synchronize()
			return nil
		}
		statement.Increment = increment
	}
	if _, ok := p.expect(token.RightParen, `")"`); !ok {
		p.synchronize()
		return nil
	}

	body := p.parseStatement()
	if body == nil {
		return nil
	}
	statement.Body = body
	return statement
}

// return [expr] ;
func (p *parser) parseReturn() ast.Statement {
	p.next()
	statement := &ast.Return{}
	if !p.at(token.Semicolon) {
		value := p.parseExpression()
		if value == nil {
			p.synchronize()
			return nil
		}
		statement.Value = value
	}
	p.expect(token.Semicolon, `";"`)
	return statement
}
