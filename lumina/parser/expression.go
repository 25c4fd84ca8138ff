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

// assignmentOperators maps assignment tokens to their operator.
var assignmentOperators = map[token.Type]ast.AssignmentOperator{
	token.Assign:          ast.Assign,
	token.PlusEqual:       ast.AddAssign,
	token.MinusEqual:      ast.SubtractAssign,
	token.StarEqual:       ast.MultiplyAssign,
	token.SlashEqual:      ast.DivideAssign,
	token.PercentEqual:    ast.ModuloAssign,
	token.AmpersandEqual:  ast.BitwiseAndAssign,
	token.PipeEqual:       ast.BitwiseOrAssign,
	token.CaretEqual:      ast.BitwiseXorAssign,
	token.ShiftLeftEqual:  ast.ShiftLeftAssign,
	token.ShiftRightEqual: ast.ShiftRightAssign,
}

// parseInitializer accepts either an array literal or an assignment
// expression; array literals only appear in initializer positions.
func (p *parser) parseInitializer() ast.Expression {
	if p.at(token.LeftBrace) {
		return p.parseArrayLiteral()
	}
	return p.parseExpression()
}

// { expr, expr, … }
func (p *parser) parseArrayLiteral() ast.Expression {
	brace, _ := p.accept(token.LeftBrace)
	literal := &ast.ArrayLiteral{LeftBrace: brace}
	if _, ok := p.accept(token.RightBrace); ok {
		return literal
	}
	for {
		element := p.parseInitializer()
		if element == nil {
			return nil
		}
		literal.Elements = append(literal.Elements, element)
		if _, ok := p.accept(token.Comma); ok {
			continue
		}
		if _, ok := p.expect(token.RightBrace, `"}"`); !ok {
			return nil
		}
		return literal
	}
}

// parseExpression parses an assignment expression: the lowest-precedence
// form, right associative.
func (p *parser) parseExpression() ast.Expression {
	target := p.parseConditional()
	if target == nil {
		return nil
	}
	op, ok := assignmentOperators[p.current().Type]
	if !ok {
		return target
	}
	opTok := p.next()
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return &ast.Assignment{
		OperatorToken: opTok,
		Operator:      op,
		Target:        target,
		Value:         value,
	}
}

// cond ? then : else
func (p *parser) parseConditional() ast.Expression {
	condition := p.parseBinary(0)
	if condition == nil {
		return nil
	}
	if _, ok := p.accept(token.Question); !ok {
		return condition
	}
	then := p.parseExpression()
	if then == nil {
		return nil
	}
	if _, ok := p.expect(token.Colon, `":"`); !ok {
		return nil
	}
	els := p.parseConditional()
	if els == nil {
		return nil
	}
	return &ast.Conditional{Condition: condition, Then: then, Else: els}
}

// binaryLevels is the precedence ladder from loosest to tightest.
var binaryLevels = [][]struct {
	tok token.Type
	op  ast.BinaryOperator
}{
	{{token.PipePipe, ast.BinaryLogicalOr}},
	{{token.AmpersandAmpersand, ast.BinaryLogicalAnd}},
	{{token.Pipe, ast.BinaryBitwiseOr}},
	{{token.Caret, ast.BinaryBitwiseXor}},
	{{token.Ampersand, ast.BinaryBitwiseAnd}},
	{{token.Equal, ast.BinaryEqual}, {token.BangEqual, ast.BinaryNotEqual}},
	{
		{token.Less, ast.BinaryLess},
		{token.LessEqual, ast.BinaryLessEqual},
		{token.Greater, ast.BinaryGreater},
		{token.GreaterEqual, ast.BinaryGreaterEqual},
	},
	{{token.ShiftLeft, ast.BinaryShiftLeft}, {token.ShiftRight, ast.BinaryShiftRight}},
	{{token.Plus, ast.BinaryAdd}, {token.Minus, ast.BinarySubtract}},
	{
		{token.Star, ast.BinaryMultiply},
		{token.Slash, ast.BinaryDivide},
		{token.Percent, ast.BinaryModulo},
	},
}

func (p *parser) parseBinary(level int) ast.Expression {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}
	left := p.parseBinary(level + 1)
	if left == nil {
		return nil
	}
	for {
		matched := false
		for _, entry := range binaryLevels[level] {
			if p.at(entry.tok) {
				opTok := p.next()
				right := p.parseBinary(level + 1)
				if right == nil {
					return nil
				}
				left = &ast.Binary{
					OperatorToken: opTok,
					Operator:      entry.op,
					Left:          left,
					Right:         right,
				}
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
	}
}

func (p *parser) parseUnary() ast.Expression {
	var op ast.UnaryOperator
	switch p.current().Type {
	case token.Plus:
		op = ast.UnaryPositive
	case token.Minus:
		op = ast.UnaryNegate
	case token.Bang:
		op = ast.UnaryLogicalNot
	case token.Tilde:
		op = ast.UnaryBitwiseNot
	case token.PlusPlus:
		op = ast.UnaryPreIncrement
	case token.MinusMinus:
		op = ast.UnaryPreDecrement
	default:
		return p.parsePostfix()
	}
	p.next()
	operand := p.parseUnary()
	if operand == nil {
		return nil
	}
	return &ast.Unary{Operator: op, Operand: operand}
}

// parsePostfix extends a primary with member access, indexing, calls and
// the postfix increment forms.
func (p *parser) parsePostfix() ast.Expression {
	expression := p.parsePrimary()
	if expression == nil {
		return nil
	}
	for {
		switch p.current().Type {
		case token.Dot:
			p.next()
			member, ok := p.expect(token.Identifier, "member name")
			if !ok {
				return nil
			}
			expression = &ast.MemberAccess{Object: expression, Member: member}
		case token.LeftBracket:
			p.next()
			index := p.parseExpression()
			if index == nil {
				return nil
			}
			if _, ok := p.expect(token.RightBracket, `"]"`); !ok {
				return nil
			}
			expression = &ast.IndexAccess{Object: expression, Index: index}
		case token.LeftParen:
			p.next()
			call := &ast.Call{Callee: expression}
			if _, ok := p.accept(token.RightParen); !ok {
				for {
					argument := p.parseExpression()
					if argument == nil {
						return nil
					}
					call.Arguments = append(call.Arguments, argument)
					if _, ok := p.accept(token.Comma); ok {
						continue
					}
					if _, ok := p.expect(token.RightParen, `")"`); !ok {
						return nil
					}
					break
				}
			}
			expression = call
		case token.PlusPlus:
			p.next()
			expression = &ast.Postfix{Operator: ast.PostIncrement, Operand: expression}
		case token.MinusMinus:
			p.next()
			expression = &ast.Postfix{Operator: ast.PostDecrement, Operand: expression}
		default:
			return expression
		}
	}
}

func (p *parser) parsePrimary() ast.Expression {
	switch p.current().Type {
	case token.IntegerLiteral, token.FloatLiteral, token.StringLiteral,
		token.KeywordTrue, token.KeywordFalse:
		return &ast.Literal{Value: p.next()}
	case token.KeywordThis:
		tok := p.next()
		return &ast.Identifier{Name: ast.Name{Parts: []token.Token{tok}}}
	case token.Identifier, token.KeywordTexture:
		name, ok := p.parseName()
		if !ok {
			return nil
		}
		return &ast.Identifier{Name: name}
	case token.LeftParen:
		p.next()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(token.RightParen, `")"`); !ok {
			return nil
		}
		return inner
	}
	p.errorf("Expected expression")
	return nil
}
