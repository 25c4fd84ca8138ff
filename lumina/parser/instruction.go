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

func (p *parser) parseTranslationUnit() {
	for !p.atEOF() {
		before := p.pos
		if instruction := p.parseInstruction(); instruction != nil {
			p.instructions = append(p.instructions, instruction)
		}
		if p.pos == before {
			// The error recovery did not move; force progress.
			p.next()
		}
	}
}

// parseInstruction classifies a top-level declaration by its leading
// tokens.
func (p *parser) parseInstruction() ast.Instruction {
	switch p.current().Type {
	case token.KeywordInput:
		return p.parsePipeline()
	case token.KeywordVertexPass, token.KeywordFragmentPass:
		if p.peek(1).Type == token.Arrow {
			return p.parsePipeline()
		}
		return p.parseStageFunction()
	case token.KeywordNamespace:
		return p.parseNamespace()
	case token.KeywordStruct:
		return p.parseAggregate(ast.KindStruct)
	case token.KeywordAttributeBlock:
		return p.parseAggregate(ast.KindAttributeBlock)
	case token.KeywordConstantBlock:
		return p.parseAggregate(ast.KindConstantBlock)
	case token.KeywordTexture:
		return p.parseGlobalVariable()
	}

	if p.isDeclarationStart() {
		return p.parseFunctionOrVariable()
	}

	p.errorf("Expected declaration")
	p.synchronize()
	return nil
}

// Source -> Destination : Type name ;
func (p *parser) parsePipeline() ast.Instruction {
	pipeline := &ast.Pipeline{}

	sourceTok := p.next()
	source, ok := stageForKeyword(sourceTok.Type)
	if !ok {
		p.errorf("Expected stage name")
		p.synchronize()
		return nil
	}
	pipeline.SourceToken = sourceTok
	pipeline.Source = source

	if _, ok := p.expect(token.Arrow, `"->"`); !ok {
		p.synchronize()
		return nil
	}

	destTok := p.next()
	dest, ok := stageForKeyword(destTok.Type)
	if !ok {
		p.diags.Errorf(destTok, "Expected stage name")
		p.synchronize()
		return nil
	}
	pipeline.DestinationToken = destTok
	pipeline.Destination = dest

	if _, ok := p.expect(token.Colon, `":"`); !ok {
		p.synchronize()
		return nil
	}
	payload, ok := p.parseTypeName()
	if !ok {
		p.synchronize()
		return nil
	}
	pipeline.PayloadType = payload

	name, ok := p.expect(token.Identifier, "pipeline variable name")
	if !ok {
		p.synchronize()
		return nil
	}
	pipeline.Variable = name

	if _, ok := p.expect(token.Semicolon, `";"`); !ok {
		p.synchronize()
	}
	return pipeline
}

// VertexPass(params?) { … } | FragmentPass(params?) { … }
func (p *parser) parseStageFunction() ast.Instruction {
	stageTok := p.next()
	stage, _ := stageForKeyword(stageTok.Type)
	fn := &ast.StageFunction{StageToken: stageTok, Stage: stage}

	params, ok := p.parseParameters()
	if !ok {
		p.synchronize()
		return nil
	}
	fn.Parameters = params

	body := p.parseBlock()
	if body == nil {
		p.synchronize()
		return nil
	}
	fn.Body = body
	return fn
}

// namespace name { instructions }
func (p *parser) parseNamespace() ast.Instruction {
	p.next()
	name, ok := p.expect(token.Identifier, "namespace name")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.LeftBrace, `"{"`); !ok {
		p.synchronize()
		return nil
	}

	ns := &ast.Namespace{Name: name}
	for !p.at(token.RightBrace) && !p.atEOF() {
		before := p.pos
		if instruction := p.parseInstruction(); instruction != nil {
			ns.Instructions = append(ns.Instructions, instruction)
		}
		if p.pos == before {
			p.next()
		}
	}
	p.expect(token.RightBrace, `"}"`)
	return ns
}

// struct|AttributeBlock|ConstantBlock name { members } ;
func (p *parser) parseAggregate(kind ast.AggregateKind) ast.Instruction {
	p.next()
	name, ok := p.expect(token.Identifier, "aggregate name")
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.LeftBrace, `"{"`); !ok {
		p.synchronize()
		return nil
	}

	aggregate := &ast.Aggregate{Kind: kind, Name: name}
	for !p.at(token.RightBrace) && !p.atEOF() {
		before := p.pos
		if member := p.parseMember(name.Content); member != nil {
			aggregate.Members = append(aggregate.Members, member)
		}
		if p.pos == before {
			p.next()
		}
	}
	p.expect(token.RightBrace, `"}"`)
	p.expect(token.Semicolon, `";"`)
	return aggregate
}

// Texture name [as constant|attribute] {, …} ;
func (p *parser) parseGlobalVariable() ast.Instruction {
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
	return &ast.Variable{Declaration: ast.VariableDeclaration{Type: t, Declarators: declarators}}
}

// parseFunctionOrVariable disambiguates by the token after the declared
// name: «(» begins a function, anything else a global variable.
func (p *parser) parseFunctionOrVariable() ast.Instruction {
	t, ok := p.parseTypeName()
	if !ok {
		p.synchronize()
		return nil
	}

	returnsReference := false
	if _, ok := p.accept(token.Ampersand); ok {
		returnsReference = true
	}

	name, ok := p.expect(token.Identifier, "name")
	if !ok {
		p.synchronize()
		return nil
	}

	if p.at(token.LeftParen) {
		fn := &ast.Function{
			ReturnType:       t,
			ReturnsReference: returnsReference,
			Name:             name,
		}
		params, ok := p.parseParameters()
		if !ok {
			p.synchronize()
			return nil
		}
		fn.Parameters = params
		if _, ok := p.accept(token.Semicolon); ok {
			return fn
		}
		body := p.parseBlock()
		if body == nil {
			p.synchronize()
			return nil
		}
		fn.Body = body
		return fn
	}

	// A global variable: continue the declarator list from the already
	// consumed name.
	declarators, ok := p.parseDeclaratorsFrom(name, returnsReference)
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.Semicolon, `";"`); !ok {
		p.synchronize()
	}
	return &ast.Variable{Declaration: ast.VariableDeclaration{Type: t, Declarators: declarators}}
}

// parseDeclaratorsFrom finishes a declarator list whose first name (and
// reference flag) was already consumed by the caller.
func (p *parser) parseDeclaratorsFrom(first token.Token, isReference bool) ([]ast.VariableDeclarator, bool) {
	d := ast.VariableDeclarator{Name: first, IsReference: isReference}

	if _, ok := p.accept(token.LeftBracket); ok {
		d.HasArraySuffix = true
		if _, ok := p.accept(token.RightBracket); !ok {
			size := p.parseExpression()
			if size == nil {
				return nil, false
			}
			d.HasArraySize = true
			d.ArraySize = size
			if _, ok := p.expect(token.RightBracket, `"]"`); !ok {
				return nil, false
			}
		}
	}
	if _, ok := p.accept(token.Assign); ok {
		init := p.parseInitializer()
		if init == nil {
			return nil, false
		}
		d.Initializer = init
	}
	if asTok, ok := p.accept(token.KeywordAs); ok {
		d.HasTextureBinding = true
		d.TextureBindingToken = asTok
		switch p.current().Type {
		case token.KeywordConstant:
			p.next()
			d.TextureBindingScope = ast.ScopeConstant
		case token.KeywordAttribute:
			p.next()
			d.TextureBindingScope = ast.ScopeAttribute
		default:
			p.errorf(`Expected "constant" or "attribute" after "as"`)
			return nil, false
		}
	}

	declarators := []ast.VariableDeclarator{d}
	if _, ok := p.accept(token.Comma); ok {
		rest, ok := p.parseDeclarators()
		if !ok {
			return declarators, false
		}
		declarators = append(declarators, rest...)
	}
	return declarators, true
}

// parseMember dispatches a single aggregate member.
func (p *parser) parseMember(aggregateName string) ast.Member {
	cur := p.current()

	if cur.Type == token.Identifier && cur.Content == "operator" {
		return p.parseOperatorMember()
	}
	if cur.Type == token.Identifier && cur.Content == aggregateName && p.peek(1).Type == token.LeftParen {
		return p.parseConstructorMember()
	}

	if !p.isDeclarationStart() {
		p.errorf("Expected aggregate member")
		p.synchronize()
		return nil
	}

	t, ok := p.parseTypeName()
	if !ok {
		p.synchronize()
		return nil
	}
	returnsReference := false
	if _, ok := p.accept(token.Ampersand); ok {
		returnsReference = true
	}
	name, ok := p.expect(token.Identifier, "member name")
	if !ok {
		p.synchronize()
		return nil
	}

	if p.at(token.LeftParen) {
		method := &ast.Method{
			ReturnType:       t,
			ReturnsReference: returnsReference,
			Name:             name,
		}
		params, ok := p.parseParameters()
		if !ok {
			p.synchronize()
			return nil
		}
		method.Parameters = params
		if _, ok := p.accept(token.KeywordConst); ok {
			method.IsConst = true
		}
		if _, ok := p.accept(token.Semicolon); ok {
			return method
		}
		body := p.parseBlock()
		if body == nil {
			p.synchronize()
			return nil
		}
		method.Body = body
		return method
	}

	declarators, ok := p.parseDeclaratorsFrom(name, returnsReference)
	if !ok {
		p.synchronize()
		return nil
	}
	if _, ok := p.expect(token.Semicolon, `";"`); !ok {
		p.synchronize()
	}
	return &ast.Field{Declaration: ast.VariableDeclaration{Type: t, Declarators: declarators}}
}

// operatorSymbol consumes the overloadable symbol after the «operator»
// keyword.
func (p *parser) operatorSymbol() (token.Token, bool) {
	switch p.current().Type {
	case token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
		token.Equal, token.BangEqual, token.Less, token.LessEqual,
		token.Greater, token.GreaterEqual, token.AmpersandAmpersand, token.PipePipe,
		token.Ampersand, token.Pipe, token.Caret, token.ShiftLeft, token.ShiftRight,
		token.PlusEqual, token.MinusEqual, token.StarEqual, token.SlashEqual,
		token.PercentEqual, token.AmpersandEqual, token.PipeEqual, token.CaretEqual,
		token.ShiftLeftEqual, token.ShiftRightEqual,
		token.PlusPlus, token.MinusMinus:
		return p.next(), true
	}
	p.errorf("Expected operator symbol")
	return token.Token{}, false
}

// operator SYM (params) [-> Type [&]] { … }
func (p *parser) parseOperatorMember() ast.Member {
	p.next()
	symbol, ok := p.operatorSymbol()
	if !ok {
		p.synchronize()
		return nil
	}
	op := &ast.Operator{Symbol: symbol}

	params, ok := p.parseParameters()
	if !ok {
		p.synchronize()
		return nil
	}
	op.Parameters = params

	if _, ok := p.accept(token.Arrow); ok {
		t, ok := p.parseTypeName()
		if !ok {
			p.synchronize()
			return nil
		}
		op.ReturnType = t
		if _, ok := p.accept(token.Ampersand); ok {
			op.ReturnsReference = true
		}
	} else {
		op.ReturnType = ast.TypeName{Name: ast.Name{Parts: []token.Token{{
			Origin:  symbol.Origin,
			Type:    token.Identifier,
			Content: "void",
			Start:   symbol.Start,
			End:     symbol.End,
		}}}}
	}

	body := p.parseBlock()
	if body == nil {
		p.synchronize()
		return nil
	}
	op.Body = body
	return op
}

// Name(params) { … }
func (p *parser) parseConstructorMember() ast.Member {
	name := p.next()
	ctor := &ast.Constructor{Name: name}

	params, ok := p.parseParameters()
	if !ok {
		p.synchronize()
		return nil
	}
	ctor.Parameters = params

	body := p.parseBlock()
	if body == nil {
		p.synchronize()
		return nil
	}
	ctor.Body = body
	return ctor
}
