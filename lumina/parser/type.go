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

// typeNameStart reports whether a token can begin a type reference.
func typeNameStart(t token.Type) bool {
	return t == token.Identifier || t == token.KeywordTexture
}

// isDeclarationStart looks ahead for «[const] Name[::Name…] [&] ident»,
// the shape shared by variable declarations, fields and functions.
func (p *parser) isDeclarationStart() bool {
	i := 0
	if p.peek(i).Type == token.KeywordConst {
		i++
	}
	if !typeNameStart(p.peek(i).Type) {
		return false
	}
	i++
	for p.peek(i).Type == token.DoubleColon && p.peek(i+1).Type == token.Identifier {
		i += 2
	}
	if p.peek(i).Type == token.Ampersand {
		i++
	}
	return p.peek(i).Type == token.Identifier
}

// parseName parses «ident[::ident…]».
func (p *parser) parseName() (ast.Name, bool) {
	var name ast.Name
	first, ok := p.accept(token.Identifier)
	if !ok {
		if first, ok = p.accept(token.KeywordTexture); !ok {
			p.errorf("Expected identifier")
			return name, false
		}
	}
	name.Parts = append(name.Parts, first)
	for p.at(token.DoubleColon) && p.peek(1).Type == token.Identifier {
		p.next()
		name.Parts = append(name.Parts, p.next())
	}
	return name, true
}

// parseTypeName parses «[const] Name».
func (p *parser) parseTypeName() (ast.TypeName, bool) {
	var t ast.TypeName
	if _, ok := p.accept(token.KeywordConst); ok {
		t.IsConst = true
	}
	name, ok := p.parseName()
	if !ok {
		return t, false
	}
	t.Name = name
	return t, true
}

// parseParameters parses «( [param {, param}] )» where each parameter is
// «[const] Type [&] name».
func (p *parser) parseParameters() ([]ast.Parameter, bool) {
	if _, ok := p.expect(token.LeftParen, `"("`); !ok {
		return nil, false
	}
	var params []ast.Parameter
	if _, ok := p.accept(token.RightParen); ok {
		return params, true
	}
	for {
		t, ok := p.parseTypeName()
		if !ok {
			return params, false
		}
		var param ast.Parameter
		param.Type = t
		if _, ok := p.accept(token.Ampersand); ok {
			param.IsReference = true
		}
		name, ok := p.expect(token.Identifier, "parameter name")
		if !ok {
			return params, false
		}
		param.Name = name
		params = append(params, param)

		if _, ok := p.accept(token.Comma); ok {
			continue
		}
		if _, ok := p.expect(token.RightParen, `")"`); !ok {
			return params, false
		}
		return params, true
	}
}

// parseDeclarators parses one or more declarators sharing a type, up to
// but not including the terminating semicolon.
func (p *parser) parseDeclarators() ([]ast.VariableDeclarator, bool) {
	var declarators []ast.VariableDeclarator
	for {
		var d ast.VariableDeclarator
		if _, ok := p.accept(token.Ampersand); ok {
			d.IsReference = true
		}
		name, ok := p.expect(token.Identifier, "variable name")
		if !ok {
			return declarators, false
		}
		d.Name = name

		if _, ok := p.accept(token.LeftBracket); ok {
			d.HasArraySuffix = true
			if _, ok := p.accept(token.RightBracket); !ok {
				size := p.parseExpression()
				if size == nil {
					return declarators, false
				}
				d.HasArraySize = true
				d.ArraySize = size
				if _, ok := p.expect(token.RightBracket, `"]"`); !ok {
					return declarators, false
				}
			}
		}

		if _, ok := p.accept(token.Assign); ok {
			init := p.parseInitializer()
			if init == nil {
				return declarators, false
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
				return declarators, false
			}
		}

		declarators = append(declarators, d)
		if _, ok := p.accept(token.Comma); !ok {
			return declarators, true
		}
	}
}
