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

// Package ast holds the set of types used in the abstract syntax tree
// representation of Lumina shader programs.
//
// The parser is the only component that constructs these nodes; the
// analyzer and the code generator borrow them immutably.
package ast

import "github.com/ereliastudio/lumina/lumina/token"

// Name is an ordered sequence of identifier tokens forming a possibly
// qualified name «a::b::c».
type Name struct {
	Parts []token.Token
}

// String joins the name parts with «::» separators.
func (n Name) String() string {
	s := ""
	for i, part := range n.Parts {
		if i > 0 {
			s += "::"
		}
		s += part.Content
	}
	return s
}

// First returns the leading token of the name, used to anchor diagnostics.
func (n Name) First() token.Token {
	if len(n.Parts) == 0 {
		return token.Token{}
	}
	return n.Parts[0]
}

// TypeName is a type reference with its optional «const» qualifier.
type TypeName struct {
	IsConst bool
	Name    Name
}

// Parameter is a single function, method or operator parameter.
type Parameter struct {
	Type        TypeName
	Name        token.Token
	IsReference bool
}

// TextureScope identifies the «as attribute» / «as constant» binding
// modifier on a Texture declarator.
type TextureScope int

const (
	// ScopeConstant is the default texture binding scope.
	ScopeConstant TextureScope = iota
	// ScopeAttribute is selected by «as attribute».
	ScopeAttribute
)

// String returns the JSON spelling of the scope.
func (s TextureScope) String() string {
	if s == ScopeAttribute {
		return "attribute"
	}
	return "constant"
}

// VariableDeclarator is one declared name within a variable declaration.
type VariableDeclarator struct {
	Name           token.Token
	IsReference    bool
	HasArraySuffix bool
	HasArraySize   bool
	ArraySize      Expression
	Initializer    Expression

	// HasTextureBinding is set when an «as constant» or «as attribute»
	// clause followed the declarator.
	HasTextureBinding   bool
	TextureBindingScope TextureScope
	TextureBindingToken token.Token
}

// VariableDeclaration is a type followed by one or more declarators.
type VariableDeclaration struct {
	Type        TypeName
	Declarators []VariableDeclarator
}
