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

package ast

import "github.com/ereliastudio/lumina/lumina/token"

// Stage is one of the four pipeline stages. Pipeline variables flow
// along the linear graph Input → VertexPass → FragmentPass → Output.
type Stage int

const (
	StageInput Stage = iota
	StageVertexPass
	StageFragmentPass
	StageOutput
)

func (s Stage) String() string {
	switch s {
	case StageInput:
		return "Input"
	case StageVertexPass:
		return "VertexPass"
	case StageFragmentPass:
		return "FragmentPass"
	case StageOutput:
		return "Output"
	}
	return "Unknown"
}

// Instruction is the interface implemented by all top-level nodes.
type Instruction interface {
	isInstruction()
}

// Pipeline is «Source -> Destination : Type name;».
type Pipeline struct {
	SourceToken      token.Token
	Source           Stage
	DestinationToken token.Token
	Destination      Stage
	PayloadType      TypeName
	Variable         token.Token
}

func (*Pipeline) isInstruction() {}

// Variable is a global variable declaration, commonly a Texture.
type Variable struct {
	Declaration VariableDeclaration
}

func (*Variable) isInstruction() {}

// Function is a free function declaration with an optional body.
type Function struct {
	ReturnType       TypeName
	ReturnsReference bool
	Name             token.Token
	Parameters       []Parameter
	Body             *Block
}

func (*Function) isInstruction() {}

// StageFunction is a «VertexPass()» or «FragmentPass()» entry point.
type StageFunction struct {
	StageToken token.Token
	Stage      Stage
	Parameters []Parameter
	Body       *Block
}

func (*StageFunction) isInstruction() {}

// Namespace groups nested instructions under a name.
type Namespace struct {
	Name         token.Token
	Instructions []Instruction
}

func (*Namespace) isInstruction() {}

// AggregateKind distinguishes structs from the two data block forms.
type AggregateKind int

const (
	KindStruct AggregateKind = iota
	KindAttributeBlock
	KindConstantBlock
)

func (k AggregateKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindAttributeBlock:
		return "AttributeBlock"
	case KindConstantBlock:
		return "ConstantBlock"
	}
	return "aggregate"
}

// Aggregate is a struct, AttributeBlock or ConstantBlock declaration.
type Aggregate struct {
	Kind    AggregateKind
	Name    token.Token
	Members []Member
}

func (*Aggregate) isInstruction() {}

// Member is the interface implemented by aggregate members.
type Member interface {
	isMember()
}

// Field is a data member of an aggregate.
type Field struct {
	Declaration VariableDeclaration
}

func (*Field) isMember() {}

// Method is a named member function, optionally «const» qualified.
type Method struct {
	ReturnType       TypeName
	ReturnsReference bool
	Name             token.Token
	Parameters       []Parameter
	Body             *Block
	IsConst          bool
}

func (*Method) isMember() {}

// Constructor is a member function named after its aggregate.
type Constructor struct {
	Name       token.Token
	Parameters []Parameter
	Body       *Block
}

func (*Constructor) isMember() {}

// Operator is an «operator<sym>» member.
type Operator struct {
	ReturnType       TypeName
	ReturnsReference bool
	Symbol           token.Token
	Parameters       []Parameter
	Body             *Block
}

func (*Operator) isMember() {}
