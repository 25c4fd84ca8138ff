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

package codegen

import (
	"strings"

	"github.com/ereliastudio/lumina/lumina/ast"
)

func (g *glslEmitter) emitBlockStatement(out *strings.Builder, block *ast.Block, indent int) {
	for _, statement := range block.Statements {
		g.emitStatement(out, statement, indent)
	}
}

func (g *glslEmitter) emitStatement(out *strings.Builder, statement ast.Statement, indent int) {
	switch n := statement.(type) {
	case *ast.Block:
		writeIndent(out, indent)
		out.WriteString("{\n")
		g.emitBlockStatement(out, n, indent+1)
		writeIndent(out, indent)
		out.WriteString("}\n")
	case *ast.ExpressionStatement:
		if n.Expression != nil {
			writeIndent(out, indent)
			out.WriteString(g.emitExpression(n.Expression))
			out.WriteString(";\n")
		}
	case *ast.VariableStatement:
		g.emitVariableStatement(out, n, indent)
	case *ast.If:
		g.emitIfStatement(out, n, indent)
	case *ast.While:
		writeIndent(out, indent)
		out.WriteString("while (")
		out.WriteString(g.emitExpression(n.Condition))
		out.WriteString(")\n")
		g.emitStatement(out, n.Body, indent+1)
	case *ast.DoWhile:
		writeIndent(out, indent)
		out.WriteString("do\n")
		g.emitStatement(out, n.Body, indent+1)
		writeIndent(out, indent)
		out.WriteString("while (")
		out.WriteString(g.emitExpression(n.Condition))
		out.WriteString(");\n")
	case *ast.For:
		g.emitForStatement(out, n, indent)
	case *ast.Return:
		writeIndent(out, indent)
		out.WriteString("return")
		if n.Value != nil {
			out.WriteByte(' ')
			out.WriteString(g.emitExpression(n.Value))
		}
		out.WriteString(";\n")
	case *ast.Break:
		writeIndent(out, indent)
		out.WriteString("break;\n")
	case *ast.Continue:
		writeIndent(out, indent)
		out.WriteString("continue;\n")
	case *ast.Discard:
		writeIndent(out, indent)
		out.WriteString("discard;\n")
	}
}

func (g *glslEmitter) emitVariableStatement(out *strings.Builder, statement *ast.VariableStatement, indent int) {
	glslType := typeToGLSL(statement.Declaration.Type)
	for i := range statement.Declaration.Declarators {
		declarator := &statement.Declaration.Declarators[i]
		writeIndent(out, indent)
		out.WriteString(glslType)
		out.WriteByte(' ')
		out.WriteString(declarator.Name.Content)
		if declarator.HasArraySuffix && declarator.ArraySize != nil {
			out.WriteByte('[')
			out.WriteString(g.emitExpression(declarator.ArraySize))
			out.WriteByte(']')
		} else if declarator.HasArraySuffix {
			out.WriteString("[]")
		}
		if declarator.Initializer != nil {
			out.WriteString(" = ")
			out.WriteString(g.emitExpression(declarator.Initializer))
		}
		out.WriteString(";\n")
	}
}

func (g *glslEmitter) emitIfStatement(out *strings.Builder, statement *ast.If, indent int) {
	writeIndent(out, indent)
	out.WriteString("if (")
	out.WriteString(g.emitExpression(statement.Condition))
	out.WriteString(")\n")
	g.emitStatement(out, statement.Then, indent+1)
	if statement.Else != nil {
		writeIndent(out, indent)
		out.WriteString("else\n")
		g.emitStatement(out, statement.Else, indent+1)
	}
}

func (g *glslEmitter) emitForStatement(out *strings.Builder, statement *ast.For, indent int) {
	writeIndent(out, indent)
	out.WriteString("for (")
	switch init := statement.Initializer.(type) {
	case *ast.VariableStatement:
		if len(init.Declaration.Declarators) > 0 {
			declarator := &init.Declaration.Declarators[0]
			out.WriteString(typeToGLSL(init.Declaration.Type))
			out.WriteByte(' ')
			out.WriteString(declarator.Name.Content)
			if declarator.Initializer != nil {
				out.WriteString(" = ")
				out.WriteString(g.emitExpression(declarator.Initializer))
			}
		}
	case *ast.ExpressionStatement:
		if init.Expression != nil {
			out.WriteString(g.emitExpression(init.Expression))
		}
	}
	out.WriteString("; ")
	if statement.Condition != nil {
		out.WriteString(g.emitExpression(statement.Condition))
	}
	out.WriteString("; ")
	if statement.Increment != nil {
		out.WriteString(g.emitExpression(statement.Increment))
	}
	out.WriteString(")\n")
	g.emitStatement(out, statement.Body, indent+1)
}
