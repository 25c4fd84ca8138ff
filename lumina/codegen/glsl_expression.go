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

func (g *glslEmitter) emitExpression(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Value.Content
	case *ast.ArrayLiteral:
		return g.emitArrayLiteral(n)
	case *ast.Identifier:
		return g.remapIdentifier(n.Name)
	case *ast.Unary:
		return n.Operator.String() + g.emitExpression(n.Operand)
	case *ast.Binary:
		return "(" + g.emitExpression(n.Left) + " " + n.Operator.String() + " " + g.emitExpression(n.Right) + ")"
	case *ast.Assignment:
		return g.emitExpression(n.Target) + " " + n.Operator.String() + " " + g.emitExpression(n.Value)
	case *ast.Conditional:
		return "(" + g.emitExpression(n.Condition) + " ? " + g.emitExpression(n.Then) + " : " + g.emitExpression(n.Else) + ")"
	case *ast.Call:
		return g.emitCall(n)
	case *ast.MemberAccess:
		return g.emitExpression(n.Object) + "." + n.Member.Content
	case *ast.IndexAccess:
		return g.emitExpression(n.Object) + "[" + g.emitExpression(n.Index) + "]"
	case *ast.Postfix:
		return g.emitExpression(n.Operand) + n.Operator.String()
	}
	return ""
}

func (g *glslEmitter) emitArrayLiteral(literal *ast.ArrayLiteral) string {
	elementType := ""
	if len(literal.Elements) > 0 {
		if info, ok := g.info[literal.Elements[0]]; ok {
			elementType = convertType(info.TypeName)
		}
	}
	var out strings.Builder
	out.WriteString(elementType)
	out.WriteString("[](")
	for i, element := range literal.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(g.emitExpression(element))
	}
	out.WriteByte(')')
	return out.String()
}

func (g *glslEmitter) emitArguments(arguments []ast.Expression) string {
	var out strings.Builder
	out.WriteByte('(')
	for i, argument := range arguments {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(g.emitExpression(argument))
	}
	out.WriteByte(')')
	return out.String()
}

func (g *glslEmitter) emitCall(call *ast.Call) string {
	if member, ok := call.Callee.(*ast.MemberAccess); ok {
		method := member.Member.Content
		objectType := ""
		if info, ok := g.info[member.Object]; ok {
			objectType = info.TypeName
		}
		if objectType == "Texture" {
			if method == "getPixel" && len(call.Arguments) > 0 {
				return "texture(" + g.emitExpression(member.Object) + ", " + g.emitExpression(call.Arguments[0]) + ")"
			}
			if method == "size" && len(call.Arguments) == 0 {
				return "textureSize(" + g.emitExpression(member.Object) + ", 0)"
			}
		}
		if builtin, ok := g.emitBuiltinMemberCall(member, call); ok {
			return builtin
		}
		return g.emitExpression(member.Object) + "." + method + g.emitArguments(call.Arguments)
	}

	if identifier, ok := call.Callee.(*ast.Identifier); ok {
		name := identifier.Name.String()
		callee := convertType(name)
		if callee == name {
			callee = g.remapIdentifier(identifier.Name)
		}
		return callee + g.emitArguments(call.Arguments)
	}

	return ""
}

// emitBuiltinMemberCall rewrites the builtin float and vector methods to
// their GLSL free-function spelling.
func (g *glslEmitter) emitBuiltinMemberCall(member *ast.MemberAccess, call *ast.Call) (string, bool) {
	info, ok := g.info[member.Object]
	if !ok {
		return "", false
	}
	objectType := info.TypeName
	objectExpr := g.emitExpression(member.Object)
	arguments := make([]string, len(call.Arguments))
	for i, argument := range call.Arguments {
		arguments[i] = g.emitExpression(argument)
	}
	method := member.Member.Content

	if objectType == "float" {
		return emitFloatBuiltinCall(method, objectExpr, arguments)
	}
	if objectType == "Vector2" || objectType == "Vector3" || objectType == "Vector4" || objectType == "Color" {
		return emitVectorBuiltinCall(objectType, method, objectExpr, arguments)
	}
	return "", false
}

var glslUnaryBuiltins = map[string]bool{
	"abs": true, "sign": true, "floor": true, "ceil": true, "fract": true,
	"exp": true, "log": true, "exp2": true, "log2": true, "sqrt": true,
	"inversesqrt": true, "sin": true, "cos": true, "tan": true,
	"asin": true, "acos": true, "atan": true,
}

func emitFloatBuiltinCall(method, objectExpr string, arguments []string) (string, bool) {
	switch {
	case glslUnaryBuiltins[method] && len(arguments) == 0:
		return method + "(" + objectExpr + ")", true
	case (method == "mod" || method == "min" || method == "max" || method == "pow") && len(arguments) == 1:
		return method + "(" + objectExpr + ", " + arguments[0] + ")", true
	case method == "clamp" && len(arguments) == 2:
		return "clamp(" + objectExpr + ", " + arguments[0] + ", " + arguments[1] + ")", true
	case method == "mix" && len(arguments) == 2:
		return "mix(" + objectExpr + ", " + arguments[0] + ", " + arguments[1] + ")", true
	case method == "step" && len(arguments) == 1:
		return "step(" + arguments[0] + ", " + objectExpr + ")", true
	case method == "smoothstep" && len(arguments) == 2:
		return "smoothstep(" + arguments[0] + ", " + arguments[1] + ", " + objectExpr + ")", true
	}
	return "", false
}

func emitVectorBuiltinCall(typeName, method, objectExpr string, arguments []string) (string, bool) {
	switch {
	case method == "dot" && len(arguments) == 1:
		return "dot(" + objectExpr + ", " + arguments[0] + ")", true
	case method == "length" && len(arguments) == 0:
		return "length(" + objectExpr + ")", true
	case method == "distance" && len(arguments) == 1:
		return "distance(" + objectExpr + ", " + arguments[0] + ")", true
	case method == "normalize" && len(arguments) == 0:
		return "normalize(" + objectExpr + ")", true
	case method == "cross" && typeName == "Vector3" && len(arguments) == 1:
		return "cross(" + objectExpr + ", " + arguments[0] + ")", true
	case method == "reflect" && len(arguments) == 1:
		return "reflect(" + objectExpr + ", " + arguments[0] + ")", true
	case glslUnaryBuiltins[method] && method != "sign" && len(arguments) == 0:
		return method + "(" + objectExpr + ")", true
	case (method == "mod" || method == "min" || method == "max" || method == "pow") && len(arguments) == 1:
		return method + "(" + objectExpr + ", " + arguments[0] + ")", true
	case method == "clamp" && len(arguments) == 2:
		return "clamp(" + objectExpr + ", " + arguments[0] + ", " + arguments[1] + ")", true
	case method == "lerp" && len(arguments) == 2:
		return "mix(" + objectExpr + ", " + arguments[0] + ", " + arguments[1] + ")", true
	case method == "step" && len(arguments) == 1:
		return "step(" + arguments[0] + ", " + objectExpr + ")", true
	case method == "smoothstep" && len(arguments) == 2:
		return "smoothstep(" + arguments[0] + ", " + arguments[1] + ", " + objectExpr + ")", true
	case method == "saturate" && typeName == "Color" && len(arguments) == 0:
		return "clamp(" + objectExpr + ", 0.0, 1.0)", true
	}
	return "", false
}
