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

package sema

import (
	"sort"
	"strings"

	"github.com/ereliastudio/lumina/lumina/ast"
	"github.com/ereliastudio/lumina/lumina/token"
)

func (a *analyzer) evaluateCall(call *ast.Call, ctx *functionContext) TypedValue {
	if call.Callee == nil {
		return TypedValue{}
	}
	switch callee := call.Callee.(type) {
	case *ast.Identifier:
		return a.evaluateIdentifierCall(callee, call.Arguments, ctx)
	case *ast.MemberAccess:
		return a.evaluateMemberCall(callee, call.Arguments, ctx)
	}
	return a.evaluateExpression(call.Callee, ctx, true)
}

func (a *analyzer) evaluateIdentifierCall(identifier *ast.Identifier, arguments []ast.Expression, ctx *functionContext) TypedValue {
	if len(identifier.Name.Parts) == 0 {
		return TypedValue{}
	}

	calleeName := identifier.Name.String()
	if resolvedType, ok := a.lookupTypeName(identifier.Name); ok {
		return a.evaluateConstructorCall(resolvedType, identifier.Name.First(), arguments, ctx)
	}

	for _, candidate := range a.resolveQualifiedCandidates(identifier.Name) {
		if overloads, ok := a.functions[candidate]; ok {
			return a.resolveCall(candidate, overloads, arguments, ctx, identifier.Name.First(), false)
		}
	}

	if ctx.aggregate != nil {
		if overloads, ok := ctx.aggregate.Methods[identifier.Name.Parts[0].Content]; ok {
			return a.resolveCall(calleeName, overloads, arguments, ctx, identifier.Name.First(), ctx.methodConst)
		}
	}

	if result, handled := a.resolveBuiltinFunctionCall(identifier, arguments, ctx); handled {
		return result
	}

	a.errorf(identifier.Name.First(), "No overload of '%s' matches provided arguments", calleeName)

	signatures := a.collectFunctionSignatures(calleeName)
	if len(signatures) > 0 {
		a.diags.Notef("  Expected overloads:")
		for _, signature := range signatures {
			a.diags.Notef("    %s", signature)
		}
	} else {
		a.diags.Notef("  No overloads were defined for '%s'", calleeName)
	}
	a.diags.Notef("  Provided: %s", a.formatArgumentTypes(arguments, ctx))
	return TypedValue{}
}

func (a *analyzer) evaluateConstructorCall(typeName string, at token.Token, arguments []ast.Expression, ctx *functionContext) TypedValue {
	if typeName == "" {
		return TypedValue{}
	}

	info, ok := a.aggregates[typeName]
	if !ok {
		if isBuiltinType(typeName) {
			if len(arguments) == 1 && arguments[0] != nil {
				value := a.evaluateExpression(arguments[0], ctx, false)
				if !a.canExplicitlyConvert(value.Type, typeName) {
					a.errorf(at, "Cannot convert type '%s' to '%s'", value.Type, typeName)
				}
			} else {
				for _, argument := range arguments {
					a.evaluateExpression(argument, ctx, false)
				}
			}
			return TypedValue{Type: TypeInfo{Name: typeName}}
		}
		a.errorf(at, "Unknown constructor '%s'", typeName)
		return TypedValue{}
	}
	return a.resolveCall(typeName, info.Constructors, arguments, ctx, at, false)
}

func (a *analyzer) evaluateMemberCall(member *ast.MemberAccess, arguments []ast.Expression, ctx *functionContext) TypedValue {
	object := a.evaluateExpression(member.Object, ctx, false)
	if !object.Type.Valid() {
		return TypedValue{}
	}
	typeName := stripReference(object.Type).Name

	info, ok := a.aggregates[typeName]
	if !ok {
		if result, handled := a.resolveBuiltinMethod(object, member, arguments, ctx); handled {
			return result
		}
		a.errorf(member.Member, "Type '%s' has no members", typeName)
		return TypedValue{}
	}

	methodName := member.Member.Content
	overloads, ok := info.Methods[methodName]
	if !ok {
		a.errorf(member.Member, "Type '%s' has no member named '%s'", typeName, methodName)
		return TypedValue{}
	}

	objectConst := stripReference(object.Type).IsConst
	return a.resolveCall(methodName, overloads, arguments, ctx, member.Member, objectConst)
}

// resolveCall picks the first overload whose parameters accept the
// argument types. There is no ranking; the first compatible overload
// wins. On failure the candidate signatures and the provided argument
// types are listed after the diagnostic.
func (a *analyzer) resolveCall(name string, overloads []FunctionSignature, arguments []ast.Expression, ctx *functionContext, at token.Token, objectIsConst bool) TypedValue {
	argumentTypes := make([]TypedValue, 0, len(arguments))
	for _, argument := range arguments {
		argumentTypes = append(argumentTypes, a.evaluateExpression(argument, ctx, false))
	}

	for _, signature := range overloads {
		if len(signature.Parameters) != len(argumentTypes) {
			continue
		}
		if signature.IsMethod && objectIsConst && !signature.IsConstMethod {
			continue
		}
		compatible := true
		for i := range signature.Parameters {
			if !argumentTypes[i].Type.Valid() {
				compatible = false
				break
			}
			if signature.Parameters[i].IsReference && !argumentTypes[i].IsLValue {
				compatible = false
				break
			}
			if !typeAssignable(stripReference(signature.Parameters[i]), stripReference(argumentTypes[i].Type)) {
				compatible = false
				break
			}
		}
		if compatible {
			return TypedValue{Type: signature.ReturnType, IsLValue: signature.ReturnsReference}
		}
	}

	var provided strings.Builder
	provided.WriteByte('(')
	for i, argument := range argumentTypes {
		if i > 0 {
			provided.WriteString(", ")
		}
		if argument.Type.Valid() {
			provided.WriteString(stripReference(argument.Type).String())
		} else {
			provided.WriteByte('?')
		}
	}
	provided.WriteByte(')')

	a.errorf(at, "No overload of '%s' matches provided arguments", name)

	if len(overloads) > 0 {
		a.diags.Notef("  Expected overloads:")
		for _, signature := range overloads {
			var candidate strings.Builder
			candidate.WriteByte('(')
			for i, parameter := range signature.Parameters {
				if i > 0 {
					candidate.WriteString(", ")
				}
				candidate.WriteString(parameter.String())
			}
			candidate.WriteByte(')')
			a.diags.Notef("    %s", candidate.String())
		}
	} else {
		a.diags.Notef("  No overloads were defined for '%s'", name)
	}
	a.diags.Notef("  Provided: %s", provided.String())
	return TypedValue{}
}

// collectFunctionSignatures lists the display signatures of the
// qualified name, falling back to every function sharing its simple
// name.
func (a *analyzer) collectFunctionSignatures(qualifiedName string) []string {
	var signatures []string
	appendSignatures := func(qualified string, overloads []FunctionSignature) {
		for _, signature := range overloads {
			var out strings.Builder
			out.WriteString(qualified)
			out.WriteByte('(')
			for i, parameter := range signature.Parameters {
				if i > 0 {
					out.WriteString(", ")
				}
				out.WriteString(parameter.String())
			}
			out.WriteByte(')')
			signatures = append(signatures, out.String())
		}
	}

	if overloads, ok := a.functions[qualifiedName]; ok {
		appendSignatures(qualifiedName, overloads)
	}
	if len(signatures) > 0 {
		return signatures
	}

	simple := qualifiedName
	if sep := strings.LastIndex(qualifiedName, "::"); sep >= 0 {
		simple = qualifiedName[sep+2:]
	}

	var qualifieds []string
	for qualified := range a.functions {
		qualifieds = append(qualifieds, qualified)
	}
	// Deterministic listing order across runs.
	sort.Strings(qualifieds)
	for _, qualified := range qualifieds {
		overloads := a.functions[qualified]
		if len(overloads) == 0 {
			continue
		}
		base := qualified
		if sep := strings.LastIndex(qualified, "::"); sep >= 0 {
			base = qualified[sep+2:]
		}
		if base != simple {
			continue
		}
		appendSignatures(qualified, overloads)
	}
	return signatures
}

func (a *analyzer) formatArgumentTypes(arguments []ast.Expression, ctx *functionContext) string {
	var out strings.Builder
	out.WriteByte('(')
	for i, argument := range arguments {
		if i > 0 {
			out.WriteString(", ")
		}
		if argument != nil {
			value := a.evaluateExpression(argument, ctx, false)
			if value.Type.Valid() {
				out.WriteString(stripReference(value.Type).String())
				continue
			}
		}
		out.WriteByte('?')
	}
	out.WriteByte(')')
	return out.String()
}
