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
	"github.com/ereliastudio/lumina/lumina/ast"
)

// unaryFloatFunctions map one float-family argument to the same type.
var unaryFloatFunctions = map[string]bool{
	"floor": true, "ceil": true, "fract": true, "exp": true, "log": true,
	"exp2": true, "log2": true, "sqrt": true, "inversesqrt": true,
	"sin": true, "cos": true, "tan": true, "asin": true, "acos": true, "atan": true,
}

// resolveBuiltinFunctionCall handles the free math builtins. The second
// result reports whether the name was recognized; diagnostics for wrong
// arguments still count as handled.
func (a *analyzer) resolveBuiltinFunctionCall(identifier *ast.Identifier, arguments []ast.Expression, ctx *functionContext) (TypedValue, bool) {
	if len(identifier.Name.Parts) != 1 {
		return TypedValue{}, false
	}
	at := identifier.Name.Parts[0]
	name := at.Content

	evaluatedArgs := make([]TypedValue, 0, len(arguments))
	for _, argument := range arguments {
		evaluatedArgs = append(evaluatedArgs, a.evaluateExpression(argument, ctx, false))
	}

	fail := func(format string, args ...interface{}) (TypedValue, bool) {
		a.errorf(at, format, args...)
		return TypedValue{}, true
	}

	requireArgCount := func(expected int) bool {
		return len(evaluatedArgs) == expected
	}
	argCountError := func(expected int) (TypedValue, bool) {
		plural := "s"
		if expected == 1 {
			plural = ""
		}
		return fail("%s() expects %d argument%s", name, expected, plural)
	}

	baseTypeName := func(index int) string {
		if index >= len(evaluatedArgs) || !evaluatedArgs[index].Type.Valid() {
			return ""
		}
		return stripReference(evaluatedArgs[index].Type).Name
	}

	sharedType := func(indices ...int) string {
		candidate := ""
		for _, index := range indices {
			typeName := baseTypeName(index)
			if typeName == "" {
				return ""
			}
			if candidate == "" {
				candidate = typeName
			} else if candidate != typeName {
				return ""
			}
		}
		return candidate
	}

	ok := func(typeName string) (TypedValue, bool) {
		return TypedValue{Type: TypeInfo{Name: typeName}}, true
	}

	binarySameType := func(allowFloat, allowInt, allowUInt bool) (TypedValue, bool) {
		if !requireArgCount(2) {
			return argCountError(2)
		}
		typeName := sharedType(0, 1)
		if typeName == "" {
			return fail("%s() arguments must share the same type", name)
		}
		if (allowFloat && isFloatLikeTypeName(typeName)) || (allowInt && isIntLikeTypeName(typeName)) ||
			(allowUInt && isUIntLikeTypeName(typeName)) {
			return ok(typeName)
		}
		return fail("%s() is not defined for type '%s'", name, typeName)
	}

	ternarySameType := func(allowFloat, allowInt, allowUInt bool) (TypedValue, bool) {
		if !requireArgCount(3) {
			return argCountError(3)
		}
		typeName := sharedType(0, 1, 2)
		if typeName == "" {
			return fail("%s() arguments must share the same type", name)
		}
		if (allowFloat && isFloatLikeTypeName(typeName)) || (allowInt && isIntLikeTypeName(typeName)) ||
			(allowUInt && isUIntLikeTypeName(typeName)) {
			return ok(typeName)
		}
		return fail("%s() is not defined for type '%s'", name, typeName)
	}

	switch {
	case name == "abs" || name == "sign":
		if !requireArgCount(1) {
			return argCountError(1)
		}
		typeName := baseTypeName(0)
		if typeName == "" {
			return TypedValue{}, true
		}
		if isFloatLikeTypeName(typeName) || isIntLikeTypeName(typeName) {
			return ok(typeName)
		}
		return fail("%s() argument must be a numeric scalar or vector", name)

	case unaryFloatFunctions[name]:
		if !requireArgCount(1) {
			return argCountError(1)
		}
		typeName := baseTypeName(0)
		if typeName == "" {
			return TypedValue{}, true
		}
		if isFloatLikeTypeName(typeName) {
			return ok(typeName)
		}
		return fail("%s() argument must be float-based", name)

	case name == "mod" || name == "min" || name == "max":
		return binarySameType(true, true, true)

	case name == "pow":
		return binarySameType(true, false, false)

	case name == "step":
		if !requireArgCount(2) {
			return argCountError(2)
		}
		typeName := sharedType(0, 1)
		if typeName == "" {
			return fail("step() arguments must share the same type")
		}
		if isFloatLikeTypeName(typeName) {
			return ok(typeName)
		}
		return fail("step() is only defined for float types")

	case name == "clamp":
		return ternarySameType(true, true, true)

	case name == "smoothstep":
		if !requireArgCount(3) {
			return argCountError(3)
		}
		typeName := sharedType(0, 1, 2)
		if typeName == "" {
			return fail("smoothstep() arguments must share the same type")
		}
		if isFloatLikeTypeName(typeName) {
			return ok(typeName)
		}
		return fail("smoothstep() is only defined for float types")

	case name == "mix":
		if !requireArgCount(3) {
			return argCountError(3)
		}
		typeName := sharedType(0, 1)
		if typeName == "" {
			return fail("mix() first two arguments must share the same type")
		}
		if !isFloatLikeTypeName(typeName) {
			return fail("mix() is only defined for float types")
		}
		factorType := baseTypeName(2)
		if factorType == "" {
			return TypedValue{}, true
		}
		if !isFloatTypeName(factorType) {
			return fail("mix() third argument must be 'float'")
		}
		return ok(typeName)

	case name == "dot":
		if !requireArgCount(2) {
			return argCountError(2)
		}
		typeName := sharedType(0, 1)
		if typeName == "" {
			return fail("dot() arguments must share the same type")
		}
		if !isFloatVectorOrColorTypeName(typeName) {
			return fail("dot() requires float vector arguments")
		}
		return ok("float")

	case name == "length":
		if !requireArgCount(1) {
			return argCountError(1)
		}
		typeName := baseTypeName(0)
		if typeName == "" {
			return TypedValue{}, true
		}
		if !isFloatVectorOrColorTypeName(typeName) {
			return fail("length() requires a float vector argument")
		}
		return ok("float")

	case name == "distance":
		if !requireArgCount(2) {
			return argCountError(2)
		}
		typeName := sharedType(0, 1)
		if typeName == "" {
			return fail("distance() arguments must share the same type")
		}
		if !isFloatVectorOrColorTypeName(typeName) {
			return fail("distance() requires float vector arguments")
		}
		return ok("float")

	case name == "normalize":
		if !requireArgCount(1) {
			return argCountError(1)
		}
		typeName := baseTypeName(0)
		if typeName == "" {
			return TypedValue{}, true
		}
		if !isFloatVectorOrColorTypeName(typeName) {
			return fail("normalize() requires a float vector argument")
		}
		return ok(typeName)

	case name == "cross":
		if !requireArgCount(2) {
			return argCountError(2)
		}
		typeName := sharedType(0, 1)
		if typeName == "" {
			return fail("cross() arguments must share the same type")
		}
		if typeName != "Vector3" {
			return fail("cross() is only defined for 'Vector3'")
		}
		return ok("Vector3")

	case name == "reflect":
		if !requireArgCount(2) {
			return argCountError(2)
		}
		typeName := sharedType(0, 1)
		if typeName == "" {
			return fail("reflect() arguments must share the same type")
		}
		if !isFloatVectorOrColorTypeName(typeName) {
			return fail("reflect() requires float vector arguments")
		}
		return ok(typeName)
	}

	return TypedValue{}, false
}

// resolveBuiltinMethod dispatches «obj.method(...)» for the builtin
// float and float-vector types.
func (a *analyzer) resolveBuiltinMethod(object TypedValue, member *ast.MemberAccess, arguments []ast.Expression, ctx *functionContext) (TypedValue, bool) {
	typeName := stripReference(object.Type).Name
	if isFloatTypeName(typeName) {
		return a.resolveFloatBuiltinMethod(object, member, arguments, ctx)
	}
	return a.resolveVectorBuiltinMethod(object, member, arguments, ctx)
}

func (a *analyzer) resolveFloatBuiltinMethod(object TypedValue, member *ast.MemberAccess, arguments []ast.Expression, ctx *functionContext) (TypedValue, bool) {
	base := stripReference(object.Type)
	if !isFloatTypeName(base.Name) {
		return TypedValue{}, false
	}

	evaluatedArgs := make([]TypedValue, 0, len(arguments))
	for _, argument := range arguments {
		evaluatedArgs = append(evaluatedArgs, a.evaluateExpression(argument, ctx, false))
	}

	methodName := member.Member.Content
	fail := func(format string, args ...interface{}) (TypedValue, bool) {
		a.errorf(member.Member, format, args...)
		return TypedValue{}, true
	}
	argCountError := func(expected int) (TypedValue, bool) {
		plural := "s"
		if expected == 1 {
			plural = ""
		}
		return fail("%s() expects %d argument%s", methodName, expected, plural)
	}
	isFloatArg := func(index int) bool {
		if index >= len(evaluatedArgs) || !evaluatedArgs[index].Type.Valid() {
			return false
		}
		return stripReference(evaluatedArgs[index].Type).Name == "float"
	}
	floatResult := TypedValue{Type: TypeInfo{Name: "float"}}

	switch {
	case methodName == "abs" || methodName == "sign" || unaryFloatFunctions[methodName]:
		if len(evaluatedArgs) != 0 {
			return argCountError(0)
		}
		return floatResult, true
	case methodName == "mod" || methodName == "min" || methodName == "max" || methodName == "pow":
		if len(evaluatedArgs) != 1 {
			return argCountError(1)
		}
		if !isFloatArg(0) {
			return fail("%s() argument must be float", methodName)
		}
		return floatResult, true
	case methodName == "clamp":
		if len(evaluatedArgs) != 2 {
			return argCountError(2)
		}
		if !isFloatArg(0) || !isFloatArg(1) {
			return fail("clamp() arguments must be float")
		}
		return floatResult, true
	case methodName == "mix":
		if len(evaluatedArgs) != 2 {
			return argCountError(2)
		}
		if !isFloatArg(0) || !isFloatArg(1) {
			return fail("mix() arguments must be float")
		}
		return floatResult, true
	case methodName == "step":
		if len(evaluatedArgs) != 1 {
			return argCountError(1)
		}
		if !isFloatArg(0) {
			return fail("step() argument must be float")
		}
		return floatResult, true
	case methodName == "smoothstep":
		if len(evaluatedArgs) != 2 {
			return argCountError(2)
		}
		if !isFloatArg(0) || !isFloatArg(1) {
			return fail("smoothstep() arguments must be float")
		}
		return floatResult, true
	}
	return TypedValue{}, false
}

func (a *analyzer) resolveVectorBuiltinMethod(object TypedValue, member *ast.MemberAccess, arguments []ast.Expression, ctx *functionContext) (TypedValue, bool) {
	base := stripReference(object.Type)
	typeName := base.Name
	if !isFloatVectorTypeName(typeName) && !isColorTypeName(typeName) {
		return TypedValue{}, false
	}
	descriptor, ok := builtinSwizzleTypes[typeName]
	if !ok || descriptor.scalarType != "float" {
		return TypedValue{}, false
	}

	evaluatedArgs := make([]TypedValue, 0, len(arguments))
	for _, argument := range arguments {
		evaluatedArgs = append(evaluatedArgs, a.evaluateExpression(argument, ctx, false))
	}

	methodName := member.Member.Content
	fail := func(format string, args ...interface{}) (TypedValue, bool) {
		a.errorf(member.Member, format, args...)
		return TypedValue{}, true
	}
	argCountError := func(expected int) (TypedValue, bool) {
		plural := "s"
		if expected == 1 {
			plural = ""
		}
		return fail("%s() expects %d argument%s", methodName, expected, plural)
	}
	matchesBaseType := func(index int) bool {
		if index >= len(evaluatedArgs) || !evaluatedArgs[index].Type.Valid() {
			return false
		}
		return stripReference(evaluatedArgs[index].Type).Name == typeName
	}
	isFloatArg := func(index int) bool {
		if index >= len(evaluatedArgs) || !evaluatedArgs[index].Type.Valid() {
			return false
		}
		return stripReference(evaluatedArgs[index].Type).Name == "float"
	}

	vectorResult := base
	vectorResult.IsReference = false
	vectorResult.IsConst = false

	switch methodName {
	case "dot":
		if len(evaluatedArgs) != 1 {
			return argCountError(1)
		}
		if !matchesBaseType(0) {
			return fail("dot() argument must be of type '%s'", typeName)
		}
		return TypedValue{Type: TypeInfo{Name: descriptor.scalarType}}, true
	case "length", "distance":
		expected := 0
		if methodName == "distance" {
			expected = 1
		}
		if len(evaluatedArgs) != expected {
			return argCountError(expected)
		}
		if methodName == "distance" && !matchesBaseType(0) {
			return fail("distance() argument must be of type '%s'", typeName)
		}
		return TypedValue{Type: TypeInfo{Name: "float"}}, true
	case "normalize":
		if len(evaluatedArgs) != 0 {
			return argCountError(0)
		}
		return TypedValue{Type: vectorResult}, true
	case "cross":
		if typeName != "Vector3" {
			return TypedValue{}, false
		}
		if len(evaluatedArgs) != 1 {
			return argCountError(1)
		}
		if !matchesBaseType(0) {
			return fail("cross() argument must be of type 'Vector3'")
		}
		return TypedValue{Type: vectorResult}, true
	case "reflect":
		if len(evaluatedArgs) != 1 {
			return argCountError(1)
		}
		if !matchesBaseType(0) {
			return fail("reflect() argument must be of type '%s'", typeName)
		}
		return TypedValue{Type: vectorResult}, true
	case "mod", "min", "max", "pow":
		if len(evaluatedArgs) != 1 {
			return argCountError(1)
		}
		if !matchesBaseType(0) {
			return fail("%s() argument must be of type '%s'", methodName, typeName)
		}
		return TypedValue{Type: vectorResult}, true
	case "clamp":
		if len(evaluatedArgs) != 2 {
			return argCountError(2)
		}
		if !matchesBaseType(0) || !matchesBaseType(1) {
			return fail("clamp() arguments must be of type '%s'", typeName)
		}
		return TypedValue{Type: vectorResult}, true
	case "lerp":
		if len(evaluatedArgs) != 2 {
			return argCountError(2)
		}
		if !matchesBaseType(0) || !isFloatArg(1) {
			return fail("lerp() arguments must be '%s' and 'float'", typeName)
		}
		return TypedValue{Type: vectorResult}, true
	case "step":
		if len(evaluatedArgs) != 1 {
			return argCountError(1)
		}
		if !matchesBaseType(0) {
			return fail("step() argument must be of type '%s'", typeName)
		}
		return TypedValue{Type: vectorResult}, true
	case "smoothstep":
		if len(evaluatedArgs) != 2 {
			return argCountError(2)
		}
		if !matchesBaseType(0) || !matchesBaseType(1) {
			return fail("smoothstep() arguments must be of type '%s'", typeName)
		}
		return TypedValue{Type: vectorResult}, true
	case "saturate":
		if !isColorTypeName(typeName) {
			return TypedValue{}, false
		}
		if len(evaluatedArgs) != 0 {
			return argCountError(0)
		}
		return TypedValue{Type: vectorResult}, true
	}

	switch methodName {
	case "abs", "floor", "ceil", "fract", "exp", "log", "exp2", "log2",
		"sqrt", "inversesqrt", "sin", "cos", "tan", "asin", "acos", "atan":
		if len(evaluatedArgs) != 0 {
			return argCountError(0)
		}
		return TypedValue{Type: vectorResult}, true
	}

	return TypedValue{}, false
}
