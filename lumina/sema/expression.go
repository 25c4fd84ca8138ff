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
	"strings"

	"github.com/ereliastudio/lumina/lumina/ast"
	"github.com/ereliastudio/lumina/lumina/token"
)

// recordExpression stores the annotation for one typed expression node.
func (a *analyzer) recordExpression(e ast.Expression, value TypedValue) {
	if !value.Type.Valid() {
		return
	}
	base := stripReference(value.Type)
	a.expressionInfo[e] = ExpressionInfo{
		TypeName:       base.Name,
		IsConst:        base.IsConst,
		IsReference:    value.Type.IsReference,
		IsArray:        base.IsArray,
		HasArraySize:   base.HasArraySize,
		ArraySize:      base.ArraySize,
		ArraySizeKnown: base.ArraySizeKnown,
		IsLValue:       value.IsLValue,
	}
}

// evaluateExpression types an expression, records the annotation and
// returns the result. isCallee suppresses the undefined-identifier error
// for names that may still resolve as functions.
func (a *analyzer) evaluateExpression(e ast.Expression, ctx *functionContext, isCallee bool) TypedValue {
	var value TypedValue
	switch n := e.(type) {
	case *ast.Literal:
		value = evaluateLiteral(n)
	case *ast.ArrayLiteral:
		value = a.evaluateArrayLiteral(n, ctx)
	case *ast.Identifier:
		value = a.evaluateIdentifier(n, ctx, isCallee)
	case *ast.Unary:
		value = a.evaluateUnary(n, ctx)
	case *ast.Binary:
		value = a.evaluateBinary(n, ctx)
	case *ast.Assignment:
		value = a.evaluateAssignment(n, ctx)
	case *ast.Conditional:
		value = a.evaluateConditional(n, ctx)
	case *ast.Call:
		value = a.evaluateCall(n, ctx)
	case *ast.MemberAccess:
		value = a.evaluateMember(n, ctx)
	case *ast.IndexAccess:
		value = a.evaluateIndex(n, ctx)
	case *ast.Postfix:
		value = a.evaluatePostfix(n, ctx)
	}
	a.recordExpression(e, value)
	return value
}

func evaluateLiteral(literal *ast.Literal) TypedValue {
	text := literal.Value.Content
	if len(text) > 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		return TypedValue{Type: TypeInfo{Name: "int"}}
	}
	if text == "true" || text == "false" {
		return TypedValue{Type: TypeInfo{Name: "bool"}}
	}
	if strings.Contains(text, `"`) {
		return TypedValue{Type: TypeInfo{Name: "string"}}
	}
	hasFloatMarker := strings.ContainsAny(text, ".eE")
	if hasFloatMarker || (text != "" && (text[len(text)-1] == 'f' || text[len(text)-1] == 'F')) {
		return TypedValue{Type: TypeInfo{Name: "float"}}
	}
	return TypedValue{Type: TypeInfo{Name: "int"}}
}

func (a *analyzer) evaluateArrayLiteral(literal *ast.ArrayLiteral, ctx *functionContext) TypedValue {
	if len(literal.Elements) == 0 {
		a.errorf(literal.LeftBrace, "Array literal must have at least one element")
		return TypedValue{}
	}

	elements := make([]TypedValue, 0, len(literal.Elements))
	for _, element := range literal.Elements {
		elements = append(elements, a.evaluateExpression(element, ctx, false))
	}

	common := stripReference(elements[0].Type)
	common.IsConst = false
	if !common.Valid() {
		return TypedValue{}
	}
	if common.IsArray {
		a.errorf(literal.LeftBrace, "Array literal elements cannot be arrays")
		return TypedValue{}
	}

	for i, element := range elements {
		current := stripReference(element.Type)
		current.IsConst = false
		if !current.Valid() {
			return TypedValue{}
		}
		at := expressionToken(literal.Elements[i], literal.LeftBrace)
		if current.IsArray {
			a.errorf(at, "Array literal elements cannot be arrays")
			return TypedValue{}
		}
		if !typeEquals(common, current) {
			a.errorf(at, "Array literal elements must share the same type")
			return TypedValue{}
		}
	}

	result := common
	result.IsArray = true
	result.HasArraySize = true
	result.ArraySize = len(elements)
	result.ArraySizeKnown = true
	return TypedValue{Type: result}
}

func (a *analyzer) evaluateIdentifier(identifier *ast.Identifier, ctx *functionContext, isCallee bool) TypedValue {
	if len(identifier.Name.Parts) == 0 {
		return TypedValue{}
	}

	if len(identifier.Name.Parts) == 1 && identifier.Name.Parts[0].Content == "this" {
		if ctx.aggregate == nil {
			a.errorf(identifier.Name.Parts[0], "'this' can only be used inside aggregate methods")
			return TypedValue{}
		}
		return TypedValue{
			Type: TypeInfo{
				Name:        ctx.aggregate.QualifiedName,
				IsReference: true,
				IsConst:     ctx.methodConst && !ctx.inConstructor,
			},
			IsLValue: true,
		}
	}

	if symbol, ok := a.lookupSymbol(ctx, identifier.Name); ok {
		return TypedValue{Type: symbol.Type, IsLValue: true}
	}

	if !isCallee {
		a.errorf(identifier.Name.Parts[0], "Identifier '%s' is not declared", identifier.Name)
	}
	return TypedValue{}
}

func (a *analyzer) evaluateUnary(unary *ast.Unary, ctx *functionContext) TypedValue {
	operand := a.evaluateExpression(unary.Operand, ctx, false)
	if !operand.Type.Valid() {
		return operand
	}
	operandToken := expressionToken(unary.Operand, ctx.ownerToken)
	base := stripReference(operand.Type)
	switch unary.Operator {
	case ast.UnaryPositive, ast.UnaryNegate, ast.UnaryPreIncrement, ast.UnaryPreDecrement:
		if !isNumericType(base.Name) {
			a.errorf(operandToken, "Unary numeric operator is not defined for type '%s'", operand.Type)
		}
	case ast.UnaryLogicalNot:
		if !isBooleanType(base.Name) {
			a.errorf(operandToken, "Logical not requires a boolean operand")
		}
		operand.Type = TypeInfo{Name: "bool"}
	case ast.UnaryBitwiseNot:
		if !isNumericType(base.Name) {
			a.errorf(operandToken, "Bitwise not requires a numeric operand")
		}
	}
	operand.IsLValue = false
	return operand
}

// tryResolveUserOperator looks up «operator<sym>» on the left operand's
// aggregate. reportedError is set when the lookup itself diagnosed, so
// the caller must not continue with builtin rules.
func (a *analyzer) tryResolveUserOperator(symbol string, left, right TypedValue, at token.Token) (TypedValue, bool, bool) {
	if !left.Type.Valid() || !right.Type.Valid() || symbol == "" {
		return TypedValue{}, false, false
	}

	leftType := stripReference(left.Type)
	info, ok := a.aggregates[leftType.Name]
	if !ok {
		return TypedValue{}, false, false
	}

	overloads, ok := info.Operators["operator"+symbol]
	if !ok {
		a.errorf(at, "Operator '%s' is not defined for type '%s'", symbol, info.QualifiedName)
		return TypedValue{}, false, true
	}

	objectConst := leftType.IsConst
	for _, signature := range overloads {
		if objectConst && !signature.IsConstMethod {
			continue
		}
		if len(signature.Parameters) != 1 {
			continue
		}
		parameter := signature.Parameters[0]
		if parameter.IsReference && !right.IsLValue {
			continue
		}
		if !typeEquals(stripReference(parameter), stripReference(right.Type)) {
			continue
		}
		return TypedValue{Type: signature.ReturnType, IsLValue: signature.ReturnsReference}, true, false
	}

	a.errorf(at, "No overload of '%s::operator%s' matches provided arguments", info.QualifiedName, symbol)
	return TypedValue{}, false, true
}

func (a *analyzer) evaluateBinary(binary *ast.Binary, ctx *functionContext) TypedValue {
	left := a.evaluateExpression(binary.Left, ctx, false)
	right := a.evaluateExpression(binary.Right, ctx, false)
	if !left.Type.Valid() || !right.Type.Valid() {
		return TypedValue{}
	}

	binaryToken := tokenOrFallback(binary.OperatorToken, expressionToken(binary.Left, ctx.ownerToken))

	if result, ok, reported := a.tryResolveUserOperator(binary.Operator.String(), left, right, binaryToken); ok {
		return result
	} else if reported {
		return TypedValue{}
	}

	leftBase := stripReference(left.Type)
	rightBase := stripReference(right.Type)
	leftBase.IsConst = false
	rightBase.IsConst = false

	resolvedType := leftBase
	if !typeEquals(leftBase, rightBase) {
		if builtin, ok := resolveBuiltinBinaryType(leftBase, rightBase, binary.Operator); ok {
			resolvedType = builtin
		} else {
			a.errorf(binaryToken, "Binary operands must share the same type")
		}
	}

	result := TypedValue{Type: resolvedType}

	switch binary.Operator {
	case ast.BinaryAdd, ast.BinarySubtract, ast.BinaryMultiply, ast.BinaryDivide, ast.BinaryModulo:
		if !isArithmeticTypeName(leftBase.Name) || !isArithmeticTypeName(rightBase.Name) {
			a.errorf(binaryToken, "Arithmetic operators require homogenous operands")
		}
	case ast.BinaryLess, ast.BinaryLessEqual, ast.BinaryGreater, ast.BinaryGreaterEqual:
		if !isNumericType(leftBase.Name) {
			a.errorf(binaryToken, "Comparison operators require numeric operands")
		}
		result.Type = TypeInfo{Name: "bool"}
	case ast.BinaryEqual, ast.BinaryNotEqual:
		result.Type = TypeInfo{Name: "bool"}
	case ast.BinaryLogicalAnd, ast.BinaryLogicalOr:
		if !isBooleanType(leftBase.Name) {
			a.errorf(binaryToken, "Logical operators require boolean operands")
		}
		result.Type = TypeInfo{Name: "bool"}
	case ast.BinaryBitwiseAnd, ast.BinaryBitwiseOr, ast.BinaryBitwiseXor:
		if !isNumericType(leftBase.Name) {
			a.errorf(binaryToken, "Bitwise operators require numeric operands")
		}
	case ast.BinaryShiftLeft, ast.BinaryShiftRight:
		if !isIntLikeTypeName(leftBase.Name) && !isUIntLikeTypeName(leftBase.Name) {
			a.errorf(binaryToken, "Shift operators require integer operands")
		}
		if !isIntLikeTypeName(rightBase.Name) && !isUIntLikeTypeName(rightBase.Name) {
			a.errorf(binaryToken, "Shift operators require integer operands")
		}
	}
	return result
}

func (a *analyzer) evaluateAssignment(assignment *ast.Assignment, ctx *functionContext) TypedValue {
	target := a.evaluateExpression(assignment.Target, ctx, false)
	targetToken := expressionToken(assignment.Target, ctx.ownerToken)
	operatorToken := tokenOrFallback(assignment.OperatorToken, targetToken)
	if !target.Type.Valid() {
		return TypedValue{}
	}
	if !target.IsLValue {
		a.errorf(targetToken, "Assignment target must be an lvalue")
	}
	if target.Type.IsConst {
		a.errorf(targetToken, "Cannot assign to constant value")
	}
	value := a.evaluateExpression(assignment.Value, ctx, false)
	if !value.Type.Valid() {
		return TypedValue{}
	}

	handledByUserOperator := false
	var userOperatorResult TypedValue
	typeMismatch := false
	if assignment.Operator != ast.Assign {
		if result, ok, reported := a.tryResolveUserCompoundOperator(assignment.Operator, target, value, operatorToken); ok {
			handledByUserOperator = true
			userOperatorResult = result
		} else if reported {
			return TypedValue{}
		}
	}

	if !handledByUserOperator && !typeAssignable(stripReference(target.Type), stripReference(value.Type)) {
		a.errorf(operatorToken, "Cannot assign type '%s' to target of type '%s'", value.Type, target.Type)
		typeMismatch = true
	}
	if !handledByUserOperator && !typeMismatch && assignment.Operator != ast.Assign {
		if !isArithmeticTypeName(stripReference(target.Type).Name) {
			a.errorf(operatorToken, "Compound assignments require arithmetic operands")
		}
	}
	if !typeMismatch && assignment.Target != nil {
		markStageBuiltinAssignment(ctx, assignment.Target)
	}

	result := target
	if handledByUserOperator {
		result = userOperatorResult
	}
	result.IsLValue = false
	return result
}

// tryResolveUserCompoundOperator mirrors tryResolveUserOperator for the
// «operator@=» family.
func (a *analyzer) tryResolveUserCompoundOperator(op ast.AssignmentOperator, target, value TypedValue, at token.Token) (TypedValue, bool, bool) {
	if !target.Type.Valid() || !value.Type.Valid() || op == ast.Assign {
		return TypedValue{}, false, false
	}
	return a.tryResolveUserOperator(op.String(), target, value, at)
}

func (a *analyzer) evaluateConditional(conditional *ast.Conditional, ctx *functionContext) TypedValue {
	condition := a.evaluateExpression(conditional.Condition, ctx, false)
	if !condition.Type.Valid() {
		return TypedValue{}
	}
	if !isBooleanType(stripReference(condition.Type).Name) {
		a.errorf(ctx.ownerToken, "Conditional expression requires a boolean condition")
	}
	thenValue := a.evaluateExpression(conditional.Then, ctx, false)
	elseValue := a.evaluateExpression(conditional.Else, ctx, false)
	if !thenValue.Type.Valid() || !elseValue.Type.Valid() {
		return TypedValue{}
	}
	thenBase := stripReference(thenValue.Type)
	elseBase := stripReference(elseValue.Type)
	thenBase.IsConst = false
	elseBase.IsConst = false
	if !typeAssignable(thenBase, elseBase) {
		a.errorf(ctx.ownerToken, "Conditional branches must produce the same type")
	}
	result := thenValue
	result.IsLValue = false
	return result
}

func (a *analyzer) evaluateIndex(index *ast.IndexAccess, ctx *functionContext) TypedValue {
	object := a.evaluateExpression(index.Object, ctx, false)
	if !object.Type.IsArray {
		a.errorf(ctx.ownerToken, "Index operator is only valid on arrays")
	}
	a.evaluateExpression(index.Index, ctx, false)
	object.Type.IsArray = false
	object.Type.HasArraySize = false
	object.Type.ArraySize = 0
	object.Type.ArraySizeKnown = false
	object.IsLValue = true
	return object
}

func (a *analyzer) evaluatePostfix(postfix *ast.Postfix, ctx *functionContext) TypedValue {
	operand := a.evaluateExpression(postfix.Operand, ctx, false)
	if !operand.IsLValue {
		a.errorf(ctx.ownerToken, "Postfix operator requires an lvalue")
	}
	if !isNumericType(stripReference(operand.Type).Name) {
		a.errorf(ctx.ownerToken, "Postfix operators require numeric operands")
	}
	return operand
}

func (a *analyzer) evaluateMember(member *ast.MemberAccess, ctx *functionContext) TypedValue {
	object := a.evaluateExpression(member.Object, ctx, false)
	if !object.Type.Valid() {
		return TypedValue{}
	}
	objectType := stripReference(object.Type)

	if objectType.IsArray && member.Member.Content == "size" {
		if objectType.HasArraySize {
			a.errorf(member.Member, "Array size is only available on unsized arrays")
			return TypedValue{}
		}
		value := TypedValue{Type: TypeInfo{Name: "uint"}}
		if objectType.IsConst {
			value.Type.IsConst = true
		}
		return value
	}

	if info, ok := a.aggregates[objectType.Name]; ok {
		field, ok := info.field(member.Member.Content)
		if !ok {
			a.errorf(member.Member, "Identifier '%s' is not declared in this scope", member.Member.Content)
			return TypedValue{}
		}
		value := TypedValue{Type: field.Type, IsLValue: true}
		if objectType.IsConst {
			value.Type.IsConst = true
		}
		return value
	}

	builtinField, ok := resolveBuiltinFieldType(objectType.Name, member.Member.Content)
	if !ok {
		a.errorf(member.Member, "Type '%s' has no fields", objectType.Name)
		return TypedValue{}
	}
	value := TypedValue{Type: builtinField}
	if objectType.IsConst {
		value.Type.IsConst = true
	}
	value.IsLValue = len(member.Member.Content) == 1
	return value
}
