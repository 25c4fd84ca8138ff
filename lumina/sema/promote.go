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

import "github.com/ereliastudio/lumina/lumina/ast"

// resolveBuiltinBinaryType consults the builtin promotion rules when the
// two operand types differ: scalar×vector, matrix algebra, elementwise
// vectors, and the mixed int/uint modulo.
func resolveBuiltinBinaryType(left, right TypeInfo, op ast.BinaryOperator) (TypeInfo, bool) {
	makeResult := func(prototype TypeInfo) (TypeInfo, bool) {
		prototype.IsReference = false
		prototype.IsConst = false
		return prototype, true
	}

	leftScalar := isScalarTypeName(left.Name)
	rightScalar := isScalarTypeName(right.Name)
	leftVectorDim := vectorDimension(left.Name)
	rightVectorDim := vectorDimension(right.Name)
	leftCols, leftRows, leftMatrix := parseMatrixTypeName(left.Name)
	rightCols, rightRows, rightMatrix := parseMatrixTypeName(right.Name)

	switch op {
	case ast.BinaryAdd, ast.BinarySubtract:
		if leftVectorDim > 0 && leftVectorDim == rightVectorDim {
			return makeResult(left)
		}
		if leftMatrix && rightMatrix && leftCols == rightCols && leftRows == rightRows {
			return makeResult(left)
		}
		if leftScalar && rightScalar {
			return makeResult(left)
		}
	case ast.BinaryMultiply:
		if leftScalar && (rightVectorDim > 0 || rightMatrix || rightScalar) {
			return makeResult(right)
		}
		if rightScalar && (leftVectorDim > 0 || leftMatrix || leftScalar) {
			return makeResult(left)
		}
		if leftVectorDim > 0 && rightVectorDim > 0 && leftVectorDim == rightVectorDim {
			return makeResult(left)
		}
		if leftMatrix && rightVectorDim > 0 && leftCols == rightVectorDim {
			return makeResult(right)
		}
		if rightMatrix && leftVectorDim > 0 && rightRows == leftVectorDim {
			return makeResult(left)
		}
		if leftMatrix && rightMatrix && leftCols == rightRows {
			return makeResult(left)
		}
	case ast.BinaryDivide:
		if leftVectorDim > 0 && rightScalar {
			return makeResult(left)
		}
		if leftScalar && rightScalar {
			return makeResult(left)
		}
		if leftScalar && rightVectorDim > 0 {
			return makeResult(right)
		}
	case ast.BinaryModulo:
		leftInt := left.Name == "int"
		rightInt := right.Name == "int"
		leftUInt := left.Name == "uint"
		rightUInt := right.Name == "uint"
		if leftScalar && rightScalar && (leftInt || leftUInt) && (rightInt || rightUInt) {
			if leftUInt || rightUInt {
				return makeResult(TypeInfo{Name: "uint"})
			}
			return makeResult(left)
		}
	case ast.BinaryLess, ast.BinaryLessEqual, ast.BinaryGreater, ast.BinaryGreaterEqual,
		ast.BinaryEqual, ast.BinaryNotEqual:
		if leftScalar && rightScalar {
			return makeResult(left)
		}
	}
	return TypeInfo{}, false
}
