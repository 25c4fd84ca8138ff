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
	"fmt"
	"strconv"
	"strings"
)

// TypeInfo is the resolved type of a declaration or expression.
type TypeInfo struct {
	Name           string
	IsConst        bool
	IsReference    bool
	IsArray        bool
	HasArraySize   bool
	ArraySize      int
	ArraySizeKnown bool
}

// Valid reports whether the type resolved at all; invalid types silence
// follow-on diagnostics.
func (t TypeInfo) Valid() bool { return t.Name != "" }

// String renders the type as it appears in diagnostics:
// «const Name[size]&».
func (t TypeInfo) String() string {
	var out strings.Builder
	if t.IsConst {
		out.WriteString("const ")
	}
	out.WriteString(t.Name)
	if t.IsArray {
		out.WriteByte('[')
		if t.ArraySizeKnown {
			out.WriteString(strconv.Itoa(t.ArraySize))
		}
		out.WriteByte(']')
	}
	if t.IsReference {
		out.WriteByte('&')
	}
	return out.String()
}

// TypedValue is the result of typing an expression.
type TypedValue struct {
	Type     TypeInfo
	IsLValue bool
}

func typeEquals(lhs, rhs TypeInfo) bool {
	return lhs.Name == rhs.Name && lhs.IsConst == rhs.IsConst && lhs.IsReference == rhs.IsReference &&
		lhs.IsArray == rhs.IsArray && lhs.HasArraySize == rhs.HasArraySize &&
		lhs.ArraySizeKnown == rhs.ArraySizeKnown && lhs.ArraySize == rhs.ArraySize
}

// typeAssignable reports whether src can be assigned to dest. The only
// implicit conversion is int↔uint between same-dimension types.
func typeAssignable(dest, src TypeInfo) bool {
	dest.IsConst = false
	src.IsConst = false
	if typeEquals(dest, src) {
		return true
	}
	if dest.IsReference != src.IsReference || dest.IsArray != src.IsArray ||
		dest.HasArraySize != src.HasArraySize ||
		dest.ArraySizeKnown != src.ArraySizeKnown || dest.ArraySize != src.ArraySize {
		return false
	}
	destIntLike := isIntLikeTypeName(dest.Name)
	destUIntLike := isUIntLikeTypeName(dest.Name)
	srcIntLike := isIntLikeTypeName(src.Name)
	srcUIntLike := isUIntLikeTypeName(src.Name)
	if (destIntLike && srcUIntLike) || (destUIntLike && srcIntLike) {
		return vectorDimension(dest.Name) == vectorDimension(src.Name)
	}
	return false
}

func stripReference(t TypeInfo) TypeInfo {
	t.IsReference = false
	return t
}

func isVoidType(t TypeInfo) bool {
	return t.Name == "void" && !t.IsReference && !t.IsArray
}

func isScalarTypeName(name string) bool {
	return name == "float" || name == "int" || name == "uint"
}

// vectorDimension returns the component count of a vector or Color type
// name, or 0 for anything else. Scalars are dimension 0 here; callers
// that need int↔uint assignability treat 0 == 0 as a match.
func vectorDimension(name string) int {
	if name == "Color" {
		return 4
	}
	if !strings.HasPrefix(name, "Vector") || len(name) < 7 {
		return 0
	}
	digit := name[6]
	if digit < '0' || digit > '9' {
		return 0
	}
	return int(digit - '0')
}

// parseMatrixTypeName decodes «MatrixCxR» into its dimensions.
func parseMatrixTypeName(name string) (columns, rows int, ok bool) {
	if !strings.HasPrefix(name, "Matrix") {
		return 0, 0, false
	}
	rest := name[6:]
	xPos := strings.IndexByte(rest, 'x')
	if xPos <= 0 || xPos+1 >= len(rest) {
		return 0, 0, false
	}
	columns, err := strconv.Atoi(rest[:xPos])
	if err != nil {
		return 0, 0, false
	}
	rows, err = strconv.Atoi(rest[xPos+1:])
	if err != nil {
		return 0, 0, false
	}
	if columns <= 0 || rows <= 0 {
		return 0, 0, false
	}
	return columns, rows, true
}

func isMatrixTypeName(name string) bool {
	_, _, ok := parseMatrixTypeName(name)
	return ok
}

func isFloatTypeName(name string) bool {
	return name == "float"
}

func isFloatVectorTypeName(name string) bool {
	return name == "Vector2" || name == "Vector3" || name == "Vector4"
}

func isColorTypeName(name string) bool {
	return name == "Color"
}

func isFloatVectorOrColorTypeName(name string) bool {
	return isFloatVectorTypeName(name) || isColorTypeName(name)
}

func isIntVectorTypeName(name string) bool {
	return name == "Vector2Int" || name == "Vector3Int" || name == "Vector4Int"
}

func isUIntVectorTypeName(name string) bool {
	return name == "Vector2UInt" || name == "Vector3UInt" || name == "Vector4UInt"
}

func isFloatLikeTypeName(name string) bool {
	return isFloatTypeName(name) || isFloatVectorOrColorTypeName(name)
}

func isIntLikeTypeName(name string) bool {
	return name == "int" || isIntVectorTypeName(name)
}

func isUIntLikeTypeName(name string) bool {
	return name == "uint" || isUIntVectorTypeName(name)
}

func isArithmeticTypeName(name string) bool {
	return isScalarTypeName(name) || vectorDimension(name) != 0 || isMatrixTypeName(name) || name == "Color"
}

// builtinTypes is the closed set of type names available without
// declaration.
var builtinTypes = map[string]bool{
	"void": true, "bool": true, "int": true, "uint": true, "float": true,
	"Color": true, "Texture": true,
	"Vector2": true, "Vector2Int": true, "Vector2UInt": true,
	"Vector3": true, "Vector3Int": true, "Vector3UInt": true,
	"Vector4": true, "Vector4Int": true, "Vector4UInt": true,
	"Matrix2x2": true, "Matrix3x3": true, "Matrix4x4": true,
}

// numericTypes accept the arithmetic unary operators and bitwise forms.
var numericTypes = map[string]bool{
	"int": true, "uint": true, "float": true,
	"Vector2": true, "Vector2Int": true, "Vector2UInt": true,
	"Vector3": true, "Vector3Int": true, "Vector3UInt": true,
	"Vector4": true, "Vector4Int": true, "Vector4UInt": true,
}

// pipelineAllowedTypes may travel between stages.
var pipelineAllowedTypes = map[string]bool{
	"bool": true, "int": true, "uint": true, "float": true, "Color": true,
	"Vector2": true, "Vector2Int": true, "Vector2UInt": true,
	"Vector3": true, "Vector3Int": true, "Vector3UInt": true,
	"Vector4": true, "Vector4Int": true, "Vector4UInt": true,
	"Matrix2x2": true, "Matrix3x3": true, "Matrix4x4": true,
}

func isBuiltinType(name string) bool         { return builtinTypes[name] }
func isNumericType(name string) bool         { return numericTypes[name] }
func isBooleanType(name string) bool         { return name == "bool" }
func isAllowedPipelineType(name string) bool { return pipelineAllowedTypes[name] }

// swizzleDescriptor describes the component access rules of a builtin
// vector-like type.
type swizzleDescriptor struct {
	scalarType        string
	dimension         int
	vectorPrefix      string
	vectorSuffix      string
	customResultTypes map[int]string
}

var builtinSwizzleTypes = map[string]swizzleDescriptor{
	"Vector2":     {scalarType: "float", dimension: 2, vectorPrefix: "Vector"},
	"Vector3":     {scalarType: "float", dimension: 3, vectorPrefix: "Vector"},
	"Vector4":     {scalarType: "float", dimension: 4, vectorPrefix: "Vector"},
	"Vector2Int":  {scalarType: "int", dimension: 2, vectorPrefix: "Vector", vectorSuffix: "Int"},
	"Vector3Int":  {scalarType: "int", dimension: 3, vectorPrefix: "Vector", vectorSuffix: "Int"},
	"Vector4Int":  {scalarType: "int", dimension: 4, vectorPrefix: "Vector", vectorSuffix: "Int"},
	"Vector2UInt": {scalarType: "uint", dimension: 2, vectorPrefix: "Vector", vectorSuffix: "UInt"},
	"Vector3UInt": {scalarType: "uint", dimension: 3, vectorPrefix: "Vector", vectorSuffix: "UInt"},
	"Vector4UInt": {scalarType: "uint", dimension: 4, vectorPrefix: "Vector", vectorSuffix: "UInt"},
	"Color":       {scalarType: "float", dimension: 4, vectorPrefix: "Vector", customResultTypes: map[int]string{4: "Color"}},
}

// componentIndex maps a swizzle letter to its component slot.
func componentIndex(component byte) int {
	switch component {
	case 'x', 'r':
		return 0
	case 'y', 'g':
		return 1
	case 'z', 'b':
		return 2
	case 'w', 'a':
		return 3
	}
	return -1
}

// resolveBuiltinFieldType resolves «v.xyz» style accesses. Single
// components yield the scalar type; longer swizzles yield the vector of
// that length.
func resolveBuiltinFieldType(typeName, fieldName string) (TypeInfo, bool) {
	descriptor, ok := builtinSwizzleTypes[typeName]
	if !ok || fieldName == "" || len(fieldName) > 4 {
		return TypeInfo{}, false
	}
	for i := 0; i < len(fieldName); i++ {
		index := componentIndex(fieldName[i])
		if index < 0 || index >= descriptor.dimension {
			return TypeInfo{}, false
		}
	}
	if len(fieldName) == 1 {
		return TypeInfo{Name: descriptor.scalarType}, true
	}
	if custom, ok := descriptor.customResultTypes[len(fieldName)]; ok {
		return TypeInfo{Name: custom}, true
	}
	return TypeInfo{Name: fmt.Sprintf("%s%d%s", descriptor.vectorPrefix, len(fieldName), descriptor.vectorSuffix)}, true
}
