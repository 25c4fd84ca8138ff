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

package sema_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ereliastudio/lumina/lumina/ast"
	"github.com/ereliastudio/lumina/lumina/diag"
	"github.com/ereliastudio/lumina/lumina/parser"
	"github.com/ereliastudio/lumina/lumina/sema"
	"github.com/ereliastudio/lumina/lumina/tokenizer"
)

// passthrough satisfies the stage checks so feature tests stay focused.
const passthrough = `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass() { pixelPosition = Vector4(position, 1.0f); }
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`

func analyze(t *testing.T, source string) (*sema.Result, *diag.Diagnostics) {
	t.Helper()
	tokens, err := tokenizer.TokenizeString("sema_test.lum", source)
	require.NoError(t, err)
	diags := &diag.Diagnostics{Writer: io.Discard}
	instructions := parser.Parse(tokens, diags)
	require.Zero(t, diags.Count(), "unexpected parse errors: %v", diags.Messages())
	return sema.Analyze(instructions, diags), diags
}

func analyzeOK(t *testing.T, source string) *sema.Result {
	t.Helper()
	result, diags := analyze(t, source)
	require.Zero(t, diags.Count(), "unexpected semantic errors: %v", diags.Messages())
	return result
}

func assertHasError(t *testing.T, diags *diag.Diagnostics, fragment string) {
	t.Helper()
	for _, message := range diags.Messages() {
		if strings.Contains(message, fragment) {
			return
		}
	}
	t.Fatalf("no diagnostic containing %q in %v", fragment, diags.Messages())
}

func TestMinimalPassthrough(t *testing.T) {
	analyzeOK(t, passthrough)
}

func TestEmptyFileMissesBothStages(t *testing.T) {
	_, diags := analyze(t, "")
	assertHasError(t, diags, "Missing VertexPass() stage function")
	assertHasError(t, diags, "Missing FragmentPass() stage function")
}

func TestMissingPixelPosition(t *testing.T) {
	_, diags := analyze(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass() { }
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "Stage 'VertexPass' must set pixelPosition")
}

func TestVaryingMustBeSetBySourceStage(t *testing.T) {
	_, diags := analyze(t, `
Input -> VertexPass : Vector3 position;
VertexPass -> FragmentPass : Vector2 uv;
FragmentPass -> Output : Color pixelColor;
VertexPass() { pixelPosition = Vector4(position, 1.0f); }
FragmentPass() { pixelColor = Color(uv.x, uv.y, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "Stage 'VertexPass' must set uv")
}

func TestMemberWriteMarksRequiredVariable(t *testing.T) {
	analyzeOK(t, `
Input -> VertexPass : Vector3 position;
VertexPass -> FragmentPass : Vector2 uv;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	pixelPosition = Vector4(position, 1.0f);
	uv.x = position.x;
	uv.y = position.y;
}
FragmentPass() { pixelColor = Color(uv.x, uv.y, 0.0f, 1.0f); }
`)
}

func TestDuplicateStageFunction(t *testing.T) {
	_, diags := analyze(t, passthrough+"\nVertexPass() { pixelPosition = Vector4(0.0f, 0.0f, 0.0f, 1.0f); }")
	assertHasError(t, diags, "Duplicate VertexPass() definition")
}

func TestInvalidPipelineFlow(t *testing.T) {
	_, diags := analyze(t, passthrough+"\nInput -> Output : float skip;")
	assertHasError(t, diags, "Invalid pipeline flow Input -> Output")
}

func TestTexturePayloadRejected(t *testing.T) {
	_, diags := analyze(t, passthrough+"\nInput -> VertexPass : Texture bad;")
	assertHasError(t, diags, "Textures cannot travel through the pipeline flow")
}

func TestVoidPayloadRejected(t *testing.T) {
	_, diags := analyze(t, passthrough+"\nInput -> VertexPass : void bad;")
	assertHasError(t, diags, "Pipeline payload type must be a native scalar, vector, matrix, or Color")
}

func TestTextureInStructRejected(t *testing.T) {
	_, diags := analyze(t, passthrough+`
struct Material
{
	Texture albedo;
};`)
	assertHasError(t, diags, "Textures cannot be declared inside struct fields")
}

func TestTextureLocalRejected(t *testing.T) {
	_, diags := analyze(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass() { Texture local; pixelPosition = Vector4(position, 1.0f); }
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "Textures can only be declared at the global scope")
}

func TestUnsizedArrayOutsideDataBlock(t *testing.T) {
	_, diags := analyze(t, passthrough+`
struct Holder
{
	float values[];
};`)
	assertHasError(t, diags, "Unsized arrays are only allowed inside DataBlocks")
}

func TestZeroSizedArrayInBlock(t *testing.T) {
	_, diags := analyze(t, passthrough+`
ConstantBlock Junk
{
	float values[0];
};`)
	assertHasError(t, diags, "Array size must be greater than zero")
}

func TestFieldAfterUnsizedArray(t *testing.T) {
	_, diags := analyze(t, passthrough+`
AttributeBlock Mesh
{
	float weights[];
	float trailing;
};`)
	assertHasError(t, diags, "Fields cannot be declared after an unsized array")
}

func TestRedefineBuiltinType(t *testing.T) {
	_, diags := analyze(t, passthrough+"\nstruct Vector3 { float x; };")
	assertHasError(t, diags, "Cannot redefine builtin type 'Vector3'")
}

func TestDuplicateType(t *testing.T) {
	_, diags := analyze(t, passthrough+"\nstruct S { float x; };\nstruct S { float y; };")
	assertHasError(t, diags, "Type 'S' already defined")
}

func TestUnknownType(t *testing.T) {
	_, diags := analyze(t, passthrough+"\nMystery thing;")
	assertHasError(t, diags, "Unknown type 'Mystery'")
}

func TestOverloadResolutionPicksMatching(t *testing.T) {
	result := analyzeOK(t, `
Vector3 sum(Vector3 a, Vector3 b) { return a + b; }
Vector3 sum(Vector3 a, float b) { return a; }
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	Vector3 s = sum(Vector3(1.0f, 0.0f, 0.0f), Vector3(0.0f, 1.0f, 0.0f));
	pixelPosition = Vector4(s, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	found := false
	for expression, info := range result.ExpressionInfo {
		call, ok := expression.(*ast.Call)
		if !ok {
			continue
		}
		if callee, ok := call.Callee.(*ast.Identifier); ok && callee.Name.String() == "sum" {
			assert.Equal(t, "Vector3", info.TypeName)
			found = true
		}
	}
	assert.True(t, found, "no annotated sum() call")
}

func TestOverloadResolutionFailureListsCandidates(t *testing.T) {
	tokens, err := tokenizer.TokenizeString("sema_test.lum", `
Vector3 sum(Vector3 a, Vector3 b) { return a + b; }
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	Vector3 s = sum(Vector3(1.0f, 0.0f, 0.0f), 1.0f);
	pixelPosition = Vector4(s, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	require.NoError(t, err)
	var output strings.Builder
	diags := &diag.Diagnostics{Writer: &output}
	instructions := parser.Parse(tokens, diags)
	require.Zero(t, diags.Count())
	sema.Analyze(instructions, diags)

	assertHasError(t, diags, "No overload of 'sum' matches provided arguments")
	assert.Contains(t, output.String(), "Expected overloads:")
	assert.Contains(t, output.String(), "(Vector3, Vector3)")
	assert.Contains(t, output.String(), "Provided: (Vector3, float)")
}

func TestOverloadsMustShareReturnType(t *testing.T) {
	_, diags := analyze(t, passthrough+`
float sum(float a, float b) { return a + b; }
Vector3 sum(Vector3 a, Vector3 b) { return a + b; }
`)
	assertHasError(t, diags, "must share the same return type")
}

func TestDuplicateOverload(t *testing.T) {
	_, diags := analyze(t, passthrough+`
float sum(float a, float b) { return a + b; }
float sum(float x, float y) { return x; }
`)
	assertHasError(t, diags, "Duplicate overload of 'sum(float, float)'")
}

const quatSource = `
struct Quat
{
	float x;
	float y;
	float z;
	float w;
	operator*(Quat other) -> Quat { return other; }
};
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
`

func TestUserOperatorAccepted(t *testing.T) {
	analyzeOK(t, quatSource+`
VertexPass()
{
	Quat a;
	Quat b;
	Quat c = a * b;
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
}

func TestUserOperatorWrongArgument(t *testing.T) {
	_, diags := analyze(t, quatSource+`
VertexPass()
{
	Quat a;
	Quat d = a * 1.0f;
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "No overload of 'Quat::operator*' matches provided arguments")
}

func TestOperatorNotDefined(t *testing.T) {
	_, diags := analyze(t, quatSource+`
VertexPass()
{
	Quat a;
	Quat b;
	Quat c = a + b;
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "Operator '+' is not defined for type 'Quat'")
}

func TestAssignmentToRValueRejected(t *testing.T) {
	_, diags := analyze(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass() { (position + position) = position; pixelPosition = Vector4(position, 1.0f); }
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "Assignment target must be an lvalue")
}

func TestAssignmentToConstRejected(t *testing.T) {
	_, diags := analyze(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	const float limit = 1.0f;
	limit = 2.0f;
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "Cannot assign to constant value")
}

func TestTypeMismatchAssignment(t *testing.T) {
	_, diags := analyze(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	float f = 1.0f;
	f = position;
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "Cannot assign type 'Vector3' to target of type 'float'")
}

func TestIntUIntAssignable(t *testing.T) {
	analyzeOK(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	int i = 1;
	uint u = 2u;
	i = u;
	u = i;
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
}

func TestConditionMustBeBoolean(t *testing.T) {
	_, diags := analyze(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	if (1) { }
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "If condition must be boolean")
}

func TestFunctionMustReturnValue(t *testing.T) {
	_, diags := analyze(t, passthrough+"\nfloat broken(float x) { x = x + 1.0f; }")
	assertHasError(t, diags, "Function 'broken' must return a value")
}

func TestReferenceReturnNeedsLValue(t *testing.T) {
	_, diags := analyze(t, passthrough+"\nfloat& pick(float a, float b) { return a + b; }")
	assertHasError(t, diags, "Function 'pick' must return a reference value")
}

func TestScalarVectorPromotion(t *testing.T) {
	analyzeOK(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	Vector3 scaled = position * 2.0f;
	Vector3 also = 2.0f * position;
	pixelPosition = Vector4(scaled + also, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
}

func TestMatrixVectorPromotion(t *testing.T) {
	result := analyzeOK(t, `
ConstantBlock Camera
{
	Matrix4x4 view;
};
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	Vector4 v = Camera.view * Vector4(position, 1.0f);
	pixelPosition = v;
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	require.NotNil(t, result)
}

func TestSwizzles(t *testing.T) {
	result := analyzeOK(t, `
Input -> VertexPass : Vector3 position;
VertexPass -> FragmentPass : Vector2 uv;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	uv = position.xy;
	float depth = position.z;
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(uv.x, uv.y, 0.0f, 1.0f); }
`)
	for expression, info := range result.ExpressionInfo {
		member, ok := expression.(*ast.MemberAccess)
		if !ok {
			continue
		}
		switch member.Member.Content {
		case "xy":
			assert.Equal(t, "Vector2", info.TypeName)
			assert.False(t, info.IsLValue)
		case "z":
			assert.Equal(t, "float", info.TypeName)
			assert.True(t, info.IsLValue)
		}
	}
}

func TestInvalidSwizzleComponent(t *testing.T) {
	_, diags := analyze(t, `
Input -> VertexPass : Vector2 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	float bad = position.z;
	pixelPosition = Vector4(position, 0.0f, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "Type 'Vector2' has no fields")
}

func TestTextureGetPixel(t *testing.T) {
	result := analyzeOK(t, `
Texture diffuse as attribute;
Input -> VertexPass : Vector3 position;
VertexPass -> FragmentPass : Vector2 uv;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	uv = position.xy;
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = diffuse.getPixel(uv); }
`)
	found := false
	for expression, info := range result.ExpressionInfo {
		if call, ok := expression.(*ast.Call); ok {
			if member, ok := call.Callee.(*ast.MemberAccess); ok && member.Member.Content == "getPixel" {
				assert.Equal(t, "Color", info.TypeName)
				found = true
			}
		}
	}
	assert.True(t, found, "no annotated getPixel call")
}

func TestBuiltinFreeFunctions(t *testing.T) {
	analyzeOK(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	Vector3 n = normalize(position);
	float d = dot(n, position);
	Vector3 c = cross(n, position);
	float m = max(d, 1.0f);
	pixelPosition = Vector4(c * m, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
}

func TestCrossRequiresVector3(t *testing.T) {
	_, diags := analyze(t, `
Input -> VertexPass : Vector2 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	Vector2 c = cross(position, position);
	pixelPosition = Vector4(position, 0.0f, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "cross() is only defined for 'Vector3'")
}

func TestBuiltinVectorMethods(t *testing.T) {
	analyzeOK(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	float len = position.length();
	Vector3 n = position.normalize();
	float d = n.dot(position);
	pixelPosition = Vector4(n * len * d, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f).saturate(); }
`)
}

func TestNamespaces(t *testing.T) {
	analyzeOK(t, `
namespace math
{
	float half(float v) { return v / 2.0f; }
}
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	float h = math::half(position.x);
	pixelPosition = Vector4(position * h, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
}

func TestPipelineInsideNamespaceRejected(t *testing.T) {
	_, diags := analyze(t, passthrough+`
namespace nested
{
	Input -> VertexPass : float depth;
}`)
	assertHasError(t, diags, "Pipeline declarations must be placed at the global scope")
}

func TestNoDefaultConstructor(t *testing.T) {
	_, diags := analyze(t, `
struct Explicit
{
	float value;
	Explicit(float v) { value = v; }
};
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	Explicit e;
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "No default constructor available for type 'Explicit'")
}

func TestConstMethodReceiver(t *testing.T) {
	_, diags := analyze(t, `
struct Counter
{
	float value;
	float get() const { return value; }
	float bump() { value = value + 1.0f; return value; }
};
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	const Counter c = Counter();
	float ok = c.get();
	float bad = c.bump();
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "No overload of 'bump' matches provided arguments")
}

func TestUnsizedArraySizeMember(t *testing.T) {
	result := analyzeOK(t, `
AttributeBlock Mesh
{
	float weights[];
};
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	uint count = Mesh.weights.size;
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	found := false
	for expression, info := range result.ExpressionInfo {
		if member, ok := expression.(*ast.MemberAccess); ok && member.Member.Content == "size" {
			assert.Equal(t, "uint", info.TypeName)
			found = true
		}
	}
	assert.True(t, found, "no annotated .size access")
}

func TestArrayLiteralTyping(t *testing.T) {
	result := analyzeOK(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	float values[3] = {1.0f, 2.0f, 3.0f};
	float second = values[1];
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	found := false
	for expression, info := range result.ExpressionInfo {
		if _, ok := expression.(*ast.ArrayLiteral); ok {
			assert.True(t, info.IsArray)
			assert.True(t, info.ArraySizeKnown)
			assert.Equal(t, 3, info.ArraySize)
			found = true
		}
	}
	assert.True(t, found, "no annotated array literal")
}

func TestMixedArrayLiteralRejected(t *testing.T) {
	_, diags := analyze(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	float values[2] = {1.0f, 2};
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`)
	assertHasError(t, diags, "Array literal elements must share the same type")
}

func TestLValueAnnotationsAreConsistent(t *testing.T) {
	result := analyzeOK(t, passthrough)
	for expression, info := range result.ExpressionInfo {
		if identifier, ok := expression.(*ast.Identifier); ok {
			// Plain identifiers resolve as lvalues.
			assert.True(t, info.IsLValue, "identifier %s", identifier.Name)
		}
		if _, ok := expression.(*ast.Call); ok {
			assert.False(t, info.IsLValue)
		}
	}
}
