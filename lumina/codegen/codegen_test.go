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

package codegen_test

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ereliastudio/lumina/lumina/codegen"
	"github.com/ereliastudio/lumina/lumina/diag"
	"github.com/ereliastudio/lumina/lumina/parser"
	"github.com/ereliastudio/lumina/lumina/sema"
	"github.com/ereliastudio/lumina/lumina/tokenizer"
)

const passthrough = `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass() { pixelPosition = Vector4(position, 1.0f); }
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }
`

func compile(t *testing.T, source string) codegen.Output {
	t.Helper()
	tokens, err := tokenizer.TokenizeString("codegen_test.lum", source)
	require.NoError(t, err)
	diags := &diag.Diagnostics{Writer: io.Discard}
	instructions := parser.Parse(tokens, diags)
	require.Zero(t, diags.Count(), "parse errors: %v", diags.Messages())
	result := sema.Analyze(instructions, diags)
	require.Zero(t, diags.Count(), "semantic errors: %v", diags.Messages())
	return codegen.Generate(result)
}

// manifest decodes the emitted JSON for structural checks.
func manifest(t *testing.T, output codegen.Output) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output.JSON), &decoded))
	return decoded
}

func entries(t *testing.T, m map[string]interface{}, key string) []map[string]interface{} {
	t.Helper()
	raw, ok := m[key].([]interface{})
	require.True(t, ok, "missing array %q", key)
	out := make([]map[string]interface{}, len(raw))
	for i, entry := range raw {
		out[i] = entry.(map[string]interface{})
	}
	return out
}

func TestMinimalPassthrough(t *testing.T) {
	output := compile(t, passthrough)
	m := manifest(t, output)

	layouts := entries(t, m, "layouts")
	require.Len(t, layouts, 1)
	assert.Equal(t, float64(0), layouts[0]["location"])
	assert.Equal(t, "Vector3", layouts[0]["type"])
	assert.Equal(t, "position", layouts[0]["name"])

	framebuffers := entries(t, m, "framebuffers")
	require.Len(t, framebuffers, 1)
	assert.Equal(t, float64(0), framebuffers[0]["location"])
	assert.Equal(t, "Color", framebuffers[0]["type"])
	assert.Equal(t, "pixelColor", framebuffers[0]["name"])

	assert.Empty(t, entries(t, m, "textures"))
	assert.Empty(t, entries(t, m, "constants"))
	assert.Empty(t, entries(t, m, "attributes"))

	shader := m["shader"].(map[string]interface{})
	sources := shader["sources"].(map[string]interface{})
	vertex := sources["vertex"].(string)
	fragment := sources["fragment"].(string)
	assert.Contains(t, vertex, "#version 450 core")
	assert.Contains(t, vertex, "gl_Position")
	assert.Contains(t, vertex, "layout(location = 0) in vec3 position;")
	assert.Contains(t, fragment, "layout(location = 0) out vec4 pixelColor;")
	assert.Equal(t, output.VertexSource, vertex)
	assert.Equal(t, output.FragmentSource, fragment)
}

func TestTriangleIndexVaryingOccupiesLocationZero(t *testing.T) {
	output := compile(t, `
Input -> VertexPass : Vector3 position;
VertexPass -> FragmentPass : Vector2 uv;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	uv = position.xy;
	pixelPosition = Vector4(position, 1.0f);
}
FragmentPass() { pixelColor = Color(uv.x, uv.y, 0.0f, 1.0f); }
`)
	assert.Contains(t, output.VertexSource, "layout(location = 0) flat out uint triangleIndex;")
	assert.Contains(t, output.VertexSource, "layout(location = 1) out vec2 uv;")
	assert.Contains(t, output.FragmentSource, "layout(location = 0) flat in uint triangleIndex;")
	assert.Contains(t, output.FragmentSource, "layout(location = 1) in vec2 uv;")
}

func TestCameraUBOLayout(t *testing.T) {
	output := compile(t, passthrough+`
ConstantBlock Camera
{
	Matrix4x4 view;
	Matrix4x4 proj;
	Vector3 eye;
	float pad;
};`)
	m := manifest(t, output)
	constants := entries(t, m, "constants")
	require.Len(t, constants, 1)

	camera := constants[0]
	assert.Equal(t, "Camera", camera["name"])
	assert.Equal(t, "UBO", camera["type"])
	assert.Equal(t, float64(144), camera["size"])

	members := camera["members"].([]interface{})
	require.Len(t, members, 4)
	expect := []struct {
		name   string
		offset float64
		size   float64
	}{
		{"view", 0, 64},
		{"proj", 64, 64},
		{"eye", 128, 12},
		{"pad", 140, 4},
	}
	for i, want := range expect {
		member := members[i].(map[string]interface{})
		assert.Equal(t, want.name, member["name"])
		assert.Equal(t, want.offset, member["offset"], want.name)
		assert.Equal(t, want.size, member["size"], want.name)
		assert.Equal(t, "Element", member["type"])
	}

	assert.Contains(t, output.VertexSource,
		"layout(binding = CONSTANT_BINDING, std140) uniform Camera_Type")
}

func TestSSBODetection(t *testing.T) {
	output := compile(t, passthrough+`
AttributeBlock Mesh
{
	Matrix4x4 transform;
	float weights[];
};`)
	m := manifest(t, output)
	attributes := entries(t, m, "attributes")
	require.Len(t, attributes, 1)

	mesh := attributes[0]
	assert.Equal(t, "SSBO", mesh["type"])

	dynamic := mesh["dynamicArrayLayout"].(map[string]interface{})
	assert.Equal(t, "weights", dynamic["name"])
	assert.Equal(t, float64(64), dynamic["offset"])
	assert.Equal(t, float64(16), dynamic["elementStride"])
	assert.Equal(t, float64(0), dynamic["elementPadding"])

	assert.Contains(t, output.VertexSource,
		"layout(binding = ATTRIBUTE_BINDING, std430) buffer Mesh_Type")
	assert.Contains(t, output.VertexSource, "float weights[];")
}

func TestSizedArrayMember(t *testing.T) {
	output := compile(t, passthrough+`
ConstantBlock Lights
{
	Vector4 colors[4];
};`)
	m := manifest(t, output)
	constants := entries(t, m, "constants")
	require.Len(t, constants, 1)

	members := constants[0]["members"].([]interface{})
	colors := members[0].(map[string]interface{})
	assert.Equal(t, "Array", colors["type"])
	assert.Equal(t, float64(16), colors["elementSize"])
	assert.Equal(t, float64(4), colors["nbElements"])
	assert.Equal(t, float64(64), colors["size"])
}

func TestNestedStructLayout(t *testing.T) {
	output := compile(t, passthrough+`
struct Light
{
	Vector3 direction;
	float intensity;
};
ConstantBlock Scene
{
	Light sun;
	float exposure;
};`)
	m := manifest(t, output)
	constants := entries(t, m, "constants")
	require.Len(t, constants, 1)

	members := constants[0]["members"].([]interface{})
	sun := members[0].(map[string]interface{})
	assert.Equal(t, float64(0), sun["offset"])
	assert.Equal(t, float64(16), sun["size"])
	nested := sun["members"].([]interface{})
	require.Len(t, nested, 2)
	direction := nested[0].(map[string]interface{})
	intensity := nested[1].(map[string]interface{})
	assert.Equal(t, float64(0), direction["offset"])
	assert.Equal(t, float64(12), intensity["offset"])

	exposure := members[1].(map[string]interface{})
	assert.Equal(t, float64(16), exposure["offset"])
}

func TestOffsetsAlignedAndMonotonic(t *testing.T) {
	output := compile(t, passthrough+`
ConstantBlock Mixed
{
	float a;
	Vector2 b;
	Vector3 c;
	float d;
	Matrix3x3 m;
	bool flag;
};`)
	m := manifest(t, output)
	constants := entries(t, m, "constants")
	members := constants[0]["members"].([]interface{})

	previous := -1.0
	for _, raw := range members {
		member := raw.(map[string]interface{})
		offset := member["offset"].(float64)
		assert.GreaterOrEqual(t, offset, previous, member["name"])
		previous = offset
	}
	// Spot checks: vec2 aligns to 8, vec3 to 16.
	b := members[1].(map[string]interface{})
	c := members[2].(map[string]interface{})
	assert.Equal(t, float64(8), b["offset"])
	assert.Equal(t, float64(16), c["offset"])
}

func TestTextures(t *testing.T) {
	output := compile(t, `
Texture diffuse as attribute;
Texture lut;
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
	m := manifest(t, output)
	textures := entries(t, m, "textures")
	require.Len(t, textures, 2)

	assert.Equal(t, float64(0), textures[0]["location"])
	assert.Equal(t, "diffuse", textures[0]["luminaName"])
	assert.Equal(t, "sampler2D", textures[0]["type"])
	assert.Equal(t, "attribute", textures[0]["scope"])
	assert.Equal(t, "lut", textures[1]["luminaName"])
	assert.Equal(t, "constant", textures[1]["scope"])

	assert.Contains(t, output.FragmentSource, "uniform sampler2D _tx0;")
	assert.Contains(t, output.FragmentSource, "uniform sampler2D _tx1;")
	assert.Contains(t, output.FragmentSource, "texture(_tx0, uv)")
}

func TestBuiltinMethodRewrites(t *testing.T) {
	output := compile(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	Vector3 n = position.normalize();
	float d = n.dot(position);
	float s = d.step(0.5f);
	float t = d.smoothstep(0.0f, 1.0f);
	pixelPosition = Vector4(n * (s + t), 1.0f);
}
FragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f).saturate(); }
`)
	assert.Contains(t, output.VertexSource, "normalize(position)")
	assert.Contains(t, output.VertexSource, "dot(n, position)")
	assert.Contains(t, output.VertexSource, "step(0.5f, d)")
	assert.Contains(t, output.VertexSource, "smoothstep(0.0f, 1.0f, d)")
	assert.Contains(t, output.FragmentSource, "clamp(vec4(1.0f, 0.0f, 0.0f, 1.0f), 0.0, 1.0)")
}

func TestNamespaceFlattening(t *testing.T) {
	output := compile(t, passthrough+`
namespace scene
{
	ConstantBlock Globals
	{
		float time;
	};
}`)
	m := manifest(t, output)
	constants := entries(t, m, "constants")
	require.Len(t, constants, 1)
	assert.Equal(t, "scene::Globals", constants[0]["name"])
	assert.Contains(t, output.VertexSource, "uniform scene__Globals_Type")
}

func TestControlFlowEmission(t *testing.T) {
	output := compile(t, `
Input -> VertexPass : Vector3 position;
FragmentPass -> Output : Color pixelColor;
VertexPass()
{
	float acc = 0.0f;
	for (int i = 0; i < 4; i++)
	{
		acc += 0.25f;
	}
	if (acc > 0.5f) { acc = 1.0f; } else { acc = 0.0f; }
	while (acc > 2.0f) { acc = acc - 1.0f; }
	pixelPosition = Vector4(position * acc, 1.0f);
}
FragmentPass()
{
	pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f);
	discard;
}
`)
	assert.Contains(t, output.VertexSource, "for (int i = 0; (i < 4); i++)")
	assert.Contains(t, output.VertexSource, "if ((acc > 0.5f))")
	assert.Contains(t, output.VertexSource, "while ((acc > 2.0f))")
	assert.Contains(t, output.FragmentSource, "discard;")
}

func TestOutputIsDeterministic(t *testing.T) {
	source := passthrough + `
Texture diffuse;
ConstantBlock Camera { Matrix4x4 view; };
AttributeBlock Mesh { float weights[]; };
`
	first := compile(t, source)
	second := compile(t, source)
	assert.Equal(t, first.JSON, second.JSON)
	assert.Equal(t, first.VertexSource, second.VertexSource)
	assert.Equal(t, first.FragmentSource, second.FragmentSource)
}

func TestWhitespaceInsensitive(t *testing.T) {
	compact := "Input -> VertexPass : Vector3 position;\nFragmentPass -> Output : Color pixelColor;\nVertexPass() { pixelPosition = Vector4(position, 1.0f); }\nFragmentPass() { pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }"
	spaced := "Input    ->   VertexPass :  Vector3   position ;\n// comment\nFragmentPass -> Output : Color pixelColor;\nVertexPass( ) {  pixelPosition = Vector4( position , 1.0f ) ; }\nFragmentPass() { /* x */ pixelColor = Color(1.0f, 0.0f, 0.0f, 1.0f); }"
	assert.Equal(t, compile(t, compact).JSON, compile(t, spaced).JSON)
}

func TestEmptyArraysRenderInline(t *testing.T) {
	output := compile(t, passthrough)
	assert.Contains(t, output.JSON, `"textures": []`)
	assert.Contains(t, output.JSON, `"constants": []`)
	assert.Contains(t, output.JSON, `"attributes": []`)
}
