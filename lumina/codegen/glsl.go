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
	"strconv"
	"strings"

	"github.com/ereliastudio/lumina/lumina/ast"
	"github.com/ereliastudio/lumina/lumina/sema"
)

// glslTypes maps Lumina builtin type names to their GLSL spellings.
var glslTypes = map[string]string{
	"float": "float", "int": "int", "uint": "uint", "bool": "bool",
	"void":    "void",
	"Vector2": "vec2", "Vector3": "vec3", "Vector4": "vec4",
	"Vector2Int": "ivec2", "Vector3Int": "ivec3", "Vector4Int": "ivec4",
	"Vector2UInt": "uvec2", "Vector3UInt": "uvec3", "Vector4UInt": "uvec4",
	"Color":     "vec4",
	"Matrix2x2": "mat2", "Matrix3x3": "mat3", "Matrix4x4": "mat4",
}

// sanitizeIdentifier rewrites a name into a GLSL-safe identifier: every
// byte outside [A-Za-z0-9_] becomes «_», a leading digit is prefixed.
func sanitizeIdentifier(name string) string {
	var out strings.Builder
	out.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			out.WriteByte(c)
		} else {
			out.WriteByte('_')
		}
	}
	s := out.String()
	if s == "" {
		return "_unnamed"
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "_" + s
	}
	return s
}

// convertType maps a Lumina type name to GLSL, sanitizing user types.
func convertType(typeName string) string {
	if glsl, ok := glslTypes[typeName]; ok {
		return glsl
	}
	return sanitizeIdentifier(typeName)
}

// glslEmitter produces the two stage sources from the analyzed tree.
type glslEmitter struct {
	info   map[ast.Expression]sema.ExpressionInfo
	layout *layoutContext

	namespaceStack  []string
	structures      []aggregateRef
	constantBlocks  []aggregateRef
	attributeBlocks []aggregateRef
	globalVariables []globalRef
	vertexStage     *ast.StageFunction
	fragmentStage   *ast.StageFunction

	remappedNames map[string]string
}

type aggregateRef struct {
	qualifiedName string
	node          *ast.Aggregate
	isSSBO        bool
}

type globalRef struct {
	node           *ast.Variable
	qualifiedNames []string
}

func newGLSLEmitter(result *sema.Result, layout *layoutContext) *glslEmitter {
	g := &glslEmitter{
		info:          result.ExpressionInfo,
		layout:        layout,
		remappedNames: map[string]string{},
	}
	g.collect(result.Instructions)
	// Texture names go in last so they replace the plain global-variable
	// entries that collect records for the same declarations.
	for _, binding := range layout.textures {
		g.remappedNames[binding.LuminaName] = binding.GLSLName
	}
	return g
}

func (g *glslEmitter) collect(instructions []ast.Instruction) {
	for _, instruction := range instructions {
		switch n := instruction.(type) {
		case *ast.Aggregate:
			g.collectAggregate(n)
		case *ast.Variable:
			g.collectVariable(n)
		case *ast.Namespace:
			g.namespaceStack = append(g.namespaceStack, sanitizeIdentifier(n.Name.Content))
			g.collect(n.Instructions)
			g.namespaceStack = g.namespaceStack[:len(g.namespaceStack)-1]
		case *ast.StageFunction:
			switch n.Stage {
			case ast.StageVertexPass:
				g.vertexStage = n
			case ast.StageFragmentPass:
				g.fragmentStage = n
			}
		}
	}
}

func (g *glslEmitter) qualify(name string) string {
	if len(g.namespaceStack) == 0 {
		return name
	}
	return strings.Join(g.namespaceStack, "::") + "::" + name
}

func (g *glslEmitter) collectAggregate(aggregate *ast.Aggregate) {
	ref := aggregateRef{
		qualifiedName: g.qualify(aggregate.Name.Content),
		node:          aggregate,
		isSSBO:        aggregateHasUnsizedArray(aggregate),
	}
	sanitized := sanitizeIdentifier(ref.qualifiedName)
	g.remappedNames[ref.qualifiedName] = sanitized
	if len(g.namespaceStack) == 0 {
		g.remappedNames[aggregate.Name.Content] = sanitized
	}
	switch aggregate.Kind {
	case ast.KindStruct:
		g.structures = append(g.structures, ref)
	case ast.KindAttributeBlock:
		g.attributeBlocks = append(g.attributeBlocks, ref)
	case ast.KindConstantBlock:
		g.constantBlocks = append(g.constantBlocks, ref)
	}
}

func (g *glslEmitter) collectVariable(variable *ast.Variable) {
	ref := globalRef{node: variable}
	for i := range variable.Declaration.Declarators {
		declarator := &variable.Declaration.Declarators[i]
		canonical := g.qualify(declarator.Name.Content)
		sanitized := sanitizeIdentifier(canonical)
		if len(g.namespaceStack) == 0 {
			g.remappedNames[declarator.Name.Content] = sanitized
		}
		g.remappedNames[canonical] = sanitized
		ref.qualifiedNames = append(ref.qualifiedNames, canonical)
	}
	g.globalVariables = append(g.globalVariables, ref)
}

// remapIdentifier maps a Lumina name to its GLSL spelling, rewriting the
// stage builtin pixelPosition and texture names.
func (g *glslEmitter) remapIdentifier(name ast.Name) string {
	canonical := name.String()
	if canonical == "pixelPosition" {
		return "gl_Position"
	}
	if remapped, ok := g.remappedNames[canonical]; ok {
		return remapped
	}
	if len(name.Parts) == 1 {
		simple := name.Parts[0].Content
		if remapped, ok := g.remappedNames[simple]; ok {
			return remapped
		}
		return simple
	}
	parts := make([]string, len(name.Parts))
	for i, part := range name.Parts {
		parts[i] = sanitizeIdentifier(part.Content)
	}
	return strings.Join(parts, "_")
}

func typeToGLSL(t ast.TypeName) string {
	glsl := convertType(t.Name.String())
	if t.IsConst {
		return "const " + glsl
	}
	return glsl
}

// run emits both stage sources.
func (g *glslEmitter) run() (vertex, fragment string) {
	{
		var out strings.Builder
		out.WriteString("#version 450 core\n\n")
		g.emitInterface(&out, g.layout.layouts, "in")
		g.emitInterface(&out, g.layout.varyings, "out")
		g.emitCommon(&out)
		g.emitStage(&out, g.vertexStage)
		vertex = out.String()
	}
	{
		var out strings.Builder
		out.WriteString("#version 450 core\n\n")
		g.emitInterface(&out, g.layout.varyings, "in")
		g.emitInterface(&out, g.layout.framebuffers, "out")
		g.emitCommon(&out)
		g.emitStage(&out, g.fragmentStage)
		fragment = out.String()
	}
	return vertex, fragment
}

func (g *glslEmitter) emitInterface(out *strings.Builder, entries []StageIO, qualifier string) {
	for _, entry := range entries {
		out.WriteString("layout(location = ")
		out.WriteString(strconv.Itoa(entry.Location))
		out.WriteString(") ")
		if entry.Flat {
			out.WriteString("flat ")
		}
		out.WriteString(qualifier)
		out.WriteByte(' ')
		out.WriteString(convertType(entry.Type))
		out.WriteByte(' ')
		out.WriteString(entry.Name)
		out.WriteString(";\n")
	}
	if len(entries) > 0 {
		out.WriteByte('\n')
	}
}

func (g *glslEmitter) emitCommon(out *strings.Builder) {
	g.emitStructs(out)
	g.emitBlocks(out, g.constantBlocks, "CONSTANT_BINDING")
	g.emitBlocks(out, g.attributeBlocks, "ATTRIBUTE_BINDING")
	g.emitGlobalVariables(out)
	g.emitTextures(out)
}

func (g *glslEmitter) emitStructs(out *strings.Builder) {
	for _, ref := range g.structures {
		out.WriteString("struct ")
		out.WriteString(sanitizeIdentifier(ref.qualifiedName))
		out.WriteString("\n{\n")
		g.emitBlockMembers(out, ref.node, 1)
		out.WriteString("};\n\n")
	}
}

func (g *glslEmitter) emitBlocks(out *strings.Builder, blocks []aggregateRef, bindingKeyword string) {
	for _, ref := range blocks {
		blockName := sanitizeIdentifier(ref.qualifiedName)
		layoutName := "std140"
		kindKeyword := "uniform"
		if ref.isSSBO {
			layoutName = "std430"
			kindKeyword = "buffer"
		}
		out.WriteString("layout(binding = ")
		out.WriteString(bindingKeyword)
		out.WriteString(", ")
		out.WriteString(layoutName)
		out.WriteString(") ")
		out.WriteString(kindKeyword)
		out.WriteByte(' ')
		out.WriteString(blockName)
		out.WriteString("_Type\n{\n")
		g.emitBlockMembers(out, ref.node, 1)
		out.WriteString("} ")
		out.WriteString(blockName)
		out.WriteString(";\n\n")
	}
}

func (g *glslEmitter) emitBlockMembers(out *strings.Builder, aggregate *ast.Aggregate, indent int) {
	for _, member := range aggregate.Members {
		field, ok := member.(*ast.Field)
		if !ok {
			continue
		}
		for i := range field.Declaration.Declarators {
			declarator := &field.Declaration.Declarators[i]
			writeIndent(out, indent)
			out.WriteString(typeToGLSL(field.Declaration.Type))
			out.WriteByte(' ')
			out.WriteString(sanitizeIdentifier(declarator.Name.Content))
			if declarator.HasArraySuffix && declarator.ArraySize != nil {
				out.WriteByte('[')
				out.WriteString(g.emitExpression(declarator.ArraySize))
				out.WriteByte(']')
			} else if declarator.HasArraySuffix {
				out.WriteString("[]")
			}
			out.WriteString(";\n")
		}
	}
}

func (g *glslEmitter) emitGlobalVariables(out *strings.Builder) {
	emitted := false
	for _, ref := range g.globalVariables {
		if ref.node.Declaration.Type.Name.String() == "Texture" {
			continue
		}
		for i := range ref.node.Declaration.Declarators {
			declarator := &ref.node.Declaration.Declarators[i]
			if ref.node.Declaration.Type.IsConst {
				out.WriteString("const ")
			}
			out.WriteString(convertType(ref.node.Declaration.Type.Name.String()))
			out.WriteByte(' ')
			out.WriteString(sanitizeIdentifier(ref.qualifiedNames[i]))
			if declarator.Initializer != nil {
				out.WriteString(" = ")
				out.WriteString(g.emitExpression(declarator.Initializer))
			}
			out.WriteString(";\n")
			emitted = true
		}
	}
	if emitted {
		out.WriteByte('\n')
	}
}

func (g *glslEmitter) emitTextures(out *strings.Builder) {
	for _, binding := range g.layout.textures {
		out.WriteString("uniform ")
		out.WriteString(binding.Type)
		out.WriteByte(' ')
		out.WriteString(binding.GLSLName)
		out.WriteString(";\n")
	}
	if len(g.layout.textures) > 0 {
		out.WriteByte('\n')
	}
}

func (g *glslEmitter) emitStage(out *strings.Builder, stage *ast.StageFunction) {
	if stage == nil || stage.Body == nil {
		out.WriteString("void main()\n{\n}\n")
		return
	}
	out.WriteString("void main()\n{\n")
	g.emitBlockStatement(out, stage.Body, 1)
	out.WriteString("}\n")
}

func writeIndent(out *strings.Builder, indent int) {
	for i := 0; i < indent; i++ {
		out.WriteByte('\t')
	}
}

