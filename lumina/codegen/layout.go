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
	"fmt"
	"strconv"
	"strings"

	"github.com/ereliastudio/lumina/lumina/ast"
)

// StageIO is one entry of an input, varying or framebuffer interface.
type StageIO struct {
	Location int
	Type     string
	Name     string
	Flat     bool
}

// TextureBinding associates a declared texture with its GLSL identifier
// and binding index.
type TextureBinding struct {
	Location   int
	LuminaName string
	GLSLName   string
	Type       string
	Scope      ast.TextureScope
}

// BlockMember is the layout of one field inside a data block.
type BlockMember struct {
	Name         string
	Kind         string // "Element" or "Array"
	Offset       int
	Size         int
	ElementSize  int
	ElementCount int
	Members      []BlockMember
}

// DynamicArrayLayout describes the trailing unsized array of an SSBO.
type DynamicArrayLayout struct {
	Name           string
	Offset         int
	ElementStride  int
	ElementPadding int
	Members        []BlockMember
}

// BlockDefinition is the layout of one ConstantBlock or AttributeBlock.
type BlockDefinition struct {
	Name         string
	Type         string // "UBO" or "SSBO"
	Size         int
	Members      []BlockMember
	DynamicArray *DynamicArrayLayout
}

type memoryLayout int

const (
	std140 memoryLayout = iota
	std430
)

func roundUp(value, alignment int) int {
	if alignment <= 0 {
		return value
	}
	remainder := value % alignment
	if remainder == 0 {
		return value
	}
	return value + alignment - remainder
}

func isScalarType(name string) bool {
	return name == "bool" || name == "int" || name == "uint" || name == "float"
}

func tryParseVector(name string) (int, bool) {
	if !strings.HasPrefix(name, "Vector") || len(name) < 7 {
		return 0, false
	}
	digit := name[6]
	if digit < '0' || digit > '9' {
		return 0, false
	}
	components := int(digit - '0')
	return components, components >= 2 && components <= 4
}

func tryParseMatrix(name string) (columns, rows int, ok bool) {
	if !strings.HasPrefix(name, "Matrix") {
		return 0, 0, false
	}
	rest := name[6:]
	xPos := strings.IndexByte(rest, 'x')
	if xPos <= 0 || xPos+1 >= len(rest) {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(rest, "%dx%d", &columns, &rows); err != nil {
		return 0, 0, false
	}
	return columns, rows, columns > 0 && rows > 0
}

// evaluateIntegral folds a pure integer expression: literals, the
// arithmetic and bitwise operators, and shifts. Division or modulo by
// zero aborts the evaluation.
func evaluateIntegral(e ast.Expression) (int, bool) {
	switch n := e.(type) {
	case *ast.Literal:
		text := strings.TrimRight(n.Value.Content, "uU")
		value, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			return 0, false
		}
		return int(value), true
	case *ast.Unary:
		operand, ok := evaluateIntegral(n.Operand)
		if !ok {
			return 0, false
		}
		switch n.Operator {
		case ast.UnaryPositive:
			return operand, true
		case ast.UnaryNegate:
			return -operand, true
		case ast.UnaryBitwiseNot:
			return ^operand, true
		}
		return 0, false
	case *ast.Binary:
		left, ok := evaluateIntegral(n.Left)
		if !ok {
			return 0, false
		}
		right, ok := evaluateIntegral(n.Right)
		if !ok {
			return 0, false
		}
		switch n.Operator {
		case ast.BinaryAdd:
			return left + right, true
		case ast.BinarySubtract:
			return left - right, true
		case ast.BinaryMultiply:
			return left * right, true
		case ast.BinaryDivide:
			if right == 0 {
				return 0, false
			}
			return left / right, true
		case ast.BinaryModulo:
			if right == 0 {
				return 0, false
			}
			return left % right, true
		case ast.BinaryBitwiseAnd:
			return left & right, true
		case ast.BinaryBitwiseOr:
			return left | right, true
		case ast.BinaryBitwiseXor:
			return left ^ right, true
		case ast.BinaryShiftLeft:
			return left << uint(right), true
		case ast.BinaryShiftRight:
			return left >> uint(right), true
		}
	}
	return 0, false
}

func evaluateArrayLength(declarator *ast.VariableDeclarator) (int, bool) {
	if !declarator.HasArraySuffix || !declarator.HasArraySize || declarator.ArraySize == nil {
		return 0, false
	}
	return evaluateIntegral(declarator.ArraySize)
}

type typeLayoutInfo struct {
	size      int
	alignment int
	members   []BlockMember
}

type fieldLayoutInfo struct {
	member    BlockMember
	alignment int
	size      int
}

// layoutContext buckets the declarations the emitters need: interface
// entries, textures and block definitions, plus a struct lookup for
// nested layouts.
type layoutContext struct {
	layouts      []StageIO
	varyings     []StageIO
	framebuffers []StageIO
	textures     []TextureBinding
	constants    []BlockDefinition
	attributes   []BlockDefinition

	structLookup   map[string]*ast.Aggregate
	namespaceStack []string

	nextLayoutLocation      int
	nextVaryingLocation     int
	nextFramebufferLocation int
	nextTextureLocation     int
}

// buildLayoutContext walks the instruction tree once, assigning
// sequential locations per bucket. The synthetic triangleIndex varying
// claims location 0; user varyings start at 1.
func buildLayoutContext(instructions []ast.Instruction) *layoutContext {
	ctx := &layoutContext{
		structLookup: map[string]*ast.Aggregate{},
	}
	ctx.varyings = append(ctx.varyings, StageIO{
		Location: 0,
		Type:     "uint",
		Name:     "triangleIndex",
		Flat:     true,
	})
	ctx.nextVaryingLocation = 1

	ctx.collectStructs(instructions)
	ctx.namespaceStack = nil
	ctx.process(instructions)
	return ctx
}

func (c *layoutContext) pushNamespace(name string) {
	c.namespaceStack = append(c.namespaceStack, name)
}

func (c *layoutContext) popNamespace() {
	if len(c.namespaceStack) > 0 {
		c.namespaceStack = c.namespaceStack[:len(c.namespaceStack)-1]
	}
}

func (c *layoutContext) qualify(name string) string {
	if len(c.namespaceStack) == 0 {
		return name
	}
	return strings.Join(c.namespaceStack, "::") + "::" + name
}

func (c *layoutContext) collectStructs(instructions []ast.Instruction) {
	for _, instruction := range instructions {
		switch n := instruction.(type) {
		case *ast.Aggregate:
			if n.Kind == ast.KindStruct {
				c.structLookup[c.qualify(n.Name.Content)] = n
			}
		case *ast.Namespace:
			c.pushNamespace(n.Name.Content)
			c.collectStructs(n.Instructions)
			c.popNamespace()
		}
	}
}

func (c *layoutContext) process(instructions []ast.Instruction) {
	for _, instruction := range instructions {
		switch n := instruction.(type) {
		case *ast.Pipeline:
			c.handlePipeline(n)
		case *ast.Variable:
			c.handleVariable(n)
		case *ast.Aggregate:
			c.handleAggregate(n)
		case *ast.Namespace:
			c.pushNamespace(n.Name.Content)
			c.process(n.Instructions)
			c.popNamespace()
		}
	}
}

func (c *layoutContext) handlePipeline(pipeline *ast.Pipeline) {
	typeName := pipeline.PayloadType.Name.String()
	name := pipeline.Variable.Content

	switch {
	case pipeline.Source == ast.StageInput && pipeline.Destination == ast.StageVertexPass:
		c.layouts = append(c.layouts, StageIO{Location: c.nextLayoutLocation, Type: typeName, Name: name})
		c.nextLayoutLocation++
	case pipeline.Source == ast.StageFragmentPass && pipeline.Destination == ast.StageOutput:
		c.framebuffers = append(c.framebuffers, StageIO{Location: c.nextFramebufferLocation, Type: typeName, Name: name})
		c.nextFramebufferLocation++
	case pipeline.Source == ast.StageVertexPass && pipeline.Destination == ast.StageFragmentPass:
		c.varyings = append(c.varyings, StageIO{Location: c.nextVaryingLocation, Type: typeName, Name: name})
		c.nextVaryingLocation++
	}
}

func (c *layoutContext) handleVariable(variable *ast.Variable) {
	if variable.Declaration.Type.Name.String() != "Texture" {
		return
	}
	for i := range variable.Declaration.Declarators {
		declarator := &variable.Declaration.Declarators[i]
		c.textures = append(c.textures, TextureBinding{
			Location:   c.nextTextureLocation,
			LuminaName: declarator.Name.Content,
			GLSLName:   fmt.Sprintf("_tx%d", c.nextTextureLocation),
			Type:       "sampler2D",
			Scope:      declarator.TextureBindingScope,
		})
		c.nextTextureLocation++
	}
}

func (c *layoutContext) handleAggregate(aggregate *ast.Aggregate) {
	switch aggregate.Kind {
	case ast.KindConstantBlock:
		c.constants = append(c.constants, c.makeBlockDefinition(aggregate))
	case ast.KindAttributeBlock:
		c.attributes = append(c.attributes, c.makeBlockDefinition(aggregate))
	}
}

func aggregateHasUnsizedArray(aggregate *ast.Aggregate) bool {
	for _, member := range aggregate.Members {
		field, ok := member.(*ast.Field)
		if !ok {
			continue
		}
		for i := range field.Declaration.Declarators {
			declarator := &field.Declaration.Declarators[i]
			if declarator.HasArraySuffix && !declarator.HasArraySize {
				return true
			}
		}
	}
	return false
}

func (c *layoutContext) makeBlockDefinition(aggregate *ast.Aggregate) BlockDefinition {
	block := BlockDefinition{
		Name: c.qualify(aggregate.Name.Content),
		Type: "UBO",
	}
	if aggregateHasUnsizedArray(aggregate) {
		block.Type = "SSBO"
	}

	recursion := []string{block.Name}
	block.Members = c.buildMembers(aggregate, recursion, &block)
	return block
}

func (c *layoutContext) buildMembers(aggregate *ast.Aggregate, recursion []string, block *BlockDefinition) []BlockMember {
	layout := std140
	if block.Type == "SSBO" {
		layout = std430
	}

	var members []BlockMember
	currentOffset := 0
	maxAlign := 1
	hasDynamicArray := false

	for _, member := range aggregate.Members {
		field, ok := member.(*ast.Field)
		if !ok {
			continue
		}
		for i := range field.Declaration.Declarators {
			declarator := &field.Declaration.Declarators[i]
			if declarator.HasArraySuffix && !declarator.HasArraySize {
				c.assignDynamicArray(block, field.Declaration.Type, declarator, recursion, layout, &currentOffset, &maxAlign)
				hasDynamicArray = true
				break
			}

			info := c.layoutField(field.Declaration.Type, declarator, layout, recursion)
			alignedOffset := roundUp(currentOffset, info.alignment)
			info.member.Offset = alignedOffset
			info.member.Size = info.size
			currentOffset = alignedOffset + info.size
			if info.alignment > maxAlign {
				maxAlign = info.alignment
			}
			members = append(members, info.member)
		}
		if hasDynamicArray {
			break
		}
	}

	blockAlignment := maxAlign
	if layout == std140 {
		blockAlignment = roundUp(blockAlignment, 16)
	}
	if block.DynamicArray != nil {
		block.Size = roundUp(block.DynamicArray.Offset, blockAlignment)
	} else {
		block.Size = roundUp(currentOffset, blockAlignment)
	}
	return members
}

// assignDynamicArray installs the trailing unsized array of an SSBO.
// Only one is allowed; the analyzer rejects a second before codegen.
func (c *layoutContext) assignDynamicArray(block *BlockDefinition, elementType ast.TypeName, declarator *ast.VariableDeclarator, recursion []string, layout memoryLayout, currentOffset, maxAlign *int) {
	if block.DynamicArray != nil {
		return
	}

	elementLayout := c.layoutType(elementType, layout, recursion)
	block.Type = "SSBO"

	// The host indexes dynamic array elements with 16-byte alignment
	// regardless of the block layout, so the stride rounds up to it.
	arrayAlignment := roundUp(elementLayout.alignment, 16)
	alignedOffset := roundUp(*currentOffset, arrayAlignment)

	dynamic := &DynamicArrayLayout{
		Name:          declarator.Name.Content,
		Offset:        alignedOffset,
		ElementStride: roundUp(elementLayout.size, arrayAlignment),
	}
	dynamic.Members = elementLayout.members
	block.DynamicArray = dynamic

	*currentOffset = alignedOffset
	if arrayAlignment > *maxAlign {
		*maxAlign = arrayAlignment
	}
}

func (c *layoutContext) layoutField(t ast.TypeName, declarator *ast.VariableDeclarator, layout memoryLayout, recursion []string) fieldLayoutInfo {
	result := fieldLayoutInfo{}
	result.member.Name = declarator.Name.Content
	result.member.Kind = "Element"

	typeLayout := c.layoutType(t, layout, recursion)
	result.member.Members = typeLayout.members
	result.size = typeLayout.size
	result.alignment = typeLayout.alignment

	if declarator.HasArraySuffix {
		result.member.Kind = "Array"
		arrayAlignment := typeLayout.alignment
		stride := typeLayout.size
		if layout == std140 {
			arrayAlignment = roundUp(arrayAlignment, 16)
			stride = roundUp(stride, 16)
		} else {
			stride = roundUp(stride, typeLayout.alignment)
		}
		result.member.ElementSize = stride
		count, _ := evaluateArrayLength(declarator)
		result.member.ElementCount = count
		result.alignment = arrayAlignment
		result.size = stride * count
	}

	result.member.Size = result.size
	return result
}

func (c *layoutContext) layoutType(t ast.TypeName, layout memoryLayout, recursion []string) typeLayoutInfo {
	typeName := t.Name.String()
	if typeName == "" {
		return typeLayoutInfo{size: 0, alignment: 4}
	}
	if isScalarType(typeName) {
		return typeLayoutInfo{size: 4, alignment: 4}
	}
	if typeName == "Color" {
		return typeLayoutInfo{size: 16, alignment: 16}
	}
	if components, ok := tryParseVector(typeName); ok {
		alignment := 16
		if components == 2 {
			alignment = 8
		}
		return typeLayoutInfo{size: components * 4, alignment: alignment}
	}
	if columns, rows, ok := tryParseMatrix(typeName); ok {
		columnAlignment := 16
		if rows == 2 {
			columnAlignment = 8
		}
		if layout == std140 {
			columnAlignment = roundUp(columnAlignment, 16)
		}
		strideAlignment := columnAlignment
		if layout == std140 {
			strideAlignment = 16
		}
		stride := roundUp(rows*4, strideAlignment)
		return typeLayoutInfo{size: stride * columns, alignment: columnAlignment}
	}

	structNode, ok := c.structLookup[typeName]
	if !ok {
		return typeLayoutInfo{size: 0, alignment: 16}
	}
	for _, active := range recursion {
		if active == typeName {
			return typeLayoutInfo{size: 0, alignment: 16}
		}
	}
	recursion = append(recursion, typeName)
	return c.layoutAggregateType(structNode, layout, recursion)
}

func (c *layoutContext) layoutAggregateType(aggregate *ast.Aggregate, layout memoryLayout, recursion []string) typeLayoutInfo {
	var info typeLayoutInfo
	currentOffset := 0
	maxAlign := 1

	for _, member := range aggregate.Members {
		field, ok := member.(*ast.Field)
		if !ok {
			continue
		}
		for i := range field.Declaration.Declarators {
			declarator := &field.Declaration.Declarators[i]
			fieldLayout := c.layoutField(field.Declaration.Type, declarator, layout, recursion)
			alignedOffset := roundUp(currentOffset, fieldLayout.alignment)
			fieldLayout.member.Offset = alignedOffset
			fieldLayout.member.Size = fieldLayout.size
			currentOffset = alignedOffset + fieldLayout.size
			if fieldLayout.alignment > maxAlign {
				maxAlign = fieldLayout.alignment
			}
			info.members = append(info.members, fieldLayout.member)
		}
	}

	structAlignment := maxAlign
	if layout == std140 {
		structAlignment = roundUp(structAlignment, 16)
	}
	info.size = roundUp(currentOffset, structAlignment)
	info.alignment = structAlignment
	return info
}
