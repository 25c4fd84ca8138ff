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

// Package sema analyzes a parsed instruction tree: it builds the symbol
// tables, resolves names and overloads, type-checks every expression and
// validates the stage functions.
//
// The analysis runs as two declaration-collection passes (types, then
// members and top-level declarations) followed by a body walk. Every
// expression node is annotated with its resolved type in the returned
// ExpressionInfo map, which the code generator consumes.
package sema

import (
	"strconv"
	"strings"

	"github.com/ereliastudio/lumina/lumina/ast"
	"github.com/ereliastudio/lumina/lumina/diag"
	"github.com/ereliastudio/lumina/lumina/token"
)

// ExpressionInfo is the annotation recorded for one expression node.
type ExpressionInfo struct {
	TypeName       string
	IsConst        bool
	IsReference    bool
	IsArray        bool
	HasArraySize   bool
	ArraySize      int
	ArraySizeKnown bool
	IsLValue       bool
}

// Result is the analyzed program: the borrowed instruction tree plus the
// per-expression annotations.
type Result struct {
	Instructions   []ast.Instruction
	ExpressionInfo map[ast.Expression]ExpressionInfo
}

// Symbol is a named value in a scope or symbol table.
type Symbol struct {
	Token        token.Token
	Type         TypeInfo
	IsAssignable bool
}

// FunctionSignature describes one overload of a function, method,
// operator or constructor.
type FunctionSignature struct {
	NameToken        token.Token
	ReturnType       TypeInfo
	ReturnsReference bool
	IsMethod         bool
	IsConstMethod    bool
	Parameters       []TypeInfo
	DisplayName      string
}

// AggregateField is a named data member with its resolved type.
type AggregateField struct {
	NameToken token.Token
	Type      TypeInfo
}

// AggregateInfo is the symbol-table entry of a struct or data block.
// Fields preserve source declaration order.
type AggregateInfo struct {
	NameToken     token.Token
	QualifiedName string
	Fields        []AggregateField
	Methods       map[string][]FunctionSignature
	Operators     map[string][]FunctionSignature
	Constructors  []FunctionSignature

	HasUserDefaultConstructor bool
	HasExplicitConstructor    bool
	AllowUnsizedArrays        bool
}

func (a *AggregateInfo) field(name string) (AggregateField, bool) {
	for _, f := range a.Fields {
		if f.NameToken.Content == name {
			return f, true
		}
	}
	return AggregateField{}, false
}

type stageState struct {
	defined bool
	token   token.Token
}

type analyzer struct {
	diags *diag.Diagnostics

	types             map[string]token.Token
	aggregates        map[string]*AggregateInfo
	functions         map[string][]FunctionSignature
	globals           map[string]Symbol
	globalOrder       []string
	pipelineVariables map[string]Symbol
	stageBuiltins     [4]map[string]Symbol
	stagePipeline     [4]map[string]Symbol
	stageRequired     [4]map[string]bool
	vertex            stageState
	fragment          stageState
	namespaceStack    []string

	expressionInfo map[ast.Expression]ExpressionInfo
}

// Analyze walks instructions, reporting problems to diags, and returns
// the annotated result.
func Analyze(instructions []ast.Instruction, diags *diag.Diagnostics) *Result {
	a := &analyzer{
		diags:             diags,
		types:             map[string]token.Token{},
		aggregates:        map[string]*AggregateInfo{},
		functions:         map[string][]FunctionSignature{},
		globals:           map[string]Symbol{},
		pipelineVariables: map[string]Symbol{},
		expressionInfo:    map[ast.Expression]ExpressionInfo{},
	}
	for i := range a.stageBuiltins {
		a.stageBuiltins[i] = map[string]Symbol{}
		a.stagePipeline[i] = map[string]Symbol{}
		a.stageRequired[i] = map[string]bool{}
	}
	a.seedStageBuiltins()
	a.registerBuiltinAggregates()

	a.collectTypes(instructions)
	a.collectDeclarations(instructions)

	a.namespaceStack = nil
	for _, instruction := range instructions {
		a.analyzeInstruction(instruction)
	}
	a.finalize()

	return &Result{
		Instructions:   instructions,
		ExpressionInfo: a.expressionInfo,
	}
}

func (a *analyzer) errorf(at token.Token, format string, args ...interface{}) {
	a.diags.Errorf(at, format, args...)
}

func stageIndex(stage ast.Stage) int {
	return int(stage)
}

func syntheticToken(content string) token.Token {
	return token.Token{Origin: "<builtin>", Type: token.Identifier, Content: content}
}

func syntheticStageToken(stage ast.Stage) token.Token {
	return token.Token{Origin: "<semantic>", Type: token.Identifier, Content: stage.String()}
}

// seedStageBuiltins installs the identifiers available inside each stage
// without declaration, and records which must be written.
func (a *analyzer) seedStageBuiltins() {
	pixelPosition := Symbol{
		Token: syntheticStageToken(ast.StageVertexPass),
		Type:  TypeInfo{Name: "Vector4"},
	}
	a.stageBuiltins[stageIndex(ast.StageVertexPass)]["pixelPosition"] = pixelPosition
	a.stageRequired[stageIndex(ast.StageVertexPass)]["pixelPosition"] = true

	instanceID := Symbol{Token: syntheticToken("InstanceID"), Type: TypeInfo{Name: "uint"}}
	a.stageBuiltins[stageIndex(ast.StageVertexPass)]["InstanceID"] = instanceID
	a.stageBuiltins[stageIndex(ast.StageFragmentPass)]["InstanceID"] = instanceID

	triangleID := Symbol{Token: syntheticToken("TriangleID"), Type: TypeInfo{Name: "uint"}}
	a.stageBuiltins[stageIndex(ast.StageVertexPass)]["TriangleID"] = triangleID
	a.stageBuiltins[stageIndex(ast.StageFragmentPass)]["TriangleID"] = triangleID
}

// registerBuiltinAggregates declares the Texture pseudo-aggregate with
// its getPixel and size methods.
func (a *analyzer) registerBuiltinAggregates() {
	texture := &AggregateInfo{
		NameToken:     syntheticToken("Texture"),
		QualifiedName: "Texture",
		Methods:       map[string][]FunctionSignature{},
		Operators:     map[string][]FunctionSignature{},
	}

	getPixel := FunctionSignature{
		NameToken:     syntheticToken("getPixel"),
		ReturnType:    TypeInfo{Name: "Color"},
		DisplayName:   "Texture::getPixel",
		IsMethod:      true,
		IsConstMethod: true,
		Parameters:    []TypeInfo{{Name: "Vector2"}},
	}
	texture.Methods["getPixel"] = []FunctionSignature{getPixel}

	size := FunctionSignature{
		NameToken:     syntheticToken("size"),
		ReturnType:    TypeInfo{Name: "Vector2Int"},
		DisplayName:   "Texture::size",
		IsMethod:      true,
		IsConstMethod: true,
	}
	texture.Methods["size"] = []FunctionSignature{size}

	a.aggregates["Texture"] = texture
}

// --- namespace handling ---------------------------------------------------

func (a *analyzer) pushNamespace(name token.Token) {
	a.namespaceStack = append(a.namespaceStack, name.Content)
}

func (a *analyzer) popNamespace() {
	if len(a.namespaceStack) > 0 {
		a.namespaceStack = a.namespaceStack[:len(a.namespaceStack)-1]
	}
}

func (a *analyzer) currentNamespace() string {
	return strings.Join(a.namespaceStack, "::")
}

func (a *analyzer) qualify(tok token.Token) string {
	ns := a.currentNamespace()
	if ns == "" {
		return tok.Content
	}
	return ns + "::" + tok.Content
}

// namespaceCandidates lists the qualified forms of name, innermost
// namespace first, ending with the bare name.
func (a *analyzer) namespaceCandidates(name string) []string {
	var candidates []string
	for count := len(a.namespaceStack); count > 0; count-- {
		prefix := strings.Join(a.namespaceStack[:count], "::")
		candidates = append(candidates, prefix+"::"+name)
	}
	candidates = append(candidates, name)
	return candidates
}

// resolveQualifiedCandidates maps a possibly qualified AST name to the
// qualified-name candidates to try, in order.
func (a *analyzer) resolveQualifiedCandidates(name ast.Name) []string {
	if len(name.Parts) == 0 {
		return nil
	}
	if len(name.Parts) > 1 {
		joined := name.String()
		current := a.currentNamespace()
		if current != "" && strings.HasPrefix(joined, current+"::") {
			return []string{joined}
		}
		return a.namespaceCandidates(joined)
	}
	return a.namespaceCandidates(name.Parts[0].Content)
}

// lookupTypeName resolves a type reference to its qualified name.
func (a *analyzer) lookupTypeName(name ast.Name) (string, bool) {
	if len(name.Parts) == 0 {
		return "", false
	}
	joined := name.String()
	if len(name.Parts) > 1 {
		if isBuiltinType(joined) {
			return joined, true
		}
		if _, ok := a.types[joined]; ok {
			return joined, true
		}
		return "", false
	}
	simple := name.Parts[0].Content
	if isBuiltinType(simple) {
		return simple, true
	}
	for _, candidate := range a.namespaceCandidates(simple) {
		if _, ok := a.types[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

// --- pass 1: collect types ------------------------------------------------

func (a *analyzer) collectTypes(instructions []ast.Instruction) {
	for _, instruction := range instructions {
		switch n := instruction.(type) {
		case *ast.Aggregate:
			a.registerAggregateType(n)
		case *ast.Namespace:
			a.pushNamespace(n.Name)
			a.collectTypes(n.Instructions)
			a.popNamespace()
		}
	}
}

func (a *analyzer) registerAggregateType(aggregate *ast.Aggregate) {
	qualified := a.qualify(aggregate.Name)
	if !strings.Contains(qualified, "::") && isBuiltinType(qualified) {
		a.errorf(aggregate.Name, "Cannot redefine builtin type '%s'", qualified)
		return
	}
	if _, exists := a.types[qualified]; exists {
		a.errorf(aggregate.Name, "Type '%s' already defined", qualified)
		return
	}
	a.types[qualified] = aggregate.Name
}

// --- pass 2: collect members and top-level declarations -------------------

func (a *analyzer) collectDeclarations(instructions []ast.Instruction) {
	for _, instruction := range instructions {
		switch n := instruction.(type) {
		case *ast.Aggregate:
			a.registerAggregateMembers(n)
		case *ast.Variable:
			a.registerVariable(n)
		case *ast.Function:
			a.registerFunction(n)
		case *ast.StageFunction:
			a.registerStageFunction(n)
		case *ast.Pipeline:
			a.registerPipeline(n)
		case *ast.Namespace:
			a.pushNamespace(n.Name)
			a.collectDeclarations(n.Instructions)
			a.popNamespace()
		}
	}
}

func (a *analyzer) aggregateInfo(qualified string) *AggregateInfo {
	info, ok := a.aggregates[qualified]
	if !ok {
		info = &AggregateInfo{
			QualifiedName: qualified,
			Methods:       map[string][]FunctionSignature{},
			Operators:     map[string][]FunctionSignature{},
		}
		a.aggregates[qualified] = info
	}
	return info
}

func (a *analyzer) registerAggregateMembers(aggregate *ast.Aggregate) {
	qualified := a.qualify(aggregate.Name)
	info := a.aggregateInfo(qualified)
	info.NameToken = aggregate.Name
	info.AllowUnsizedArrays = aggregate.Kind == ast.KindAttributeBlock || aggregate.Kind == ast.KindConstantBlock

	sawUnsizedArray := false
	for _, member := range aggregate.Members {
		switch m := member.(type) {
		case *ast.Field:
			if sawUnsizedArray {
				for i := range m.Declaration.Declarators {
					a.errorf(m.Declaration.Declarators[i].Name, "Fields cannot be declared after an unsized array")
				}
				continue
			}
			a.registerField(info, m)
			if info.AllowUnsizedArrays {
				for i := range m.Declaration.Declarators {
					declarator := &m.Declaration.Declarators[i]
					if declarator.HasArraySuffix && !declarator.HasArraySize {
						sawUnsizedArray = true
					}
				}
			}
		case *ast.Method:
			a.registerMethod(info, m)
		case *ast.Constructor:
			a.registerConstructor(info, m)
		case *ast.Operator:
			a.registerOperator(info, m)
		}
	}

	if !info.HasUserDefaultConstructor && !info.HasExplicitConstructor {
		info.Constructors = append(info.Constructors, FunctionSignature{
			NameToken:   aggregate.Name,
			DisplayName: qualified + "()",
			ReturnType:  TypeInfo{Name: qualified},
		})
	}
}

func (a *analyzer) textureBindingToken(declarator *ast.VariableDeclarator) token.Token {
	if declarator.TextureBindingToken.Content != "" {
		return declarator.TextureBindingToken
	}
	return declarator.Name
}

func (a *analyzer) registerField(info *AggregateInfo, field *ast.Field) {
	for i := range field.Declaration.Declarators {
		declarator := &field.Declaration.Declarators[i]
		t := a.resolveType(field.Declaration.Type, declarator.IsReference, declarator.ArraySize, declarator.HasArraySuffix)
		if t.IsArray && !t.HasArraySize && !info.AllowUnsizedArrays {
			a.errorf(declarator.Name, "Unsized arrays are only allowed inside DataBlocks")
			continue
		}
		if t.IsArray && t.ArraySizeKnown && t.ArraySize == 0 {
			a.errorf(declarator.Name, "Array size must be greater than zero")
		}
		if declarator.HasTextureBinding && t.Name != "Texture" {
			a.errorf(a.textureBindingToken(declarator), "Only Texture declarations can use 'as constant' or 'as attribute'")
		}
		if _, exists := info.field(declarator.Name.Content); !exists {
			info.Fields = append(info.Fields, AggregateField{NameToken: declarator.Name, Type: t})
		}
	}
}

func (a *analyzer) registerMethod(info *AggregateInfo, method *ast.Method) {
	signature := FunctionSignature{
		NameToken:        method.Name,
		ReturnType:       a.resolveType(method.ReturnType, method.ReturnsReference, nil, false),
		ReturnsReference: method.ReturnsReference,
		DisplayName:      info.QualifiedName + "::" + method.Name.Content,
		IsMethod:         true,
		IsConstMethod:    method.IsConst,
	}
	a.fillSignatureParameters(&signature, method.Parameters)

	overloads := info.Methods[method.Name.Content]
	a.enforceOverloadConsistency(overloads, signature)
	info.Methods[method.Name.Content] = append(overloads, signature)
}

func (a *analyzer) registerConstructor(info *AggregateInfo, constructor *ast.Constructor) {
	signature := FunctionSignature{
		NameToken:   constructor.Name,
		ReturnType:  TypeInfo{Name: info.QualifiedName},
		DisplayName: info.QualifiedName,
	}
	a.fillSignatureParameters(&signature, constructor.Parameters)

	if len(constructor.Parameters) == 0 {
		info.HasUserDefaultConstructor = true
	}
	info.HasExplicitConstructor = true

	a.enforceOverloadConsistency(info.Constructors, signature)
	info.Constructors = append(info.Constructors, signature)
}

func (a *analyzer) registerOperator(info *AggregateInfo, op *ast.Operator) {
	signature := FunctionSignature{
		NameToken:        op.Symbol,
		ReturnType:       a.resolveType(op.ReturnType, op.ReturnsReference, nil, false),
		ReturnsReference: op.ReturnsReference,
		DisplayName:      info.QualifiedName + "::operator" + op.Symbol.Content,
		IsMethod:         true,
	}
	a.fillSignatureParameters(&signature, op.Parameters)

	opName := "operator" + op.Symbol.Content
	overloads := info.Operators[opName]
	a.enforceOverloadConsistency(overloads, signature)
	info.Operators[opName] = append(overloads, signature)
}

func (a *analyzer) registerVariable(variable *ast.Variable) {
	for i := range variable.Declaration.Declarators {
		declarator := &variable.Declaration.Declarators[i]
		t := a.resolveType(variable.Declaration.Type, declarator.IsReference, declarator.ArraySize, declarator.HasArraySuffix)
		symbol := Symbol{
			Token:        declarator.Name,
			Type:         t,
			IsAssignable: !t.IsConst,
		}
		qualified := a.qualify(declarator.Name)
		if _, exists := a.globals[qualified]; exists {
			a.errorf(declarator.Name, "Variable '%s' already defined", qualified)
			continue
		}
		a.globals[qualified] = symbol
		a.globalOrder = append(a.globalOrder, qualified)
	}
}

func (a *analyzer) registerFunction(function *ast.Function) {
	qualified := a.qualify(function.Name)
	signature := FunctionSignature{
		NameToken:        function.Name,
		ReturnType:       a.resolveType(function.ReturnType, function.ReturnsReference, nil, false),
		ReturnsReference: function.ReturnsReference,
		DisplayName:      qualified,
	}
	a.fillSignatureParameters(&signature, function.Parameters)

	overloads := a.functions[qualified]
	a.enforceOverloadConsistency(overloads, signature)
	a.functions[qualified] = append(overloads, signature)
}

func (a *analyzer) registerStageFunction(stageFunction *ast.StageFunction) {
	slot := &a.vertex
	if stageFunction.Stage == ast.StageFragmentPass {
		slot = &a.fragment
	}
	if slot.defined {
		a.errorf(stageFunction.StageToken, "Duplicate %s() definition", stageFunction.Stage)
		return
	}
	slot.defined = true
	slot.token = stageFunction.StageToken
}

func (a *analyzer) registerPipeline(pipeline *ast.Pipeline) {
	if len(pipeline.PayloadType.Name.Parts) == 0 {
		return
	}
	payloadType := a.resolveType(pipeline.PayloadType, false, nil, false)
	if payloadType.IsArray && !payloadType.HasArraySize {
		a.errorf(pipeline.PayloadType.Name.First(), "Unsized arrays are only allowed inside DataBlocks")
	}
	name := pipeline.Variable.Content
	symbol := Symbol{
		Token:        pipeline.Variable,
		Type:         payloadType,
		IsAssignable: !payloadType.IsConst,
	}
	if _, exists := a.pipelineVariables[name]; exists {
		a.errorf(pipeline.Variable, "Pipeline variable '%s' already defined", name)
	} else {
		a.pipelineVariables[name] = symbol
	}

	a.stagePipeline[stageIndex(pipeline.Source)][name] = symbol
	a.stagePipeline[stageIndex(pipeline.Destination)][name] = symbol
	if pipeline.Source == ast.StageVertexPass && pipeline.Destination == ast.StageFragmentPass {
		a.stageRequired[stageIndex(ast.StageVertexPass)][name] = true
	}
	if pipeline.Source == ast.StageFragmentPass && pipeline.Destination == ast.StageOutput {
		a.stageRequired[stageIndex(ast.StageFragmentPass)][name] = true
	}

	if !isAllowedPipelineType(payloadType.Name) {
		a.errorf(pipeline.PayloadType.Name.First(), "Pipeline payload type must be a native scalar, vector, matrix, or Color")
	}
	if payloadType.Name == "Texture" {
		a.errorf(pipeline.PayloadType.Name.First(), "Textures cannot travel through the pipeline flow")
	}
}

// --- shared helpers -------------------------------------------------------

// resolveType resolves an AST type reference plus declarator decorations
// into a TypeInfo. A nil arrayExpr with hasArraySuffix set produces an
// unsized array.
func (a *analyzer) resolveType(t ast.TypeName, isReference bool, arrayExpr ast.Expression, hasArraySuffix bool) TypeInfo {
	info := TypeInfo{
		IsConst:     t.IsConst,
		IsReference: isReference,
	}
	if len(t.Name.Parts) > 0 {
		info.Name = a.resolveTypeName(t.Name, t.Name.First())
	}
	if hasArraySuffix {
		info.IsArray = true
		info.HasArraySize = arrayExpr != nil
		if arrayExpr != nil {
			if literal, ok := arrayExpr.(*ast.Literal); ok {
				if size, err := strconv.ParseUint(strings.TrimRight(literal.Value.Content, "uU"), 0, 32); err == nil {
					info.ArraySize = int(size)
					info.ArraySizeKnown = true
				}
			}
		}
	}
	return info
}

func (a *analyzer) resolveTypeName(name ast.Name, errorToken token.Token) string {
	if resolved, ok := a.lookupTypeName(name); ok {
		return resolved
	}
	unknown := name.String()
	if unknown == "" {
		unknown = "<anonymous>"
	}
	a.errorf(errorToken, "Unknown type '%s'", unknown)
	return ""
}

// fillSignatureParameters resolves the parameter types and builds the
// display name «qualified(type, type)» used in diagnostics.
func (a *analyzer) fillSignatureParameters(signature *FunctionSignature, parameters []ast.Parameter) {
	var label strings.Builder
	label.WriteString(signature.DisplayName)
	label.WriteByte('(')
	for i := range parameters {
		if i > 0 {
			label.WriteString(", ")
		}
		param := &parameters[i]
		t := a.resolveType(param.Type, param.IsReference, nil, false)
		signature.Parameters = append(signature.Parameters, t)
		label.WriteString(t.String())
	}
	label.WriteByte(')')
	signature.DisplayName = label.String()
}

// enforceOverloadConsistency checks a new overload against the existing
// list: all overloads share the return type, and no two share a
// parameter list.
func (a *analyzer) enforceOverloadConsistency(existing []FunctionSignature, candidate FunctionSignature) {
	for _, signature := range existing {
		if !typeEquals(signature.ReturnType, candidate.ReturnType) ||
			signature.ReturnsReference != candidate.ReturnsReference {
			a.errorf(candidate.NameToken, "All overloads of '%s' must share the same return type", signature.DisplayName)
		}
		if len(signature.Parameters) == len(candidate.Parameters) {
			same := true
			for i := range signature.Parameters {
				if !typeEquals(signature.Parameters[i], candidate.Parameters[i]) {
					same = false
					break
				}
			}
			if same {
				a.errorf(candidate.NameToken, "Duplicate overload of '%s'", signature.DisplayName)
			}
		}
	}
}

// canExplicitlyConvert reports whether a builtin single-argument
// constructor accepts a value of the given type.
func (a *analyzer) canExplicitlyConvert(from TypeInfo, to string) bool {
	if from.IsArray {
		return false
	}
	base := stripReference(from)
	if base.Name == to {
		return true
	}
	if isNumericType(base.Name) && isNumericType(to) {
		return true
	}
	if to == "bool" && isNumericType(base.Name) {
		return true
	}
	return false
}

// ensureDefaultConstructorAvailable diagnoses aggregate declarations
// without initializer when no zero-argument constructor exists.
func (a *analyzer) ensureDefaultConstructorAvailable(t TypeInfo, at token.Token) {
	base := stripReference(t)
	if base.Name == "" || base.Name == "Texture" {
		return
	}
	info, ok := a.aggregates[base.Name]
	if !ok {
		return
	}
	for _, signature := range info.Constructors {
		if len(signature.Parameters) == 0 {
			return
		}
	}
	a.errorf(at, "No default constructor available for type '%s'", base.Name)
}

func (a *analyzer) finalize() {
	if !a.vertex.defined {
		a.errorf(syntheticStageToken(ast.StageVertexPass), "Missing VertexPass() stage function")
	}
	if !a.fragment.defined {
		a.errorf(syntheticStageToken(ast.StageFragmentPass), "Missing FragmentPass() stage function")
	}
}
