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

	"github.com/ereliastudio/lumina/lumina/ast"
	"github.com/ereliastudio/lumina/lumina/token"
)

type scope struct {
	symbols map[string]Symbol
}

// functionContext carries the state of one body analysis: the lexical
// scope stack, the owning aggregate for methods, and the return
// contract.
type functionContext struct {
	scopes      []scope
	aggregate   *AggregateInfo
	methodConst bool

	returnType       TypeInfo
	returnsReference bool
	requiresValue    bool
	sawReturn        bool
	inConstructor    bool

	ownerToken  token.Token
	displayName string

	// requiredBuiltins maps stage identifiers that must be assigned to
	// whether an assignment was seen.
	requiredBuiltins map[string]bool
}

func (a *analyzer) pushScope(ctx *functionContext) {
	ctx.scopes = append(ctx.scopes, scope{symbols: map[string]Symbol{}})
}

func (a *analyzer) popScope(ctx *functionContext) {
	if len(ctx.scopes) > 0 {
		ctx.scopes = ctx.scopes[:len(ctx.scopes)-1]
	}
}

// declareSymbol binds name in the innermost scope. overrideName selects
// the binding key for imported symbols (stage builtins, globals, this).
func (a *analyzer) declareSymbol(ctx *functionContext, name token.Token, t TypeInfo, assignable bool, overrideName string) {
	if len(ctx.scopes) == 0 {
		a.pushScope(ctx)
	}
	key := overrideName
	if key == "" {
		key = a.qualify(name)
	}
	for _, s := range ctx.scopes {
		if _, exists := s.symbols[key]; exists {
			display := overrideName
			if display == "" {
				display = name.Content
			}
			a.errorf(name, "Identifier '%s' is already declared in this scope", display)
			return
		}
	}
	ctx.scopes[len(ctx.scopes)-1].symbols[key] = Symbol{
		Token:        name,
		Type:         t,
		IsAssignable: assignable,
	}
}

// lookupSymbol searches the scope stack innermost first, then the
// globals through the namespace stack, then the aggregate fields.
func (a *analyzer) lookupSymbol(ctx *functionContext, name ast.Name) (Symbol, bool) {
	if len(name.Parts) == 0 {
		return Symbol{}, false
	}

	if len(name.Parts) == 1 {
		simple := name.Parts[0].Content
		key := a.qualify(name.Parts[0])
		for i := len(ctx.scopes) - 1; i >= 0; i-- {
			if symbol, ok := ctx.scopes[i].symbols[key]; ok {
				return symbol, true
			}
			if symbol, ok := ctx.scopes[i].symbols[simple]; ok {
				return symbol, true
			}
		}
		for _, candidate := range a.namespaceCandidates(simple) {
			if symbol, ok := a.globals[candidate]; ok {
				return symbol, true
			}
		}
	} else {
		if symbol, ok := a.globals[name.String()]; ok {
			return symbol, true
		}
	}

	if ctx.aggregate != nil && len(name.Parts) == 1 {
		if field, ok := ctx.aggregate.field(name.Parts[0].Content); ok {
			symbol := Symbol{Token: field.NameToken, Type: field.Type}
			if ctx.methodConst && !ctx.inConstructor {
				symbol.Type.IsConst = true
			}
			symbol.IsAssignable = !symbol.Type.IsConst
			return symbol, true
		}
	}
	return Symbol{}, false
}

// markStageBuiltinAssignment records that a required stage identifier was
// written, following member and index chains back to their root.
func markStageBuiltinAssignment(ctx *functionContext, target ast.Expression) {
	if len(ctx.requiredBuiltins) == 0 {
		return
	}
	current := target
	for current != nil {
		switch n := current.(type) {
		case *ast.Identifier:
			if len(n.Name.Parts) != 1 {
				return
			}
			name := n.Name.Parts[0].Content
			if _, ok := ctx.requiredBuiltins[name]; ok {
				ctx.requiredBuiltins[name] = true
			}
			return
		case *ast.MemberAccess:
			current = n.Object
		case *ast.IndexAccess:
			current = n.Object
		default:
			return
		}
	}
}

// expressionToken finds a representative token of an expression for
// diagnostics, falling back when the tree carries none.
func expressionToken(e ast.Expression, fallback token.Token) token.Token {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Value
	case *ast.ArrayLiteral:
		return n.LeftBrace
	case *ast.Identifier:
		if len(n.Name.Parts) > 0 {
			return n.Name.Parts[0]
		}
	case *ast.Unary:
		if n.Operand != nil {
			return expressionToken(n.Operand, fallback)
		}
	case *ast.Binary:
		if n.OperatorToken.Content != "" {
			return n.OperatorToken
		}
		if n.Left != nil {
			return expressionToken(n.Left, fallback)
		}
	case *ast.Assignment:
		if n.Target != nil {
			return expressionToken(n.Target, fallback)
		}
	case *ast.Conditional:
		if n.Condition != nil {
			return expressionToken(n.Condition, fallback)
		}
	case *ast.Call:
		if n.Callee != nil {
			return expressionToken(n.Callee, fallback)
		}
	case *ast.MemberAccess:
		return n.Member
	case *ast.IndexAccess:
		if n.Object != nil {
			return expressionToken(n.Object, fallback)
		}
	case *ast.Postfix:
		if n.Operand != nil {
			return expressionToken(n.Operand, fallback)
		}
	}
	return fallback
}

func tokenOrFallback(tok, fallback token.Token) token.Token {
	if tok.Content != "" {
		return tok
	}
	return fallback
}

// --- pass 3: analyze bodies -----------------------------------------------

func (a *analyzer) analyzeInstruction(instruction ast.Instruction) {
	switch n := instruction.(type) {
	case *ast.Pipeline:
		a.analyzePipeline(n)
	case *ast.Variable:
		a.analyzeVariable(n)
	case *ast.Function:
		a.analyzeFunction(n)
	case *ast.StageFunction:
		a.analyzeStageFunction(n)
	case *ast.Aggregate:
		a.analyzeAggregate(n)
	case *ast.Namespace:
		a.pushNamespace(n.Name)
		for _, child := range n.Instructions {
			a.analyzeInstruction(child)
		}
		a.popNamespace()
	}
}

func (a *analyzer) analyzePipeline(pipeline *ast.Pipeline) {
	if a.currentNamespace() != "" {
		a.errorf(pipeline.SourceToken, "Pipeline declarations must be placed at the global scope")
	}
	validFlow := (pipeline.Source == ast.StageInput && pipeline.Destination == ast.StageVertexPass) ||
		(pipeline.Source == ast.StageVertexPass && pipeline.Destination == ast.StageFragmentPass) ||
		(pipeline.Source == ast.StageFragmentPass && pipeline.Destination == ast.StageOutput)
	if !validFlow {
		a.errorf(pipeline.DestinationToken, "Invalid pipeline flow %s -> %s", pipeline.Source, pipeline.Destination)
	}
}

func (a *analyzer) analyzeVariable(variable *ast.Variable) {
	for i := range variable.Declaration.Declarators {
		declarator := &variable.Declaration.Declarators[i]
		t := a.resolveType(variable.Declaration.Type, declarator.IsReference, declarator.ArraySize, declarator.HasArraySuffix)
		typeValid := t.Valid()
		isTexture := t.Name == "Texture"
		unsizedArray := typeValid && t.IsArray && !t.HasArraySize

		if declarator.HasTextureBinding && !isTexture {
			a.errorf(a.textureBindingToken(declarator), "Only Texture declarations can use 'as constant' or 'as attribute'")
		}
		if unsizedArray {
			a.errorf(declarator.Name, "Unsized arrays are only allowed inside DataBlocks")
			continue
		}
		if typeValid && !isTexture && declarator.Initializer == nil && !declarator.IsReference {
			a.ensureDefaultConstructorAvailable(t, declarator.Name)
		}
		if declarator.Initializer != nil {
			ctx := &functionContext{ownerToken: declarator.Name}
			a.pushScope(ctx)
			a.declareSymbol(ctx, declarator.Name, t, !t.IsConst, "")
			value := a.evaluateExpression(declarator.Initializer, ctx, false)
			if typeValid && !typeAssignable(stripReference(t), stripReference(value.Type)) {
				a.errorf(declarator.Name, "Cannot assign type '%s' to variable '%s' of type '%s'",
					value.Type, declarator.Name.Content, t)
			}
			a.popScope(ctx)
		}
	}
}

func (a *analyzer) analyzeFunction(function *ast.Function) {
	ctx := &functionContext{
		returnType:       a.resolveType(function.ReturnType, function.ReturnsReference, nil, false),
		returnsReference: function.ReturnsReference,
		ownerToken:       function.Name,
		displayName:      a.qualify(function.Name),
	}
	ctx.requiresValue = !isVoidType(ctx.returnType)

	a.pushScope(ctx)
	for i := range function.Parameters {
		parameter := &function.Parameters[i]
		t := a.resolveType(parameter.Type, parameter.IsReference, nil, false)
		a.declareSymbol(ctx, parameter.Name, t, !t.IsConst, "")
	}
	if function.Body != nil {
		a.analyzeBlock(function.Body, ctx)
	}
	if ctx.requiresValue && !ctx.sawReturn {
		a.errorf(function.Name, "Function '%s' must return a value", ctx.displayName)
	}
}

// sortedNames gives a deterministic import order for map-held symbols.
func sortedNames(symbols map[string]Symbol) []string {
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *analyzer) analyzeStageFunction(stageFunction *ast.StageFunction) {
	if a.currentNamespace() != "" {
		a.errorf(stageFunction.StageToken, "Stage functions must be declared in the global scope")
		return
	}

	ctx := &functionContext{
		returnType:       TypeInfo{Name: "void"},
		ownerToken:       stageFunction.StageToken,
		displayName:      stageFunction.Stage.String(),
		requiredBuiltins: map[string]bool{},
	}
	for name := range a.stageRequired[stageIndex(stageFunction.Stage)] {
		ctx.requiredBuiltins[name] = false
	}

	a.pushScope(ctx)

	builtins := a.stageBuiltins[stageIndex(stageFunction.Stage)]
	for _, name := range sortedNames(builtins) {
		symbol := builtins[name]
		a.declareSymbol(ctx, symbol.Token, symbol.Type, false, name)
	}
	pipelineSymbols := a.stagePipeline[stageIndex(stageFunction.Stage)]
	for _, name := range sortedNames(pipelineSymbols) {
		symbol := pipelineSymbols[name]
		a.declareSymbol(ctx, symbol.Token, symbol.Type, !symbol.Type.IsConst, name)
	}
	for _, name := range a.globalOrder {
		symbol := a.globals[name]
		a.declareSymbol(ctx, symbol.Token, symbol.Type, !symbol.Type.IsConst, name)
	}

	for i := range stageFunction.Parameters {
		parameter := &stageFunction.Parameters[i]
		t := a.resolveType(parameter.Type, parameter.IsReference, nil, false)
		a.declareSymbol(ctx, parameter.Name, t, !t.IsConst, "")
	}

	if stageFunction.Body != nil {
		a.analyzeBlock(stageFunction.Body, ctx)
	}

	required := make([]string, 0, len(ctx.requiredBuiltins))
	for name := range ctx.requiredBuiltins {
		required = append(required, name)
	}
	sort.Strings(required)
	for _, name := range required {
		if !ctx.requiredBuiltins[name] {
			a.errorf(stageFunction.StageToken, "Stage '%s' must set %s", stageFunction.Stage, name)
		}
	}
}

func (a *analyzer) analyzeAggregate(aggregate *ast.Aggregate) {
	qualified := a.qualify(aggregate.Name)
	info := a.aggregates[qualified]

	for _, member := range aggregate.Members {
		switch m := member.(type) {
		case *ast.Field:
			t := a.resolveType(m.Declaration.Type, false, nil, false)
			if t.Name == "Texture" {
				a.errorf(m.Declaration.Type.Name.First(), "Textures cannot be declared inside struct fields")
			}
		case *ast.Method:
			a.analyzeMethod(qualified, info, m)
		case *ast.Constructor:
			a.analyzeConstructor(qualified, info, m)
		case *ast.Operator:
			a.analyzeOperator(qualified, info, m)
		}
	}

	if aggregate.Kind == ast.KindAttributeBlock || aggregate.Kind == ast.KindConstantBlock {
		if _, exists := a.globals[qualified]; !exists {
			a.globalOrder = append(a.globalOrder, qualified)
		}
		a.globals[qualified] = Symbol{
			Token: aggregate.Name,
			Type:  TypeInfo{Name: qualified},
		}
	}
}

// declareMembers makes «this» and the aggregate fields visible inside a
// member body.
func (a *analyzer) declareMembers(ctx *functionContext, info *AggregateInfo, at token.Token, thisConst bool, thisAssignable bool) {
	if info == nil {
		return
	}
	thisType := TypeInfo{
		Name:        info.QualifiedName,
		IsReference: true,
		IsConst:     thisConst,
	}
	a.declareSymbol(ctx, at, thisType, thisAssignable, "this")
	for _, field := range info.Fields {
		a.declareSymbol(ctx, field.NameToken, field.Type, !field.Type.IsConst, field.NameToken.Content)
	}
}

func (a *analyzer) analyzeMethod(qualifiedName string, info *AggregateInfo, method *ast.Method) {
	ctx := &functionContext{
		aggregate:        info,
		methodConst:      method.IsConst,
		returnType:       a.resolveType(method.ReturnType, method.ReturnsReference, nil, false),
		returnsReference: method.ReturnsReference,
		ownerToken:       method.Name,
		displayName:      qualifiedName + "::" + method.Name.Content,
	}
	ctx.requiresValue = !isVoidType(ctx.returnType)

	a.pushScope(ctx)
	a.declareMembers(ctx, info, method.Name, method.IsConst, !method.IsConst)
	for i := range method.Parameters {
		parameter := &method.Parameters[i]
		t := a.resolveType(parameter.Type, parameter.IsReference, nil, false)
		a.declareSymbol(ctx, parameter.Name, t, !t.IsConst, "")
	}
	if method.Body != nil {
		a.analyzeBlock(method.Body, ctx)
	}
	if ctx.requiresValue && !ctx.sawReturn {
		a.errorf(method.Name, "Function '%s' must return a value", ctx.displayName)
	}
}

func (a *analyzer) analyzeConstructor(qualifiedName string, info *AggregateInfo, constructor *ast.Constructor) {
	ctx := &functionContext{
		aggregate:     info,
		inConstructor: true,
		returnType:    TypeInfo{Name: "void"},
		ownerToken:    constructor.Name,
		displayName:   qualifiedName,
	}

	a.pushScope(ctx)
	a.declareMembers(ctx, info, constructor.Name, false, true)
	for i := range constructor.Parameters {
		parameter := &constructor.Parameters[i]
		t := a.resolveType(parameter.Type, parameter.IsReference, nil, false)
		a.declareSymbol(ctx, parameter.Name, t, !t.IsConst, "")
	}
	if constructor.Body != nil {
		a.analyzeBlock(constructor.Body, ctx)
	}
}

func (a *analyzer) analyzeOperator(qualifiedName string, info *AggregateInfo, op *ast.Operator) {
	ctx := &functionContext{
		aggregate:        info,
		returnType:       a.resolveType(op.ReturnType, op.ReturnsReference, nil, false),
		returnsReference: op.ReturnsReference,
		ownerToken:       op.Symbol,
		displayName:      qualifiedName + "::operator" + op.Symbol.Content,
	}
	ctx.requiresValue = !isVoidType(ctx.returnType)

	a.pushScope(ctx)
	a.declareMembers(ctx, info, op.Symbol, false, true)
	for i := range op.Parameters {
		parameter := &op.Parameters[i]
		t := a.resolveType(parameter.Type, parameter.IsReference, nil, false)
		a.declareSymbol(ctx, parameter.Name, t, !t.IsConst, "")
	}
	if op.Body != nil {
		a.analyzeBlock(op.Body, ctx)
	}
	if ctx.requiresValue && !ctx.sawReturn {
		a.errorf(op.Symbol, "Function '%s' must return a value", ctx.displayName)
	}
}

// --- statements -----------------------------------------------------------

func (a *analyzer) analyzeBlock(block *ast.Block, ctx *functionContext) {
	a.pushScope(ctx)
	for _, statement := range block.Statements {
		a.analyzeStatement(statement, ctx)
	}
	a.popScope(ctx)
}

func (a *analyzer) analyzeStatement(statement ast.Statement, ctx *functionContext) {
	switch n := statement.(type) {
	case *ast.Block:
		a.analyzeBlock(n, ctx)
	case *ast.ExpressionStatement:
		if n.Expression != nil {
			a.evaluateExpression(n.Expression, ctx, false)
		}
	case *ast.VariableStatement:
		a.analyzeVariableStatement(n, ctx)
	case *ast.If:
		a.analyzeIf(n, ctx)
	case *ast.While:
		a.analyzeLoop(n.Condition, n.Body, ctx)
	case *ast.DoWhile:
		a.analyzeLoop(n.Condition, n.Body, ctx)
	case *ast.For:
		a.analyzeFor(n, ctx)
	case *ast.Return:
		a.analyzeReturn(n, ctx)
	}
}

func (a *analyzer) analyzeVariableStatement(statement *ast.VariableStatement, ctx *functionContext) {
	for i := range statement.Declaration.Declarators {
		declarator := &statement.Declaration.Declarators[i]
		t := a.resolveType(statement.Declaration.Type, declarator.IsReference, declarator.ArraySize, declarator.HasArraySuffix)
		typeValid := t.Valid()
		unsizedArray := typeValid && t.IsArray && !t.HasArraySize
		if unsizedArray {
			a.errorf(declarator.Name, "Unsized arrays are only allowed inside DataBlocks")
			if declarator.Initializer != nil {
				a.evaluateExpression(declarator.Initializer, ctx, false)
			}
			continue
		}
		if declarator.HasTextureBinding && t.Name != "Texture" {
			a.errorf(a.textureBindingToken(declarator), "Only Texture declarations can use 'as constant' or 'as attribute'")
		}
		if t.Name == "Texture" {
			a.errorf(declarator.Name, "Textures can only be declared at the global scope")
			if declarator.Initializer != nil {
				a.evaluateExpression(declarator.Initializer, ctx, false)
			}
			continue
		}

		if typeValid && declarator.Initializer == nil && !declarator.IsReference {
			a.ensureDefaultConstructorAvailable(t, declarator.Name)
		}

		a.declareSymbol(ctx, declarator.Name, t, !t.IsConst, "")

		if typeValid && declarator.Initializer != nil {
			value := a.evaluateExpression(declarator.Initializer, ctx, false)
			if value.Type.Valid() && !typeAssignable(stripReference(t), stripReference(value.Type)) {
				a.errorf(declarator.Name, "Cannot assign type '%s' to variable '%s' of type '%s'",
					value.Type, declarator.Name.Content, t)
			}
		}
	}
}

func (a *analyzer) analyzeIf(statement *ast.If, ctx *functionContext) {
	if statement.Condition != nil {
		condition := a.evaluateExpression(statement.Condition, ctx, false)
		if condition.Type.Valid() && !isBooleanType(stripReference(condition.Type).Name) {
			a.errorf(ctx.ownerToken, "If condition must be boolean")
		}
	}
	if statement.Then != nil {
		a.analyzeStatement(statement.Then, ctx)
	}
	if statement.Else != nil {
		a.analyzeStatement(statement.Else, ctx)
	}
}

func (a *analyzer) analyzeLoop(condition ast.Expression, body ast.Statement, ctx *functionContext) {
	if condition != nil {
		value := a.evaluateExpression(condition, ctx, false)
		if value.Type.Valid() && !isBooleanType(stripReference(value.Type).Name) {
			a.errorf(ctx.ownerToken, "Loop condition must be boolean")
		}
	}
	if body != nil {
		a.analyzeStatement(body, ctx)
	}
}

func (a *analyzer) analyzeFor(statement *ast.For, ctx *functionContext) {
	a.pushScope(ctx)
	if statement.Initializer != nil {
		a.analyzeStatement(statement.Initializer, ctx)
	}
	if statement.Condition != nil {
		condition := a.evaluateExpression(statement.Condition, ctx, false)
		if condition.Type.Valid() && !isBooleanType(stripReference(condition.Type).Name) {
			a.errorf(ctx.ownerToken, "For-loop condition must be boolean")
		}
	}
	if statement.Body != nil {
		a.analyzeStatement(statement.Body, ctx)
	}
	if statement.Increment != nil {
		a.evaluateExpression(statement.Increment, ctx, false)
	}
	a.popScope(ctx)
}

func (a *analyzer) analyzeReturn(statement *ast.Return, ctx *functionContext) {
	if statement.Value == nil {
		if !isVoidType(ctx.returnType) && !ctx.inConstructor {
			a.errorf(ctx.ownerToken, "Function '%s' must return a value", ctx.displayName)
		}
		ctx.sawReturn = true
		return
	}

	value := a.evaluateExpression(statement.Value, ctx, false)
	if !value.Type.Valid() {
		ctx.sawReturn = true
		return
	}
	switch {
	case ctx.inConstructor:
		a.errorf(ctx.ownerToken, "Constructors may not return a value")
	case isVoidType(ctx.returnType):
		a.errorf(ctx.ownerToken, "Void functions may not return a value")
	case !typeEquals(stripReference(ctx.returnType), stripReference(value.Type)):
		a.errorf(ctx.ownerToken, "Function '%s' must return a value of type '%s'", ctx.displayName, ctx.returnType)
	case !ctx.returnsReference && value.Type.IsReference:
		a.errorf(ctx.ownerToken, "Function '%s' cannot return a reference value", ctx.displayName)
	case ctx.returnsReference && !value.IsLValue:
		a.errorf(ctx.ownerToken, "Function '%s' must return a reference value", ctx.displayName)
	default:
		ctx.sawReturn = true
	}
}
