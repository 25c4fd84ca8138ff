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

package main

import (
	"fmt"
	"strings"

	"github.com/ereliastudio/lumina/lumina/ast"
	"github.com/ereliastudio/lumina/lumina/token"
)

func dumpTokens(tokens []token.Token) {
	fmt.Printf("=== Tokens (%d) ===\n", len(tokens))
	for _, tok := range tokens {
		fmt.Printf("  %-20s %-4d:%-4d %q\n", tok.Type, tok.Start.Line, tok.Start.Column, tok.Content)
	}
}

func formatTypeName(t ast.TypeName) string {
	text := t.Name.String()
	if t.IsConst {
		return "const " + text
	}
	return text
}

func formatParameters(parameters []ast.Parameter) string {
	parts := make([]string, len(parameters))
	for i, parameter := range parameters {
		text := formatTypeName(parameter.Type)
		if parameter.IsReference {
			text += " &"
		}
		parts[i] = text + " " + parameter.Name.Content
	}
	return strings.Join(parts, ", ")
}

func dumpInstructions(instructions []ast.Instruction) {
	fmt.Printf("=== Instructions (%d) ===\n", len(instructions))
	dumpInstructionList(instructions, 1)
}

func dumpInstructionList(instructions []ast.Instruction, depth int) {
	pad := strings.Repeat("  ", depth)
	for _, instruction := range instructions {
		switch n := instruction.(type) {
		case *ast.Pipeline:
			fmt.Printf("%sPipeline %s -> %s : %s %s\n",
				pad, n.Source, n.Destination, formatTypeName(n.PayloadType), n.Variable.Content)
		case *ast.Variable:
			for i := range n.Declaration.Declarators {
				fmt.Printf("%sVariable %s %s\n",
					pad, formatTypeName(n.Declaration.Type), n.Declaration.Declarators[i].Name.Content)
			}
		case *ast.Function:
			fmt.Printf("%sFunction %s %s(%s)\n",
				pad, formatTypeName(n.ReturnType), n.Name.Content, formatParameters(n.Parameters))
		case *ast.StageFunction:
			fmt.Printf("%sStageFunction %s(%s)\n", pad, n.Stage, formatParameters(n.Parameters))
		case *ast.Namespace:
			fmt.Printf("%sNamespace %s\n", pad, n.Name.Content)
			dumpInstructionList(n.Instructions, depth+1)
		case *ast.Aggregate:
			fmt.Printf("%sAggregate %s %s (%d members)\n", pad, n.Kind, n.Name.Content, len(n.Members))
		}
	}
}
