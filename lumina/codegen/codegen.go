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

// Package codegen turns the analyzed instruction tree into the two GLSL
// 450 stage sources and the JSON manifest describing the shader's
// external interface.
package codegen

import "github.com/ereliastudio/lumina/lumina/sema"

// Output is the produced artifact set. JSON is the primary artifact;
// the stage sources are embedded in it and also exposed for the debug
// dumps.
type Output struct {
	JSON           string
	VertexSource   string
	FragmentSource string
}

// Generate consumes the analyzed program and produces the shader
// sources and the manifest. Given identical input the output is
// byte-identical across runs.
func Generate(result *sema.Result) Output {
	layout := buildLayoutContext(result.Instructions)

	emitter := newGLSLEmitter(result, layout)
	vertex, fragment := emitter.run()

	// Framebuffer locations are reassigned sequentially so gaps left by
	// rejected declarations never surface in the manifest.
	for i := range layout.framebuffers {
		layout.framebuffers[i].Location = i
	}

	return Output{
		JSON:           emitJSON(layout, vertex, fragment),
		VertexSource:   vertex,
		FragmentSource: fragment,
	}
}
