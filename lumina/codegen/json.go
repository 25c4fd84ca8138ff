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
)

// The manifest is emitted textually so the byte-level format is under
// our control: two-space indentation, declaration-ordered keys, empty
// arrays rendered «[]» on one line. encoding/json would reorder nothing
// here, but it escapes differently and owns the indentation rules.

const hexDigits = "0123456789ABCDEF"

func jsonEscape(value string) string {
	var out strings.Builder
	out.Grow(len(value) + 8)
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch c {
		case '\\':
			out.WriteString(`\\`)
		case '"':
			out.WriteString(`\"`)
		case '\b':
			out.WriteString(`\b`)
		case '\f':
			out.WriteString(`\f`)
		case '\n':
			out.WriteString(`\n`)
		case '\r':
			out.WriteString(`\r`)
		case '\t':
			out.WriteString(`\t`)
		default:
			if c < 0x20 {
				out.WriteString(`\u00`)
				out.WriteByte(hexDigits[c>>4])
				out.WriteByte(hexDigits[c&0x0F])
			} else {
				out.WriteByte(c)
			}
		}
	}
	return out.String()
}

type jsonWriter struct {
	out strings.Builder
}

func (w *jsonWriter) indent(n int) {
	for i := 0; i < n; i++ {
		w.out.WriteByte(' ')
	}
}

func (w *jsonWriter) str(text string) {
	w.out.WriteByte('"')
	w.out.WriteString(jsonEscape(text))
	w.out.WriteByte('"')
}

func (w *jsonWriter) raw(text string) {
	w.out.WriteString(text)
}

func (w *jsonWriter) key(indent int, name string) {
	w.indent(indent)
	w.str(name)
	w.raw(": ")
}

// array writes a JSON array with one entry per line, or «[]» when empty.
func (w *jsonWriter) array(indent, count int, writeEntry func(index, entryIndent int)) {
	if count == 0 {
		w.raw("[]")
		return
	}
	w.raw("[\n")
	for i := 0; i < count; i++ {
		writeEntry(i, indent+2)
		if i+1 < count {
			w.raw(",\n")
		} else {
			w.raw("\n")
		}
	}
	w.indent(indent)
	w.raw("]")
}

func (w *jsonWriter) blockMember(member *BlockMember, indent int) {
	w.indent(indent)
	w.raw("{\n")

	w.key(indent+2, "name")
	w.str(member.Name)
	w.raw(",\n")

	w.key(indent+2, "offset")
	w.raw(strconv.Itoa(member.Offset))
	w.raw(",\n")

	w.key(indent+2, "type")
	w.str(member.Kind)
	w.raw(",\n")

	hasArrayInfo := member.Kind == "Array"
	hasNested := len(member.Members) > 0

	w.key(indent+2, "size")
	w.raw(strconv.Itoa(member.Size))
	if hasArrayInfo || hasNested {
		w.raw(",\n")
	} else {
		w.raw("\n")
	}

	if hasArrayInfo {
		w.key(indent+2, "elementSize")
		w.raw(strconv.Itoa(member.ElementSize))
		w.raw(",\n")

		w.key(indent+2, "nbElements")
		w.raw(strconv.Itoa(member.ElementCount))
		if hasNested {
			w.raw(",\n")
		} else {
			w.raw("\n")
		}
	}

	if hasNested {
		w.key(indent+2, "members")
		w.blockMembers(member.Members, indent+2)
		w.raw("\n")
	}

	w.indent(indent)
	w.raw("}")
}

func (w *jsonWriter) blockMembers(members []BlockMember, indent int) {
	w.array(indent, len(members), func(i, entryIndent int) {
		w.blockMember(&members[i], entryIndent)
	})
}

func (w *jsonWriter) dynamicArray(layout *DynamicArrayLayout, indent int) {
	w.indent(indent)
	w.raw("{\n")

	w.key(indent+2, "name")
	w.str(layout.Name)
	w.raw(",\n")

	w.key(indent+2, "offset")
	w.raw(strconv.Itoa(layout.Offset))
	w.raw(",\n")

	w.key(indent+2, "elementStride")
	w.raw(strconv.Itoa(layout.ElementStride))
	w.raw(",\n")

	w.key(indent+2, "elementPadding")
	w.raw(strconv.Itoa(layout.ElementPadding))
	if len(layout.Members) > 0 {
		w.raw(",\n")
		w.key(indent+2, "members")
		w.blockMembers(layout.Members, indent+2)
		w.raw("\n")
	} else {
		w.raw("\n")
	}

	w.indent(indent)
	w.raw("}")
}

func (w *jsonWriter) stageIO(entry *StageIO, indent int) {
	w.indent(indent)
	w.raw("{\n")
	w.key(indent+2, "location")
	w.raw(strconv.Itoa(entry.Location))
	w.raw(",\n")
	w.key(indent+2, "type")
	w.str(entry.Type)
	w.raw(",\n")
	w.key(indent+2, "name")
	w.str(entry.Name)
	w.raw("\n")
	w.indent(indent)
	w.raw("}")
}

func (w *jsonWriter) blockDefinition(block *BlockDefinition, indent int) {
	w.indent(indent)
	w.raw("{\n")

	w.key(indent+2, "name")
	w.str(block.Name)
	w.raw(",\n")

	w.key(indent+2, "type")
	w.str(block.Type)
	w.raw(",\n")

	w.key(indent+2, "size")
	w.raw(strconv.Itoa(block.Size))
	w.raw(",\n")

	w.key(indent+2, "members")
	w.blockMembers(block.Members, indent+2)

	if block.DynamicArray != nil {
		w.raw(",\n")
		w.key(indent+2, "dynamicArrayLayout")
		w.dynamicArray(block.DynamicArray, indent+2)
		w.raw("\n")
	} else {
		w.raw("\n")
	}

	w.indent(indent)
	w.raw("}")
}

// emitJSON renders the complete manifest.
func emitJSON(ctx *layoutContext, vertexSource, fragmentSource string) string {
	w := &jsonWriter{}
	w.raw("{\n")

	w.key(2, "shader")
	w.raw("{\n")
	w.key(4, "sources")
	w.raw("{\n")
	w.key(6, "vertex")
	w.str(vertexSource)
	w.raw(",\n")
	w.key(6, "fragment")
	w.str(fragmentSource)
	w.raw("\n")
	w.indent(4)
	w.raw("}\n")
	w.indent(2)
	w.raw("},\n")

	w.key(2, "layouts")
	w.array(2, len(ctx.layouts), func(i, indent int) {
		w.stageIO(&ctx.layouts[i], indent)
	})
	w.raw(",\n")

	w.key(2, "framebuffers")
	w.array(2, len(ctx.framebuffers), func(i, indent int) {
		w.stageIO(&ctx.framebuffers[i], indent)
	})
	w.raw(",\n")

	w.key(2, "textures")
	w.array(2, len(ctx.textures), func(i, indent int) {
		entry := &ctx.textures[i]
		w.indent(indent)
		w.raw("{\n")
		w.key(indent+2, "location")
		w.raw(strconv.Itoa(entry.Location))
		w.raw(",\n")
		w.key(indent+2, "luminaName")
		w.str(entry.LuminaName)
		w.raw(",\n")
		w.key(indent+2, "type")
		w.str(entry.Type)
		w.raw(",\n")
		w.key(indent+2, "scope")
		w.str(entry.Scope.String())
		w.raw("\n")
		w.indent(indent)
		w.raw("}")
	})
	w.raw(",\n")

	w.key(2, "constants")
	w.array(2, len(ctx.constants), func(i, indent int) {
		w.blockDefinition(&ctx.constants[i], indent)
	})
	w.raw(",\n")

	w.key(2, "attributes")
	w.array(2, len(ctx.attributes), func(i, indent int) {
		w.blockDefinition(&ctx.attributes[i], indent)
	})
	w.raw("\n")

	w.raw("}\n")
	return w.out.String()
}
