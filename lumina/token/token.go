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

// Package token defines the lexical tokens of the Lumina shader language
// and their source positions.
package token

import "fmt"

// Location is a position inside a source file. Lines are 1-based; columns
// are 0-based: they start at 0 and reset to 0 after a newline.
type Location struct {
	Line   int
	Column int
}

// Token is a single lexical element scanned from a source file.
type Token struct {
	// Origin is the path of the file the token was scanned from.
	Origin string
	// Type classifies the token.
	Type Type
	// Content is the raw text of the token.
	Content string
	// Start is the position of the first character of the token.
	Start Location
	// End is the position just after the last character of the token.
	End Location
}

// String returns a compact representation used by debug dumps.
func (t Token) String() string {
	return fmt.Sprintf("%s:%d:%d: %s %q", t.Origin, t.Start.Line, t.Start.Column, t.Type, t.Content)
}
