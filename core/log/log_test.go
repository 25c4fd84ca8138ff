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

package log_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ereliastudio/lumina/core/log"
)

func TestSeverityFilter(t *testing.T) {
	var output strings.Builder
	ctx := log.PutHandler(context.Background(), log.Writer(&output))

	log.D(ctx, "hidden %d", 1)
	log.I(ctx, "shown %d", 2)
	assert.NotContains(t, output.String(), "hidden")
	assert.Contains(t, output.String(), "I: shown 2")

	output.Reset()
	ctx = log.PutFilter(ctx, log.Debug)
	log.D(ctx, "now visible")
	assert.Contains(t, output.String(), "D: now visible")
}

func TestMissingHandlerIsSilent(t *testing.T) {
	// Must not panic.
	log.E(context.Background(), "nobody listens")
}
