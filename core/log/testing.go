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

package log

import (
	"context"
	"testing"
)

// Testing returns a context that routes log messages through t.
func Testing(t *testing.T) context.Context {
	ctx := PutHandler(context.Background(), HandlerFunc(func(severity Severity, message string) {
		t.Logf("%s: %s", severity.Short(), message)
	}))
	return PutFilter(ctx, Debug)
}
