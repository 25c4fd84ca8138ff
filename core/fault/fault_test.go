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

package fault_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/ereliastudio/lumina/core/fault"
)

const errTest = fault.Const("test failure")

func TestConstIsError(t *testing.T) {
	var err error = errTest
	assert.Equal(t, "test failure", err.Error())
}

func TestConstSurvivesWrapping(t *testing.T) {
	wrapped := errors.Wrap(errTest, "context")
	assert.Equal(t, errTest, errors.Cause(wrapped))
}
