// This file is part of bc80-sub000 - https://github.com/isolenta/bc80-sub000
//
// Copyright 2026 The bc80-sub000 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diag

import (
	"bytes"
	"strings"
	"testing"
	"text/scanner"

	"github.com/stretchr/testify/assert"
)

func TestWarnDoesNotAbort(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)
	r.Warn(scanner.Position{Filename: "f.z80", Line: 3, Column: 1}, KindEncoder, "truncated value %d", 300)
	assert.False(t, r.HasErrors())
	assert.False(t, r.Aborted())
	r.Flush()
	assert.Contains(t, buf.String(), "f.z80:3:1")
	assert.Contains(t, buf.String(), "truncated value 300")
}

func TestFatalfRecordsError(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)
	err := r.Fatalf(scanner.Position{Filename: "f.z80", Line: 10}, KindSymbol, "unresolved symbol %q", "foo")
	assert.Error(t, err)
	assert.True(t, r.HasErrors())
	assert.True(t, strings.Contains(err.Error(), "unresolved symbol"))
}

func TestAbortsAfterMaxErrors(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)
	for i := 0; i < maxErrors; i++ {
		r.Fatalf(scanner.Position{}, KindParse, "err %d", i)
	}
	assert.True(t, r.Aborted())
}
