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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isolenta/bc80-sub000/z80"
)

func TestRewriteTargetsInsertsLabel(t *testing.T) {
	ln := z80.Line{Addr: 0, Bytes: []byte{0xC3, 0x00, 0x80}, Text: "jp 8000h"}
	got := rewriteTargets(ln, map[int64]bool{0x8000: true})
	assert.Equal(t, "jp L8000", got)
}

func TestRewriteTargetsLeavesNonBranchAlone(t *testing.T) {
	ln := z80.Line{Addr: 0, Bytes: []byte{0x3E, 0x2A}, Text: "ld a,2Ah"}
	got := rewriteTargets(ln, map[int64]bool{0x2A: true})
	assert.Equal(t, "ld a,2Ah", got)
}

func TestCollectJumpTargetsIgnoresUnreferencedAddress(t *testing.T) {
	lines := []z80.Line{{Text: "nop"}, {Text: "ld a,2Ah"}}
	targets := map[int64]bool{}
	collectJumpTargets(lines, targets)
	assert.Empty(t, targets)
}

func TestCollectJumpTargetsFindsCallAndJr(t *testing.T) {
	lines := []z80.Line{
		{Text: "call 0200h"},
		{Text: "jr 8010h"},
	}
	targets := map[int64]bool{}
	collectJumpTargets(lines, targets)
	assert.True(t, targets[0x0200])
	assert.True(t, targets[0x8010])
}
