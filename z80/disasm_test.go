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

package z80

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disasmOne(t *testing.T, code []byte) Line {
	t.Helper()
	lines := Disassemble(code, 0)
	require.Len(t, lines, 1)
	return lines[0]
}

func TestDisassembleBasic(t *testing.T) {
	assert.Equal(t, "nop", disasmOne(t, []byte{0x00}).Text)
	assert.Equal(t, "halt", disasmOne(t, []byte{0x76}).Text)
	assert.Equal(t, "ld a,b", disasmOne(t, []byte{0x78}).Text)
	assert.Equal(t, "ld a,2Ah", disasmOne(t, []byte{0x3E, 0x2A}).Text)
}

func TestDisassembleJpCall(t *testing.T) {
	assert.Equal(t, "jp 1000h", disasmOne(t, []byte{0xC3, 0x00, 0x10}).Text)
	assert.Equal(t, "call 1000h", disasmOne(t, []byte{0xCD, 0x00, 0x10}).Text)
	assert.Equal(t, "jp (hl)", disasmOne(t, []byte{0xE9}).Text)
}

func TestDisassembleIndexedOffset(t *testing.T) {
	assert.Equal(t, "ld a,(ix+01h)", disasmOne(t, []byte{0xDD, 0x7E, 0x01}).Text)
	assert.Equal(t, "ld a,(ix-01h)", disasmOne(t, []byte{0xDD, 0x7E, 0xFF}).Text)
}

func TestDisassembleCBIndexed(t *testing.T) {
	assert.Equal(t, "res 0,(ix+02h)", disasmOne(t, []byte{0xDD, 0xCB, 0x02, 0x86}).Text)
}

func TestDisassembleUnknownByteFallsBackToDefb(t *testing.T) {
	// ED 00 is not a recognised ED-prefixed opcode; it still yields a
	// line per byte consumed rather than losing sync with the rest of
	// the stream.
	lines := Disassemble([]byte{0xED, 0x00}, 0)
	require.Len(t, lines, 2)
	assert.Equal(t, "defb EDh", lines[0].Text)
	assert.Equal(t, "nop", lines[1].Text)
}

func TestDisassembleMultipleInstructionsAdvancesAddr(t *testing.T) {
	lines := Disassemble([]byte{0x00, 0x76}, 0x8000)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(0x8000), lines[0].Addr)
	assert.Equal(t, int64(0x8001), lines[1].Addr)
}
