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
	"text/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isolenta/bc80-sub000/node"
)

// fakeSink is a minimal Sink for exercising Encode/Disassemble without the
// full compile driver: integer literals (and a negated integer literal, as
// an "(IX-d)" displacement produces) count as resolved; anything else is
// returned unchanged and takes the placeholder/patch path.
type fakeSink struct {
	pc    int64
	bytes []byte
}

func (s *fakeSink) Byte(v byte)   { s.bytes = append(s.bytes, v); s.pc++ }
func (s *fakeSink) Word(v uint16) { s.Byte(byte(v)); s.Byte(byte(v >> 8)) }
func (s *fakeSink) PC() int64     { return s.pc }
func (s *fakeSink) Eval(e *node.Expr) (*node.Expr, error) {
	if e.Kind == node.ExprUnary && e.Op == "-" && e.X.IsInt() {
		return node.Int(e.Pos, -e.X.IntVal), nil
	}
	return e, nil
}
func (s *fakeSink) AddPatch(expr *node.Expr, width int, relative bool, instrPC int64, pos node.Pos) {
}
func (s *fakeSink) Fatalf(pos node.Pos, format string, args ...interface{}) error {
	return &fakeErr{}
}
func (s *fakeSink) Warnf(pos node.Pos, format string, args ...interface{}) {}

type fakeErr struct{}

func (*fakeErr) Error() string { return "encode error" }

func encodeOne(t *testing.T, mnemonic string, args ...*node.Expr) []byte {
	t.Helper()
	s := &fakeSink{}
	err := Encode(s, scanner.Position{}, mnemonic, args)
	require.NoError(t, err)
	return s.bytes
}

func imm(v int64) *node.Expr { return node.Int(scanner.Position{}, v) }
func reg(name string) *node.Expr { return node.Id(scanner.Position{}, name) }
func ref(inner *node.Expr) *node.Expr {
	return &node.Expr{Kind: node.ExprSimple, IsReference: true, X: inner}
}
func idxRef(base string, op string, d int64) *node.Expr {
	return ref(&node.Expr{Kind: node.ExprBinary, Op: op, X: reg(base), Y: imm(d)})
}

func TestEncodeBasicSingleByte(t *testing.T) {
	assert.Equal(t, []byte{0x00}, encodeOne(t, "nop"))
	assert.Equal(t, []byte{0x76}, encodeOne(t, "halt"))
	assert.Equal(t, []byte{0xF3}, encodeOne(t, "di"))
	assert.Equal(t, []byte{0xD9}, encodeOne(t, "exx"))
}

func TestEncodeLdRegReg(t *testing.T) {
	assert.Equal(t, []byte{0x78}, encodeOne(t, "ld", reg("a"), reg("b")))
	assert.Equal(t, []byte{0x41}, encodeOne(t, "ld", reg("b"), reg("c")))
}

func TestEncodeLdImm8(t *testing.T) {
	assert.Equal(t, []byte{0x3E, 42}, encodeOne(t, "ld", reg("a"), imm(42)))
}

func TestEncodeLdImm16(t *testing.T) {
	assert.Equal(t, []byte{0x21, 0x34, 0x12}, encodeOne(t, "ld", reg("hl"), imm(0x1234)))
}

func TestEncodeLdIndexedOffset(t *testing.T) {
	assert.Equal(t, []byte{0xDD, 0x7E, 0x01}, encodeOne(t, "ld", reg("a"), idxRef("ix", "+", 1)))
	assert.Equal(t, []byte{0xDD, 0x7E, 0xFF}, encodeOne(t, "ld", reg("a"), idxRef("ix", "-", 1)))
}

func TestEncodeLdIndexedImm(t *testing.T) {
	assert.Equal(t, []byte{0xDD, 0x36, 0x02, 0x09}, encodeOne(t, "ld", idxRef("ix", "+", 2), imm(9)))
}

func TestEncodeLdMemoryForms(t *testing.T) {
	assert.Equal(t, []byte{0x0A}, encodeOne(t, "ld", reg("a"), ref(reg("bc"))))
	assert.Equal(t, []byte{0x32, 0x00, 0x80}, encodeOne(t, "ld", ref(imm(0x8000)), reg("a")))
}

func TestEncodeAluTwoAndOneOperand(t *testing.T) {
	assert.Equal(t, []byte{0x80}, encodeOne(t, "add", reg("a"), reg("b")))
	assert.Equal(t, []byte{0xA0}, encodeOne(t, "and", reg("b")))
	assert.Equal(t, []byte{0xFE, 0x05}, encodeOne(t, "cp", imm(5)))
}

func TestEncodeAdd16(t *testing.T) {
	assert.Equal(t, []byte{0x09}, encodeOne(t, "add", reg("hl"), reg("bc")))
	assert.Equal(t, []byte{0xDD, 0x29}, encodeOne(t, "add", reg("ix"), reg("ix")))
}

func TestEncodeIncDec(t *testing.T) {
	assert.Equal(t, []byte{0x3C}, encodeOne(t, "inc", reg("a")))
	assert.Equal(t, []byte{0x0B}, encodeOne(t, "dec", reg("bc")))
	assert.Equal(t, []byte{0xDD, 0x23}, encodeOne(t, "inc", reg("ix")))
}

func TestEncodePushPop(t *testing.T) {
	assert.Equal(t, []byte{0xC5}, encodeOne(t, "push", reg("bc")))
	assert.Equal(t, []byte{0xFD, 0xE1}, encodeOne(t, "pop", reg("iy")))
}

func TestEncodeJpAndCall(t *testing.T) {
	assert.Equal(t, []byte{0xC3, 0x00, 0x10}, encodeOne(t, "jp", imm(0x1000)))
	assert.Equal(t, []byte{0xCA, 0x00, 0x10}, encodeOne(t, "jp", reg("z"), imm(0x1000)))
	assert.Equal(t, []byte{0xCD, 0x00, 0x10}, encodeOne(t, "call", imm(0x1000)))
	assert.Equal(t, []byte{0xE9}, encodeOne(t, "jp", ref(reg("hl"))))
}

func TestEncodeJrForward(t *testing.T) {
	s := &fakeSink{pc: 0x8000}
	err := Encode(s, scanner.Position{}, "jr", []*node.Expr{imm(0x8002)})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x18, 0x00}, s.bytes)
}

func TestEncodeJrBackward(t *testing.T) {
	s := &fakeSink{pc: 0x8000}
	err := Encode(s, scanner.Position{}, "jr", []*node.Expr{imm(0x7F82)})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x18, 0x80}, s.bytes)
}

// A bare symbol name (as opposed to a register) used as a JP target must
// classify as an address operand, not fail with "requires an address":
// classify's Operand.Expr has to be populated for plain identifiers too.
func TestEncodeJpToBareSymbol(t *testing.T) {
	assert.Equal(t, []byte{0xC3, 0x00, 0x00}, encodeOne(t, "jp", reg("start")))
}

func TestEncodeCallToBareSymbol(t *testing.T) {
	assert.Equal(t, []byte{0xCD, 0x00, 0x00}, encodeOne(t, "call", reg("routine")))
}

func TestEncodeJrOutOfRange(t *testing.T) {
	s := &fakeSink{pc: 0x8000}
	err := Encode(s, scanner.Position{}, "jr", []*node.Expr{imm(0x9000)})
	assert.Error(t, err)
}

func TestEncodeJrRejectsPEandM(t *testing.T) {
	s := &fakeSink{}
	err := Encode(s, scanner.Position{}, "jr", []*node.Expr{reg("pe"), imm(0)})
	assert.Error(t, err)
	err = Encode(&fakeSink{}, scanner.Position{}, "jr", []*node.Expr{reg("m"), imm(0)})
	assert.Error(t, err)
}

func TestEncodeRst(t *testing.T) {
	assert.Equal(t, []byte{0xEF}, encodeOne(t, "rst", imm(40)))
}

func TestEncodeBitSetRes(t *testing.T) {
	assert.Equal(t, []byte{0xCB, 0x47}, encodeOne(t, "bit", imm(0), reg("a")))
	assert.Equal(t, []byte{0xCB, 0xC6}, encodeOne(t, "set", imm(0), ref(reg("hl"))))
	assert.Equal(t, []byte{0xDD, 0xCB, 0x02, 0x86}, encodeOne(t, "res", imm(0), idxRef("ix", "+", 2)))
}

func TestEncodeOutCZero(t *testing.T) {
	assert.Equal(t, []byte{0xED, 0x71}, encodeOne(t, "out", ref(reg("c")), imm(0)))
}

func TestEncodeUnknownMnemonic(t *testing.T) {
	s := &fakeSink{}
	err := Encode(s, scanner.Position{}, "frobnicate", nil)
	assert.Error(t, err)
}

func TestEncodeWrongArity(t *testing.T) {
	s := &fakeSink{}
	err := Encode(s, scanner.Position{}, "nop", []*node.Expr{imm(1)})
	assert.Error(t, err)
}
