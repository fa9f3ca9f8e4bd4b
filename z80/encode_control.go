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

import "github.com/isolenta/bc80-sub000/node"

// encodeJp implements JP, per spec.md §4.4.
func encodeJp(sink Sink, pos node.Pos, ops []Operand) error {
	if len(ops) == 1 {
		op := ops[0]
		if op.Name == "hl" && op.IsRef {
			sink.Byte(0xE9)
			return nil
		}
		if (op.Name == "ix" || op.Name == "iy") && op.IsRef {
			sink.Byte(indexPrefix(iySel(op.Name)))
			sink.Byte(0xE9)
			return nil
		}
		if op.Expr != nil {
			sink.Byte(0xC3)
			return emitImm16(sink, pos, op.Expr)
		}
		return sink.Fatalf(pos, "JP requires an address, (HL), (IX) or (IY)")
	}
	cc, ok := condCodes[ops[0].Name]
	if !ok {
		return sink.Fatalf(pos, "JP: %q is not a condition", ops[0].Name)
	}
	if ops[1].Expr == nil {
		return sink.Fatalf(pos, "JP cc requires an address")
	}
	sink.Byte(0xC2 | byte(cc<<3))
	return emitImm16(sink, pos, ops[1].Expr)
}

// encodeJr implements JR, restricted to the NZ/Z/NC/C conditions, per
// spec.md §4.4.
func encodeJr(sink Sink, pos node.Pos, startPC int64, ops []Operand) error {
	if len(ops) == 1 {
		return emitRelative(sink, pos, startPC+2, 0x18, ops[0].Expr)
	}
	cc, ok := jrCondCodes[ops[0].Name]
	if !ok {
		return sink.Fatalf(pos, "JR accepts only NZ, Z, NC or C as a condition")
	}
	return emitRelative(sink, pos, startPC+2, 0x20|byte(cc<<3), ops[1].Expr)
}

// encodeDjnz implements DJNZ, per spec.md §4.4.
func encodeDjnz(sink Sink, pos node.Pos, startPC int64, ops []Operand) error {
	return emitRelative(sink, pos, startPC+2, 0x10, ops[0].Expr)
}

func emitRelative(sink Sink, pos node.Pos, instrPC int64, opcode byte, target *node.Expr) error {
	if target == nil {
		return sink.Fatalf(pos, "relative jump requires a target address")
	}
	// Evaluate the target before emitting the opcode byte, so a "$" inside
	// it resolves to this instruction's own start address rather than the
	// PC one byte further along.
	v, residual, ok, err := evalResolved(sink, target)
	if err != nil {
		return err
	}
	sink.Byte(opcode)
	if !ok {
		sink.AddPatch(residual, 1, true, instrPC, pos)
		sink.Byte(0)
		return nil
	}
	delta := v - instrPC
	if delta < -128 || delta > 127 {
		return sink.Fatalf(pos, "relative jump target out of range (%d bytes)", delta)
	}
	sink.Byte(byte(delta))
	return nil
}

// encodeCall implements CALL, per spec.md §4.4.
func encodeCall(sink Sink, pos node.Pos, ops []Operand) error {
	if len(ops) == 1 {
		if ops[0].Expr == nil {
			return sink.Fatalf(pos, "CALL requires an address")
		}
		sink.Byte(0xCD)
		return emitImm16(sink, pos, ops[0].Expr)
	}
	cc, ok := condCodes[ops[0].Name]
	if !ok {
		return sink.Fatalf(pos, "CALL: %q is not a condition", ops[0].Name)
	}
	if ops[1].Expr == nil {
		return sink.Fatalf(pos, "CALL cc requires an address")
	}
	sink.Byte(0xC4 | byte(cc<<3))
	return emitImm16(sink, pos, ops[1].Expr)
}

// encodeRet implements RET, per spec.md §4.4.
func encodeRet(sink Sink, pos node.Pos, ops []Operand) error {
	if len(ops) == 0 {
		sink.Byte(0xC9)
		return nil
	}
	cc, ok := condCodes[ops[0].Name]
	if !ok {
		return sink.Fatalf(pos, "RET: %q is not a condition", ops[0].Name)
	}
	sink.Byte(0xC0 | byte(cc<<3))
	return nil
}

// encodeRst implements RST; the restart target must be a compile-time
// constant multiple of 8 in [0,56], since it is folded into the opcode
// byte rather than emitted as a separate operand (spec.md §4.4 rstaddr).
func encodeRst(sink Sink, pos node.Pos, ops []Operand) error {
	if ops[0].Expr == nil {
		return sink.Fatalf(pos, "RST requires a restart address")
	}
	v, _, ok, err := evalResolved(sink, ops[0].Expr)
	if err != nil {
		return err
	}
	if !ok {
		return sink.Fatalf(pos, "RST target must be a compile-time constant")
	}
	if v < 0 || v > 56 || v%8 != 0 {
		return sink.Fatalf(pos, "RST target must be one of 0,8,16,...,56, got %d", v)
	}
	sink.Byte(0xC7 | byte(v))
	return nil
}

// encodeIm implements IM 0/1/2, per spec.md §4.4.
func encodeIm(sink Sink, pos node.Pos, ops []Operand) error {
	if ops[0].Expr == nil {
		return sink.Fatalf(pos, "IM requires 0, 1 or 2")
	}
	v, _, ok, err := evalResolved(sink, ops[0].Expr)
	if err != nil {
		return err
	}
	if !ok {
		return sink.Fatalf(pos, "IM mode must be a compile-time constant")
	}
	sink.Byte(0xED)
	switch v {
	case 0:
		sink.Byte(0x46)
	case 1:
		sink.Byte(0x56)
	case 2:
		sink.Byte(0x5E)
	default:
		return sink.Fatalf(pos, "IM mode must be 0, 1 or 2, got %d", v)
	}
	return nil
}
