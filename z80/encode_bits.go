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

// encodeShift implements the CB-prefixed rotate/shift group (RLC/RRC/RL/
// RR/SLA/SRA/SLL/SRL), including the undocumented SLL, per spec.md §4.4.
func encodeShift(sink Sink, pos node.Pos, mnemonic string, ops []Operand) error {
	base := cbOps[mnemonic]
	return emitCB(sink, pos, ops[0], base)
}

// encodeBitOp implements BIT/SET/RES. The bit number is folded into the
// opcode byte, so it must resolve to a compile-time constant in [0,7].
func encodeBitOp(sink Sink, pos node.Pos, mnemonic string, ops []Operand) error {
	if ops[0].Expr == nil {
		return sink.Fatalf(pos, "%s requires a bit number", mnemonic)
	}
	b, _, ok, err := evalResolved(sink, ops[0].Expr)
	if err != nil {
		return err
	}
	if !ok {
		return sink.Fatalf(pos, "%s bit number must be a compile-time constant", mnemonic)
	}
	if b < 0 || b > 7 {
		return sink.Fatalf(pos, "%s bit number must be in [0,7], got %d", mnemonic, b)
	}
	group := byte(0x40)
	switch mnemonic {
	case "set":
		group = 0xC0
	case "res":
		group = 0x80
	}
	return emitCB(sink, pos, ops[1], group|byte(b<<3))
}

// emitCB writes the CB-prefixed opcode for operand target, ORing in group
// (which already carries any bit-number field) with target's 3-bit
// register code.
func emitCB(sink Sink, pos node.Pos, target Operand, group byte) error {
	if c, prefix, ok := regOrHalf(target); ok && prefix == 0 {
		sink.Byte(0xCB)
		sink.Byte(group | byte(c))
		return nil
	}
	if target.Name == "hl" && target.IsRef {
		sink.Byte(0xCB)
		sink.Byte(group | 6)
		return nil
	}
	if target.IndexSel >= 0 && target.Disp != nil {
		sink.Byte(indexPrefix(target.IndexSel))
		sink.Byte(0xCB)
		if err := emitDisp(sink, pos, target.Disp); err != nil {
			return err
		}
		sink.Byte(group | 6)
		return nil
	}
	return sink.Fatalf(pos, "unsupported operand for CB-prefixed instruction")
}
