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

// encodeAlu implements ADD/ADC/SUB/SBC/AND/XOR/OR/CP, per spec.md §4.4:
// the two-operand form "op A,x" is preferred whenever A is named explicitly,
// and the one-operand form is accepted as shorthand for "op A,x" on the
// mnemonics that support it.
func encodeAlu(sink Sink, pos node.Pos, mnemonic string, ops []Operand) error {
	op := aluOps[mnemonic]

	if len(ops) == 2 {
		if ops[0].Name != "a" || ops[0].IsRef {
			if mnemonic == "add" {
				return encodeAdd16(sink, pos, ops)
			}
			if mnemonic == "adc" || mnemonic == "sbc" {
				return encodeAdcSbc16(sink, pos, mnemonic, ops)
			}
			return sink.Fatalf(pos, "%q only supports the accumulator as its first operand", mnemonic)
		}
		return encodeAluOperand(sink, pos, op, ops[1])
	}
	return encodeAluOperand(sink, pos, op, ops[0])
}

func encodeAluOperand(sink Sink, pos node.Pos, op aluOp, src Operand) error {
	if c, prefix, ok := regOrHalf(src); ok {
		if prefix != 0 {
			sink.Byte(prefix)
		}
		sink.Byte(op.base | byte(c))
		return nil
	}
	if src.Name == "hl" && src.IsRef {
		sink.Byte(op.base | 6)
		return nil
	}
	if src.IndexSel >= 0 && src.Disp != nil {
		sink.Byte(indexPrefix(src.IndexSel))
		sink.Byte(op.base | 6)
		return emitDisp(sink, pos, src.Disp)
	}
	if src.Expr != nil && !src.Expr.IsReference {
		sink.Byte(op.imm)
		return emitImm8(sink, pos, src.Expr)
	}
	return sink.Fatalf(pos, "unsupported operand")
}

func encodeAdd16(sink Sink, pos node.Pos, ops []Operand) error {
	dst := ops[0]
	switch dst.Name {
	case "hl":
		ss, ok := ddCodes[ops[1].Name]
		if !ok {
			return sink.Fatalf(pos, "ADD HL requires a 16-bit register")
		}
		sink.Byte(0x09 | byte(ss<<4))
		return nil
	case "ix", "iy":
		sel := iySel(dst.Name)
		pp, ok := indexPairCode(dst.Name, ops[1].Name)
		if !ok {
			return sink.Fatalf(pos, "ADD %s requires BC, DE, SP or %s itself", dst.Name, dst.Name)
		}
		sink.Byte(indexPrefix(sel))
		sink.Byte(0x09 | byte(pp<<4))
		return nil
	}
	return sink.Fatalf(pos, "ADD requires HL, IX or IY as its first operand")
}

func encodeAdcSbc16(sink Sink, pos node.Pos, mnemonic string, ops []Operand) error {
	if ops[0].Name != "hl" {
		return sink.Fatalf(pos, "%s only supports HL as its first 16-bit operand", mnemonic)
	}
	ss, ok := ddCodes[ops[1].Name]
	if !ok {
		return sink.Fatalf(pos, "%s HL requires a 16-bit register", mnemonic)
	}
	base := byte(0x4A)
	if mnemonic == "sbc" {
		base = 0x42
	}
	sink.Byte(0xED)
	sink.Byte(base | byte(ss<<4))
	return nil
}

// indexPairCode maps the second operand of "ADD IX,pp"/"ADD IY,pp" to its
// 2-bit field: bc=0 de=1 ix/iy(self)=2 sp=3.
func indexPairCode(indexName, other string) (int, bool) {
	switch other {
	case "bc":
		return 0, true
	case "de":
		return 1, true
	case indexName:
		return 2, true
	case "sp":
		return 3, true
	}
	return 0, false
}
