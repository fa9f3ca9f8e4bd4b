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

func regOrHalf(op Operand) (code int, prefix byte, ok bool) {
	if op.IsRef {
		return 0, 0, false
	}
	if c, ok := reg8Codes[op.Name]; ok {
		return c, 0, true
	}
	if c, ok := ixyHalfCodes[op.Name]; ok {
		p := byte(0xDD)
		if op.Name[0] == 'i' && op.Name[1] == 'y' {
			p = 0xFD
		}
		return c, p, true
	}
	return 0, 0, false
}

// encodeLd implements the entire LD mnemonic family, per spec.md §4.4.
func encodeLd(sink Sink, pos node.Pos, ops []Operand) error {
	dst, src := ops[0], ops[1]

	if dc, dprefix, ok := regOrHalf(dst); ok {
		if sc, sprefix, ok := regOrHalf(src); ok {
			if dprefix != 0 && sprefix != 0 && dprefix != sprefix {
				return sink.Fatalf(pos, "cannot mix IX and IY halves in one instruction")
			}
			if p := pickPrefix(dprefix, sprefix); p != 0 {
				sink.Byte(p)
			}
			sink.Byte(0x40 | byte(dc<<3) | byte(sc))
			return nil
		}
		if src.Name == "hl" && src.IsRef {
			sink.Byte(0x40 | byte(dc<<3) | 6)
			return nil
		}
		if src.IndexSel >= 0 && src.Disp != nil {
			sink.Byte(indexPrefix(src.IndexSel))
			sink.Byte(0x40 | byte(dc<<3) | 6)
			return emitDisp(sink, pos, src.Disp)
		}
		if dst.Name == "a" && src.Name == "bc" && src.IsRef {
			sink.Byte(0x0A)
			return nil
		}
		if dst.Name == "a" && src.Name == "de" && src.IsRef {
			sink.Byte(0x1A)
			return nil
		}
		if dst.Name == "a" && src.Name == "i" {
			sink.Byte(0xED)
			sink.Byte(0x57)
			return nil
		}
		if dst.Name == "a" && src.Name == "r" {
			sink.Byte(0xED)
			sink.Byte(0x5F)
			return nil
		}
		if dst.Name == "i" && src.Name == "a" {
			sink.Byte(0xED)
			sink.Byte(0x47)
			return nil
		}
		if dst.Name == "r" && src.Name == "a" {
			sink.Byte(0xED)
			sink.Byte(0x4F)
			return nil
		}
		if src.Expr != nil && src.Expr.IsReference {
			if dst.Name != "a" {
				return sink.Fatalf(pos, "only A can be loaded from a direct memory address")
			}
			sink.Byte(0x3A)
			return emitImm16(sink, pos, addrOf(src.Expr))
		}
		if src.Expr != nil {
			if dprefix != 0 {
				sink.Byte(dprefix)
			}
			sink.Byte(0x06 | byte(dc<<3))
			return emitImm8(sink, pos, src.Expr)
		}
	}

	if dst.Name == "hl" && dst.IsRef {
		if sc, sprefix, ok := regOrHalf(src); ok && sprefix == 0 {
			sink.Byte(0x70 | byte(sc))
			return nil
		}
		if src.Expr != nil {
			sink.Byte(0x36)
			return emitImm8(sink, pos, src.Expr)
		}
	}

	if dst.IndexSel >= 0 && dst.Disp != nil {
		if sc, sprefix, ok := regOrHalf(src); ok && sprefix == 0 {
			sink.Byte(indexPrefix(dst.IndexSel))
			sink.Byte(0x70 | byte(sc))
			return emitDisp(sink, pos, dst.Disp)
		}
		if src.Expr != nil {
			sink.Byte(indexPrefix(dst.IndexSel))
			sink.Byte(0x36)
			if err := emitDisp(sink, pos, dst.Disp); err != nil {
				return err
			}
			return emitImm8(sink, pos, src.Expr)
		}
	}

	if dst.Name == "bc" && dst.IsRef && src.Name == "a" {
		sink.Byte(0x02)
		return nil
	}
	if dst.Name == "de" && dst.IsRef && src.Name == "a" {
		sink.Byte(0x12)
		return nil
	}

	if dst.Name == "sp" && !dst.IsRef {
		if src.Name == "hl" {
			sink.Byte(0xF9)
			return nil
		}
		if src.Name == "ix" || src.Name == "iy" {
			sink.Byte(indexPrefix(iySel(src.Name)))
			sink.Byte(0xF9)
			return nil
		}
	}

	if (dst.Name == "ix" || dst.Name == "iy") && !dst.IsRef {
		sel := iySel(dst.Name)
		if src.Expr != nil && src.Expr.IsReference {
			sink.Byte(indexPrefix(sel))
			sink.Byte(0x2A)
			return emitImm16(sink, pos, addrOf(src.Expr))
		}
		if src.Expr != nil {
			sink.Byte(indexPrefix(sel))
			sink.Byte(0x21)
			return emitImm16(sink, pos, src.Expr)
		}
	}

	if dst.Expr != nil && dst.Expr.IsReference {
		addr := addrOf(dst.Expr)
		switch {
		case src.Name == "a":
			sink.Byte(0x32)
			return emitImm16(sink, pos, addr)
		case src.Name == "hl":
			sink.Byte(0x22)
			return emitImm16(sink, pos, addr)
		case src.Name == "ix" || src.Name == "iy":
			sink.Byte(indexPrefix(iySel(src.Name)))
			sink.Byte(0x22)
			return emitImm16(sink, pos, addr)
		case src.Name == "bc" || src.Name == "de" || src.Name == "sp":
			sink.Byte(0xED)
			sink.Byte(byte(0x43 + ddCodes[src.Name]<<4))
			return emitImm16(sink, pos, addr)
		}
	}

	if dst.Name == "hl" && !dst.IsRef && src.Expr != nil && src.Expr.IsReference {
		sink.Byte(0x2A)
		return emitImm16(sink, pos, addrOf(src.Expr))
	}

	if dd, ok := ddCodes[dst.Name]; ok && !dst.IsRef {
		if src.Expr != nil && src.Expr.IsReference {
			sink.Byte(0xED)
			sink.Byte(byte(0x4B + dd<<4))
			return emitImm16(sink, pos, addrOf(src.Expr))
		}
		if src.Expr != nil {
			sink.Byte(0x01 | byte(dd<<4))
			return emitImm16(sink, pos, src.Expr)
		}
	}

	return sink.Fatalf(pos, "unsupported LD operand combination")
}

func iySel(name string) int {
	if name == "iy" {
		return 1
	}
	return 0
}

func pickPrefix(a, b byte) byte {
	if a != 0 {
		return a
	}
	return b
}

// addrOf strips the IsReference flag an evaluated "(nn)" operand carries,
// since the 16-bit value emitted is the address itself, not a reference.
func addrOf(e *node.Expr) *node.Expr {
	out := *e
	out.IsReference = false
	return &out
}
