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

// encodeIn implements IN, per spec.md §4.4.
func encodeIn(sink Sink, pos node.Pos, ops []Operand) error {
	dst, src := ops[0], ops[1]
	if src.Name == "c" && src.IsRef {
		if dst.Name != "a" && !dst.IsRef {
			if c, ok := reg8Codes[dst.Name]; ok {
				sink.Byte(0xED)
				sink.Byte(0x40 | byte(c<<3))
				return nil
			}
		}
		if dst.Name == "a" {
			sink.Byte(0xED)
			sink.Byte(0x78)
			return nil
		}
		return sink.Fatalf(pos, "IN r,(C) requires an 8-bit register")
	}
	if dst.Name == "a" && src.Expr != nil {
		sink.Byte(0xDB)
		return emitImm8(sink, pos, addrOf(src.Expr))
	}
	return sink.Fatalf(pos, "unsupported IN operand combination")
}

// encodeOut implements OUT, including the undocumented "OUT (C),0" form,
// per spec.md §4.4.
func encodeOut(sink Sink, pos node.Pos, ops []Operand) error {
	dst, src := ops[0], ops[1]
	if dst.Name == "c" && dst.IsRef {
		if c, ok := reg8Codes[src.Name]; ok && !src.IsRef {
			sink.Byte(0xED)
			sink.Byte(0x41 | byte(c<<3))
			return nil
		}
		if src.Expr != nil {
			v, _, ok, err := evalResolved(sink, src.Expr)
			if err != nil {
				return err
			}
			if ok && v == 0 {
				sink.Byte(0xED)
				sink.Byte(0x71)
				return nil
			}
		}
		return sink.Fatalf(pos, "OUT (C),x requires an 8-bit register or the literal 0")
	}
	if dst.Expr != nil && src.Name == "a" {
		sink.Byte(0xD3)
		return emitImm8(sink, pos, addrOf(dst.Expr))
	}
	return sink.Fatalf(pos, "unsupported OUT operand combination")
}
