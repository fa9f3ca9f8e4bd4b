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

// encodeIncDec implements INC/DEC over every addressing mode they support,
// per spec.md §4.4.
func encodeIncDec(sink Sink, pos node.Pos, mnemonic string, ops []Operand) error {
	op := ops[0]
	regByte, pairByte := byte(0x04), byte(0x03)
	if mnemonic == "dec" {
		regByte, pairByte = 0x05, 0x0B
	}

	if c, prefix, ok := regOrHalf(op); ok {
		if prefix != 0 {
			sink.Byte(prefix)
		}
		sink.Byte(regByte | byte(c<<3))
		return nil
	}
	if op.Name == "hl" && op.IsRef {
		sink.Byte(regByte | (6 << 3))
		return nil
	}
	if op.IndexSel >= 0 && op.Disp != nil {
		sink.Byte(indexPrefix(op.IndexSel))
		sink.Byte(regByte | (6 << 3))
		return emitDisp(sink, pos, op.Disp)
	}
	if dd, ok := ddCodes[op.Name]; ok && !op.IsRef {
		sink.Byte(pairByte | byte(dd<<4))
		return nil
	}
	if op.Name == "ix" || op.Name == "iy" {
		sink.Byte(indexPrefix(iySel(op.Name)))
		sink.Byte(pairByte | (2 << 4))
		return nil
	}
	return sink.Fatalf(pos, "%q: unsupported operand", mnemonic)
}
