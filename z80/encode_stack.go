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

// encodePushPop implements PUSH/POP, per spec.md §4.4.
func encodePushPop(sink Sink, pos node.Pos, mnemonic string, ops []Operand) error {
	op := ops[0]
	base := byte(0xC5)
	if mnemonic == "pop" {
		base = 0xC1
	}
	if qq, ok := qqCodes[op.Name]; ok {
		sink.Byte(base | byte(qq<<4))
		return nil
	}
	if op.Name == "ix" || op.Name == "iy" {
		sink.Byte(indexPrefix(iySel(op.Name)))
		sink.Byte(base | (4 << 4))
		return nil
	}
	return sink.Fatalf(pos, "%q requires a 16-bit register pair", mnemonic)
}

// encodeEx implements EX, per spec.md §4.4.
func encodeEx(sink Sink, pos node.Pos, ops []Operand) error {
	a, b := ops[0], ops[1]
	switch {
	case a.Name == "de" && !a.IsRef && b.Name == "hl" && !b.IsRef:
		sink.Byte(0xEB)
	case a.Name == "af" && !a.IsRef && b.Name == "af'" && !b.IsRef:
		sink.Byte(0x08)
	case a.Name == "sp" && a.IsRef && b.Name == "hl" && !b.IsRef:
		sink.Byte(0xE3)
	case a.Name == "sp" && a.IsRef && (b.Name == "ix" || b.Name == "iy") && !b.IsRef:
		sink.Byte(indexPrefix(iySel(b.Name)))
		sink.Byte(0xE3)
	default:
		return sink.Fatalf(pos, "unsupported EX operand combination")
	}
	return nil
}
