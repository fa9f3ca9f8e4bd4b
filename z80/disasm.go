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

import "fmt"

// Line is one disassembled instruction, per spec.md §5: the address it
// starts at, the raw bytes it consumes and its text rendering.
type Line struct {
	Addr  int64
	Bytes []byte
	Text  string
}

var reg8Names = [8]string{"b", "c", "d", "e", "h", "l", "(hl)", "a"}
var ddNames = [4]string{"bc", "de", "hl", "sp"}
var qqNames = [4]string{"bc", "de", "hl", "af"}
var condNames = [8]string{"nz", "z", "nc", "c", "po", "pe", "p", "m"}
var aluNames = [8]string{"add a,", "adc a,", "sub ", "sbc a,", "and ", "xor ", "or ", "cp "}
var rotNames = [8]string{"rlc", "rrc", "rl", "rr", "sla", "sra", "sll", "srl"}

// Disassemble decodes code starting at address base into a sequence of
// Lines, sharing the register/condition tables Encode uses, per spec.md
// §5. Bytes that do not form a recognised instruction are rendered as a
// single-byte "defb" line so a listing never gets stuck.
func Disassemble(code []byte, base int64) []Line {
	var out []Line
	i := 0
	for i < len(code) {
		text, n := decodeOne(code, i)
		if n == 0 || i+n > len(code) {
			text, n = fmt.Sprintf("defb %02Xh", code[i]), 1
		}
		out = append(out, Line{Addr: base + int64(i), Bytes: append([]byte(nil), code[i:i+n]...), Text: text})
		i += n
	}
	return out
}

func decodeOne(code []byte, i int) (string, int) {
	b0 := code[i]
	switch b0 {
	case 0xCB:
		return decodeCB(code, i, "", 0)
	case 0xED:
		return decodeED(code, i)
	case 0xDD:
		return decodeIndexed(code, i, "ix")
	case 0xFD:
		return decodeIndexed(code, i, "iy")
	}
	return decodeBase(code, i)
}

// decodeBase decodes the unprefixed opcode map using the standard x/y/z/p/q
// field decomposition shared by most 8-bit microprocessor opcode maps.
func decodeBase(code []byte, i int) (string, int) {
	const hlName = "hl"
	b0 := code[i]
	x, y, z := b0>>6&3, b0>>3&7, b0&7
	p, q := y>>1, y&1
	reg := func(code int) string {
		if code == 6 {
			return "(hl)"
		}
		return reg8Names[code]
	}

	switch {
	case b0 == 0x00:
		return "nop", 1
	case b0 == 0x76:
		return "halt", 1
	case x == 1:
		return fmt.Sprintf("ld %s,%s", reg(y), reg(z)), 1
	case x == 2:
		return aluNames[y] + reg(z), 1
	case x == 0 && z == 6:
		if i+1 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("ld %s,%02Xh", reg(y), code[i+1]), 2
	case x == 0 && z == 4:
		return fmt.Sprintf("inc %s", reg(y)), 1
	case x == 0 && z == 5:
		return fmt.Sprintf("dec %s", reg(y)), 1
	case x == 0 && z == 1 && q == 0:
		if i+2 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("ld %s,%04Xh", pairName(int(p), hlName), le16(code, i+1)), 3
	case x == 0 && z == 1 && q == 1:
		return fmt.Sprintf("add %s,%s", hlName, pairName(int(p), hlName)), 1
	case x == 0 && z == 3 && q == 0:
		return fmt.Sprintf("inc %s", pairName(int(p), hlName)), 1
	case x == 0 && z == 3 && q == 1:
		return fmt.Sprintf("dec %s", pairName(int(p), hlName)), 1
	case x == 0 && z == 2:
		return decodeIndirectLoad(int(p), int(q))
	case x == 0 && z == 7:
		return [8]string{"rlca", "rrca", "rla", "rra", "daa", "cpl", "scf", "ccf"}[y], 1
	case x == 3 && z == 0:
		return fmt.Sprintf("ret %s", condNames[y]), 1
	case x == 3 && z == 1 && q == 0:
		return fmt.Sprintf("pop %s", qqNames[p]), 1
	case x == 3 && z == 1 && q == 1:
		return decodeMisc1(int(p))
	case x == 3 && z == 2:
		if i+2 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("jp %s,%04Xh", condNames[y], le16(code, i+1)), 3
	case b0 == 0xC3:
		if i+2 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("jp %04Xh", le16(code, i+1)), 3
	case b0 == 0xD3:
		if i+1 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("out (%02Xh),a", code[i+1]), 2
	case b0 == 0xDB:
		if i+1 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("in a,(%02Xh)", code[i+1]), 2
	case b0 == 0xE3:
		return fmt.Sprintf("ex (sp),%s", hlName), 1
	case b0 == 0xEB:
		return "ex de,hl", 1
	case b0 == 0xF3:
		return "di", 1
	case b0 == 0xFB:
		return "ei", 1
	case x == 3 && z == 4:
		if i+2 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("call %s,%04Xh", condNames[y], le16(code, i+1)), 3
	case x == 3 && z == 5 && q == 0:
		return fmt.Sprintf("push %s", qqNames[p]), 1
	case b0 == 0xCD:
		if i+2 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("call %04Xh", le16(code, i+1)), 3
	case x == 3 && z == 6:
		if i+1 >= len(code) {
			return "", 0
		}
		return aluNames[y] + fmt.Sprintf("%02Xh", code[i+1]), 2
	case x == 3 && z == 7:
		return fmt.Sprintf("rst %02Xh", y*8), 1
	case b0 == 0x18:
		if i+1 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("jr %04Xh", int64(i)+2+int64(int8(code[i+1]))), 2
	case b0 == 0x10:
		if i+1 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("djnz %04Xh", int64(i)+2+int64(int8(code[i+1]))), 2
	case x == 0 && z == 0 && y >= 4 && y <= 7:
		if i+1 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("jr %s,%04Xh", jrCondName(int(y)-4), int64(i)+2+int64(int8(code[i+1]))), 2
	}
	return "", 0
}

func jrCondName(i int) string { return [4]string{"nz", "z", "nc", "c"}[i] }

func pairName(p int, hlName string) string {
	if p == 2 {
		return hlName
	}
	return ddNames[p]
}

func le16(code []byte, i int) uint16 { return uint16(code[i]) | uint16(code[i+1])<<8 }

func decodeIndirectLoad(p, q int) (string, int) {
	switch {
	case p == 0 && q == 0:
		return "ld (bc),a", 1
	case p == 0 && q == 1:
		return "ld a,(bc)", 1
	case p == 1 && q == 0:
		return "ld (de),a", 1
	case p == 1 && q == 1:
		return "ld a,(de)", 1
	}
	return "", 0
}

func decodeMisc1(p int) (string, int) {
	switch p {
	case 0:
		return "ret", 1
	case 1:
		return "exx", 1
	case 2:
		return "jp (hl)", 1
	case 3:
		return "ld sp,hl", 1
	}
	return "", 0
}

// decodeCB decodes a CB-prefixed (or DD/FD CB-prefixed, via indexName/disp)
// opcode. When indexName is non-empty, the displacement byte has already
// been consumed by the caller and disp carries its text.
func decodeCB(code []byte, i int, indexName string, dispLen int) (string, int) {
	opIdx := i + 1 + dispLen
	if opIdx >= len(code) {
		return "", 0
	}
	b := code[opIdx]
	x, y, z := b>>6&3, b>>3&7, b&7
	target := reg8Names[z]
	if indexName != "" {
		target = "(" + indexName + dispText(code, i+1) + ")"
	}
	n := 2 + dispLen
	switch x {
	case 0:
		return rotNames[y] + " " + target, n
	case 1:
		return fmt.Sprintf("bit %d,%s", y, target), n
	case 2:
		return fmt.Sprintf("res %d,%s", y, target), n
	case 3:
		return fmt.Sprintf("set %d,%s", y, target), n
	}
	return "", 0
}

func dispText(code []byte, i int) string {
	d := int8(code[i])
	if d < 0 {
		return fmt.Sprintf("-%02Xh", -int(d))
	}
	return fmt.Sprintf("+%02Xh", int(d))
}

// decodeED decodes the ED-prefixed opcode space.
func decodeED(code []byte, i int) (string, int) {
	if i+1 >= len(code) {
		return "", 0
	}
	b := code[i+1]
	switch b {
	case 0x44:
		return "neg", 2
	case 0x45:
		return "retn", 2
	case 0x4D:
		return "reti", 2
	case 0x46:
		return "im 0", 2
	case 0x56:
		return "im 1", 2
	case 0x5E:
		return "im 2", 2
	case 0x47:
		return "ld i,a", 2
	case 0x4F:
		return "ld r,a", 2
	case 0x57:
		return "ld a,i", 2
	case 0x5F:
		return "ld a,r", 2
	case 0x67:
		return "rrd", 2
	case 0x6F:
		return "rld", 2
	case 0xA0:
		return "ldi", 2
	case 0xB0:
		return "ldir", 2
	case 0xA8:
		return "ldd", 2
	case 0xB8:
		return "lddr", 2
	case 0xA1:
		return "cpi", 2
	case 0xB1:
		return "cpir", 2
	case 0xA9:
		return "cpd", 2
	case 0xB9:
		return "cpdr", 2
	case 0xA2:
		return "ini", 2
	case 0xB2:
		return "inir", 2
	case 0xAA:
		return "ind", 2
	case 0xBA:
		return "indr", 2
	case 0xA3:
		return "outi", 2
	case 0xB3:
		return "otir", 2
	case 0xAB:
		return "outd", 2
	case 0xBB:
		return "otdr", 2
	case 0x71:
		return "out (c),0", 2
	}
	x, y, z := b>>6&3, b>>3&7, b&7
	p, q := y>>1, y&1
	if x == 1 && z == 0 && y != 6 {
		return fmt.Sprintf("in %s,(c)", reg8Names[y]), 2
	}
	if x == 1 && z == 0 && y == 6 {
		return "in (c)", 2
	}
	if x == 1 && z == 1 && y != 6 {
		return fmt.Sprintf("out (c),%s", reg8Names[y]), 2
	}
	if x == 1 && z == 2 && q == 0 {
		return fmt.Sprintf("sbc hl,%s", ddNames[p]), 2
	}
	if x == 1 && z == 2 && q == 1 {
		return fmt.Sprintf("adc hl,%s", ddNames[p]), 2
	}
	if x == 1 && z == 3 && q == 0 {
		if i+3 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("ld (%04Xh),%s", le16(code, i+2), ddNames[p]), 4
	}
	if x == 1 && z == 3 && q == 1 {
		if i+3 >= len(code) {
			return "", 0
		}
		return fmt.Sprintf("ld %s,(%04Xh)", ddNames[p], le16(code, i+2)), 4
	}
	return "", 0
}

// indexedReg renders an 8-bit register code under an active DD/FD prefix:
// codes 4/5 (h/l) become the undocumented ixh/ixl (or iyh/iyl) half
// registers; every other code is unaffected by the prefix.
func indexedReg(code int, indexName string) string {
	if code == 4 {
		return indexName + "h"
	}
	if code == 5 {
		return indexName + "l"
	}
	return reg8Names[code]
}

// decodeIndexed decodes a DD/FD-prefixed instruction. Only the documented
// (IX+d)/(IY+d) forms and the common undocumented ixh/ixl half-register
// forms are recognised; anything else falls back to a one-byte defb so the
// prefix byte alone doesn't desynchronise the rest of the listing.
func decodeIndexed(code []byte, i int, indexName string) (string, int) {
	if i+1 >= len(code) {
		return "", 0
	}
	b1 := code[i+1]

	if b1 == 0xCB {
		text, n := decodeCB(code, i+1, indexName, 1)
		if n == 0 {
			return "", 0
		}
		return text, n + 1
	}

	need := func(n int) bool { return i+n < len(code) }

	switch b1 {
	case 0x21:
		if !need(3) {
			return "", 0
		}
		return fmt.Sprintf("ld %s,%04Xh", indexName, le16(code, i+2)), 4
	case 0x22:
		if !need(3) {
			return "", 0
		}
		return fmt.Sprintf("ld (%04Xh),%s", le16(code, i+2), indexName), 4
	case 0x2A:
		if !need(3) {
			return "", 0
		}
		return fmt.Sprintf("ld %s,(%04Xh)", indexName, le16(code, i+2)), 4
	case 0x23:
		return fmt.Sprintf("inc %s", indexName), 2
	case 0x2B:
		return fmt.Sprintf("dec %s", indexName), 2
	case 0x09, 0x19, 0x29, 0x39:
		pp := [4]string{"bc", "de", indexName, "sp"}[b1>>4]
		return fmt.Sprintf("add %s,%s", indexName, pp), 2
	case 0xE5:
		return fmt.Sprintf("push %s", indexName), 2
	case 0xE1:
		return fmt.Sprintf("pop %s", indexName), 2
	case 0xE3:
		return fmt.Sprintf("ex (sp),%s", indexName), 2
	case 0xE9:
		return fmt.Sprintf("jp (%s)", indexName), 2
	case 0xF9:
		return fmt.Sprintf("ld sp,%s", indexName), 2
	case 0x34:
		if !need(2) {
			return "", 0
		}
		return fmt.Sprintf("inc (%s%s)", indexName, dispText(code, i+2)), 3
	case 0x35:
		if !need(2) {
			return "", 0
		}
		return fmt.Sprintf("dec (%s%s)", indexName, dispText(code, i+2)), 3
	case 0x36:
		if !need(3) {
			return "", 0
		}
		return fmt.Sprintf("ld (%s%s),%02Xh", indexName, dispText(code, i+2), code[i+3]), 4
	case 0x24, 0x2C:
		op := "inc "
		if b1 == 0x2C {
			op = "dec "
		}
		return op + indexedReg(4, indexName), 2
	case 0x25, 0x2D:
		op := "inc "
		if b1 == 0x2D {
			op = "dec "
		}
		return op + indexedReg(5, indexName), 2
	case 0x26:
		if !need(2) {
			return "", 0
		}
		return fmt.Sprintf("ld %s,%02Xh", indexName+"h", code[i+2]), 3
	case 0x2E:
		if !need(2) {
			return "", 0
		}
		return fmt.Sprintf("ld %s,%02Xh", indexName+"l", code[i+2]), 3
	}

	x, y, z := b1>>6&3, b1>>3&7, b1&7
	switch {
	case x == 1 && b1 != 0x76 && (y == 6 || z == 6):
		if !need(2) {
			return "", 0
		}
		ref := fmt.Sprintf("(%s%s)", indexName, dispText(code, i+2))
		if z == 6 {
			return fmt.Sprintf("ld %s,%s", indexedReg(int(y), indexName), ref), 3
		}
		return fmt.Sprintf("ld %s,%s", ref, indexedReg(int(z), indexName)), 3
	case x == 1:
		return fmt.Sprintf("ld %s,%s", indexedReg(int(y), indexName), indexedReg(int(z), indexName)), 2
	case x == 2 && z == 6:
		if !need(2) {
			return "", 0
		}
		return aluNames[y] + fmt.Sprintf("(%s%s)", indexName, dispText(code, i+2)), 3
	case x == 2:
		return aluNames[y] + indexedReg(int(z), indexName), 2
	}

	return "", 0
}
