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

// reg8Codes maps an 8-bit register name to its 3-bit opcode field, per the
// standard Z80 "rrr" encoding: b=0 c=1 d=2 e=3 h=4 l=5 (hl)=6 a=7.
var reg8Codes = map[string]int{
	"b": 0, "c": 1, "d": 2, "e": 3, "h": 4, "l": 5, "a": 7,
}

// ixyHalfCodes maps the undocumented IX/IY half-register names to the same
// 3-bit field as their h/l counterparts, used only once a DD/FD prefix has
// already selected the index register (spec.md §4.4 ixy_half).
var ixyHalfCodes = map[string]int{
	"ixh": 4, "ixl": 5, "iyh": 4, "iyl": 5,
}

// ddCodes and qqCodes map a 16-bit register to its "dd"/"qq" 2-bit field, used by
// LD dd,nn / INC ss / DEC ss / ADD HL,ss / PUSH qq / POP qq. The fourth slot
// differs by instruction family (sp for LD/INC/DEC/ADD, af for PUSH/POP);
// callers pick the right table.
var ddCodes = map[string]int{"bc": 0, "de": 1, "hl": 2, "sp": 3}
var qqCodes = map[string]int{"bc": 0, "de": 1, "hl": 2, "af": 3}

// condCodes maps a condition mnemonic to its 3-bit field, per the standard
// JP/CALL/RET condition table.
var condCodes = map[string]int{
	"nz": 0, "z": 1, "nc": 2, "c": 3, "po": 4, "pe": 5, "p": 6, "m": 7,
}

// jrCondCodes is the restricted subset legal after JR, per spec.md §4.4.
var jrCondCodes = map[string]int{"nz": 0, "z": 1, "nc": 2, "c": 3}

// aluOp gives the base opcode (r=0 form) for each two-operand ALU
// mnemonic and its immediate-form opcode.
type aluOp struct {
	base, imm byte
}

var aluOps = map[string]aluOp{
	"add": {0x80, 0xC6},
	"adc": {0x88, 0xCE},
	"sub": {0x90, 0xD6},
	"sbc": {0x98, 0xDE},
	"and": {0xA0, 0xE6},
	"xor": {0xA8, 0xEE},
	"or":  {0xB0, 0xF6},
	"cp":  {0xB8, 0xFE},
}

// cbOps gives the base opcode for each CB-prefixed rotate/shift mnemonic.
var cbOps = map[string]byte{
	"rlc": 0x00, "rrc": 0x08, "rl": 0x10, "rr": 0x18,
	"sla": 0x20, "sra": 0x28, "sll": 0x30, "srl": 0x38,
}

// reservedNames lists every identifier that a source program may not use
// as a user symbol: registers, conditions, mnemonics and directive
// keywords. It is handed to symtab.New as the ReservedSet predicate.
var reservedNames = buildReservedNames()

func buildReservedNames() map[string]bool {
	m := map[string]bool{}
	for n := range reg8Codes {
		m[n] = true
	}
	for n := range ixyHalfCodes {
		m[n] = true
	}
	for _, n := range []string{"bc", "de", "hl", "sp", "af", "af'", "ix", "iy", "i", "r", "f"} {
		m[n] = true
	}
	for n := range condCodes {
		m[n] = true
	}
	for mnemonic := range mnemonicArity {
		m[mnemonic] = true
	}
	for _, n := range []string{
		"equ", "section", "org", "db", "defb", "dm", "defm", "dw", "defw",
		"ds", "defs", "incbin", "include", "rept", "endr", "if", "else",
		"endif", "profile", "endprofile", "end",
	} {
		m[n] = true
	}
	return m
}

// ReservedSet reports whether name is a reserved identifier. It is exposed
// so callers can build a symtab.Table with the Z80 register/mnemonic
// namespace already protected.
func ReservedSet(name string) bool {
	return reservedNames[lower(name)]
}
