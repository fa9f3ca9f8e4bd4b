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

package asm

// cycleCost approximates the T-state count of mnemonic for profiling
// purposes (spec.md §6 --profile), grounded on the base opcode timings used
// by the retrieved Z80 emulator/disassembler references
// (a33f32b2_thegtproject-toyz80 and 6ad97243_oisee-minz). It deliberately
// does not distinguish addressing modes within a mnemonic (e.g. "ld r,r'"
// vs "ld r,(hl)" both cost 4 here, though the real CPU charges 7 for the
// latter): a --profile report is meant as a relative "how big is this
// block" signal, not a cycle-accurate emulator, and building a full
// per-addressing-mode timing table is out of scope for an assembler.
var baseCycles = map[string]int64{
	"nop": 4, "halt": 4, "di": 4, "ei": 4, "exx": 4,
	"rlca": 4, "rrca": 4, "rla": 4, "rra": 4, "cpl": 4,
	"scf": 4, "ccf": 4, "daa": 4,
	"ld": 4, "push": 11, "pop": 10, "ex": 4,
	"add": 4, "adc": 4, "sub": 4, "sbc": 4, "and": 4, "xor": 4, "or": 4, "cp": 4,
	"inc": 4, "dec": 4,
	"jp": 10, "jr": 12, "djnz": 13, "call": 17, "ret": 10, "rst": 11,
	"in": 11, "out": 11,
	"rlc": 8, "rrc": 8, "rl": 8, "rr": 8, "sla": 8, "sra": 8, "sll": 8, "srl": 8,
	"bit": 8, "set": 8, "res": 8,
	"ldi": 16, "ldir": 21, "ldd": 16, "lddr": 21,
	"cpi": 16, "cpir": 21, "cpd": 16, "cpdr": 21,
	"ini": 16, "inir": 21, "ind": 16, "indr": 21,
	"outi": 16, "otir": 21, "outd": 16, "otdr": 21,
	"neg": 8, "retn": 14, "reti": 14, "rrd": 18, "rld": 18,
	"im": 8,
}

func cycleCost(mnemonic string) int64 {
	if v, ok := baseCycles[mnemonic]; ok {
		return v
	}
	return 4
}
