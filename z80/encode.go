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

import (
	"fmt"

	"github.com/isolenta/bc80-sub000/node"
)

// mnemonicArity lists the legal argument counts for each mnemonic, checked
// before any operand classification runs.
var mnemonicArity = map[string][]int{
	"nop": {0}, "halt": {0}, "di": {0}, "ei": {0}, "exx": {0},
	"rlca": {0}, "rrca": {0}, "rla": {0}, "rra": {0}, "cpl": {0},
	"scf": {0}, "ccf": {0}, "daa": {0}, "ret": {0, 1},
	"ldi": {0}, "ldir": {0}, "ldd": {0}, "lddr": {0},
	"cpi": {0}, "cpir": {0}, "cpd": {0}, "cpdr": {0},
	"ini": {0}, "inir": {0}, "ind": {0}, "indr": {0},
	"outi": {0}, "otir": {0}, "outd": {0}, "otdr": {0},
	"neg": {0}, "retn": {0}, "reti": {0}, "rrd": {0}, "rld": {0},
	"ld": {2}, "add": {2}, "adc": {2}, "sub": {1, 2}, "sbc": {2},
	"and": {1, 2}, "xor": {1, 2}, "or": {1, 2}, "cp": {1, 2},
	"inc": {1}, "dec": {1},
	"push": {1}, "pop": {1},
	"ex": {2},
	"jp": {1, 2}, "jr": {1, 2}, "djnz": {1}, "call": {1, 2},
	"rst": {1},
	"im":  {1},
	"in":  {2}, "out": {2},
	"rlc": {1}, "rrc": {1}, "rl": {1}, "rr": {1},
	"sla": {1}, "sra": {1}, "sll": {1}, "srl": {1},
	"bit": {2}, "set": {2}, "res": {2},
}

// Encode emits the machine code for one instruction statement into sink,
// per spec.md §4.4: validate arity, classify each argument, then dispatch
// to the mnemonic's own decision tree.
func Encode(sink Sink, pos node.Pos, mnemonic string, args []*node.Expr) error {
	m := lower(mnemonic)
	counts, ok := mnemonicArity[m]
	if !ok {
		return sink.Fatalf(pos, "unknown mnemonic %q", mnemonic)
	}
	if !arityOK(len(args), counts) {
		return sink.Fatalf(pos, "%q takes %s, got %d", mnemonic, describeArity(counts), len(args))
	}
	ops := make([]Operand, len(args))
	for i, a := range args {
		ops[i] = classify(a)
	}

	startPC := sink.PC()
	switch m {
	case "nop":
		sink.Byte(0x00)
	case "halt":
		sink.Byte(0x76)
	case "di":
		sink.Byte(0xF3)
	case "ei":
		sink.Byte(0xFB)
	case "exx":
		sink.Byte(0xD9)
	case "rlca":
		sink.Byte(0x07)
	case "rrca":
		sink.Byte(0x0F)
	case "rla":
		sink.Byte(0x17)
	case "rra":
		sink.Byte(0x1F)
	case "cpl":
		sink.Byte(0x2F)
	case "scf":
		sink.Byte(0x37)
	case "ccf":
		sink.Byte(0x3F)
	case "daa":
		sink.Byte(0x27)
	case "ldi":
		sink.Byte(0xED); sink.Byte(0xA0)
	case "ldir":
		sink.Byte(0xED); sink.Byte(0xB0)
	case "ldd":
		sink.Byte(0xED); sink.Byte(0xA8)
	case "lddr":
		sink.Byte(0xED); sink.Byte(0xB8)
	case "cpi":
		sink.Byte(0xED); sink.Byte(0xA1)
	case "cpir":
		sink.Byte(0xED); sink.Byte(0xB1)
	case "cpd":
		sink.Byte(0xED); sink.Byte(0xA9)
	case "cpdr":
		sink.Byte(0xED); sink.Byte(0xB9)
	case "ini":
		sink.Byte(0xED); sink.Byte(0xA2)
	case "inir":
		sink.Byte(0xED); sink.Byte(0xB2)
	case "ind":
		sink.Byte(0xED); sink.Byte(0xAA)
	case "indr":
		sink.Byte(0xED); sink.Byte(0xBA)
	case "outi":
		sink.Byte(0xED); sink.Byte(0xA3)
	case "otir":
		sink.Byte(0xED); sink.Byte(0xB3)
	case "outd":
		sink.Byte(0xED); sink.Byte(0xAB)
	case "otdr":
		sink.Byte(0xED); sink.Byte(0xBB)
	case "neg":
		sink.Byte(0xED); sink.Byte(0x44)
	case "retn":
		sink.Byte(0xED); sink.Byte(0x45)
	case "reti":
		sink.Byte(0xED); sink.Byte(0x4D)
	case "rrd":
		sink.Byte(0xED); sink.Byte(0x67)
	case "rld":
		sink.Byte(0xED); sink.Byte(0x6F)
	case "ret":
		return encodeRet(sink, pos, ops)
	case "ld":
		return encodeLd(sink, pos, ops)
	case "add", "adc", "sub", "sbc", "and", "xor", "or", "cp":
		return encodeAlu(sink, pos, m, ops)
	case "inc", "dec":
		return encodeIncDec(sink, pos, m, ops)
	case "push", "pop":
		return encodePushPop(sink, pos, m, ops)
	case "ex":
		return encodeEx(sink, pos, ops)
	case "jp":
		return encodeJp(sink, pos, ops)
	case "jr":
		return encodeJr(sink, pos, startPC, ops)
	case "djnz":
		return encodeDjnz(sink, pos, startPC, ops)
	case "call":
		return encodeCall(sink, pos, ops)
	case "rst":
		return encodeRst(sink, pos, ops)
	case "im":
		return encodeIm(sink, pos, ops)
	case "in":
		return encodeIn(sink, pos, ops)
	case "out":
		return encodeOut(sink, pos, ops)
	case "rlc", "rrc", "rl", "rr", "sla", "sra", "sll", "srl":
		return encodeShift(sink, pos, m, ops)
	case "bit", "set", "res":
		return encodeBitOp(sink, pos, m, ops)
	default:
		return sink.Fatalf(pos, "unknown mnemonic %q", mnemonic)
	}
	return nil
}

func arityOK(n int, counts []int) bool {
	for _, c := range counts {
		if c == n {
			return true
		}
	}
	return false
}

func describeArity(counts []int) string {
	if len(counts) == 1 {
		switch counts[0] {
		case 0:
			return "no arguments"
		case 1:
			return "1 argument"
		default:
			return "arguments"
		}
	}
	return fmt.Sprintf("either %d or %d arguments", counts[0], counts[len(counts)-1])
}

// evalResolved evaluates e and reports whether it fully reduced to an
// integer literal.
func evalResolved(sink Sink, e *node.Expr) (int64, *node.Expr, bool, error) {
	r, err := sink.Eval(e)
	if err != nil {
		return 0, nil, false, err
	}
	if r.IsInt() {
		return r.IntVal, r, true, nil
	}
	return 0, r, false, nil
}

func emitImm8(sink Sink, pos node.Pos, e *node.Expr) error {
	v, residual, ok, err := evalResolved(sink, e)
	if err != nil {
		return err
	}
	if ok {
		if v < -0x80 || v > 0xFF {
			sink.Warnf(pos, "truncated byte value %d", v)
		}
		sink.Byte(byte(v))
		return nil
	}
	sink.AddPatch(residual, 1, false, 0, pos)
	sink.Byte(0)
	return nil
}

func emitImm16(sink Sink, pos node.Pos, e *node.Expr) error {
	v, residual, ok, err := evalResolved(sink, e)
	if err != nil {
		return err
	}
	if ok {
		if v < -0x8000 || v > 0xFFFF {
			sink.Warnf(pos, "truncated word value %d", v)
		}
		sink.Word(uint16(v))
		return nil
	}
	sink.AddPatch(residual, 2, false, 0, pos)
	sink.Word(0)
	return nil
}

func emitDisp(sink Sink, pos node.Pos, e *node.Expr) error {
	return emitImm8(sink, pos, e)
}

func indexPrefix(sel int) byte {
	if sel == 1 {
		return 0xFD
	}
	return 0xDD
}
