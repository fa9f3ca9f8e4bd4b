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

// Package z80 implements the Z80 instruction encoder and its inverse
// disassembler, sharing one opcode table between them per spec.md §4.4/§5.
package z80

import "github.com/isolenta/bc80-sub000/node"

// Sink is everything Encode needs from the compile driver, kept narrow so
// this package never imports asm or section (asm imports z80, not the
// other way around).
type Sink interface {
	// Byte appends a single byte at the current PC.
	Byte(v byte)
	// Word appends a little-endian 16-bit value.
	Word(v uint16)
	// PC returns the current program counter, before any byte emitted by
	// the call in progress.
	PC() int64
	// Eval attempts to reduce e under the driver's current symbol/PC state.
	// A still-unresolved result comes back as the residual node.Expr.
	Eval(e *node.Expr) (*node.Expr, error)
	// AddPatch records a deferred write of width bytes at the position the
	// next Byte/Word call would land at. instrPC is only meaningful when
	// relative is true (JR/DJNZ displacement).
	AddPatch(expr *node.Expr, width int, relative bool, instrPC int64, pos node.Pos)
	// Fatalf records a fatal diagnostic and returns the sentinel error to
	// propagate.
	Fatalf(pos node.Pos, format string, args ...interface{}) error
	// Warnf records a non-fatal diagnostic.
	Warnf(pos node.Pos, format string, args ...interface{})
}
