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

import (
	"github.com/isolenta/bc80-sub000/diag"
	"github.com/isolenta/bc80-sub000/node"
	"github.com/isolenta/bc80-sub000/section"
)

// driverSink adapts Driver to z80.Sink for the duration of one Encode
// call, keeping the z80 package itself free of any asm/section import
// (DESIGN.md's dependency-direction note under the z80 Sink type).
type driverSink struct {
	d   *Driver
	pos node.Pos
}

func (s *driverSink) Byte(v byte)   { s.d.rnd.Byte(v) }
func (s *driverSink) Word(v uint16) { s.d.rnd.Word(v) }
func (s *driverSink) PC() int64     { return s.d.currentPC() }

func (s *driverSink) Eval(e *node.Expr) (*node.Expr, error) {
	return s.d.eval(e, false)
}

func (s *driverSink) AddPatch(expr *node.Expr, width int, relative bool, instrPC int64, pos node.Pos) {
	cur := s.d.rnd.Current()
	p := &section.Patch{
		Expr:       s.d.qualifyLocalsInExpr(expr),
		Section:    cur,
		Offset:     cur.Offset(),
		Width:      width,
		IsRelative: relative,
		InstrPC:    instrPC,
		ReptSuffix: s.d.reptSuffix(),
		Pos:        pos,
	}
	s.d.rnd.AddPatch(p)
}

func (s *driverSink) Fatalf(pos node.Pos, format string, args ...interface{}) error {
	return s.d.rep.Fatalf(pos, diag.KindEncoder, format, args...)
}

func (s *driverSink) Warnf(pos node.Pos, format string, args ...interface{}) {
	s.d.rep.Warn(pos, diag.KindEncoder, format, args...)
}
