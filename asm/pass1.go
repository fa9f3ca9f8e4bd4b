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
	"strings"

	"github.com/isolenta/bc80-sub000/diag"
	"github.com/isolenta/bc80-sub000/node"
	"github.com/isolenta/bc80-sub000/section"
	"github.com/isolenta/bc80-sub000/z80"
)

// runPass1 walks d.stmts with a mutable index (rather than range) so REPT
// bodies can be replayed and IF/ELSE arms skipped by jumping the index
// directly, per spec.md §4.3 and the teacher's parser.go loop shape.
func (d *Driver) runPass1() error {
	i := 0
	for i < len(d.stmts) {
		if d.rep.Aborted() {
			return nil
		}
		next, err := d.execStmt(i)
		if err != nil {
			return err
		}
		i = next
	}
	if len(d.reptStack) > 0 {
		return d.rep.Fatalf(d.stmts[len(d.stmts)-1].Pos, diag.KindDirective, "unterminated REPT block")
	}
	return nil
}

// execStmt executes the statement at index i and returns the index of the
// next statement to execute (usually i+1, but REPT/ENDR/IF/ELSE/ENDIF can
// jump).
func (d *Driver) execStmt(i int) (int, error) {
	st := d.stmts[i]

	switch st.Kind {
	case node.StmtIf:
		return d.execIf(i, st)
	case node.StmtElse:
		// Reached only when the IF arm executed normally and fell through
		// to its own ELSE marker; skip the else-arm body entirely.
		return d.ifEnd[d.findIfOpen(i)] + 1, nil
	case node.StmtEndif:
		return i + 1, nil
	}

	switch st.Kind {
	case node.StmtLabel:
		return i + 1, d.execLabel(st)
	case node.StmtEqu:
		return i + 1, d.execEqu(st)
	case node.StmtOrg:
		return i + 1, d.execOrg(st)
	case node.StmtSection:
		return i + 1, d.execSection(st)
	case node.StmtData:
		return i + 1, d.execData(st)
	case node.StmtWord:
		return i + 1, d.execWord(st)
	case node.StmtSpace:
		return i + 1, d.execSpace(st)
	case node.StmtIncbin:
		return i + 1, d.execIncbin(st)
	case node.StmtInstr:
		return i + 1, d.execInstr(st)
	case node.StmtRept:
		return d.execReptStart(i, st)
	case node.StmtEndr:
		return d.execReptEnd(i, st)
	case node.StmtProfile:
		return i + 1, d.execProfileStart(st)
	case node.StmtEndProfile:
		return i + 1, d.execProfileEnd(st)
	case node.StmtEnd:
		return len(d.stmts), nil
	default:
		return i + 1, nil
	}
}

func (d *Driver) findIfOpen(elseIdx int) int {
	if open, ok := d.elseOpen[elseIdx]; ok {
		return open
	}
	return elseIdx
}

// execIf evaluates the IF condition and jumps straight past whichever arm
// doesn't apply; untaken statements (including any nested REPT/IF blocks
// inside them) are never visited, so no separate "currently skipping" state
// needs to be threaded through the rest of execStmt.
func (d *Driver) execIf(i int, st *node.Stmt) (int, error) {
	v, err := d.eval(st.Args[0], false)
	if err != nil {
		return i, err
	}
	if !v.IsInt() {
		return i, d.rep.Fatalf(st.Pos, diag.KindDirective, "IF condition did not reduce to a constant")
	}
	if v.IntVal != 0 {
		return i + 1, nil
	}
	if elseAt := d.ifElse[i]; elseAt >= 0 {
		return elseAt + 1, nil
	}
	return d.ifEnd[i] + 1, nil
}

func (d *Driver) execLabel(st *node.Stmt) error {
	if strings.HasPrefix(st.Name, ".") && d.currentGlobalLabel == "" {
		return d.rep.Fatalf(st.Pos, diag.KindSymbol, "local label %q precedes any global label", st.Name)
	}
	name := d.qualifiedDefineName(st.Name)
	if err := d.sym.DefineInt(name, d.currentPC()); err != nil {
		return d.rep.Fatalf(st.Pos, diag.KindSymbol, "%v", err)
	}
	if !strings.HasPrefix(st.Name, ".") {
		d.currentGlobalLabel = st.Name
	}
	return nil
}

func (d *Driver) execEqu(st *node.Stmt) error {
	v, err := d.eval(st.Args[0], true)
	if err != nil {
		return err
	}
	name := d.qualifiedDefineName(st.Name)
	if err := d.sym.Define(name, v); err != nil {
		return d.rep.Fatalf(st.Pos, diag.KindSymbol, "%v", err)
	}
	return nil
}

func (d *Driver) execOrg(st *node.Stmt) error {
	v, err := d.eval(st.Args[0], false)
	if err != nil {
		return err
	}
	if !v.IsInt() {
		return d.rep.Fatalf(st.Pos, diag.KindDirective, "ORG address did not reduce to a constant")
	}
	cur := d.rnd.Current()
	lo := int64(0)
	if cur != nil {
		lo = cur.Start
	}
	if v.IntVal < lo || v.IntVal > 0xFFFF {
		return d.rep.Fatalf(st.Pos, diag.KindDirective, "ORG address %d out of range [%d, 0xFFFF]", v.IntVal, lo)
	}
	if cur == nil {
		if _, err := d.rnd.CreateSection("main", v.IntVal, 0); err != nil {
			return d.rep.Fatalf(st.Pos, diag.KindDirective, "%v", err)
		}
		return nil
	}
	d.rnd.Reorg(v.IntVal)
	return nil
}

func (d *Driver) execSection(st *node.Stmt) error {
	base := int64(0)
	if e, ok := st.Params["base"]; ok {
		v, err := d.eval(e, false)
		if err != nil {
			return err
		}
		base = v.IntVal
	}
	fill := byte(0)
	if e, ok := st.Params["fill"]; ok {
		v, err := d.eval(e, false)
		if err != nil {
			return err
		}
		fill = byte(v.IntVal)
	}
	for key := range st.Params {
		if key != "base" && key != "fill" {
			d.rep.Warn(st.Pos, diag.KindDirective, "unknown section parameter %q", key)
		}
	}
	if _, err := d.rnd.CreateSection(st.Name, base, fill); err != nil {
		return d.rep.Fatalf(st.Pos, diag.KindDirective, "%v", err)
	}
	return nil
}

func (d *Driver) execData(st *node.Stmt) error {
	for _, arg := range st.Args {
		v, err := d.eval(arg, false)
		if err != nil {
			return err
		}
		if v.IsStr() {
			for i := 0; i < len(v.StrVal); i++ {
				d.rnd.Byte(v.StrVal[i])
			}
			continue
		}
		if !v.IsInt() {
			d.addExprPatch(v, 1, false, st.Pos)
			d.rnd.Byte(0)
			continue
		}
		d.rnd.Byte(byte(v.IntVal))
	}
	return nil
}

func (d *Driver) execWord(st *node.Stmt) error {
	for _, arg := range st.Args {
		v, err := d.eval(arg, false)
		if err != nil {
			return err
		}
		if !v.IsInt() {
			d.addExprPatch(v, 2, false, st.Pos)
			d.rnd.Word(0)
			continue
		}
		d.rnd.Word(uint16(v.IntVal))
	}
	return nil
}

func (d *Driver) execSpace(st *node.Stmt) error {
	v, err := d.eval(st.Args[0], false)
	if err != nil {
		return err
	}
	if !v.IsInt() {
		return d.rep.Fatalf(st.Pos, diag.KindDirective, "DS/DEFS size did not reduce to a constant")
	}
	fill := d.rnd.Current().Fill
	if len(st.Args) > 1 {
		fv, err := d.eval(st.Args[1], false)
		if err != nil {
			return err
		}
		if fv.IsInt() {
			fill = byte(fv.IntVal)
		}
	}
	d.rnd.Space(int(v.IntVal), fill)
	return nil
}

func (d *Driver) execIncbin(st *node.Stmt) error {
	data, err := d.resolveIncbin(st.Path)
	if err != nil {
		return d.rep.Fatalf(st.Pos, diag.KindResource, "INCBIN %q: %v", st.Path, err)
	}
	d.rnd.Bytes(data)
	return nil
}

func (d *Driver) execInstr(st *node.Stmt) error {
	sink := &driverSink{d: d, pos: st.Pos}
	err := z80.Encode(sink, st.Pos, st.Mnemonic, st.Args)
	if err != nil {
		return err
	}
	d.rnd.AddCycles(cycleCost(st.Mnemonic))
	return nil
}

func (d *Driver) execReptStart(i int, st *node.Stmt) (int, error) {
	v, err := d.eval(st.Args[0], false)
	if err != nil {
		return i, err
	}
	if !v.IsInt() {
		return i, d.rep.Fatalf(st.Pos, diag.KindDirective, "REPT count did not reduce to a constant")
	}
	end := d.reptEnd[i]
	if v.IntVal <= 0 {
		return end + 1, nil
	}
	frame := &reptFrame{bodyStart: i + 1, bodyEnd: end, count: v.IntVal, loopVar: st.LoopVar}
	d.reptStack = append(d.reptStack, frame)
	if frame.loopVar != "" {
		if err := d.sym.RedefineInt(frame.loopVar, 0); err != nil {
			return i, d.rep.Fatalf(st.Pos, diag.KindSymbol, "%v", err)
		}
	}
	return i + 1, nil
}

func (d *Driver) execReptEnd(i int, st *node.Stmt) (int, error) {
	if len(d.reptStack) == 0 {
		return i, d.rep.Fatalf(st.Pos, diag.KindDirective, "ENDR without matching REPT")
	}
	frame := d.reptStack[len(d.reptStack)-1]
	frame.iter++
	if frame.iter < frame.count {
		if frame.loopVar != "" {
			if err := d.sym.RedefineInt(frame.loopVar, frame.iter); err != nil {
				return i, err
			}
		}
		return frame.bodyStart, nil
	}
	d.reptStack = d.reptStack[:len(d.reptStack)-1]
	if frame.loopVar != "" {
		d.sym.Remove(frame.loopVar)
	}
	return i + 1, nil
}

func (d *Driver) execProfileStart(st *node.Stmt) error {
	if !d.profilingEnabled {
		return nil
	}
	if d.globalProfiling {
		d.rep.Warn(st.Pos, diag.KindDirective, "PROFILE %q is redundant: global profiling is already enabled", st.Name)
	}
	cur := d.rnd.Current()
	bytesSoFar, cyclesSoFar := 0, int64(0)
	if cur != nil {
		bytesSoFar, cyclesSoFar = cur.Len(), cur.Cycles
	}
	d.profStack = append(d.profStack, &profileFrame{name: st.Name, startCycles: cyclesSoFar, startBytes: bytesSoFar})
	return nil
}

func (d *Driver) execProfileEnd(st *node.Stmt) error {
	if !d.profilingEnabled || len(d.profStack) == 0 {
		return nil
	}
	frame := d.profStack[len(d.profStack)-1]
	d.profStack = d.profStack[:len(d.profStack)-1]
	cur := d.rnd.Current()
	if cur == nil {
		return nil
	}
	d.Reports = append(d.Reports, ProfileReport{
		Name:   frame.name,
		Bytes:  cur.Len() - frame.startBytes,
		Cycles: cur.Cycles - frame.startCycles,
	})
	return nil
}

// addExprPatch is a convenience used by directive handlers (DB/DW) that
// don't go through z80.Encode's Sink.
func (d *Driver) addExprPatch(residual *node.Expr, width int, relative bool, pos node.Pos) {
	s := d.rnd.Current()
	p := &section.Patch{
		Expr:       residual,
		Section:    s,
		Offset:     s.Offset(),
		Width:      width,
		IsRelative: relative,
		InstrPC:    s.PC,
		ReptSuffix: d.reptSuffix(),
		Pos:        pos,
	}
	d.rnd.AddPatch(p)
}
