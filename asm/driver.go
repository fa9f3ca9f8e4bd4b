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

// Package asm implements the two-pass compile driver described in
// spec.md §4.3: it walks the flat statement list asmtext produces,
// resolves what it can immediately, defers the rest as section patches,
// and renders the result through the chosen section.Backend.
package asm

import (
	"fmt"
	"strings"

	"github.com/isolenta/bc80-sub000/diag"
	"github.com/isolenta/bc80-sub000/expr"
	"github.com/isolenta/bc80-sub000/node"
	"github.com/isolenta/bc80-sub000/section"
	"github.com/isolenta/bc80-sub000/symtab"
	"github.com/isolenta/bc80-sub000/z80"
)

// Option configures a Driver, following db47h-ngaro's vm.Option pattern
// (functional options collected before the Instance/Driver is built).
type Option func(*Driver)

// WithIncludePaths sets the search path list consulted for INCLUDE/INCBIN
// arguments that aren't found as given (relative to the process's working
// directory); the source file's own directory is not searched.
func WithIncludePaths(paths []string) Option {
	return func(d *Driver) { d.includePaths = paths }
}

// WithDefines seeds the symbol table from "-D" command-line entries before
// any source is parsed.
func WithDefines(defines map[string]string) Option {
	return func(d *Driver) { d.defines = defines }
}

// WithProfiling enables PROFILE/ENDPROFILE cycle-count accounting; when
// false, PROFILE blocks are parsed but produce no report entries.
func WithProfiling(enabled bool) Option {
	return func(d *Driver) { d.profilingEnabled = enabled }
}

// WithGlobalProfiling marks that "--profile=all" was given; an explicit
// PROFILE directive in source then draws a warning. Labels do not open
// profile windows in either mode: only PROFILE/ENDPROFILE blocks are
// accounted.
func WithGlobalProfiling(enabled bool) Option {
	return func(d *Driver) { d.globalProfiling = enabled }
}

// WithTarget selects the output backend ("raw", "object" or "sna").
func WithTarget(target string) Option {
	return func(d *Driver) { d.target = target }
}

// WithSNAOptions configures the "sna" backend's generic/PC/ramtop knobs.
func WithSNAOptions(opts section.SNAOptions) Option {
	return func(d *Driver) { d.snaOpts = opts }
}

// Driver holds all state for one assemble run: the symbol table, the
// section renderer, the REPT/PROFILE context stacks that pass 1 threads
// through statement execution, and the precomputed REPT/IF/ELSE/ENDIF jump
// tables (IF blocks keep no runtime stack).
type Driver struct {
	rep *diag.Reporter
	sym *symtab.Table
	rnd *section.Renderer

	includePaths     []string
	defines          map[string]string
	profilingEnabled bool
	globalProfiling  bool
	target           string
	snaOpts          section.SNAOptions

	stmts []*node.Stmt

	reptEnd  map[int]int
	ifElse   map[int]int
	ifEnd    map[int]int
	elseOpen map[int]int // ELSE stmt index -> its opening IF index

	reptStack []*reptFrame
	profStack []*profileFrame
	Reports   []ProfileReport

	currentGlobalLabel string
}

type reptFrame struct {
	bodyStart int
	bodyEnd   int // index of the matching ENDR
	count     int64
	iter      int64
	loopVar   string
}

// ProfileReport is one finished PROFILE/ENDPROFILE window's accounting,
// per spec.md §6's --profile output.
type ProfileReport struct {
	Name   string
	Bytes  int
	Cycles int64
}

type profileFrame struct {
	name        string
	startCycles int64
	startBytes  int
}

// New creates a Driver with an empty symbol table (seeded from
// WithDefines) and section renderer. z80.ReservedSet is injected as the
// symtab reserved-identifier predicate so user code can never redefine a
// register name or mnemonic.
func New(rep *diag.Reporter, opts ...Option) (*Driver, error) {
	d := &Driver{
		rep:    rep,
		rnd:    section.NewRenderer(),
		target: "raw",
	}
	for _, o := range opts {
		o(d)
	}
	d.sym = symtab.New(z80.ReservedSet)
	if d.defines != nil {
		if err := d.sym.SeedFromDefines(d.defines); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Reporter exposes the diag.Reporter the driver reports into, so the
// caller can flush diagnostics and check exit status after Assemble.
func (d *Driver) Reporter() *diag.Reporter { return d.rep }

// Assemble runs both passes over stmts and returns the final rendered
// image for the configured target.
func (d *Driver) Assemble(stmts []*node.Stmt) ([]byte, error) {
	d.stmts = stmts
	if err := d.buildBlockIndex(); err != nil {
		return nil, err
	}
	if err := d.runPass1(); err != nil {
		return nil, err
	}
	if err := d.runPass2(); err != nil {
		return nil, err
	}
	return d.render()
}

func (d *Driver) render() ([]byte, error) {
	var backend section.Backend
	switch d.target {
	case "raw":
		backend = section.RawBackend{}
	case "object":
		backend = section.ELFBackend{}
	case "sna":
		backend = section.SNABackend{Opts: d.snaOpts}
	default:
		return nil, fmt.Errorf("unknown target %q", d.target)
	}
	return backend.Render(d.rnd.Sections())
}

// reptSuffix returns the "<i1>#<i2>#..." suffix for the currently active
// REPT nesting, or "" outside any REPT block, per DESIGN.md's Open
// Question decision #1.
func (d *Driver) reptSuffix() string {
	if len(d.reptStack) == 0 {
		return ""
	}
	parts := make([]string, len(d.reptStack))
	for i, f := range d.reptStack {
		parts[i] = fmt.Sprintf("%d", f.iter)
	}
	return strings.Join(parts, "#")
}

// qualifyLocal rewrites a ".name" local label into "<globalLabel>.name".
// Non-local names pass through unchanged.
func (d *Driver) qualifyLocal(name string) string {
	if strings.HasPrefix(name, ".") {
		return d.currentGlobalLabel + name
	}
	return name
}

// qualifiedDefineName is the full symtab key a label/EQU name maps to,
// combining local-label qualification with REPT suffixing.
func (d *Driver) qualifiedDefineName(raw string) string {
	q := d.qualifyLocal(raw)
	if suf := d.reptSuffix(); suf != "" {
		q += "#" + suf
	}
	return q
}

// evalContext builds an expr.Context reflecting the driver's current PC,
// symbol table and REPT nesting. qualifyLocalsInExpr should already have
// been applied to e before Eval is called with this context, so any local
// idents left over are ones whose global scope is whatever the *resolving*
// context implies (used only for pass-2, where locals were already
// rewritten to fully-qualified names at AddPatch time).
func (d *Driver) evalContext(pc int64, inEqu bool, reptSuffix string) *expr.Context {
	return &expr.Context{
		PC:         pc,
		InEqu:      inEqu,
		ReptSuffix: reptSuffix,
		Lookup:     d.sym.Lookup,
	}
}

// eval resolves e under the driver's current pass-1 state: local idents are
// qualified against the current global label, then looked up directly
// (plus the REPT-suffix retry for names defined earlier in this same block).
func (d *Driver) eval(e *node.Expr, inEqu bool) (*node.Expr, error) {
	q := d.qualifyLocalsInExpr(e)
	ctx := d.evalContext(d.currentPC(), inEqu, d.reptSuffix())
	out, err := expr.Eval(d.rep, ctx, q)
	if err == nil && ctx.Arithmetic && e != nil && e.IsReference {
		d.rep.Warn(e.Pos, diag.KindEncoder, "ambiguous reference parentheses: outer parentheses around an arithmetic expression")
	}
	return out, err
}

func (d *Driver) currentPC() int64 {
	if s := d.rnd.Current(); s != nil {
		return s.PC
	}
	return 0
}

// qualifyLocalsInExpr rewrites every local ("."-prefixed) identifier in e
// against the driver's current global label, so that by the time an
// expression is stored in a pass-2 Patch it no longer depends on driver
// state that pass 2 (which walks a flat patch list, not statements) does
// not track.
func (d *Driver) qualifyLocalsInExpr(e *node.Expr) *node.Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case node.ExprIdent:
		if strings.HasPrefix(e.Ident, ".") {
			out := *e
			out.Ident = d.qualifyLocal(e.Ident)
			return &out
		}
		return e
	case node.ExprSimple, node.ExprUnary:
		out := *e
		out.X = d.qualifyLocalsInExpr(e.X)
		return &out
	case node.ExprBinary, node.ExprCompare:
		out := *e
		out.X = d.qualifyLocalsInExpr(e.X)
		out.Y = d.qualifyLocalsInExpr(e.Y)
		return &out
	default:
		return e
	}
}
