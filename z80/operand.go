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

// Operand is the result of classifying one argument node, per spec.md
// §4.4's chain of operand classifiers: accumulator, flags, gpr8, hl,
// qreg16, preg16, index, ixy_half, imm8/imm16, index_offset, bitnum,
// condition and reladdr all reduce to this one shape.
type Operand struct {
	// Name is the lower-cased register/condition name when the argument
	// reduced to a bare (possibly parenthesised) identifier: "a", "bc",
	// "ixh", "nz", "f", "i", "r", "af'" and so on. Empty otherwise.
	Name string
	// IsRef is true when the argument was written in parens: "(hl)",
	// "(nn)", "(c)".
	IsRef bool
	// IndexSel selects IX (0) or IY (1) for an indexed reference; -1 when
	// the operand is not of that shape.
	IndexSel int
	// Disp is the displacement expression of an (ix+d)/(iy+d) reference.
	Disp *node.Expr
	// Expr carries the raw, unevaluated expression for every operand that
	// is not a bare register/condition name: immediates, addresses, bit
	// numbers, restart targets and relative-jump targets.
	Expr *node.Expr
}

// classify inspects one unevaluated argument node and reports its syntactic
// shape, deferring the decision of which classifier actually applies to the
// mnemonic handler (spec.md §4.4: "select the first matching encoding").
func classify(arg *node.Expr) Operand {
	if arg.Kind == node.ExprSimple {
		inner := arg.X
		if idx, disp, ok := indexedRef(inner); ok {
			return Operand{IsRef: true, IndexSel: idx, Disp: disp}
		}
		if inner.Kind == node.ExprIdent {
			out := *inner
			out.IsReference = true
			return Operand{Name: lower(inner.Ident), Expr: &out, IsRef: true, IndexSel: -1}
		}
		out := *inner
		out.IsReference = true
		return Operand{Expr: &out, IsRef: true, IndexSel: -1}
	}
	if arg.Kind == node.ExprIdent {
		// Name carries the lower-cased text for register/condition lookup;
		// Expr is also populated so mnemonic handlers that find no register
		// match fall back to treating it as a symbol reference (a jump
		// target, an 8/16-bit immediate, or an address).
		return Operand{Name: lower(arg.Ident), Expr: arg, IndexSel: -1}
	}
	return Operand{Expr: arg, IndexSel: -1}
}

// indexedRef recognises "ix+d", "ix-d", "iy+d", "iy-d" as the inner
// expression of a parenthesised reference.
func indexedRef(e *node.Expr) (sel int, disp *node.Expr, ok bool) {
	if e.Kind != node.ExprBinary || (e.Op != "+" && e.Op != "-") {
		return 0, nil, false
	}
	if e.X.Kind != node.ExprIdent {
		return 0, nil, false
	}
	name := lower(e.X.Ident)
	switch name {
	case "ix":
		sel = 0
	case "iy":
		sel = 1
	default:
		return 0, nil, false
	}
	d := e.Y
	if e.Op == "-" {
		d = &node.Expr{Kind: node.ExprUnary, Pos: e.Pos, Op: "-", X: e.Y}
	}
	return sel, d, true
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
