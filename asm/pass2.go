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
	"github.com/isolenta/bc80-sub000/expr"
	"github.com/isolenta/bc80-sub000/node"
	"github.com/isolenta/bc80-sub000/section"
)

// runPass2 resolves every deferred patch recorded during pass 1, now that
// every label in the program (forward or backward) has a known address.
// Local ("."-prefixed) identifiers inside a patch's expression were already
// rewritten to their fully-qualified form at AddPatch time (see
// qualifyLocalsInExpr), so plain symtab.Lookup plus the patch's own
// recorded REPT suffix is all pass 2 needs.
func (d *Driver) runPass2() error {
	for _, p := range d.rnd.Patches {
		ctx := &expr.Context{
			PC:         p.InstrPC,
			Lookup:     d.sym.Lookup,
			ReptSuffix: p.ReptSuffix,
		}
		val, err := expr.Eval(d.rep, ctx, p.Expr)
		if err != nil {
			return err
		}
		if !val.IsInt() {
			return d.rep.Fatalf(p.Pos, diag.KindSymbol, "unresolved symbol %q", residualName(val))
		}
		if p.IsRelative {
			disp := val.IntVal - p.InstrPC
			if disp < -128 || disp > 127 {
				return d.rep.Fatalf(p.Pos, diag.KindEncoder, "relative jump out of range (%d)", disp)
			}
		}
		section.PatchValue(p, val.IntVal)
	}
	return nil
}

// residualName produces a short description of an expression that failed
// to reduce to a constant, for the diagnostic message.
func residualName(e *node.Expr) string {
	if e == nil {
		return "?"
	}
	if e.Kind == node.ExprIdent {
		return e.Ident
	}
	return "expression"
}
