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
)

type blockMarker struct {
	idx  int
	kind string // "rept", "if" or "else"
}

// buildBlockIndex pre-matches every REPT/ENDR and IF/ELSE/ENDIF pair in one
// linear pass, so pass 1 can jump straight to a block's end (or its ELSE
// arm) instead of re-scanning forward every time, mirroring the explicit
// index-rewind idiom DESIGN.md grounds on db47h-ngaro/asm/parser.go.
func (d *Driver) buildBlockIndex() error {
	d.reptEnd = map[int]int{}
	d.ifElse = map[int]int{}
	d.ifEnd = map[int]int{}
	d.elseOpen = map[int]int{}

	var stack []*blockMarker
	for i, st := range d.stmts {
		switch st.Kind {
		case node.StmtRept:
			stack = append(stack, &blockMarker{idx: i, kind: "rept"})
		case node.StmtEndr:
			if len(stack) == 0 || stack[len(stack)-1].kind != "rept" {
				return d.rep.Fatalf(st.Pos, diag.KindDirective, "ENDR without matching REPT")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			d.reptEnd[top.idx] = i
		case node.StmtIf:
			stack = append(stack, &blockMarker{idx: i, kind: "if"})
			d.ifElse[i] = -1
		case node.StmtElse:
			if len(stack) == 0 || (stack[len(stack)-1].kind != "if") {
				return d.rep.Fatalf(st.Pos, diag.KindDirective, "ELSE without matching IF")
			}
			top := stack[len(stack)-1]
			d.ifElse[top.idx] = i
			d.elseOpen[i] = top.idx
			top.kind = "else"
		case node.StmtEndif:
			if len(stack) == 0 || (stack[len(stack)-1].kind != "if" && stack[len(stack)-1].kind != "else") {
				return d.rep.Fatalf(st.Pos, diag.KindDirective, "ENDIF without matching IF")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			d.ifEnd[top.idx] = i
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return d.rep.Fatalf(d.stmts[top.idx].Pos, diag.KindDirective, "unterminated %s block", top.kind)
	}
	return nil
}
