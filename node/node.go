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

// Package node defines the tagged parse-node model shared by the source
// reader, expression evaluator and compile driver: every statement and
// expression shape named in spec.md §3, with source position and the
// is_reference flag carried on every node.
package node

import "text/scanner"

// Pos is reused directly from text/scanner, following the teacher's own
// precedent of storing scanner.Position in its label/error records instead
// of rolling a bespoke position type.
type Pos = scanner.Position

// LitKind is one of the three literal kinds named in spec.md §3.
type LitKind int

const (
	LitNone LitKind = iota
	LitInt
	LitString
	LitDollar
)

// ExprKind tags the shape of an Expr node.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprIdent
	ExprSimple // parenthesised sub-expression: (expr)
	ExprUnary
	ExprBinary
	ExprCompare
)

// Expr is a node in an expression tree. Exactly one of the literal/ident/
// operand fields is meaningful, selected by Kind.
type Expr struct {
	Kind        ExprKind
	Pos         Pos
	IsReference bool // true for "(expr)": "the value at that address"

	// ExprLiteral
	Lit    LitKind
	IntVal int64
	StrVal string

	// ExprIdent
	Ident string

	// ExprSimple / ExprUnary / ExprBinary / ExprCompare
	Op string // operator symbol, e.g. "+", "-", "~", "!", "<<", "==", ...
	X  *Expr  // operand (unary/simple) or left operand (binary/compare)
	Y  *Expr  // right operand (binary/compare only)
}

// Int builds a fully-reduced integer literal expression.
func Int(pos Pos, v int64) *Expr { return &Expr{Kind: ExprLiteral, Pos: pos, Lit: LitInt, IntVal: v} }

// Str builds a fully-reduced string literal expression.
func Str(pos Pos, s string) *Expr {
	return &Expr{Kind: ExprLiteral, Pos: pos, Lit: LitString, StrVal: s}
}

// Dollar builds an unresolved "$" literal expression.
func Dollar(pos Pos) *Expr { return &Expr{Kind: ExprLiteral, Pos: pos, Lit: LitDollar} }

// Id builds an identifier reference expression.
func Id(pos Pos, name string) *Expr { return &Expr{Kind: ExprIdent, Pos: pos, Ident: name} }

// IsInt reports whether e is a fully-reduced integer literal.
func (e *Expr) IsInt() bool { return e != nil && e.Kind == ExprLiteral && e.Lit == LitInt }

// IsStr reports whether e is a fully-reduced string literal.
func (e *Expr) IsStr() bool { return e != nil && e.Kind == ExprLiteral && e.Lit == LitString }

// StmtKind tags the shape of a Stmt node.
type StmtKind int

const (
	StmtLabel StmtKind = iota
	StmtInstr
	StmtEqu
	StmtOrg
	StmtData    // DB/DEFB/DM/DEFM (unit width 1, strings inlined)
	StmtWord    // DW/DEFW (unit width 2)
	StmtSpace   // DS/DEFS
	StmtIncbin
	StmtSection
	StmtRept
	StmtEndr
	StmtIf
	StmtElse
	StmtEndif
	StmtProfile
	StmtEndProfile
	StmtEnd
)

// Stmt is a single parsed statement, tagged by Kind. Fields are populated
// according to Kind; unused fields are left zero.
type Stmt struct {
	Kind StmtKind
	Pos  Pos

	Name     string  // label/EQU/SECTION name
	Mnemonic string  // StmtInstr opcode mnemonic
	Args     []*Expr // operand list / data list / ORG addr / EQU value / REPT count / IF condition
	Params   map[string]*Expr // SECTION named params (base=, fill=)
	LoopVar  string  // REPT loop variable name, optional
	Path     string  // INCBIN/INCLUDE file path
}
