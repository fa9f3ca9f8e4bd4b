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

// Package expr implements the pure expression-tree simplifier described in
// spec.md §4.1: literal folding, "$" (current-PC) substitution, identifier
// lookup against a caller-supplied symbol context, and residualisation when
// a symbol cannot yet be resolved.
package expr

import (
	"text/scanner"

	"github.com/isolenta/bc80-sub000/diag"
	"github.com/isolenta/bc80-sub000/node"
)

// Context carries everything Eval needs from the driver/symbol table
// without expr importing either, to keep the evaluator a pure function of
// its inputs (it never mutates the tree it is given).
type Context struct {
	PC int64 // current section PC; ignored when InEqu is true

	// InEqu disables "$"-as-PC substitution, so EQU right-hand sides stay
	// PC-independent per spec.md §3.
	InEqu bool

	// Lookup resolves an identifier to its bound value, if any.
	Lookup func(name string) (*node.Expr, bool)

	// ReptSuffix, when non-empty, is retried as "<name>#<suffix>" on a
	// failed lookup — used during pass-2 patch resolution inside REPT
	// blocks, per spec.md §4.1 rule 3.
	ReptSuffix string

	// Arithmetic is set to true by Eval whenever a unary/binary fold
	// occurs, so the driver can warn on the "outer parens with inner
	// arithmetic" ambiguity described in spec.md §4.1.
	Arithmetic bool
}

// Eval reduces e as far as possible under ctx, returning a fresh node tree
// (the input is never mutated, since the same expression may be evaluated
// again later with a different PC/symbol state).
func Eval(r *diag.Reporter, ctx *Context, e *node.Expr) (*node.Expr, error) {
	if e == nil {
		return nil, nil
	}

	switch e.Kind {
	case node.ExprLiteral:
		return evalLiteral(ctx, e), nil

	case node.ExprIdent:
		return evalIdent(r, ctx, e)

	case node.ExprSimple:
		inner, err := Eval(r, ctx, e.X)
		if err != nil {
			return nil, err
		}
		out := *inner
		out.IsReference = out.IsReference || e.IsReference
		out.Pos = e.Pos
		return &out, nil

	case node.ExprUnary:
		x, err := Eval(r, ctx, e.X)
		if err != nil {
			return nil, err
		}
		if x.IsInt() {
			ctx.Arithmetic = true
			v, err := foldUnary(r, e.Pos, e.Op, x.IntVal)
			if err != nil {
				return nil, err
			}
			return node.Int(e.Pos, v), nil
		}
		return &node.Expr{Kind: node.ExprUnary, Pos: e.Pos, Op: e.Op, X: x, IsReference: e.IsReference}, nil

	case node.ExprBinary:
		x, err := Eval(r, ctx, e.X)
		if err != nil {
			return nil, err
		}
		y, err := Eval(r, ctx, e.Y)
		if err != nil {
			return nil, err
		}
		if x.IsInt() && y.IsInt() {
			ctx.Arithmetic = true
			v, err := foldBinary(r, e.Pos, e.Op, x.IntVal, y.IntVal)
			if err != nil {
				return nil, err
			}
			return node.Int(e.Pos, v), nil
		}
		return &node.Expr{Kind: node.ExprBinary, Pos: e.Pos, Op: e.Op, X: x, Y: y, IsReference: e.IsReference}, nil

	case node.ExprCompare:
		x, err := Eval(r, ctx, e.X)
		if err != nil {
			return nil, err
		}
		y, err := Eval(r, ctx, e.Y)
		if err != nil {
			return nil, err
		}
		if x.IsInt() && y.IsInt() {
			ctx.Arithmetic = true
			v := foldCompare(e.Op, x.IntVal, y.IntVal)
			return node.Int(e.Pos, v), nil
		}
		return &node.Expr{Kind: node.ExprCompare, Pos: e.Pos, Op: e.Op, X: x, Y: y, IsReference: e.IsReference}, nil
	}

	return e, nil
}

func evalLiteral(ctx *Context, e *node.Expr) *node.Expr {
	switch e.Lit {
	case node.LitDollar:
		if !ctx.InEqu {
			return node.Int(e.Pos, ctx.PC)
		}
		return node.Dollar(e.Pos)
	case node.LitString:
		if len(e.StrVal) == 1 {
			return node.Int(e.Pos, int64(e.StrVal[0]))
		}
		return node.Str(e.Pos, e.StrVal)
	default:
		return node.Int(e.Pos, e.IntVal)
	}
}

func evalIdent(r *diag.Reporter, ctx *Context, e *node.Expr) (*node.Expr, error) {
	if v, ok := ctx.Lookup(e.Ident); ok {
		return Eval(r, ctx, v)
	}
	if ctx.ReptSuffix != "" {
		if v, ok := ctx.Lookup(e.Ident + "#" + ctx.ReptSuffix); ok {
			return Eval(r, ctx, v)
		}
	}
	return &node.Expr{Kind: node.ExprIdent, Pos: e.Pos, Ident: e.Ident, IsReference: e.IsReference}, nil
}

func wrap32(v int64) int64 {
	return int64(int32(v))
}

func foldUnary(r *diag.Reporter, pos scanner.Position, op string, x int64) (int64, error) {
	switch op {
	case "+":
		return wrap32(x), nil
	case "-":
		return wrap32(-x), nil
	case "~":
		return wrap32(^x), nil
	case "!":
		if x == 0 {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, r.Fatalf(pos, diag.KindEncoder, "unknown unary operator %q", op)
	}
}

func foldBinary(r *diag.Reporter, pos scanner.Position, op string, x, y int64) (int64, error) {
	a, b := int32(x), int32(y)
	switch op {
	case "+":
		return wrap32(int64(a) + int64(b)), nil
	case "-":
		return wrap32(int64(a) - int64(b)), nil
	case "*":
		return wrap32(int64(a) * int64(b)), nil
	case "/":
		if b == 0 {
			return 0, r.Fatalf(pos, diag.KindEncoder, "division by zero")
		}
		return wrap32(int64(a / b)), nil
	case "%":
		if b == 0 {
			return 0, r.Fatalf(pos, diag.KindEncoder, "division by zero")
		}
		return wrap32(int64(a % b)), nil
	case "&":
		return wrap32(int64(a & b)), nil
	case "|":
		return wrap32(int64(a | b)), nil
	case "<<":
		return wrap32(int64(a) << uint(uint32(b)&31)), nil
	case ">>":
		return wrap32(int64(a) >> uint(uint32(b)&31)), nil
	default:
		return 0, r.Fatalf(pos, diag.KindEncoder, "unknown binary operator %q", op)
	}
}

func foldCompare(op string, x, y int64) int64 {
	var ok bool
	switch op {
	case "==":
		ok = x == y
	case "!=":
		ok = x != y
	case "<":
		ok = x < y
	case "<=":
		ok = x <= y
	case ">":
		ok = x > y
	case ">=":
		ok = x >= y
	}
	if ok {
		return 1
	}
	return 0
}
