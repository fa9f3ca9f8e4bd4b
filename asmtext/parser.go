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

package asmtext

import (
	"io"
	"strings"

	"github.com/isolenta/bc80-sub000/diag"
	"github.com/isolenta/bc80-sub000/node"
)

// IncludeResolver turns an INCLUDE path argument into a readable source,
// letting the caller apply spec.md §6's -I include-path search without
// asmtext ever touching the filesystem itself.
type IncludeResolver interface {
	Resolve(path string) (name string, data []byte, err error)
}

var opPrec = map[string]int{
	"==": 1, "!=": 1, "<": 1, "<=": 1, ">": 1, ">=": 1,
	"|":  2,
	"&":  3,
	"<<": 4, ">>": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func isCompareOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

var directiveKeywords = map[string]bool{
	"EQU": true, "ORG": true, "DB": true, "DEFB": true, "DM": true, "DEFM": true,
	"DW": true, "DEFW": true, "DS": true, "DEFS": true, "INCBIN": true,
	"INCLUDE": true, "SECTION": true, "REPT": true, "ENDR": true, "IF": true,
	"ELSE": true, "ENDIF": true, "PROFILE": true, "ENDPROFILE": true, "END": true,
}

// Parser reads one source file into a flat []*node.Stmt, mirroring the
// teacher's parser.go token loop (here driven by the hand-rolled lexer in
// lexer.go instead of text/scanner.Scan directly; see DESIGN.md).
type Parser struct {
	lx       *lexer
	tok      token
	tok2     token
	rep      *diag.Reporter
	include  IncludeResolver
	filename string
}

// Parse tokenizes and parses src (named filename for diagnostics) into a
// flat statement list. INCLUDE directives without a configured resolver are
// reported as a parse error and skipped.
func Parse(filename string, r io.Reader, rep *diag.Reporter) ([]*node.Stmt, error) {
	return ParseWithInclude(filename, r, rep, nil)
}

// ParseWithInclude is Parse with INCLUDE support: encountered INCLUDE
// directives are resolved and recursively parsed, splicing the included
// file's statements in place.
func ParseWithInclude(filename string, r io.Reader, rep *diag.Reporter, include IncludeResolver) ([]*node.Stmt, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := newParser(filename, string(data), rep, include)
	return p.parseAll(), nil
}

func newParser(filename, src string, rep *diag.Reporter, include IncludeResolver) *Parser {
	p := &Parser{lx: newLexer(filename, src), rep: rep, include: include, filename: filename}
	p.tok = p.lx.next()
	p.tok2 = p.lx.next()
	return p
}

func (p *Parser) advance() {
	p.tok = p.tok2
	p.tok2 = p.lx.next()
}

func (p *Parser) errf(pos node.Pos, format string, args ...interface{}) {
	p.rep.Fatalf(pos, diag.KindParse, format, args...)
}

// syncLine discards tokens up to and including the next newline/EOF, so a
// malformed statement doesn't cascade into spurious errors on later lines.
func (p *Parser) syncLine() {
	for p.tok.kind != tNewline && p.tok.kind != tEOF {
		p.advance()
	}
	if p.tok.kind == tNewline {
		p.advance()
	}
}

func (p *Parser) parseAll() []*node.Stmt {
	var stmts []*node.Stmt
	for p.tok.kind != tEOF {
		if p.tok.kind == tNewline {
			p.advance()
			continue
		}
		line := p.parseLine()
		stmts = append(stmts, line...)
		if p.tok.kind != tNewline && p.tok.kind != tEOF {
			p.syncLine()
		} else if p.tok.kind == tNewline {
			p.advance()
		}
		if p.rep.Aborted() {
			break
		}
	}
	return stmts
}

// parseLine parses everything up to the next newline: an optional EQU
// binding, an optional run of "label:" prefixes, and at most one directive
// or instruction, matching spec.md §6's "one statement per line" with the
// common "label: instr" exception folded in.
func (p *Parser) parseLine() []*node.Stmt {
	var out []*node.Stmt

	if p.tok.kind == tIdent && p.tok2.kind == tIdent && strings.EqualFold(p.tok2.text, "EQU") {
		name := p.tok.text
		pos := p.tok.pos
		p.advance()
		p.advance()
		val := p.parseExpr()
		return append(out, &node.Stmt{Kind: node.StmtEqu, Pos: pos, Name: name, Args: []*node.Expr{val}})
	}

	for p.tok.kind == tIdent && p.tok2.kind == tColon {
		name := p.tok.text
		pos := p.tok.pos
		p.advance()
		p.advance()
		out = append(out, &node.Stmt{Kind: node.StmtLabel, Pos: pos, Name: name})
		if p.tok.kind == tNewline || p.tok.kind == tEOF {
			return out
		}
	}

	if p.tok.kind == tNewline || p.tok.kind == tEOF {
		return out
	}

	if stmts := p.parseDirectiveOrInstr(); stmts != nil {
		out = append(out, stmts...)
	}
	return out
}

func (p *Parser) parseDirectiveOrInstr() []*node.Stmt {
	if p.tok.kind != tIdent {
		p.errf(p.tok.pos, "expected instruction or directive, found %q", p.tok.text)
		p.advance()
		return nil
	}
	word := p.tok.text
	pos := p.tok.pos
	upper := strings.ToUpper(word)

	if !directiveKeywords[upper] {
		p.advance()
		args := p.parseArgList()
		return []*node.Stmt{{Kind: node.StmtInstr, Pos: pos, Mnemonic: strings.ToLower(word), Args: args}}
	}

	p.advance()
	switch upper {
	case "ORG":
		return []*node.Stmt{{Kind: node.StmtOrg, Pos: pos, Args: p.parseArgList()}}
	case "DB", "DEFB", "DM", "DEFM":
		return []*node.Stmt{{Kind: node.StmtData, Pos: pos, Args: p.parseArgList()}}
	case "DW", "DEFW":
		return []*node.Stmt{{Kind: node.StmtWord, Pos: pos, Args: p.parseArgList()}}
	case "DS", "DEFS":
		return []*node.Stmt{{Kind: node.StmtSpace, Pos: pos, Args: p.parseArgList()}}
	case "INCBIN":
		path := p.parsePathArg()
		return []*node.Stmt{{Kind: node.StmtIncbin, Pos: pos, Path: path}}
	case "INCLUDE":
		return p.parseInclude(pos)
	case "SECTION":
		return []*node.Stmt{p.parseSection(pos)}
	case "REPT":
		count := p.parseExpr()
		loopVar := ""
		if p.tok.kind == tIdent {
			loopVar = p.tok.text
			p.advance()
		}
		return []*node.Stmt{{Kind: node.StmtRept, Pos: pos, Args: []*node.Expr{count}, LoopVar: loopVar}}
	case "ENDR":
		return []*node.Stmt{{Kind: node.StmtEndr, Pos: pos}}
	case "IF":
		cond := p.parseExpr()
		return []*node.Stmt{{Kind: node.StmtIf, Pos: pos, Args: []*node.Expr{cond}}}
	case "ELSE":
		return []*node.Stmt{{Kind: node.StmtElse, Pos: pos}}
	case "ENDIF":
		return []*node.Stmt{{Kind: node.StmtEndif, Pos: pos}}
	case "PROFILE":
		name := ""
		if p.tok.kind == tIdent {
			name = p.tok.text
			p.advance()
		}
		return []*node.Stmt{{Kind: node.StmtProfile, Pos: pos, Name: name}}
	case "ENDPROFILE":
		return []*node.Stmt{{Kind: node.StmtEndProfile, Pos: pos}}
	case "END":
		return []*node.Stmt{{Kind: node.StmtEnd, Pos: pos}}
	default:
		p.errf(pos, "unhandled directive %q", word)
		return nil
	}
}

func (p *Parser) parsePathArg() string {
	if p.tok.kind == tStr {
		path := p.tok.text
		p.advance()
		return path
	}
	p.errf(p.tok.pos, "expected quoted path, found %q", p.tok.text)
	return ""
}

func (p *Parser) parseInclude(pos node.Pos) []*node.Stmt {
	path := p.parsePathArg()
	if p.include == nil {
		p.errf(pos, "INCLUDE %q: no include resolver configured", path)
		return nil
	}
	name, data, err := p.include.Resolve(path)
	if err != nil {
		p.errf(pos, "INCLUDE %q: %v", path, err)
		return nil
	}
	sub := newParser(name, string(data), p.rep, p.include)
	return sub.parseAll()
}

func (p *Parser) parseSection(pos node.Pos) *node.Stmt {
	name := ""
	if p.tok.kind == tIdent {
		name = p.tok.text
		p.advance()
	} else {
		p.errf(pos, "SECTION requires a name")
	}
	stmt := &node.Stmt{Kind: node.StmtSection, Pos: pos, Name: name}
	for p.tok.kind == tIdent {
		key := strings.ToLower(p.tok.text)
		p.advance()
		if !(p.tok.kind == tOp && p.tok.text == "=") {
			p.errf(p.tok.pos, "expected '=' after SECTION parameter %q", key)
			break
		}
		p.advance()
		val := p.parseExpr()
		if stmt.Params == nil {
			stmt.Params = map[string]*node.Expr{}
		}
		stmt.Params[key] = val
	}
	return stmt
}

func (p *Parser) parseArgList() []*node.Expr {
	var args []*node.Expr
	if p.tok.kind == tNewline || p.tok.kind == tEOF {
		return args
	}
	args = append(args, p.parseArg())
	for p.tok.kind == tComma {
		p.advance()
		args = append(args, p.parseArg())
	}
	return args
}

// parseArg parses one instruction/data operand. A parenthesised group that
// spans the whole argument denotes a memory reference per spec.md §6;
// parentheses nested inside a larger expression are plain grouping.
func (p *Parser) parseArg() *node.Expr {
	if p.tok.kind == tLParen {
		pos := p.tok.pos
		p.advance()
		inner := p.parseExpr()
		p.expect(tRParen, ")")
		if p.tok.kind == tOp {
			if _, ok := opPrec[p.tok.text]; ok {
				left := &node.Expr{Kind: node.ExprSimple, Pos: pos, X: inner}
				return p.continueBinary(left, 1)
			}
		}
		return &node.Expr{Kind: node.ExprSimple, Pos: pos, IsReference: true, X: inner}
	}
	return p.parseExpr()
}

func (p *Parser) parseExpr() *node.Expr {
	return p.parseExprBP(1)
}

func (p *Parser) parseExprBP(minBP int) *node.Expr {
	left := p.parseUnary()
	return p.continueBinary(left, minBP)
}

func (p *Parser) continueBinary(left *node.Expr, minBP int) *node.Expr {
	for p.tok.kind == tOp {
		bp, ok := opPrec[p.tok.text]
		if !ok || bp < minBP {
			break
		}
		op := p.tok.text
		pos := p.tok.pos
		p.advance()
		right := p.parseExprBP(bp + 1)
		kind := node.ExprBinary
		if isCompareOp(op) {
			kind = node.ExprCompare
		}
		left = &node.Expr{Kind: kind, Pos: pos, Op: op, X: left, Y: right}
	}
	return left
}

func (p *Parser) parseUnary() *node.Expr {
	if p.tok.kind == tOp && (p.tok.text == "-" || p.tok.text == "+" || p.tok.text == "~" || p.tok.text == "!") {
		op := p.tok.text
		pos := p.tok.pos
		p.advance()
		x := p.parseUnary()
		return &node.Expr{Kind: node.ExprUnary, Pos: pos, Op: op, X: x}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() *node.Expr {
	switch p.tok.kind {
	case tInt:
		v, pos := p.tok.intVal, p.tok.pos
		p.advance()
		return node.Int(pos, v)
	case tStr:
		s, pos := p.tok.text, p.tok.pos
		p.advance()
		return node.Str(pos, s)
	case tDollar:
		pos := p.tok.pos
		p.advance()
		return node.Dollar(pos)
	case tIdent:
		name, pos := p.tok.text, p.tok.pos
		p.advance()
		return node.Id(pos, name)
	case tLParen:
		pos := p.tok.pos
		p.advance()
		inner := p.parseExpr()
		p.expect(tRParen, ")")
		return &node.Expr{Kind: node.ExprSimple, Pos: pos, X: inner}
	default:
		pos := p.tok.pos
		p.errf(pos, "expected an expression, found %q", p.tok.text)
		if p.tok.kind != tEOF && p.tok.kind != tNewline {
			p.advance()
		}
		return node.Int(pos, 0)
	}
}

func (p *Parser) expect(kind tokKind, desc string) bool {
	if p.tok.kind == kind {
		p.advance()
		return true
	}
	p.errf(p.tok.pos, "expected %q, found %q", desc, p.tok.text)
	return false
}
