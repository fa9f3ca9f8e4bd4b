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
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isolenta/bc80-sub000/diag"
	"github.com/isolenta/bc80-sub000/node"
)

func parseSrc(t *testing.T, src string) ([]*node.Stmt, *diag.Reporter) {
	t.Helper()
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf, false)
	stmts, err := Parse("test.asm", strings.NewReader(src), rep)
	require.NoError(t, err)
	return stmts, rep
}

func TestParseLabelAndInstruction(t *testing.T) {
	stmts, rep := parseSrc(t, "start:LD A,42\nJP start\n")
	require.False(t, rep.HasErrors())
	require.Len(t, stmts, 3)
	assert.Equal(t, node.StmtLabel, stmts[0].Kind)
	assert.Equal(t, "start", stmts[0].Name)
	assert.Equal(t, node.StmtInstr, stmts[1].Kind)
	assert.Equal(t, "ld", stmts[1].Mnemonic)
	require.Len(t, stmts[1].Args, 2)
	assert.Equal(t, "a", stmts[1].Args[0].Ident)
	assert.True(t, stmts[1].Args[1].IsInt())
	assert.EqualValues(t, 42, stmts[1].Args[1].IntVal)
	assert.Equal(t, node.StmtInstr, stmts[2].Kind)
	assert.Equal(t, "jp", stmts[2].Mnemonic)
	assert.Equal(t, "start", stmts[2].Args[0].Ident)
}

func TestParseEqu(t *testing.T) {
	stmts, rep := parseSrc(t, "X EQU 5\n")
	require.False(t, rep.HasErrors())
	require.Len(t, stmts, 1)
	assert.Equal(t, node.StmtEqu, stmts[0].Kind)
	assert.Equal(t, "X", stmts[0].Name)
	require.Len(t, stmts[0].Args, 1)
	assert.True(t, stmts[0].Args[0].IsInt())
	assert.EqualValues(t, 5, stmts[0].Args[0].IntVal)
}

func TestParseEquExpression(t *testing.T) {
	stmts, rep := parseSrc(t, "LD HL,X*X+1\n")
	require.False(t, rep.HasErrors())
	require.Len(t, stmts, 1)
	arg := stmts[0].Args[1]
	assert.Equal(t, node.ExprBinary, arg.Kind)
	assert.Equal(t, "+", arg.Op)
	assert.Equal(t, node.ExprBinary, arg.X.Kind)
	assert.Equal(t, "*", arg.X.Op)
}

func TestParseDataDirective(t *testing.T) {
	stmts, rep := parseSrc(t, `DB 1,2,"AB",3`+"\n")
	require.False(t, rep.HasErrors())
	require.Len(t, stmts, 1)
	require.Equal(t, node.StmtData, stmts[0].Kind)
	require.Len(t, stmts[0].Args, 4)
	assert.True(t, stmts[0].Args[0].IsInt())
	assert.True(t, stmts[0].Args[2].IsStr())
	assert.Equal(t, "AB", stmts[0].Args[2].StrVal)
}

func TestParseRept(t *testing.T) {
	stmts, rep := parseSrc(t, "REPT 3\nNOP\nENDR\n")
	require.False(t, rep.HasErrors())
	require.Len(t, stmts, 3)
	assert.Equal(t, node.StmtRept, stmts[0].Kind)
	assert.True(t, stmts[0].Args[0].IsInt())
	assert.EqualValues(t, 3, stmts[0].Args[0].IntVal)
	assert.Equal(t, node.StmtInstr, stmts[1].Kind)
	assert.Equal(t, node.StmtEndr, stmts[2].Kind)
}

func TestParseIndexedReference(t *testing.T) {
	stmts, rep := parseSrc(t, "LD A,(IX-1)\n")
	require.False(t, rep.HasErrors())
	arg := stmts[0].Args[1]
	assert.True(t, arg.IsReference)
	assert.Equal(t, node.ExprBinary, arg.X.Kind)
	assert.Equal(t, "-", arg.X.Op)
	assert.Equal(t, "ix", arg.X.X.Ident)
	assert.EqualValues(t, 1, arg.X.Y.IntVal)
}

func TestParseGroupedExpressionIsNotAReference(t *testing.T) {
	stmts, rep := parseSrc(t, "LD A,(1+2)*3\n")
	require.False(t, rep.HasErrors())
	arg := stmts[0].Args[1]
	assert.False(t, arg.IsReference)
	assert.Equal(t, node.ExprBinary, arg.Kind)
	assert.Equal(t, "*", arg.Op)
}

func TestParseNumericLiteralForms(t *testing.T) {
	stmts, rep := parseSrc(t, "DB 0x7F,$7F,7Fh,%1010,0b1010,1010b,017,0o17,17o\n")
	require.False(t, rep.HasErrors())
	want := []int64{0x7F, 0x7F, 0x7F, 10, 10, 10, 15, 15, 15}
	require.Len(t, stmts[0].Args, len(want))
	for i, w := range want {
		assert.EqualValues(t, w, stmts[0].Args[i].IntVal, "index %d", i)
	}
}

func TestParseDollarAsCurrentPC(t *testing.T) {
	stmts, rep := parseSrc(t, "JR $+2\n")
	require.False(t, rep.HasErrors())
	arg := stmts[0].Args[0]
	assert.Equal(t, node.ExprBinary, arg.Kind)
	assert.Equal(t, node.LitDollar, arg.X.Lit)
}

func TestParseLocalLabel(t *testing.T) {
	stmts, rep := parseSrc(t, ".loop:\nDJNZ .loop\n")
	require.False(t, rep.HasErrors())
	require.Len(t, stmts, 2)
	assert.Equal(t, ".loop", stmts[0].Name)
	assert.Equal(t, ".loop", stmts[1].Args[0].Ident)
}

func TestParseSectionParams(t *testing.T) {
	stmts, rep := parseSrc(t, "SECTION code base=0x8000 fill=0xFF\n")
	require.False(t, rep.HasErrors())
	require.Equal(t, node.StmtSection, stmts[0].Kind)
	assert.Equal(t, "code", stmts[0].Name)
	require.Contains(t, stmts[0].Params, "base")
	assert.EqualValues(t, 0x8000, stmts[0].Params["base"].IntVal)
	require.Contains(t, stmts[0].Params, "fill")
	assert.EqualValues(t, 0xFF, stmts[0].Params["fill"].IntVal)
}

func TestParseIfElseEndif(t *testing.T) {
	stmts, rep := parseSrc(t, "IF 1\nNOP\nELSE\nHALT\nENDIF\n")
	require.False(t, rep.HasErrors())
	require.Len(t, stmts, 5)
	assert.Equal(t, node.StmtIf, stmts[0].Kind)
	assert.Equal(t, node.StmtElse, stmts[2].Kind)
	assert.Equal(t, node.StmtEndif, stmts[4].Kind)
}

func TestParseCommentIsIgnored(t *testing.T) {
	stmts, rep := parseSrc(t, "NOP ; this is a comment\nHALT\n")
	require.False(t, rep.HasErrors())
	require.Len(t, stmts, 2)
	assert.Equal(t, "nop", stmts[0].Mnemonic)
	assert.Equal(t, "halt", stmts[1].Mnemonic)
}

func TestParseMalformedLineRecoversOnNextLine(t *testing.T) {
	stmts, rep := parseSrc(t, "LD A,\nHALT\n")
	assert.True(t, rep.HasErrors())
	require.Len(t, stmts, 2)
	assert.Equal(t, "halt", stmts[1].Mnemonic)
}

func TestParseIncludeWithoutResolverErrors(t *testing.T) {
	_, rep := parseSrc(t, `INCLUDE "missing.asm"`+"\n")
	assert.True(t, rep.HasErrors())
}

type mapResolver map[string]string

func (m mapResolver) Resolve(path string) (string, []byte, error) {
	return path, []byte(m[path]), nil
}

func TestParseIncludeSplicesStatements(t *testing.T) {
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf, false)
	resolver := mapResolver{"inc.asm": "NOP\n"}
	stmts, err := ParseWithInclude("main.asm", strings.NewReader("INCLUDE \"inc.asm\"\nHALT\n"), rep, resolver)
	require.NoError(t, err)
	require.False(t, rep.HasErrors())
	require.Len(t, stmts, 2)
	assert.Equal(t, "nop", stmts[0].Mnemonic)
	assert.Equal(t, "halt", stmts[1].Mnemonic)
}
