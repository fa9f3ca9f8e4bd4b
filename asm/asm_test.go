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
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isolenta/bc80-sub000/asmtext"
	"github.com/isolenta/bc80-sub000/diag"
)

// assembleRaw parses src and runs it through a fresh Driver configured for
// the raw backend, failing the test immediately on any parse or assemble
// error so each scenario test can focus on the expected byte sequence.
func assembleRaw(t *testing.T, src string) []byte {
	t.Helper()
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf, false)
	stmts, err := asmtext.Parse("test.asm", strings.NewReader(src), rep)
	require.NoError(t, err)
	require.False(t, rep.HasErrors(), "parse diagnostics: %v", rep.Diagnostics())

	d, err := New(rep)
	require.NoError(t, err)
	out, err := d.Assemble(stmts)
	require.NoError(t, err)
	require.False(t, rep.HasErrors(), "assemble diagnostics: %v", rep.Diagnostics())
	return out
}

// The six rows below are the concrete end-to-end scenarios table.

func TestScenarioOrgAndTwoInstructions(t *testing.T) {
	out := assembleRaw(t, "ORG 0x100\nNOP\nHALT\n")
	assert.Equal(t, []byte{0x00, 0x76}, out)
}

func TestScenarioBackwardLabelReference(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nstart: LD A,42\nJP start\n")
	assert.Equal(t, []byte{0x3E, 0x2A, 0xC3, 0x00, 0x00}, out)
}

func TestScenarioDataDirectiveWithString(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nDB 1,2,\"AB\",3\n")
	assert.Equal(t, []byte{0x01, 0x02, 0x41, 0x42, 0x03}, out)
}

func TestScenarioEquExpression(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nX EQU 5\nLD HL, X*X+1\n")
	assert.Equal(t, []byte{0x21, 0x1A, 0x00}, out)
}

func TestScenarioReptExpansion(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nREPT 3\nNOP\nENDR\n")
	assert.Equal(t, []byte{0x00, 0x00, 0x00}, out)
}

func TestScenarioIndexedNegativeOffset(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nLD A,(IX-1)\n")
	assert.Equal(t, []byte{0xDD, 0x7E, 0xFF}, out)
}

// Indexed positive offset, paired with the negative-offset scenario above so
// the sign handling is checked both ways.
func TestScenarioIndexedPositiveOffset(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nLD A,(IX+1)\n")
	assert.Equal(t, []byte{0xDD, 0x7E, 0x01}, out)
}

// Relative-jump boundary cases named alongside the scenario table.

func TestRelativeJumpToSelf(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nJR $\n")
	assert.Equal(t, []byte{0x18, 0xFE}, out)
}

func TestRelativeJumpForwardTwo(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nJR $+2\n")
	assert.Equal(t, []byte{0x18, 0x00}, out)
}

func TestRelativeJumpBackward126(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nJR $-126\n")
	assert.Equal(t, []byte{0x18, 0x80}, out)
}

func TestRelativeJumpOutOfRangeFails(t *testing.T) {
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf, false)
	src := "ORG 0\nJR target\nDS 200\ntarget:\n"
	stmts, err := asmtext.Parse("test.asm", strings.NewReader(src), rep)
	require.NoError(t, err)
	require.False(t, rep.HasErrors())

	d, err := New(rep)
	require.NoError(t, err)
	_, err = d.Assemble(stmts)
	assert.Error(t, err)
	assert.True(t, rep.HasErrors())
}

// Forward label reference, the mirror image of the backward-reference
// scenario: the JP target is not yet defined in pass 1 and is filled in by
// pass 2.

func TestForwardLabelReferenceResolves(t *testing.T) {
	bwd := assembleRaw(t, "ORG 0\nstart: LD A,42\nJP start\n")
	fwd := assembleRaw(t, "ORG 0\nJP skip\nskip: LD A,0\n")
	// Not byte-identical (different bodies), but the forward JP must carry
	// skip's real address (3) rather than the pass-1 placeholder zero.
	assert.Equal(t, []byte{0xC3, 0x03, 0x00}, fwd[:3])
	assert.NotEqual(t, bwd, fwd)
}

// REPT with a loop variable: each iteration's LD HL,n must bake in its own
// iteration count, proving the loop variable is actually re-evaluated per
// iteration rather than frozen at REPT entry.

func TestReptLoopVariableSubstitution(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nREPT 3 CNT\nLD HL, CNT\nENDR\n")
	assert.Equal(t, []byte{
		0x21, 0x00, 0x00,
		0x21, 0x01, 0x00,
		0x21, 0x02, 0x00,
	}, out)
}

// REPT-suffixed labels survive the loop variable's removal: each
// iteration's forward JP to the label defined later in that same iteration
// is only resolved in pass 2, after ENDR has popped the loop frame and
// removed the loop variable.

func TestReptDefinedLabelOutlivesLoopVariable(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nREPT 2 K\nJP next\nnext: NOP\nENDR\n")
	assert.Equal(t, []byte{0xC3, 0x03, 0x00, 0x00, 0xC3, 0x07, 0x00, 0x00}, out)
}

// Local labels: a "." prefixed label is scoped to the most recent global
// label, so the same local name can be reused under two different globals
// without colliding.

func TestLocalLabelScopedToGlobal(t *testing.T) {
	out := assembleRaw(t, "ORG 0\n"+
		"first: JR .loop\n"+
		".loop: NOP\n"+
		"second: JR .loop\n"+
		".loop: HALT\n")
	// first's JR .loop is a forward jump to the NOP right after it
	// (displacement 0); second's likewise jumps to its own local HALT, not
	// first's NOP.
	assert.Equal(t, []byte{
		0x18, 0x00, // JR .loop (first's), target = NOP at offset 2
		0x00,       // NOP
		0x18, 0x00, // JR .loop (second's), target = HALT at offset 5
		0x76, // HALT
	}, out)
}

// IF/ELSE: only the taken arm contributes bytes, and the untaken arm's
// directives (including a nested REPT) are never executed at all.

func TestIfElseOnlyTakenArmEmitsBytes(t *testing.T) {
	out := assembleRaw(t, "ORG 0\n"+
		"FLAG EQU 1\n"+
		"IF FLAG\n"+
		"NOP\n"+
		"ELSE\n"+
		"REPT 5\n"+
		"HALT\n"+
		"ENDR\n"+
		"ENDIF\n")
	assert.Equal(t, []byte{0x00}, out)
}

func TestIfElseFalseConditionTakesElseArm(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nFLAG EQU 0\nIF FLAG\nNOP\nELSE\nHALT\nENDIF\n")
	assert.Equal(t, []byte{0x76}, out)
}

// A local label preceding any global label has no outer scope to attach to
// and must be rejected, per the local-label-scoping redesign note.

func TestLocalLabelBeforeAnyGlobalLabelIsFatal(t *testing.T) {
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf, false)
	src := "ORG 0\n.loop: NOP\n"
	stmts, err := asmtext.Parse("test.asm", strings.NewReader(src), rep)
	require.NoError(t, err)
	require.False(t, rep.HasErrors())

	d, err := New(rep)
	require.NoError(t, err)
	_, err = d.Assemble(stmts)
	assert.Error(t, err)
	assert.True(t, rep.HasErrors())
}

// INCBIN against a file the resolver can't find surfaces as a resource
// diagnostic rather than a panic.

func TestIncbinMissingFileIsFatal(t *testing.T) {
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf, false)
	src := "ORG 0\nINCBIN \"payload.bin\"\nHALT\n"
	stmts, err := asmtext.Parse("test.asm", strings.NewReader(src), rep)
	require.NoError(t, err)
	require.False(t, rep.HasErrors())

	d, err := New(rep, WithIncludePaths(nil))
	require.NoError(t, err)
	_, err = d.Assemble(stmts)
	assert.Error(t, err)
	assert.True(t, rep.HasErrors())
}

// Determinism: assembling the same source twice from scratch produces byte-
// identical output.

func TestAssembleIsDeterministic(t *testing.T) {
	src := "ORG 0\nstart: LD A,42\nJP start\nDB 1,2,3\n"
	out1 := assembleRaw(t, src)
	out2 := assembleRaw(t, src)
	assert.Equal(t, out1, out2)
}

// DW little-endian width and DS fill byte.

func TestWordDirectiveLittleEndian(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nDW 0x1234\n")
	assert.Equal(t, []byte{0x34, 0x12}, out)
}

func TestSpaceDirectiveFillsDefaultZero(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nDS 3\nHALT\n")
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x76}, out)
}

func TestSpaceDirectiveExplicitFill(t *testing.T) {
	out := assembleRaw(t, "ORG 0\nDS 3, 0xFF\n")
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, out)
}

// PROFILE/ENDPROFILE accounting, enabled via WithProfiling.

func TestProfileReportsBytesAndCycles(t *testing.T) {
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf, false)
	src := "ORG 0\nPROFILE block\nNOP\nNOP\nENDPROFILE\n"
	stmts, err := asmtext.Parse("test.asm", strings.NewReader(src), rep)
	require.NoError(t, err)
	require.False(t, rep.HasErrors())

	d, err := New(rep, WithProfiling(true))
	require.NoError(t, err)
	_, err = d.Assemble(stmts)
	require.NoError(t, err)
	require.Len(t, d.Reports, 1)
	assert.Equal(t, "block", d.Reports[0].Name)
	assert.Equal(t, 2, d.Reports[0].Bytes)
	assert.EqualValues(t, 8, d.Reports[0].Cycles)
}

func TestProfileDisabledProducesNoReports(t *testing.T) {
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf, false)
	src := "ORG 0\nPROFILE block\nNOP\nENDPROFILE\n"
	stmts, err := asmtext.Parse("test.asm", strings.NewReader(src), rep)
	require.NoError(t, err)

	d, err := New(rep)
	require.NoError(t, err)
	_, err = d.Assemble(stmts)
	require.NoError(t, err)
	assert.Empty(t, d.Reports)
}

// Unresolved-symbol errors surface through pass 2 as a symbol diagnostic.

func TestUndefinedSymbolIsFatal(t *testing.T) {
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf, false)
	src := "ORG 0\nJP nowhere\n"
	stmts, err := asmtext.Parse("test.asm", strings.NewReader(src), rep)
	require.NoError(t, err)
	require.False(t, rep.HasErrors())

	d, err := New(rep)
	require.NoError(t, err)
	_, err = d.Assemble(stmts)
	assert.Error(t, err)
	assert.True(t, rep.HasErrors())
}

// -D command-line defines seed the symbol table before any source runs.

func TestDefinesAreVisibleToSource(t *testing.T) {
	out := assembleWithDefines(t, "ORG 0\nLD A, FOO\n", map[string]string{"foo": "7"})
	assert.Equal(t, []byte{0x3E, 0x07}, out)
}

func assembleWithDefines(t *testing.T, src string, defines map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	rep := diag.NewReporter(&buf, false)
	stmts, err := asmtext.Parse("test.asm", strings.NewReader(src), rep)
	require.NoError(t, err)
	require.False(t, rep.HasErrors())

	d, err := New(rep, WithDefines(defines))
	require.NoError(t, err)
	out, err := d.Assemble(stmts)
	require.NoError(t, err)
	require.False(t, rep.HasErrors())
	return out
}
