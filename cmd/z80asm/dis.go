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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isolenta/bc80-sub000/z80"
)

var (
	disOrg       int64
	disOrgSet    bool
	disOptLabels bool
)

func newDisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dis <input-file>",
		Short:         "Disassemble a raw binary into Z80 assembly text",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDisassemble,
	}
	cmd.Flags().Var(&optInt64{v: &disOrg, set: &disOrgSet}, "org", "base address of the first byte (default 0)")
	cmd.Flags().BoolVar(&disOptLabels, "opt-labels", false, "synthesize L<addr> labels for jump/call targets")
	return cmd
}

func runDisassemble(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	base := int64(0)
	if disOrgSet {
		base = disOrg
	}
	lines := z80.Disassemble(data, base)

	targets := map[int64]bool{}
	if disOptLabels {
		collectJumpTargets(lines, targets)
	}

	w := cmd.OutOrStdout()
	for _, ln := range lines {
		if targets[ln.Addr] {
			fmt.Fprintf(w, "L%04X:\n", ln.Addr)
		}
		fmt.Fprintf(w, "%04X  %-12s %s\n", ln.Addr, hexBytes(ln.Bytes), rewriteTargets(ln, targets))
	}
	return nil
}

func hexBytes(b []byte) string {
	s := ""
	for _, v := range b {
		s += fmt.Sprintf("%02X ", v)
	}
	return s
}

// isBranchMnemonic reports whether text is rendered by one of the
// jp/call/jr/djnz forms, the only ones whose trailing "NNNNh" operand is an
// absolute code address rather than an 8/16-bit immediate.
func isBranchMnemonic(text string) bool {
	for _, prefix := range []string{"jp ", "call ", "jr ", "djnz "} {
		if len(text) >= len(prefix) && text[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// collectJumpTargets scans the already-decoded text of every line for a
// trailing "NNNNh" hex literal on a jp/call/jr/djnz mnemonic and records it
// as a label candidate; a best-effort pass, not a full operand model, since
// Disassemble only hands back rendered text per spec.md §5.
func collectJumpTargets(lines []z80.Line, targets map[int64]bool) {
	for _, ln := range lines {
		if !isBranchMnemonic(ln.Text) {
			continue
		}
		if addr, ok := trailingHexOperand(ln.Text); ok {
			targets[addr] = true
		}
	}
}

func rewriteTargets(ln z80.Line, targets map[int64]bool) string {
	if len(targets) == 0 || !isBranchMnemonic(ln.Text) {
		return ln.Text
	}
	addr, ok := trailingHexOperand(ln.Text)
	if !ok || !targets[addr] {
		return ln.Text
	}
	i := len(ln.Text)
	for i > 0 && ln.Text[i-1] != ',' && ln.Text[i-1] != ' ' {
		i--
	}
	return fmt.Sprintf("%sL%04X", ln.Text[:i], addr)
}

// trailingHexOperand parses a "...NNNNh" suffix produced by the disassembler
// for absolute jump/call targets.
func trailingHexOperand(text string) (int64, bool) {
	if len(text) < 2 || text[len(text)-1] != 'h' {
		return 0, false
	}
	i := len(text) - 1
	for i > 0 && isHexDigit(text[i-1]) {
		i--
	}
	if i == len(text)-1 {
		return 0, false
	}
	var v int64
	for _, c := range text[i : len(text)-1] {
		v <<= 4
		v |= int64(hexVal(c))
	}
	return v, true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
