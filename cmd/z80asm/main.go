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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/isolenta/bc80-sub000/asm"
	"github.com/isolenta/bc80-sub000/asmtext"
	"github.com/isolenta/bc80-sub000/diag"
	"github.com/isolenta/bc80-sub000/section"
)

var (
	configPath   string
	outFile      string
	includeDirs  []string
	defineArgs   []string
	target       string
	profileFlag  string
	profileData  bool
	snaGeneric   bool
	snaPC        int64
	snaPCSet     bool
	snaRAMTop    int64
	snaRAMTopSet bool
)

func main() {
	root := newRootCmd()
	root.AddCommand(newDisCmd())
	if err := root.Execute(); err != nil {
		// Fatal diagnostics were already printed by diag.Reporter.Flush.
		var f *diag.Fatal
		if !errors.As(err, &f) {
			fmt.Fprintf(os.Stderr, "z80asm: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "z80asm <input-file>",
		Short:         "Two-pass Z80 assembler",
		Long:          "z80asm assembles Z80 source into a raw binary, an ELF object or a ZX Spectrum .sna snapshot.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runAssemble,
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML project config file (flags override its values)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default: input with extension replaced)")
	cmd.Flags().StringArrayVarP(&includeDirs, "include", "I", nil, "append to include search path")
	cmd.Flags().StringArrayVarP(&defineArgs, "define", "D", nil, "predefine symbol, key[=value]")
	cmd.Flags().StringVarP(&target, "target", "t", "raw", "target: raw|object|sna")
	cmd.Flags().StringVar(&profileFlag, "profile", "", "report bytes/cycles of PROFILE/ENDPROFILE blocks; labels do not open profile windows (=all only adds a warning on each PROFILE)")
	cmd.Flags().Lookup("profile").NoOptDefVal = "on"
	cmd.Flags().BoolVar(&profileData, "profile-data", false, "also report profile windows that emitted no bytes")
	cmd.Flags().BoolVar(&snaGeneric, "sna-generic", false, "use generic (non-ZX) device when writing a .sna target")
	cmd.Flags().Var(&optInt64{v: &snaPC, set: &snaPCSet}, "sna-pc", "initial PC for SNA")
	cmd.Flags().Var(&optInt64{v: &snaRAMTop, set: &snaRAMTopSet}, "sna-ramtop", "RAM top / initial stack for SNA")
	return cmd
}

// optInt64 is a pflag.Value that also records whether it was explicitly
// set, so "sna-pc"/"sna-ramtop" can distinguish "0" from "not passed" the
// way section.SNAOptions' *int64 fields expect.
type optInt64 struct {
	v   *int64
	set *bool
}

func (o *optInt64) String() string {
	if o.v == nil {
		return "0"
	}
	return fmt.Sprintf("%d", *o.v)
}

func (o *optInt64) Set(s string) error {
	n, err := parseNumericLiteral(s)
	if err != nil {
		return err
	}
	*o.v = n
	*o.set = true
	return nil
}

func (o *optInt64) Type() string { return "int64" }

// parseNumericLiteral accepts the same prefixes as the source language's
// own numeric literals (spec.md §6) for CLI convenience: "$"/"0x" hex,
// "%" binary, plain decimal.
func parseNumericLiteral(s string) (int64, error) {
	switch {
	case strings.HasPrefix(s, "$"):
		return parseBase(s[1:], 16)
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		return parseBase(s[2:], 16)
	case strings.HasPrefix(s, "%"):
		return parseBase(s[1:], 2)
	default:
		return parseBase(s, 10)
	}
}

func parseBase(s string, base int) (int64, error) {
	return strconv.ParseInt(s, base, 64)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	inPath := args[0]
	rep := diag.NewReporter(os.Stderr, !color.NoColor)
	defer reportMemStats(rep)

	if configPath != "" {
		cfg, err := loadProjectConfig(configPath)
		if err != nil {
			return err
		}
		applyProjectConfig(cmd, cfg)
	}

	defines, err := parseDefines(defineArgs)
	if err != nil {
		return err
	}

	profiling := profileFlag != ""
	opts := []asm.Option{
		asm.WithIncludePaths(includeDirs),
		asm.WithDefines(defines),
		asm.WithProfiling(profiling),
		asm.WithGlobalProfiling(profileFlag == "all"),
		asm.WithTarget(target),
		asm.WithSNAOptions(buildSNAOptions()),
	}

	driver, err := asm.New(rep, opts...)
	if err != nil {
		return err
	}

	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	resolver := asm.FileIncludeResolver{Paths: includeDirs}
	stmts, err := asmtext.ParseWithInclude(inPath, f, rep, resolver)
	if err == nil && rep.HasErrors() {
		err = fmt.Errorf("%s: parse errors, nothing assembled", inPath)
	}
	if err != nil {
		rep.Flush()
		return err
	}

	out, asmErr := driver.Assemble(stmts)
	rep.Flush()
	if asmErr != nil {
		return asmErr
	}

	dest := outFile
	if dest == "" {
		dest = defaultOutputName(inPath, target)
	}
	if err := os.WriteFile(dest, out, 0644); err != nil {
		return err
	}
	rep.Infof("%s: %d bytes written to %s", inPath, len(out), dest)

	for _, r := range driver.Reports {
		if !profileData && r.Bytes == 0 {
			continue
		}
		rep.Infof("profile %s: %d bytes, %d cycles", r.Name, r.Bytes, r.Cycles)
	}

	return nil
}

func buildSNAOptions() section.SNAOptions {
	opts := section.SNAOptions{Generic: snaGeneric}
	if snaPCSet {
		v := snaPC
		opts.PC = &v
	}
	if snaRAMTopSet {
		v := snaRAMTop
		opts.RAMTop = &v
	}
	return opts
}

// parseDefines turns "-Dkey[=value]" entries into the map asm.WithDefines
// expects. A value written with one of the source language's own numeric
// prefixes ("$"/"0x"/"%") is normalised to plain decimal first, since
// symtab.SeedFromDefines parses values with strconv.ParseInt's base-0 rules
// and doesn't know the "$"/"%" conventions; anything else is passed through
// unchanged and becomes a string symbol.
func parseDefines(entries []string) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		key, val, _ := strings.Cut(e, "=")
		if key == "" {
			return nil, fmt.Errorf("-D: empty symbol name in %q", e)
		}
		if strings.HasPrefix(val, "$") || strings.HasPrefix(val, "%") ||
			strings.HasPrefix(val, "0x") || strings.HasPrefix(val, "0X") {
			if n, err := parseNumericLiteral(val); err == nil {
				val = strconv.FormatInt(n, 10)
			}
		}
		out[key] = val
	}
	return out, nil
}

func defaultOutputName(inPath, target string) string {
	base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
	switch target {
	case "object":
		return base + ".o"
	case "sna":
		return base + ".sna"
	default:
		return base + ".bin"
	}
}

// reportMemStats implements spec.md §7's optional MEMSTAT allocator
// diagnostic: when the environment variable is set, a runtime.MemStats
// summary is logged via the same diag.Reporter used for everything else,
// rather than printed directly, so it goes to the run's diagnostic stream
// (uncoloured, like the other info messages).
func reportMemStats(rep *diag.Reporter) {
	if os.Getenv("MEMSTAT") == "" {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	rep.Infof("memstat: alloc=%d totalAlloc=%d sys=%d numGC=%d", m.Alloc, m.TotalAlloc, m.Sys, m.NumGC)
}
