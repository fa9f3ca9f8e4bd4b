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

// Package diag provides structured file:line:col diagnostics for the rest
// of the toolchain. Fatal errors unwind to a single top-level handler;
// warnings are recorded but never unwind.
package diag

import (
	"fmt"
	"io"
	"text/scanner"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Kind classifies a diagnostic, per spec.md §7.
type Kind int

const (
	KindParse Kind = iota
	KindDirective
	KindEncoder
	KindSymbol
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindDirective:
		return "directive error"
	case KindEncoder:
		return "encoder error"
	case KindSymbol:
		return "symbol error"
	case KindResource:
		return "resource error"
	default:
		return "error"
	}
}

// Severity distinguishes warnings (non-unwinding) from errors (fatal).
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// Diagnostic is a single reported message.
type Diagnostic struct {
	Pos      scanner.Position
	Kind     Kind
	Severity Severity
	Msg      string
}

func (d Diagnostic) String() string {
	lvl := "warning"
	if d.Severity == SeverityError {
		lvl = d.Kind.String()
	}
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", d.Pos, lvl, d.Msg)
	}
	return fmt.Sprintf("%s: %s", lvl, d.Msg)
}

// maxErrors bounds how many fatal diagnostics accumulate before a run aborts,
// mirroring the teacher's ErrAsm/maxErrors threshold.
const maxErrors = 10

// Fatal is returned by Reporter.Fatalf and wraps the diagnostic that caused
// the unwind, so callers further up the stack can still use
// github.com/pkg/errors' Wrap/Cause machinery.
type Fatal struct {
	Diagnostic Diagnostic
	cause      error
}

func (f *Fatal) Error() string { return f.Diagnostic.String() }
func (f *Fatal) Cause() error  { return f.cause }

// Reporter accumulates diagnostics for a single assembler/disassembler run.
type Reporter struct {
	w    io.Writer
	diags []Diagnostic
	color bool
}

// NewReporter creates a Reporter writing to w. Diagnostics are coloured
// exactly when useColor is true; the Reporter does no terminal detection of
// its own.
func NewReporter(w io.Writer, useColor bool) *Reporter {
	return &Reporter{w: w, color: useColor}
}

// Warn records a non-fatal diagnostic. Execution continues.
func (r *Reporter) Warn(pos scanner.Position, kind Kind, format string, args ...interface{}) {
	r.diags = append(r.diags, Diagnostic{Pos: pos, Kind: kind, Severity: SeverityWarning, Msg: fmt.Sprintf(format, args...)})
}

// Fatalf records a fatal diagnostic and returns a *Fatal error that the
// caller must propagate immediately; it does not itself unwind the stack.
func (r *Reporter) Fatalf(pos scanner.Position, kind Kind, format string, args ...interface{}) error {
	d := Diagnostic{Pos: pos, Kind: kind, Severity: SeverityError, Msg: fmt.Sprintf(format, args...)}
	r.diags = append(r.diags, d)
	return &Fatal{Diagnostic: d}
}

// Wrapf is like Fatalf but chains an underlying cause via pkg/errors so
// %+v formatting still shows the originating stack.
func (r *Reporter) Wrapf(pos scanner.Position, kind Kind, cause error, format string, args ...interface{}) error {
	d := Diagnostic{Pos: pos, Kind: kind, Severity: SeverityError, Msg: fmt.Sprintf(format, args...)}
	r.diags = append(r.diags, d)
	return &Fatal{Diagnostic: d, cause: errors.Wrap(cause, d.Msg)}
}

// Aborted reports whether too many fatal diagnostics have accumulated and
// the caller should stop processing further statements.
func (r *Reporter) Aborted() bool {
	n := 0
	for _, d := range r.diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n >= maxErrors
}

// HasErrors reports whether any fatal diagnostic was recorded.
func (r *Reporter) HasErrors() bool {
	for _, d := range r.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Diagnostics returns all diagnostics recorded so far, in report order.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diags }

// Flush writes every accumulated diagnostic to the reporter's writer,
// colourised with github.com/fatih/color when enabled.
func (r *Reporter) Flush() {
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	for _, d := range r.diags {
		c := errColor
		if d.Severity == SeverityWarning {
			c = warnColor
		}
		if r.color {
			c.Fprintln(r.w, d.String())
		} else {
			fmt.Fprintln(r.w, d.String())
		}
	}
}

// Infof writes an uncoloured informational line (byte counts, etc.)
// directly to the reporter's writer, per spec.md §6.
func (r *Reporter) Infof(format string, args ...interface{}) {
	fmt.Fprintf(r.w, format+"\n", args...)
}
