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

// Package symtab implements the name→value symbol table described in
// spec.md §4.2: case-sensitive, reserved-identifier protected, storing
// fully-qualified names for local (".'-prefixed) and REPT-suffixed labels.
package symtab

import (
	"strconv"

	"github.com/isolenta/bc80-sub000/internal/containers"
	"github.com/isolenta/bc80-sub000/node"
)

// ReservedSet reports whether name is a reserved identifier (register name,
// condition code, mnemonic or directive keyword) that the user may not
// define. It is injected by the caller (the z80 package owns the mnemonic/
// register tables) to avoid a dependency cycle.
type ReservedSet func(name string) bool

// Table is the symbol table. Keys are the fully-qualified names computed by
// the compile driver (local-label expansion and REPT suffixing happen
// before Define/Lookup are called).
type Table struct {
	vals     *containers.OrderedMap[*node.Expr]
	reserved ReservedSet
}

// New creates an empty symbol table. reserved may be nil, in which case no
// identifier is treated as reserved (useful in isolated expr/symtab tests).
func New(reserved ReservedSet) *Table {
	if reserved == nil {
		reserved = func(string) bool { return false }
	}
	return &Table{vals: containers.NewOrderedMap[*node.Expr](), reserved: reserved}
}

// DefineError reports a reserved or duplicate name as a plain error; the
// compile driver turns the ones raised by source statements into
// diag.KindSymbol fatal diagnostics with source position, which this
// package has no access to.
type DefineError struct {
	Name   string
	Reason string
}

func (e *DefineError) Error() string { return e.Name + ": " + e.Reason }

// Define binds name to value. It is an error to redefine an existing name
// or to define a reserved identifier.
func (t *Table) Define(name string, value *node.Expr) error {
	if t.reserved(name) {
		return &DefineError{Name: name, Reason: "reserved identifier"}
	}
	if _, ok := t.vals.Get(name); ok {
		return &DefineError{Name: name, Reason: "duplicate definition"}
	}
	t.vals.Set(name, value)
	return nil
}

// Redefine overwrites an existing binding without the duplicate check; used
// internally by the driver for REPT loop variables, which are legitimately
// rebound every iteration.
func (t *Table) Redefine(name string, value *node.Expr) error {
	if t.reserved(name) {
		return &DefineError{Name: name, Reason: "reserved identifier"}
	}
	t.vals.Set(name, value)
	return nil
}

// DefineInt is a convenience wrapper around Define for integer values.
func (t *Table) DefineInt(name string, v int64) error {
	return t.Define(name, node.Int(node.Pos{}, v))
}

// RedefineInt is a convenience wrapper around Redefine for integer values.
func (t *Table) RedefineInt(name string, v int64) error {
	return t.Redefine(name, node.Int(node.Pos{}, v))
}

// Lookup returns the value bound to name, if any.
func (t *Table) Lookup(name string) (*node.Expr, bool) {
	return t.vals.Get(name)
}

// Remove unbinds name. It is not an error to remove a name that is not
// currently bound.
func (t *Table) Remove(name string) {
	t.vals.Delete(name)
}

// Has reports whether name is currently bound.
func (t *Table) Has(name string) bool {
	_, ok := t.vals.Get(name)
	return ok
}

// SeedFromDefines converts CLI "-Dkey[=value]" entries into symbol table
// bindings. A value that parses as an integer in any base supported by
// strconv.ParseInt (with the conventional Z80 "0x"/"$"/"%" prefixes
// normalised by the caller before reaching here) becomes an integer
// literal; otherwise it becomes a string literal. A key with no "=value"
// defines the integer 1, matching the common "-Dflag" idiom.
func (t *Table) SeedFromDefines(defines map[string]string) error {
	for k, v := range defines {
		if v == "" {
			if err := t.Define(k, node.Int(node.Pos{}, 1)); err != nil {
				return err
			}
			continue
		}
		if n, err := strconv.ParseInt(v, 0, 64); err == nil {
			if err := t.Define(k, node.Int(node.Pos{}, n)); err != nil {
				return err
			}
			continue
		}
		if err := t.Define(k, node.Str(node.Pos{}, v)); err != nil {
			return err
		}
	}
	return nil
}
