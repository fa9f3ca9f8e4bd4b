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

// Package section implements the append-only section buffers, the patch
// registry and the byte/word renderer described in spec.md §3 and §4.5,
// plus the raw/ELF/SNA backend serialisers.
package section

import (
	"text/scanner"

	"github.com/isolenta/bc80-sub000/internal/containers"
	"github.com/isolenta/bc80-sub000/node"
)

// Section is a named, contiguous byte buffer with its own start address,
// current PC and filler byte (spec.md §3).
type Section struct {
	Name  string
	Start int64
	Fill  byte
	PC    int64
	buf   containers.ByteBuffer

	// Cycles accumulates the cycle count of every instruction rendered
	// into this section, independent of any active profile window.
	Cycles int64
}

// Len returns the number of bytes emitted so far (the high-water mark of
// the section buffer).
func (s *Section) Len() int { return s.buf.Len() }

// Bytes returns the section's byte buffer.
func (s *Section) Bytes() []byte { return s.buf.Bytes() }

// Offset returns the byte offset that the next write at the current PC
// would land at: PC - Start. It can be less than Len() after an ORG
// rewind, per spec.md §4.5.
func (s *Section) Offset() int { return int(s.PC - s.Start) }

// Patch is a deferred write into a section's buffer whose value was not
// resolvable at pass 1 (spec.md §3). Offset is always a section-relative
// byte offset (see DESIGN.md's Open Question decision #2), never an
// absolute address.
type Patch struct {
	Expr        *node.Expr
	Section     *Section
	Offset      int
	Width       int // 1 or 2
	IsRelative  bool
	InstrPC     int64 // absolute address, only meaningful when IsRelative
	ReptSuffix  string
	Pos         scanner.Position
}

// Renderer owns the section list, the current section and the patch
// registry built up during pass 1.
type Renderer struct {
	sections *containers.OrderedMap[*Section]
	current  *Section
	Patches  []*Patch
}

// NewRenderer creates an empty Renderer.
func NewRenderer() *Renderer {
	return &Renderer{sections: containers.NewOrderedMap[*Section]()}
}

// Current returns the currently active section, or nil if none has been
// created yet.
func (r *Renderer) Current() *Section { return r.current }

// Section looks up a section by name.
func (r *Renderer) Section(name string) (*Section, bool) { return r.sections.Get(name) }

// Sections returns all sections in creation order.
func (r *Renderer) Sections() []*Section {
	keys := r.sections.Keys()
	out := make([]*Section, len(keys))
	for i, k := range keys {
		s, _ := r.sections.Get(k)
		out[i] = s
	}
	return out
}

// CreateSection creates a new section and makes it current. It is a
// directive error to create a section whose name already exists: sections
// are write-once/append-only, and re-entering one is not supported
// (spec.md §3, §4.3).
func (r *Renderer) CreateSection(name string, base int64, fill byte) (*Section, error) {
	if _, ok := r.sections.Get(name); ok {
		return nil, &SectionError{Name: name, Reason: "section already exists"}
	}
	s := &Section{Name: name, Start: base, Fill: fill, PC: base}
	r.sections.Set(name, s)
	r.current = s
	return s, nil
}

// SectionError reports a directive-level section error.
type SectionError struct {
	Name   string
	Reason string
}

func (e *SectionError) Error() string { return e.Name + ": " + e.Reason }

// Byte appends v to the current section at its current PC and advances PC
// by one.
func (r *Renderer) Byte(v byte) {
	s := r.current
	s.buf.WriteAt(s.Offset(), []byte{v})
	s.PC++
}

// Word appends v little-endian to the current section and advances PC by
// two.
func (r *Renderer) Word(v uint16) {
	r.Byte(byte(v))
	r.Byte(byte(v >> 8))
}

// Bytes appends each byte of v in order.
func (r *Renderer) Bytes(v []byte) {
	for _, b := range v {
		r.Byte(b)
	}
}

// Space appends n copies of fill.
func (r *Renderer) Space(n int, fill byte) {
	for i := 0; i < n; i++ {
		r.Byte(fill)
	}
}

// AddCycles accumulates a cycle count against the current section.
func (r *Renderer) AddCycles(n int64) {
	if r.current != nil {
		r.current.Cycles += n
	}
}

// AddPatch registers a deferred write for pass 2.
func (r *Renderer) AddPatch(p *Patch) { r.Patches = append(r.Patches, p) }

// Reorg implements the ORG directive's effect on the renderer: it moves the
// current section's PC to addr, filler-padding the buffer when addr lies
// beyond the current high-water mark, and leaves the buffer untouched when
// addr rewinds into already-emitted bytes (subsequent writes overwrite in
// place and later linear writes simply continue appending), per spec.md
// §4.5.
func (r *Renderer) Reorg(addr int64) {
	s := r.current
	s.PC = addr
	off := s.Offset()
	if off > s.buf.Len() {
		s.buf.GrowTo(off, s.Fill)
	}
}

// PatchValue writes value into p's section at p's recorded offset, LSB
// first, per spec.md §4.3 pass 2. Only widths 1 and 2 are legal.
func PatchValue(p *Patch, value int64) {
	v := value
	if p.IsRelative {
		v = value - p.InstrPC
	}
	switch p.Width {
	case 1:
		p.Section.buf.WriteAt(p.Offset, []byte{byte(v)})
	case 2:
		p.Section.buf.WriteAt(p.Offset, []byte{byte(v), byte(v >> 8)})
	}
}
