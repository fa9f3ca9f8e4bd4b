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

// Package containers provides the growable buffer and stable-iteration map
// primitives shared by the rest of the toolchain.
package containers

// ByteBuffer is an append-only, growable byte buffer used by section
// rendering. Unlike bytes.Buffer it supports in-place overwrite at an
// arbitrary offset, which the renderer needs for ORG rewinds and pass-2
// patch application.
type ByteBuffer struct {
	data []byte
}

// Len returns the number of bytes currently held.
func (b *ByteBuffer) Len() int { return len(b.data) }

// Bytes returns the underlying slice. Callers must not retain it across
// further mutations of the buffer.
func (b *ByteBuffer) Bytes() []byte { return b.data }

// Append appends v to the buffer, growing it if necessary.
func (b *ByteBuffer) Append(v ...byte) {
	b.data = append(b.data, v...)
}

// GrowTo ensures the buffer is at least n bytes long, padding with fill.
func (b *ByteBuffer) GrowTo(n int, fill byte) {
	for len(b.data) < n {
		pad := make([]byte, n-len(b.data))
		if fill != 0 {
			for i := range pad {
				pad[i] = fill
			}
		}
		b.data = append(b.data, pad...)
	}
}

// WriteAt overwrites bytes starting at offset, growing the buffer with
// zero fill if the write extends past the current length. It never shrinks
// the buffer, matching the "eventually overwrite, then continue appending"
// ORG-rewind semantics of spec.md §4.5.
func (b *ByteBuffer) WriteAt(offset int, v []byte) {
	end := offset + len(v)
	if end > len(b.data) {
		b.GrowTo(end, 0)
	}
	copy(b.data[offset:end], v)
}

// ByteAt returns the byte at offset, or 0 if out of range.
func (b *ByteBuffer) ByteAt(offset int) byte {
	if offset < 0 || offset >= len(b.data) {
		return 0
	}
	return b.data[offset]
}
