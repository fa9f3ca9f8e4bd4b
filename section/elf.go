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

package section

import (
	"bytes"
	"encoding/binary"
)

// ELF32 constants used by ELFBackend. Field names follow the standard ELF
// header layout; only the handful of values spec.md §6 pins down are named.
const (
	elfEhdrSize   = 52
	elfShdrSize   = 40
	elfClass32    = 1
	elfDataLSB    = 2
	elfVersionCur = 1
	elfOSABINone  = 0
	elfTypeREL    = 1
	elfMachNone   = 0

	shtNull     = 0
	shtProgbits = 1
	shtStrtab   = 3

	shfAlloc     = 0x1
	shfWrite     = 0x2
	shfExecinstr = 0x4
)

// ELFBackend emits a little-endian 32-bit relocatable ELF object with one
// PROGBITS section per user section, per spec.md §4.5/§6.
type ELFBackend struct{}

// Render implements Backend.
func (ELFBackend) Render(sections []*Section) ([]byte, error) {
	var shstrtab bytes.Buffer
	shstrtab.WriteByte(0) // index 0 is the empty string
	nameOff := make([]uint32, len(sections))
	for i, s := range sections {
		nameOff[i] = uint32(shstrtab.Len())
		shstrtab.WriteString(s.Name)
		shstrtab.WriteByte(0)
	}
	shstrtabNameOff := uint32(shstrtab.Len())
	shstrtab.WriteString(".shstrtab")
	shstrtab.WriteByte(0)

	var body bytes.Buffer
	secOffsets := make([]uint32, len(sections))
	for i, s := range sections {
		secOffsets[i] = uint32(elfEhdrSize + body.Len())
		body.Write(s.Bytes())
	}
	shstrtabOffset := uint32(elfEhdrSize + body.Len())
	body.Write(shstrtab.Bytes())

	shoff := uint32(elfEhdrSize + body.Len())
	shnum := uint16(2 + len(sections)) // NULL + user sections + shstrtab
	shstrndx := uint16(1 + len(sections))

	// e_ident
	var ehdr bytes.Buffer
	ehdr.Write([]byte{0x7f, 'E', 'L', 'F', elfClass32, elfDataLSB, elfVersionCur, elfOSABINone})
	ehdr.Write(make([]byte, 8)) // ABI version + padding
	binary.Write(&ehdr, binary.LittleEndian, uint16(elfTypeREL))
	binary.Write(&ehdr, binary.LittleEndian, uint16(elfMachNone))
	binary.Write(&ehdr, binary.LittleEndian, uint32(elfVersionCur)) // e_version
	binary.Write(&ehdr, binary.LittleEndian, uint32(0))             // e_entry
	binary.Write(&ehdr, binary.LittleEndian, uint32(0))             // e_phoff
	binary.Write(&ehdr, binary.LittleEndian, shoff)                 // e_shoff
	binary.Write(&ehdr, binary.LittleEndian, uint32(0))             // e_flags
	binary.Write(&ehdr, binary.LittleEndian, uint16(elfEhdrSize))   // e_ehsize
	binary.Write(&ehdr, binary.LittleEndian, uint16(0))             // e_phentsize
	binary.Write(&ehdr, binary.LittleEndian, uint16(0))             // e_phnum
	binary.Write(&ehdr, binary.LittleEndian, uint16(elfShdrSize))   // e_shentsize
	binary.Write(&ehdr, binary.LittleEndian, shnum)                 // e_shnum
	binary.Write(&ehdr, binary.LittleEndian, shstrndx)              // e_shstrndx

	var final bytes.Buffer
	final.Write(ehdr.Bytes())
	final.Write(body.Bytes())

	writeShdr(&final, 0, shtNull, 0, 0, 0, 0, 0, 0, 0, 0)
	for i, s := range sections {
		writeShdr(&final, nameOff[i], shtProgbits, shfAlloc|shfWrite|shfExecinstr,
			uint32(s.Start), secOffsets[i], uint32(s.Len()), 0, 0, 1, 0)
	}
	writeShdr(&final, shstrtabNameOff, shtStrtab, 0, 0, shstrtabOffset, uint32(shstrtab.Len()), 0, 0, 1, 0)

	return final.Bytes(), nil
}

func writeShdr(w *bytes.Buffer, name, typ, flags, addr, offset, size, link, info, align, entsize uint32) {
	binary.Write(w, binary.LittleEndian, name)
	binary.Write(w, binary.LittleEndian, typ)
	binary.Write(w, binary.LittleEndian, flags)
	binary.Write(w, binary.LittleEndian, addr)
	binary.Write(w, binary.LittleEndian, offset)
	binary.Write(w, binary.LittleEndian, size)
	binary.Write(w, binary.LittleEndian, link)
	binary.Write(w, binary.LittleEndian, info)
	binary.Write(w, binary.LittleEndian, align)
	binary.Write(w, binary.LittleEndian, entsize)
}
