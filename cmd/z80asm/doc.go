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

// Command z80asm assembles Z80 source into a raw binary, ELF object or ZX
// Spectrum snapshot, and can disassemble a binary back into listing text.
//
// Usage:
//
//	z80asm [flags] <input-file>
//	  -o, --output FILE       output file (default: input with extension replaced)
//	  -I, --include DIR       append to include search path (repeatable)
//	  -D, --define KEY[=VAL]  predefine symbol (repeatable)
//	  -t, --target TARGET     raw|object|sna (default "raw")
//	      --profile[=all]     report bytes/cycles of PROFILE/ENDPROFILE blocks;
//	                          labels do not open profile windows (=all only
//	                          adds a warning on each PROFILE directive)
//	      --profile-data      also report profile windows that emitted no bytes
//	      --sna-generic       use generic (non-ZX) device
//	      --sna-pc VALUE      initial PC for SNA
//	      --sna-ramtop ADDR   RAM top / initial stack for SNA
//	      --config FILE       YAML project config file (flags override its values)
//
//	z80asm dis [flags] <input-file>
//	      --org ADDR          base address of the first byte (default 0)
//	      --opt-labels        synthesize L<addr> labels for jump/call targets
//
// Exit code 0 on success, non-zero on error. Diagnostics go to stderr with
// ANSI colour; info/bytes-written messages also go to stderr, uncoloured.
//
// Setting the MEMSTAT environment variable to any non-empty value makes
// the assemble command log a runtime.MemStats summary when it finishes,
// whether or not it succeeded.
package main
