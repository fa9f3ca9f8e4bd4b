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

// RawBackend serialises exactly one section verbatim, per spec.md §4.5/§6.
type RawBackend struct{}

// Render implements Backend.
func (RawBackend) Render(sections []*Section) ([]byte, error) {
	if len(sections) != 1 {
		return nil, &BackendError{Reason: "raw target requires exactly one section"}
	}
	out := make([]byte, sections[0].Len())
	copy(out, sections[0].Bytes())
	return out, nil
}
