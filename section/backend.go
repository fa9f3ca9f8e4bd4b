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

// Backend renders a set of sections into a final byte image, per spec.md
// §4.5/§6.
type Backend interface {
	Render(sections []*Section) ([]byte, error)
}

// BackendError reports a backend-level fatal error (e.g. "raw target
// requires exactly one section").
type BackendError struct {
	Reason string
}

func (e *BackendError) Error() string { return e.Reason }
