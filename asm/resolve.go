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

package asm

import (
	"os"
	"path/filepath"
)

// FileIncludeResolver implements asmtext.IncludeResolver and Driver's own
// INCBIN lookup against the same -I search path list, per spec.md §6.
type FileIncludeResolver struct {
	Paths []string
}

// Resolve implements asmtext.IncludeResolver.
func (r FileIncludeResolver) Resolve(path string) (string, []byte, error) {
	name, err := r.find(path)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(name)
	return name, data, err
}

func (r FileIncludeResolver) find(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	for _, dir := range r.Paths {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", os.ErrNotExist
}

func (d *Driver) resolveIncbin(path string) ([]byte, error) {
	r := FileIncludeResolver{Paths: d.includePaths}
	_, data, err := r.Resolve(path)
	return data, err
}
