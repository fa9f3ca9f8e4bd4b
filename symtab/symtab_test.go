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

package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isolenta/bc80-sub000/node"
)

func TestDefineAndLookup(t *testing.T) {
	tab := New(nil)
	require.NoError(t, tab.DefineInt("x", 5))
	v, ok := tab.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, int64(5), v.IntVal)
}

func TestDuplicateDefinitionFails(t *testing.T) {
	tab := New(nil)
	require.NoError(t, tab.DefineInt("x", 5))
	err := tab.DefineInt("x", 6)
	assert.Error(t, err)
}

func TestReservedIdentifierRejected(t *testing.T) {
	tab := New(func(name string) bool { return name == "hl" })
	err := tab.DefineInt("hl", 1)
	assert.Error(t, err)
}

func TestRemoveThenRedefine(t *testing.T) {
	tab := New(nil)
	require.NoError(t, tab.DefineInt("i", 0))
	tab.Remove("i")
	require.NoError(t, tab.DefineInt("i", 1))
	v, _ := tab.Lookup("i")
	assert.Equal(t, int64(1), v.IntVal)
}

func TestSeedFromDefines(t *testing.T) {
	tab := New(nil)
	require.NoError(t, tab.SeedFromDefines(map[string]string{
		"VERBOSE": "",
		"BASE":    "0x100",
		"NAME":    "hello",
	}))
	v, _ := tab.Lookup("VERBOSE")
	assert.Equal(t, int64(1), v.IntVal)
	v, _ = tab.Lookup("BASE")
	assert.Equal(t, int64(0x100), v.IntVal)
	v, _ = tab.Lookup("NAME")
	assert.True(t, v.IsStr())
	assert.Equal(t, "hello", v.StrVal)
}

func TestRedefineForReptLoopVar(t *testing.T) {
	tab := New(nil)
	require.NoError(t, tab.RedefineInt("i", 0))
	require.NoError(t, tab.RedefineInt("i", 1))
	v, _ := tab.Lookup("i")
	assert.Equal(t, int64(1), v.IntVal)
	_ = node.LitInt
}
