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

package containers

import (
	"sort"

	"golang.org/x/exp/maps"
)

// OrderedMap is a string-keyed map that remembers insertion order for
// iteration via Items, while also offering a sorted-key enumeration via
// SortedKeys (the backends render sections in insertion order). It is the
// "string-keyed map with stable iteration" container named in spec.md §2.
type OrderedMap[V any] struct {
	m     map[string]V
	order []string
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{m: make(map[string]V)}
}

// Set inserts or updates the value for key, appending key to the insertion
// order only the first time it is set.
func (o *OrderedMap[V]) Set(key string, val V) {
	if _, ok := o.m[key]; !ok {
		o.order = append(o.order, key)
	}
	o.m[key] = val
}

// Get looks up key.
func (o *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := o.m[key]
	return v, ok
}

// Delete removes key, preserving the relative order of the remaining keys.
func (o *OrderedMap[V]) Delete(key string) {
	if _, ok := o.m[key]; !ok {
		return
	}
	delete(o.m, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (o *OrderedMap[V]) Len() int { return len(o.m) }

// Keys returns keys in insertion order.
func (o *OrderedMap[V]) Keys() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// SortedKeys returns all keys sorted lexically, using golang.org/x/exp/maps
// to snapshot the key set before sorting it.
func (o *OrderedMap[V]) SortedKeys() []string {
	keys := maps.Keys(o.m)
	sort.Strings(keys)
	return keys
}

// Items iterates entries in insertion order, calling fn for each.
func (o *OrderedMap[V]) Items(fn func(key string, val V)) {
	for _, k := range o.order {
		fn(k, o.m[k])
	}
}
