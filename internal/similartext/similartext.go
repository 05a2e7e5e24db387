// Copyright 2024 Dolthub, Inc.
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

// Package similartext suggests known names close to a misspelled one, for
// "did you mean" hints in error messages.
package similartext

import (
	"fmt"
	"sort"
	"strings"
)

// maxDistance is the largest edit distance still worth suggesting.
const maxDistance = 2

// DistanceLevenshtein is the standard Levenshtein distance algorithm.
func DistanceLevenshtein(a, b string) int {
	d := make([]int, len(a)+1)
	for i := range d {
		d[i] = i
	}
	for i := 1; i <= len(b); i++ {
		lastdiag := d[0]
		d[0] = i
		for j := 1; j <= len(a); j++ {
			olddiag := d[j]
			cost := 1
			if a[j-1] == b[i-1] {
				cost = 0
			}
			d[j] = min(d[j]+1, d[j-1]+1, lastdiag+cost)
			lastdiag = olddiag
		}
	}
	return d[len(a)]
}

// Suggest returns the names closest to |src|, ignoring case, in the order
// they are given. Nothing is returned when every name is further than
// maxDistance edits away.
func Suggest(names []string, src string) []string {
	if src == "" {
		return nil
	}

	lower := strings.ToLower(src)
	best := maxDistance + 1
	var matches []string
	for _, name := range names {
		dist := DistanceLevenshtein(strings.ToLower(name), lower)
		switch {
		case dist < best:
			best = dist
			matches = []string{name}
		case dist == best:
			matches = append(matches, name)
		}
	}
	return matches
}

// Find returns a hint suggesting the names in |names| closest to |src|, or
// an empty string.
func Find(names []string, src string) string {
	matches := Suggest(names, src)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf(", maybe you mean %s?", strings.Join(matches, " or "))
}

// FindFromMap does the same as Find with the keys of |names|, in sorted
// order.
func FindFromMap[V any](names map[string]V, src string) string {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Find(keys, src)
}
