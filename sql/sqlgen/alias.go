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

package sqlgen

import (
	"fmt"
	"regexp"
	"strings"
)

const maxAliasLength = 16

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// aliasSet hands out the aliases of the member expressions of a request.
// Aliases are lowercase, alphanumeric or underscores, at most 16 characters
// long and unique within the set.
type aliasSet map[string]bool

// next returns a free alias derived from |name|.
func (s aliasSet) next(name string) string {
	base := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "_")
	alias := truncate(base, maxAliasLength)
	for i := 1; s[alias]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		alias = truncate(base, maxAliasLength-len(suffix)) + suffix
	}
	s[alias] = true
	return alias
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
