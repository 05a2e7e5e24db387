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

package memo

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrUnboundVar is returned when an applier references a variable that
	// neither the searcher nor the condition bound.
	ErrUnboundVar = errors.NewKind("pattern variable %s is not bound")

	// ErrNoExtraction is returned when no finite term can be extracted from a
	// group.
	ErrNoExtraction = errors.NewKind("no term can be extracted from group G%d")

	// ErrCyclicExtraction is returned when the chosen representatives form a
	// cycle.
	ErrCyclicExtraction = errors.NewKind("cyclic extraction at group G%d")
)
