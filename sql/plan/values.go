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

package plan

import "fmt"

// OptionalInt is a limit or offset that may be absent.
type OptionalInt struct {
	Value int
	Valid bool
}

// None is the absent OptionalInt.
func None() OptionalInt { return OptionalInt{} }

// Some returns a present OptionalInt.
func Some(n int) OptionalInt { return OptionalInt{Value: n, Valid: true} }

func (o OptionalInt) String() string {
	if !o.Valid {
		return "None"
	}
	return fmt.Sprintf("%d", o.Value)
}

// SelectType is the shape of a WrappedSelect.
type SelectType uint8

const (
	SelectProjection SelectType = iota + 1
	SelectAggregate
)

func (t SelectType) String() string {
	switch t {
	case SelectProjection:
		return "Projection"
	case SelectAggregate:
		return "Aggregate"
	default:
		return "Unknown"
	}
}

// Null is the payload of a NULL literal.
type Null struct{}

func (Null) String() string { return "NULL" }
