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

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrNotFinalized is returned when asked to render a term that is not a
	// finalized cube scan wrapper.
	ErrNotFinalized = errors.NewKind("%s is not a finalized cube scan wrapper")

	// ErrUnsupportedExpression is returned for expressions a wrapped select
	// cannot hold.
	ErrUnsupportedExpression = errors.NewKind("unsupported expression in wrapped select: %s")

	// ErrUnsupportedSource is returned when a wrapped select reads from
	// something else than a cube scan or another wrapped select.
	ErrUnsupportedSource = errors.NewKind("unsupported wrapped select source: %s")

	// ErrUnknownMember is returned when a pushed column does not resolve to a
	// member of the scanned cubes.
	ErrUnknownMember = errors.NewKind("column %s is not a member of %v")

	// ErrUnknownOrder is returned when a pushed select orders by an expression
	// it does not select.
	ErrUnknownOrder = errors.NewKind("cannot order a cube request by %s")

	// ErrRender is returned when a template fails to render.
	ErrRender = errors.NewKind("failed to render %s: %s")
)
