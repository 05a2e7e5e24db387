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

package sql

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrCubeNotFound is returned when an alias maps to a cube the meta
	// snapshot does not know about.
	ErrCubeNotFound = errors.NewKind("cube not found: %s")

	// ErrMemberNotFound is returned when a member name cannot be resolved in the
	// meta snapshot.
	ErrMemberNotFound = errors.NewKind("member not found: %s")

	// ErrNoTemplateCatalog is returned when no SQL generator is registered for
	// the data source of a cube.
	ErrNoTemplateCatalog = errors.NewKind("no sql generator for %v")

	// ErrTemplateNotFound is returned when a catalog is asked to render a
	// template it does not declare.
	ErrTemplateNotFound = errors.NewKind("template %q not found")

	// ErrInvalidPlan is returned when the plan handed to the optimizer is not a
	// well formed term tree.
	ErrInvalidPlan = errors.NewKind("invalid plan: %s")
)
