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

import (
	"fmt"
	"strings"
)

// MemberKind classifies a cube member.
type MemberKind uint8

const (
	MemberUnknown MemberKind = iota
	MemberDimension
	MemberTimeDimension
	MemberMeasure
	MemberSegment
	MemberChangeUser
	MemberVirtualField
	MemberLiteral
)

func (k MemberKind) String() string {
	switch k {
	case MemberDimension:
		return "Dimension"
	case MemberTimeDimension:
		return "TimeDimension"
	case MemberMeasure:
		return "Measure"
	case MemberSegment:
		return "Segment"
	case MemberChangeUser:
		return "ChangeUser"
	case MemberVirtualField:
		return "VirtualField"
	case MemberLiteral:
		return "LiteralMember"
	default:
		return "Unknown"
	}
}

// IsDimensionLike reports whether a column resolving to a member of this kind
// can be pushed to the cube as a dimension.
func (k MemberKind) IsDimensionLike() bool {
	switch k {
	case MemberDimension, MemberTimeDimension, MemberSegment, MemberChangeUser, MemberVirtualField, MemberLiteral:
		return true
	default:
		return false
	}
}

// MeasureAggTypeNumber is the aggregation type of measures defined by an
// arbitrary SQL expression over other measures.
const MeasureAggTypeNumber = "number"

// MeasureDescriptor describes a measure of a cube.
type MeasureDescriptor struct {
	Name    string
	AggType string
}

// AliasToCube maps a relation alias used in the query to a cube.
type AliasToCube struct {
	Alias string
	Cube  string
}

func (a AliasToCube) String() string {
	return fmt.Sprintf("%s:%s", a.Alias, a.Cube)
}

// Column is a possibly qualified column reference.
type Column struct {
	Relation string
	Name     string
}

func (c Column) String() string {
	if c.Relation == "" {
		return c.Name
	}
	return c.Relation + "." + c.Name
}

// MemberName returns the fully qualified member name for a member of the given
// cube.
func MemberName(cube, member string) string {
	return cube + "." + member
}

// SplitMemberName splits "Cube.member" into its cube and member parts.
func SplitMemberName(name string) (string, string) {
	idx := strings.Index(name, ".")
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

// TemplateCatalog is the immutable set of SQL templates of a data source.
type TemplateCatalog interface {
	// ContainsKey is a capability probe: whether the data source can render
	// the named construct.
	ContainsKey(name string) bool
	// Render renders the named template with the given data.
	Render(name string, data interface{}) (string, error)
}

// MetaContext is the read-only semantic layer schema snapshot.
type MetaContext interface {
	// FindMeasureWithName returns the measure with the given fully qualified
	// name.
	FindMeasureWithName(name string) (MeasureDescriptor, bool)
	// SQLGeneratorByAliasToCube returns the template catalog of the data
	// source backing the first cube of the given mapping.
	SQLGeneratorByAliasToCube(aliasToCube []AliasToCube) (TemplateCatalog, bool)
}

// LoadSQLProvider turns a load request into the data source SQL of a cube
// query.
type LoadSQLProvider interface {
	LoadSQL(ctx *Context, req *LoadRequest) (string, []interface{}, error)
}

// LoadRequest is the structured query sent to the semantic layer.
type LoadRequest struct {
	Measures       []string        `json:"measures,omitempty"`
	Dimensions     []string        `json:"dimensions,omitempty"`
	TimeDimensions []TimeDimension `json:"timeDimensions,omitempty"`
	Segments       []string        `json:"segments,omitempty"`
	Order          [][]string      `json:"order,omitempty"`
	Limit          *int            `json:"limit,omitempty"`
	Offset         *int            `json:"offset,omitempty"`
	Ungrouped      *bool           `json:"ungrouped,omitempty"`
}

// TimeDimension is a time dimension of a load request, optionally truncated
// to a granularity.
type TimeDimension struct {
	Dimension   string `json:"dimension"`
	Granularity string `json:"granularity,omitempty"`
}

// MemberExpression is an ad-hoc member defined by a SQL expression over cube
// members. It travels inside a LoadRequest as its JSON encoding.
type MemberExpression struct {
	CubeName    string       `json:"cube_name"`
	Alias       string       `json:"alias"`
	CubeParams  []string     `json:"cube_params"`
	Expr        string       `json:"expr"`
	GroupingSet *GroupingSet `json:"grouping_set"`
}

// GroupingSetKind is the kind of a grouping set.
type GroupingSetKind uint8

const (
	GroupingSetRollup GroupingSetKind = iota + 1
	GroupingSetCube
)

func (k GroupingSetKind) String() string {
	switch k {
	case GroupingSetRollup:
		return "Rollup"
	case GroupingSetCube:
		return "Cube"
	default:
		return "Unknown"
	}
}

// GroupingSet describes the grouping set a member expression belongs to.
type GroupingSet struct {
	GroupType string `json:"group_type"`
	ID        int    `json:"id"`
	SubID     *int   `json:"sub_id,omitempty"`
}
