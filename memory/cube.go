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

package memory

import (
	"strings"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/templates"
)

// cubePlaceholder is replaced by the quoted alias of the cube in member SQL.
const cubePlaceholder = "{CUBE}"

// DimensionTypeTime is the type of dimensions exposed as time dimensions.
const DimensionTypeTime = "time"

// Dimension is a dimension of a cube. An empty SQL selects the column of the
// cube table with the dimension's name.
type Dimension struct {
	Name string `mapstructure:"name"`
	SQL  string `mapstructure:"sql"`
	Type string `mapstructure:"type"`
}

// Measure is a measure of a cube. The SQL of a "number" measure is an
// aggregate expression on its own and is never wrapped.
type Measure struct {
	Name    string `mapstructure:"name"`
	SQL     string `mapstructure:"sql"`
	AggType string `mapstructure:"type"`
}

// Segment is a named filter of a cube.
type Segment struct {
	Name string `mapstructure:"name"`
	SQL  string `mapstructure:"sql"`
}

// Cube is a cube of the in-memory semantic layer.
type Cube struct {
	Name       string      `mapstructure:"name"`
	DataSource string      `mapstructure:"data_source"`
	Table      string      `mapstructure:"sql_table"`
	Dimensions []Dimension `mapstructure:"dimensions"`
	Measures   []Measure   `mapstructure:"measures"`
	Segments   []Segment   `mapstructure:"segments"`
}

// NewCube returns an empty cube over |table| of the default data source.
func NewCube(name, table string) *Cube {
	return &Cube{Name: name, DataSource: DefaultDataSource, Table: table}
}

// AddDimension adds a dimension to the cube.
func (c *Cube) AddDimension(name, sqlText, typ string) *Cube {
	c.Dimensions = append(c.Dimensions, Dimension{Name: name, SQL: sqlText, Type: typ})
	return c
}

// AddMeasure adds a measure to the cube.
func (c *Cube) AddMeasure(name, sqlText, aggType string) *Cube {
	c.Measures = append(c.Measures, Measure{Name: name, SQL: sqlText, AggType: aggType})
	return c
}

// AddSegment adds a segment to the cube.
func (c *Cube) AddSegment(name, sqlText string) *Cube {
	c.Segments = append(c.Segments, Segment{Name: name, SQL: sqlText})
	return c
}

// member is a resolved member of a cube.
type member struct {
	cube    *Cube
	name    string
	kind    sql.MemberKind
	sql     string
	aggType string
}

// member resolves the member |name| (not qualified by the cube name).
func (c *Cube) member(name string) (member, bool) {
	for _, d := range c.Dimensions {
		if d.Name == name {
			kind := sql.MemberDimension
			if d.Type == DimensionTypeTime {
				kind = sql.MemberTimeDimension
			}
			return member{cube: c, name: name, kind: kind, sql: c.memberSQL(d.Name, d.SQL)}, true
		}
	}
	for _, m := range c.Measures {
		if m.Name == name {
			s := m.SQL
			if s == "" && m.AggType == "count" {
				s = "*"
			} else {
				s = c.memberSQL(m.Name, m.SQL)
			}
			return member{cube: c, name: name, kind: sql.MemberMeasure, sql: s, aggType: m.AggType}, true
		}
	}
	for _, s := range c.Segments {
		if s.Name == name {
			return member{cube: c, name: name, kind: sql.MemberSegment, sql: c.memberSQL(s.Name, s.SQL)}, true
		}
	}
	return member{}, false
}

// memberNames lists the names of every member of the cube.
func (c *Cube) memberNames() []string {
	var names []string
	for _, d := range c.Dimensions {
		names = append(names, d.Name)
	}
	for _, m := range c.Measures {
		names = append(names, m.Name)
	}
	for _, s := range c.Segments {
		names = append(names, s.Name)
	}
	return names
}

func (c *Cube) memberSQL(name, text string) string {
	if text == "" {
		text = cubePlaceholder + "." + templates.QuoteIdentifier(name)
	}
	return strings.ReplaceAll(text, cubePlaceholder, templates.QuoteIdentifier(c.Name))
}
