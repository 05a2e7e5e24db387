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

package templates

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/semlayer/pushdown/sql"
)

func TestDefaultPostgresRender(t *testing.T) {
	c := DefaultPostgres()
	tests := []struct {
		name     string
		template string
		data     interface{}
		expected string
	}{
		{"function", Function("sum"), FunctionData{Name: "SUM", Args: []string{`"a"."b"`}}, `SUM("a"."b")`},
		{"distinct function", Function("COUNT"), FunctionData{Name: "COUNT", Args: []string{"x"}, Distinct: true}, "COUNT(DISTINCT x)"},
		{"column", Column, ColumnData{Relation: "t", Name: `we"ird`}, `"t"."we""ird"`},
		{"unqualified column", Column, ColumnData{Name: "c"}, `"c"`},
		{"aliased column", ColumnAliased, ColumnAliasedData{Expr: "x", Alias: "a"}, `x "a"`},
		{"binary", BinaryExpr, BinaryData{Left: "a", Op: "=", Right: "$0$"}, "(a = $0$)"},
		{"in list", InList, InListData{Expr: "a", List: []string{"1", "2"}, Negated: true}, "a NOT IN (1, 2)"},
		{"in subquery", InSubquery, InSubqueryData{Expr: "a", Subquery: "SELECT 1"}, "a IN (SELECT 1)"},
		{"rollup", Rollup, GroupingSetData{Exprs: []string{"1", "2"}}, "ROLLUP(1, 2)"},
		{"cube", Cube, GroupingSetData{Exprs: []string{"4"}}, "CUBE(4)"},
		{"sort", SortExpr, SortData{Expr: "1", Asc: false, NullsFirst: true}, "1 DESC NULLS FIRST"},
		{
			"select",
			SelectStatement,
			SelectData{
				Columns:   []string{`"t"."a" "a"`, `SUM("t"."b") "s"`},
				From:      "(SELECT 1)",
				FromAlias: "t",
				Filter:    []string{"x", "y"},
				GroupBy:   []string{"1"},
				OrderBy:   []string{"1 ASC NULLS LAST"},
				HasLimit:  true,
				Limit:     0,
			},
			`SELECT "t"."a" "a", SUM("t"."b") "s" FROM (SELECT 1) AS "t" WHERE x AND y GROUP BY 1 ORDER BY 1 ASC NULLS LAST LIMIT 0`,
		},
		{
			"select with offset",
			SelectStatement,
			SelectData{Distinct: true, Columns: []string{"a"}, From: "t", HasOffset: true, Offset: 3},
			"SELECT DISTINCT a FROM t OFFSET 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, c.ContainsKey(tt.template))
			res, err := c.Render(tt.template, tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.expected, res)
		})
	}
}

func TestCatalogWithout(t *testing.T) {
	require := require.New(t)
	c := DefaultPostgres()
	reduced := c.Without(Function("lower"), Rollup)

	require.True(c.ContainsKey(Function("LOWER")))
	require.False(reduced.ContainsKey(Function("LOWER")))
	require.False(reduced.ContainsKey(Rollup))
	require.True(reduced.ContainsKey(Cube))

	_, err := reduced.Render(Rollup, GroupingSetData{})
	require.True(sql.ErrTemplateNotFound.Is(err))

	var nilCatalog *Catalog
	require.False(nilCatalog.ContainsKey(Cube))
}

func TestCatalogWith(t *testing.T) {
	require := require.New(t)
	c, err := DefaultPostgres().With(map[string]string{Rollup: "GROUPING SETS ({{ join \", \" .Exprs }})"})
	require.NoError(err)
	res, err := c.Render(Rollup, GroupingSetData{Exprs: []string{"1"}})
	require.NoError(err)
	require.Equal("GROUPING SETS (1)", res)

	_, err = DefaultPostgres().With(map[string]string{"broken": "{{ .X "})
	require.True(ErrInvalidTemplate.Is(err))
}

func TestParseYAML(t *testing.T) {
	require := require.New(t)
	c, err := ParseYAML([]byte(`
name: warehouse
extends: postgres
functions: [ILIKE_MATCH]
templates:
  expressions/binary: "{{ .Left }} {{ .Op }} {{ .Right }}"
remove:
  - expressions/cube
  - functions/LOWER
`))
	require.NoError(err)
	require.Equal("warehouse", c.Name())
	require.True(c.ContainsKey(Function("ilike_match")))
	require.False(c.ContainsKey(Cube))
	require.False(c.ContainsKey(Function("LOWER")))
	require.True(c.ContainsKey(Rollup))

	res, err := c.Render(BinaryExpr, BinaryData{Left: "a", Op: "<", Right: "b"})
	require.NoError(err)
	require.Equal("a < b", res)

	_, err = ParseYAML([]byte("extends: oracle"))
	require.True(ErrUnknownBaseCatalog.Is(err))
}

func TestRenderMissingField(t *testing.T) {
	c, err := NewCatalog("test", map[string]string{"t": "{{ .Missing }}"})
	require.NoError(t, err)
	_, err = c.Render("t", map[string]interface{}{})
	require.Error(t, err)
}
