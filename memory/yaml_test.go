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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/templates"
)

const ordersYAML = `
data_sources:
  default:
    extends: postgres
    remove:
      - functions/LOWER
  warehouse:
    functions: [SUM]
    templates:
      statements/select: "SELECT {{ join \", \" .Columns }} FROM {{ .From }}"
      expressions/column_aliased: "{{ .Expr }} AS {{ .Alias }}"
cubes:
  - name: Orders
    sql_table: public.orders
    dimensions:
      - name: status
      - name: created_at
        type: time
    measures:
      - name: count
        type: count
      - name: total
        sql: "{CUBE}.amount"
        type: sum
    segments:
      - name: completed
        sql: "{CUBE}.status = 'completed'"
  - name: Lines
    data_source: warehouse
    sql_table: lines
    measures:
      - name: amount
        sql: amount
        type: sum
`

func TestParseMetaYAML(t *testing.T) {
	require := require.New(t)

	meta, err := ParseMetaYAML([]byte(ordersYAML))
	require.NoError(err)
	require.Len(meta.AllCubes(), 2)

	orders, err := meta.Cube("Orders")
	require.NoError(err)
	require.Equal(DefaultDataSource, orders.DataSource)
	require.Equal([]Dimension{{Name: "status"}, {Name: "created_at", Type: DimensionTypeTime}}, orders.Dimensions)

	m, ok := meta.FindMeasureWithName("Orders.total")
	require.True(ok)
	require.Equal("sum", m.AggType)

	catalog, ok := meta.SQLGeneratorByAliasToCube([]sql.AliasToCube{{Alias: "o", Cube: "Orders"}})
	require.True(ok)
	require.True(catalog.ContainsKey(templates.Function("SUM")))
	require.False(catalog.ContainsKey(templates.Function("LOWER")))

	text, _, err := meta.LoadSQL(sql.NewEmptyContext(), &sql.LoadRequest{
		Dimensions: []string{"Orders.status"},
		Measures:   []string{"Orders.total"},
		Segments:   []string{"Orders.completed"},
	})
	require.NoError(err)
	require.Equal(`SELECT "Orders"."status" "status", SUM("Orders".amount) "total" FROM public.orders AS "Orders"`+
		` WHERE "Orders".status = 'completed' GROUP BY 1`, text)

	text, _, err = meta.LoadSQL(sql.NewEmptyContext(), &sql.LoadRequest{Measures: []string{"Lines.amount"}})
	require.NoError(err)
	require.Equal(`SELECT SUM(amount) AS amount FROM lines`, text)
}

func TestParseMetaYAMLErrors(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
		err  interface{ Is(error) bool }
	}{
		{"malformed", "cubes: [", ErrInvalidMeta},
		{"unknown field", "cubes:\n  - name: A\n    joins: []\n", ErrInvalidMeta},
		{"cube without name", "cubes:\n  - sql_table: a\n", ErrInvalidMeta},
		{"duplicate cube", "cubes:\n  - name: A\n  - name: A\n", ErrInvalidMeta},
		{"unknown base catalog", "data_sources:\n  default:\n    extends: mysql\n", templates.ErrUnknownBaseCatalog},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetaYAML([]byte(tt.yaml))
			require.Error(t, err)
			require.True(t, tt.err.Is(err), "unexpected error %v", err)
		})
	}
}

func TestLoadMetaYAML(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "meta.yaml")
	require.NoError(os.WriteFile(path, []byte(ordersYAML), 0644))

	meta, err := LoadMetaYAML(path)
	require.NoError(err)
	_, err = meta.Cube("Lines")
	require.NoError(err)

	_, err = LoadMetaYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(err)
}
