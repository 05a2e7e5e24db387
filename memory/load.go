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
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/src-d/go-errors.v1"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/templates"
)

var (
	// ErrMultipleCubes is returned by requests with members of more than one
	// cube. The in-memory layer does not join cubes.
	ErrMultipleCubes = errors.NewKind("request spans cubes %s and %s")

	// ErrEmptyRequest is returned by requests without dimensions or measures.
	ErrEmptyRequest = errors.NewKind("request selects no member")

	// ErrInvalidMemberExpression is returned when a member expression of a
	// request cannot be decoded.
	ErrInvalidMemberExpression = errors.NewKind("invalid member expression %q: %s")
)

var memberReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadSQL implements sql.LoadSQLProvider. The SQL is rendered with the
// templates of the cube's data source. Placeholders of member expressions
// are left in place and no values are returned.
func (m *Meta) LoadSQL(ctx *sql.Context, req *sql.LoadRequest) (string, []interface{}, error) {
	span, _ := ctx.Span("memory.load_sql")
	defer span.Finish()

	m.mu.RLock()
	defer m.mu.RUnlock()

	q := &loadQuery{meta: m, ungrouped: req.Ungrouped != nil && *req.Ungrouped}
	if err := q.build(req); err != nil {
		return "", nil, err
	}
	text, err := q.render(req)
	if err != nil {
		return "", nil, err
	}
	return text, nil, nil
}

// loadColumn is a selected column of a load query.
type loadColumn struct {
	sql   string
	alias string
	// names the request may order the column by
	names       []string
	groupingSet *sql.GroupingSet
}

type loadQuery struct {
	meta      *Meta
	cube      *Cube
	catalog   sql.TemplateCatalog
	ungrouped bool
	dims      []loadColumn
	measures  []loadColumn
	filters   []string
}

func (q *loadQuery) build(req *sql.LoadRequest) error {
	for _, name := range req.Dimensions {
		c, mem, err := q.column(name)
		if err != nil {
			return err
		}
		if mem != nil && mem.kind == sql.MemberMeasure {
			if c.sql, err = q.measureSQL(*mem); err != nil {
				return err
			}
			q.measures = append(q.measures, c)
			continue
		}
		q.dims = append(q.dims, c)
	}
	for _, td := range req.TimeDimensions {
		c, _, err := q.column(td.Dimension)
		if err != nil {
			return err
		}
		if td.Granularity != "" {
			c.sql, err = q.catalog.Render(templates.Function("DATE_TRUNC"), templates.FunctionData{
				Name: "DATE_TRUNC",
				Args: []string{"'" + td.Granularity + "'", c.sql},
			})
			if err != nil {
				return err
			}
			c.alias += "_" + strings.ToLower(td.Granularity)
			c.names = append(c.names, td.Dimension+"."+td.Granularity)
		}
		q.dims = append(q.dims, c)
	}
	for _, name := range req.Measures {
		c, mem, err := q.column(name)
		if err != nil {
			return err
		}
		if mem != nil {
			if c.sql, err = q.measureSQL(*mem); err != nil {
				return err
			}
		}
		q.measures = append(q.measures, c)
	}
	for _, name := range req.Segments {
		c, _, err := q.column(name)
		if err != nil {
			return err
		}
		q.filters = append(q.filters, c.sql)
	}
	if q.cube == nil || len(q.dims)+len(q.measures) == 0 {
		return ErrEmptyRequest.New()
	}
	return nil
}

// column resolves a request entry: a member name or the JSON encoding of a
// member expression. The member is returned for plain member names.
func (q *loadQuery) column(name string) (loadColumn, *member, error) {
	if !strings.HasPrefix(strings.TrimSpace(name), "{") {
		mem, err := q.meta.resolve(name)
		if err != nil {
			return loadColumn{}, nil, err
		}
		if err := q.use(mem.cube); err != nil {
			return loadColumn{}, nil, err
		}
		return loadColumn{sql: mem.sql, alias: mem.name, names: []string{name}}, &mem, nil
	}

	var me sql.MemberExpression
	if err := json.Unmarshal([]byte(name), &me); err != nil {
		return loadColumn{}, nil, ErrInvalidMemberExpression.New(name, err)
	}
	c, err := q.meta.cube(me.CubeName)
	if err != nil {
		return loadColumn{}, nil, err
	}
	if err := q.use(c); err != nil {
		return loadColumn{}, nil, err
	}

	// A lone reference is the member itself: measures stay aggregated.
	if ref := memberReference.FindStringSubmatch(me.Expr); ref != nil && ref[0] == strings.TrimSpace(me.Expr) {
		mem, err := q.meta.resolve(sql.MemberName(ref[1], ref[2]))
		if err != nil {
			return loadColumn{}, nil, err
		}
		if err := q.use(mem.cube); err != nil {
			return loadColumn{}, nil, err
		}
		return loadColumn{sql: mem.sql, alias: me.Alias, names: []string{me.Alias}, groupingSet: me.GroupingSet}, &mem, nil
	}

	var refErr error
	text := memberReference.ReplaceAllStringFunc(me.Expr, func(ref string) string {
		mem, err := q.meta.resolve(ref[2 : len(ref)-1])
		if err == nil {
			err = q.use(mem.cube)
		}
		if err != nil {
			refErr = err
			return ref
		}
		return mem.sql
	})
	if refErr != nil {
		return loadColumn{}, nil, refErr
	}
	return loadColumn{sql: text, alias: me.Alias, names: []string{me.Alias}, groupingSet: me.GroupingSet}, nil, nil
}

// use binds the query to |c| and the catalog of its data source.
func (q *loadQuery) use(c *Cube) error {
	if q.cube != nil {
		if q.cube != c {
			return ErrMultipleCubes.New(q.cube.Name, c.Name)
		}
		return nil
	}
	catalog, ok := q.meta.catalogs[c.DataSource]
	if !ok {
		return sql.ErrNoTemplateCatalog.New(c.DataSource)
	}
	q.cube, q.catalog = c, catalog
	return nil
}

func (q *loadQuery) measureSQL(mem member) (string, error) {
	if q.ungrouped {
		if mem.sql == "*" {
			return "1", nil
		}
		return mem.sql, nil
	}

	fn := templates.FunctionData{Args: []string{mem.sql}}
	switch mem.aggType {
	case "sum", "avg", "min", "max", "count":
		fn.Name = strings.ToUpper(mem.aggType)
	case "countDistinct":
		fn.Name, fn.Distinct = "COUNT", true
	default:
		return mem.sql, nil
	}
	return q.catalog.Render(templates.Function(fn.Name), fn)
}

func (q *loadQuery) render(req *sql.LoadRequest) (string, error) {
	data := templates.SelectData{
		From:      q.cube.Table,
		FromAlias: q.cube.Name,
		Filter:    q.filters,
	}
	if data.From == "" {
		data.From = templates.QuoteIdentifier(q.cube.Name)
	}

	all := append(append([]loadColumn{}, q.dims...), q.measures...)
	for _, c := range all {
		text, err := q.catalog.Render(templates.ColumnAliased, templates.ColumnAliasedData{Expr: c.sql, Alias: c.alias})
		if err != nil {
			return "", err
		}
		data.Columns = append(data.Columns, text)
	}

	if !q.ungrouped {
		groupBy, err := q.groupBy()
		if err != nil {
			return "", err
		}
		data.GroupBy = groupBy
	}

	for _, o := range req.Order {
		if len(o) != 2 {
			continue
		}
		pos, ok := position(all, o[0])
		if !ok {
			return "", sql.ErrMemberNotFound.New(o[0])
		}
		asc := o[1] != "desc"
		text, err := q.catalog.Render(templates.SortExpr, templates.SortData{Expr: strconv.Itoa(pos), Asc: asc, NullsFirst: !asc})
		if err != nil {
			return "", err
		}
		data.OrderBy = append(data.OrderBy, text)
	}

	if req.Limit != nil {
		data.HasLimit, data.Limit = true, *req.Limit
	}
	if req.Offset != nil {
		data.HasOffset, data.Offset = true, *req.Offset
	}
	return q.catalog.Render(templates.SelectStatement, data)
}

type groupingKey struct {
	groupType string
	id        int
}

// groupBy lists the dimensions by position. Dimensions of the same grouping
// set are rendered together as a ROLLUP or CUBE ordered by their sub id.
func (q *loadQuery) groupBy() ([]string, error) {
	var groupBy []string
	sets := map[groupingKey][]int{}
	var order []groupingKey
	for i, d := range q.dims {
		if d.groupingSet == nil {
			groupBy = append(groupBy, strconv.Itoa(i+1))
			continue
		}
		k := groupingKey{d.groupingSet.GroupType, d.groupingSet.ID}
		if _, ok := sets[k]; !ok {
			order = append(order, k)
		}
		sets[k] = append(sets[k], i)
	}

	for _, k := range order {
		idx := sets[k]
		sort.SliceStable(idx, func(a, b int) bool {
			return subID(q.dims[idx[a]].groupingSet) < subID(q.dims[idx[b]].groupingSet)
		})
		positions := make([]string, len(idx))
		for j, i := range idx {
			positions[j] = strconv.Itoa(i + 1)
		}
		name := templates.Rollup
		if k.groupType == sql.GroupingSetCube.String() {
			name = templates.Cube
		}
		text, err := q.catalog.Render(name, templates.GroupingSetData{Exprs: positions})
		if err != nil {
			return nil, err
		}
		groupBy = append(groupBy, text)
	}
	return groupBy, nil
}

func subID(gs *sql.GroupingSet) int {
	if gs.SubID == nil {
		return 0
	}
	return *gs.SubID
}

// position returns the 1-based position of the column known as |name|.
func position(columns []loadColumn, name string) (int, bool) {
	for i, c := range columns {
		if c.alias == name {
			return i + 1, true
		}
		for _, n := range c.names {
			if n == name {
				return i + 1, true
			}
		}
	}
	return 0, false
}
