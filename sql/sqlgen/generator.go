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

// Package sqlgen turns the finalized cube scan wrappers of an analyzed plan
// into the queries the data sources run.
package sqlgen

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
)

// DefaultLimit is the limit of cube requests that set none.
const DefaultLimit = 50000

// Query is the rendering of one finalized wrapper.
type Query struct {
	// SQL run by the data source. Parameters are $1, $2... in the order of
	// Values.
	SQL    string
	Values []interface{}
	// Request is the cube request the SQL was loaded from. For selects that
	// are not pushed to the cube it is the request of the innermost scan.
	Request *sql.LoadRequest
	// PushToCube is set when the whole select became the request.
	PushToCube bool
}

// Generator renders wrappers with the templates of the data sources behind
// their cubes.
type Generator struct {
	meta   sql.MetaContext
	loader sql.LoadSQLProvider
	// DefaultLimit applies to requests without a limit. Zero means no limit.
	DefaultLimit int
}

// NewGenerator returns a generator reading templates from |meta| and cube
// SQL from |loader|.
func NewGenerator(meta sql.MetaContext, loader sql.LoadSQLProvider) *Generator {
	return &Generator{meta: meta, loader: loader, DefaultLimit: DefaultLimit}
}

// Generate renders every finalized wrapper of |n|, outermost first. Wrappers
// nested in another wrapper are rendered as part of it.
func (g *Generator) Generate(ctx *sql.Context, n *memo.Expr) ([]*Query, error) {
	span, ctx := ctx.Span("sqlgen.render")
	defer span.Finish()

	var queries []*Query
	var err error
	n.Walk(func(e *memo.Expr) bool {
		if err != nil {
			return false
		}
		if !plan.IsFinalizedWrapper(e) {
			return true
		}
		var q *Query
		if q, err = g.GenerateWrapper(ctx, e); err == nil {
			queries = append(queries, q)
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	span.SetTag("queries", len(queries))
	return queries, nil
}

// GenerateWrapper renders a single finalized wrapper.
func (g *Generator) GenerateWrapper(ctx *sql.Context, e *memo.Expr) (*Query, error) {
	if !plan.IsFinalizedWrapper(e) {
		return nil, ErrNotFinalized.New(e.Op)
	}
	r := &renderer{g: g, ctx: ctx}
	q, err := r.wrapped(e.Child(0))
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"push_to_cube": q.PushToCube,
		"values":       len(q.Values),
	}).Debugf("rendered wrapper: %s", q.SQL)
	return q, nil
}

// renderer renders one wrapper. Values of every load it runs accumulate so
// that nested selects share a single parameter numbering.
type renderer struct {
	g       *Generator
	ctx     *sql.Context
	catalog sql.TemplateCatalog
	values  []interface{}
	// request of the innermost scan loaded
	request *sql.LoadRequest
}

func (r *renderer) wrapped(input *memo.Expr) (*Query, error) {
	switch input.Op {
	case plan.OpCubeScan:
		scan, err := plan.DecodeCubeScan(input)
		if err != nil {
			return nil, err
		}
		req, err := r.g.scanRequest(scan)
		if err != nil {
			return nil, err
		}
		text, err := r.load(req, nil)
		if err != nil {
			return nil, err
		}
		return &Query{SQL: text, Values: r.values, Request: req}, nil
	case plan.OpWrappedSelect:
		ws, err := plan.DecodeWrappedSelect(input)
		if err != nil {
			return nil, err
		}
		if err := r.useCatalogOf(ws); err != nil {
			return nil, err
		}
		if isPushed(ws) {
			req, text, err := r.push(ws)
			if err != nil {
				return nil, err
			}
			return &Query{SQL: text, Values: r.values, Request: req, PushToCube: true}, nil
		}
		text, err := r.selectSQL(ws)
		if err != nil {
			return nil, err
		}
		return &Query{SQL: text, Values: r.values, Request: r.request}, nil
	default:
		return nil, ErrUnsupportedSource.New(input.Op)
	}
}

// isPushed reports whether the select is sent to the cube as a request.
func isPushed(ws *plan.WrappedSelect) bool {
	return ws.PushToCube && ws.From != nil && ws.From.Op == plan.OpCubeScan
}

// useCatalogOf picks the template catalog of the innermost scan of |ws|.
func (r *renderer) useCatalogOf(ws *plan.WrappedSelect) error {
	scan, err := innermostScan(ws.From)
	if err != nil {
		return err
	}
	catalog, ok := r.g.meta.SQLGeneratorByAliasToCube(scan.AliasToCube)
	if !ok {
		return sql.ErrNoTemplateCatalog.New(scan.AliasToCube)
	}
	r.catalog = catalog
	return nil
}

func innermostScan(e *memo.Expr) (*plan.CubeScan, error) {
	var found *memo.Expr
	e.Walk(func(n *memo.Expr) bool {
		if found != nil {
			return false
		}
		if n.Op == plan.OpCubeScan {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, ErrUnsupportedSource.New(e.Op)
	}
	return plan.DecodeCubeScan(found)
}

var paramPlaceholder = regexp.MustCompile(`\$(\d+)\$`)

// load asks the loader for the SQL of |req|. The $N$ placeholders of member
// expressions are replaced by positional parameters bound to |params|.
func (r *renderer) load(req *sql.LoadRequest, params []interface{}) (string, error) {
	text, values, err := r.g.loader.LoadSQL(r.ctx, req)
	if err != nil {
		return "", err
	}
	r.values = append(r.values, values...)
	r.request = req

	var bindErr error
	text = paramPlaceholder.ReplaceAllStringFunc(text, func(m string) string {
		i, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || i >= len(params) {
			bindErr = ErrRender.New("request", "unbound parameter "+m)
			return m
		}
		r.values = append(r.values, params[i])
		return "$" + strconv.Itoa(len(r.values))
	})
	if bindErr != nil {
		return "", bindErr
	}
	return text, nil
}

// scanRequest is the request of a scan: its members, order, limit and
// offset. The loader exposes each member as a column named after it.
func (g *Generator) scanRequest(scan *plan.CubeScan) (*sql.LoadRequest, error) {
	req := &sql.LoadRequest{}
	for _, e := range scan.Members {
		m, ok := plan.DecodeMember(e)
		if !ok {
			return nil, ErrUnsupportedExpression.New(e.Op)
		}
		switch m.Kind {
		case sql.MemberMeasure:
			req.Measures = append(req.Measures, m.Name)
		case sql.MemberDimension:
			req.Dimensions = append(req.Dimensions, m.Name)
		case sql.MemberTimeDimension:
			if m.Granularity == "" {
				req.Dimensions = append(req.Dimensions, m.Name)
			} else {
				req.TimeDimensions = append(req.TimeDimensions, sql.TimeDimension{Dimension: m.Name, Granularity: m.Granularity})
			}
		}
	}
	// Segments among the members are exposed columns. Only filters restrict
	// the request.
	for _, f := range scan.Filters {
		m, ok := plan.DecodeMember(f)
		if !ok || m.Kind != sql.MemberSegment {
			return nil, ErrUnsupportedExpression.New(f.Op)
		}
		req.Segments = append(req.Segments, m.Name)
	}
	for _, o := range scan.Order {
		col, ok := plan.ColumnOf(o.Child(0))
		if o.Op != plan.OpSortExpr || !ok {
			return nil, ErrUnsupportedExpression.New(o.Op)
		}
		member, ok := findMember(scan, col.Name)
		if !ok {
			return nil, ErrUnknownMember.New(col, scan.AliasToCube)
		}
		req.Order = append(req.Order, []string{member.Name, direction(plan.BoolValue(o, 1))})
	}
	req.Limit, req.Offset = g.limits(scan.Limit, scan.Offset)
	if scan.Ungrouped {
		ungrouped := true
		req.Ungrouped = &ungrouped
	}
	return req, nil
}

func (g *Generator) limits(limit, offset plan.OptionalInt) (*int, *int) {
	var l, o *int
	if limit.Valid {
		v := limit.Value
		l = &v
	} else if g.DefaultLimit > 0 {
		v := g.DefaultLimit
		l = &v
	}
	if offset.Valid {
		v := offset.Value
		o = &v
	}
	return l, o
}

func direction(asc bool) string {
	if asc {
		return "asc"
	}
	return "desc"
}

// findMember resolves a column name exposed by |scan|.
func findMember(scan *plan.CubeScan, column string) (plan.Member, bool) {
	for _, e := range scan.Members {
		if m, ok := plan.DecodeMember(e); ok && m.Alias == column {
			return m, true
		}
	}
	return plan.Member{}, false
}

// push turns a select over a scan into a single cube request made of member
// expressions.
func (r *renderer) push(ws *plan.WrappedSelect) (*sql.LoadRequest, string, error) {
	scan, err := plan.DecodeCubeScan(ws.From)
	if err != nil {
		return nil, "", err
	}
	if len(scan.AliasToCube) == 0 {
		return nil, "", ErrUnsupportedSource.New("cube scan without cubes")
	}
	p := &pushed{renderer: r, scan: scan, aliases: aliasSet{}}
	req := &sql.LoadRequest{}

	for i, g := range ws.Group {
		if g.Op != plan.OpGroupingSet {
			if err := p.add(&req.Dimensions, g, nil); err != nil {
				return nil, "", err
			}
			continue
		}
		kind, members, err := decodeGroupingSet(g)
		if err != nil {
			return nil, "", err
		}
		for j, m := range members {
			subID := j
			gs := &sql.GroupingSet{GroupType: kind.String(), ID: i, SubID: &subID}
			if err := p.add(&req.Dimensions, m, gs); err != nil {
				return nil, "", err
			}
		}
	}
	for _, e := range ws.Aggr {
		if err := p.add(&req.Measures, e, nil); err != nil {
			return nil, "", err
		}
	}
	for _, e := range ws.Projection {
		if err := p.add(&req.Dimensions, e, nil); err != nil {
			return nil, "", err
		}
	}
	for _, e := range ws.Filter {
		if err := p.add(&req.Segments, e, nil); err != nil {
			return nil, "", err
		}
	}

	req.Order = [][]string{}
	for _, o := range ws.Order {
		alias, ok := p.aliasOf(o.Child(0))
		if !ok {
			return nil, "", ErrUnknownOrder.New(displayName(o.Child(0), false))
		}
		req.Order = append(req.Order, []string{alias, direction(plan.BoolValue(o, 1))})
	}
	req.Limit, req.Offset = r.g.limits(ws.Limit, ws.Offset)
	if ws.Type == plan.SelectProjection && ws.UngroupedScan {
		ungrouped := true
		req.Ungrouped = &ungrouped
	}

	text, err := r.load(req, p.params)
	if err != nil {
		return nil, "", err
	}
	return req, text, nil
}

// pushed accumulates the member expressions of a request.
type pushed struct {
	*renderer
	scan    *plan.CubeScan
	aliases aliasSet
	params  []interface{}
	exprs   []*memo.Expr
	names   []string
}

func (p *pushed) add(dst *[]string, e *memo.Expr, gs *sql.GroupingSet) error {
	text, err := p.expr(e, p)
	if err != nil {
		return err
	}
	cubes := make([]string, len(p.scan.AliasToCube))
	for i, a := range p.scan.AliasToCube {
		cubes[i] = a.Cube
	}
	member := sql.MemberExpression{
		CubeName:    cubes[0],
		Alias:       p.aliases.next(displayName(e, true)),
		CubeParams:  cubes,
		Expr:        text,
		GroupingSet: gs,
	}
	b, err := json.Marshal(member)
	if err != nil {
		return err
	}
	*dst = append(*dst, string(b))
	p.exprs = append(p.exprs, e)
	p.names = append(p.names, member.Alias)
	return nil
}

func (p *pushed) aliasOf(e *memo.Expr) (string, bool) {
	for i, x := range p.exprs {
		if x.Equal(e) || (x.Op == plan.OpAlias && x.Child(0).Equal(e)) {
			return p.names[i], true
		}
	}
	return "", false
}

// literal binds |v| as a parameter of the request.
func (p *pushed) literal(v interface{}) (string, error) {
	p.params = append(p.params, v)
	return "$" + strconv.Itoa(len(p.params)-1) + "$", nil
}

// column references the member |c| resolves to.
func (p *pushed) column(c sql.Column) (string, error) {
	m, ok := findMember(p.scan, c.Name)
	if !ok {
		return "", ErrUnknownMember.New(c, p.scan.AliasToCube)
	}
	return "${" + m.Name + "}", nil
}
