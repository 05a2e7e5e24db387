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

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
	"github.com/semlayer/pushdown/sql/templates"
)

// operands renders the leaves of an expression. Pushed selects reference
// members and bind literals as parameters, other selects reference the
// columns of their source and inline literals.
type operands interface {
	column(c sql.Column) (string, error)
	literal(v interface{}) (string, error)
}

type inline struct {
	*renderer
}

func (i inline) column(c sql.Column) (string, error) {
	return i.render(templates.Column, templates.ColumnData{Relation: c.Relation, Name: c.Name})
}

func (i inline) literal(v interface{}) (string, error) {
	return inlineLiteral(v)
}

// inlineLiteral renders a literal as SQL text.
func inlineLiteral(v interface{}) (string, error) {
	switch v := v.(type) {
	case plan.Null, nil:
		return "NULL", nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case time.Time:
		return "'" + v.UTC().Format(time.RFC3339Nano) + "'", nil
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return "", ErrUnsupportedExpression.Wrap(err, "literal")
		}
		return s, nil
	}
}

func (r *renderer) render(name string, data interface{}) (string, error) {
	s, err := r.catalog.Render(name, data)
	if err != nil {
		if sql.ErrTemplateNotFound.Is(err) {
			return "", err
		}
		return "", ErrRender.New(name, err)
	}
	return s, nil
}

// expr renders a scalar expression.
func (r *renderer) expr(e *memo.Expr, ops operands) (string, error) {
	switch e.Op {
	case plan.OpColumn:
		c, ok := plan.ColumnOf(e)
		if !ok {
			return "", ErrUnsupportedExpression.New(e.Op)
		}
		return ops.column(c)
	case plan.OpLiteral:
		v, _ := plan.LiteralOf(e)
		return ops.literal(v)
	case plan.OpAlias:
		return r.expr(e.Child(0), ops)
	case plan.OpBinaryExpr:
		left, err := r.expr(e.Child(0), ops)
		if err != nil {
			return "", err
		}
		right, err := r.expr(e.Child(2), ops)
		if err != nil {
			return "", err
		}
		return r.render(templates.BinaryExpr, templates.BinaryData{Left: left, Op: plan.StringValue(e, 1), Right: right})
	case plan.OpScalarFunction, plan.OpScalarUDF, plan.OpAggregateFunction:
		name := plan.StringValue(e, 0)
		args, err := r.list(e.Child(1), ops)
		if err != nil {
			return "", err
		}
		distinct := e.Op == plan.OpAggregateFunction && plan.BoolValue(e, 2)
		return r.render(templates.Function(name), templates.FunctionData{
			Name:     strings.ToUpper(name),
			Args:     args,
			Distinct: distinct,
		})
	case plan.OpInList:
		expr, err := r.expr(e.Child(0), ops)
		if err != nil {
			return "", err
		}
		list, err := r.list(e.Child(1), ops)
		if err != nil {
			return "", err
		}
		return r.render(templates.InList, templates.InListData{Expr: expr, List: list, Negated: plan.BoolValue(e, 2)})
	case plan.OpInSubquery:
		expr, err := r.expr(e.Child(0), ops)
		if err != nil {
			return "", err
		}
		sub := e.Child(1)
		if !plan.IsFinalizedWrapper(sub) {
			return "", ErrUnsupportedExpression.New("subquery " + sub.Op.String())
		}
		q, err := r.nested(sub.Child(0))
		if err != nil {
			return "", err
		}
		return r.render(templates.InSubquery, templates.InSubqueryData{Expr: expr, Subquery: q, Negated: plan.BoolValue(e, 2)})
	case plan.OpSortExpr:
		expr, err := r.expr(e.Child(0), ops)
		if err != nil {
			return "", err
		}
		return r.render(templates.SortExpr, templates.SortData{
			Expr:       expr,
			Asc:        plan.BoolValue(e, 1),
			NullsFirst: plan.BoolValue(e, 2),
		})
	case plan.OpGroupingSet:
		kind, members, err := decodeGroupingSet(e)
		if err != nil {
			return "", err
		}
		exprs := make([]string, len(members))
		for i, m := range members {
			if exprs[i], err = r.expr(m, ops); err != nil {
				return "", err
			}
		}
		return r.render(groupingSetTemplate(kind), templates.GroupingSetData{Exprs: exprs})
	default:
		return "", ErrUnsupportedExpression.New(e.Op)
	}
}

func (r *renderer) list(l *memo.Expr, ops operands) ([]string, error) {
	items, ok := plan.ListItems(l)
	if !ok {
		return nil, ErrUnsupportedExpression.New(l.Op)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, err := r.expr(item, ops)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func decodeGroupingSet(e *memo.Expr) (sql.GroupingSetKind, []*memo.Expr, error) {
	kind, ok := e.Child(0).Value.(sql.GroupingSetKind)
	if !ok {
		return 0, nil, ErrUnsupportedExpression.New(e.Op)
	}
	members, ok := plan.ListItems(e.Child(1))
	if !ok {
		return 0, nil, ErrUnsupportedExpression.New(e.Op)
	}
	return kind, members, nil
}

func groupingSetTemplate(k sql.GroupingSetKind) string {
	if k == sql.GroupingSetCube {
		return templates.Cube
	}
	return templates.Rollup
}

// selectSQL renders a select that is not pushed to the cube. Aggregates
// select their group expressions first and group by position.
func (r *renderer) selectSQL(ws *plan.WrappedSelect) (string, error) {
	from, fromAlias, err := r.source(ws.From)
	if err != nil {
		return "", err
	}
	ops := inline{r}

	var items []*memo.Expr
	var groupBy []string
	if ws.Type == plan.SelectAggregate {
		for _, g := range ws.Group {
			if g.Op != plan.OpGroupingSet {
				items = append(items, g)
				groupBy = append(groupBy, strconv.Itoa(len(items)))
				continue
			}
			kind, members, err := decodeGroupingSet(g)
			if err != nil {
				return "", err
			}
			positions := make([]string, len(members))
			for i, m := range members {
				items = append(items, m)
				positions[i] = strconv.Itoa(len(items))
			}
			gs, err := r.render(groupingSetTemplate(kind), templates.GroupingSetData{Exprs: positions})
			if err != nil {
				return "", err
			}
			groupBy = append(groupBy, gs)
		}
		items = append(items, ws.Aggr...)
	}
	items = append(items, ws.Projection...)

	data := templates.SelectData{
		Distinct:  ws.Distinct,
		From:      from,
		FromAlias: fromAlias,
		GroupBy:   groupBy,
		HasLimit:  ws.Limit.Valid,
		Limit:     ws.Limit.Value,
		HasOffset: ws.Offset.Valid,
		Offset:    ws.Offset.Value,
	}
	for _, item := range items {
		text, err := r.expr(item, ops)
		if err != nil {
			return "", err
		}
		col, err := r.render(templates.ColumnAliased, templates.ColumnAliasedData{Expr: text, Alias: outputName(item)})
		if err != nil {
			return "", err
		}
		data.Columns = append(data.Columns, col)
	}
	if len(data.Columns) == 0 {
		data.Columns = []string{"*"}
	}
	for _, f := range ws.Filter {
		text, err := r.expr(f, ops)
		if err != nil {
			return "", err
		}
		data.Filter = append(data.Filter, text)
	}
	for _, o := range ws.Order {
		text, err := r.expr(o, ops)
		if err != nil {
			return "", err
		}
		data.OrderBy = append(data.OrderBy, text)
	}
	return r.render(templates.SelectStatement, data)
}

// source renders the FROM of a select and the alias its columns are
// qualified with.
func (r *renderer) source(from *memo.Expr) (string, string, error) {
	if from == nil {
		return "", "", ErrUnsupportedSource.New("nil")
	}
	switch from.Op {
	case plan.OpCubeScan:
		scan, err := plan.DecodeCubeScan(from)
		if err != nil {
			return "", "", err
		}
		req, err := r.g.scanRequest(scan)
		if err != nil {
			return "", "", err
		}
		text, err := r.load(req, nil)
		if err != nil {
			return "", "", err
		}
		return "(" + text + ")", relationOf(scan), nil
	case plan.OpWrappedSelect:
		text, err := r.nested(from)
		if err != nil {
			return "", "", err
		}
		inner, err := plan.DecodeWrappedSelect(from)
		if err != nil {
			return "", "", err
		}
		alias := inner.Alias
		if alias == "" {
			scan, err := innermostScan(from)
			if err != nil {
				return "", "", err
			}
			alias = relationOf(scan)
		}
		return "(" + text + ")", alias, nil
	default:
		return "", "", ErrUnsupportedSource.New(from.Op)
	}
}

// nested renders an inner select as SQL text.
func (r *renderer) nested(e *memo.Expr) (string, error) {
	ws, err := plan.DecodeWrappedSelect(e)
	if err != nil {
		return "", err
	}
	if isPushed(ws) {
		_, text, err := r.push(ws)
		return text, err
	}
	return r.selectSQL(ws)
}

func relationOf(scan *plan.CubeScan) string {
	if len(scan.AliasToCube) == 0 {
		return ""
	}
	return scan.AliasToCube[0].Alias
}

// outputName is the name a select exposes an expression as.
func outputName(e *memo.Expr) string {
	switch e.Op {
	case plan.OpAlias:
		return plan.StringValue(e, 1)
	case plan.OpColumn:
		c, _ := plan.ColumnOf(e)
		return c.Name
	default:
		return displayName(e, false)
	}
}

// displayName is a readable rendering of |e| member aliases are derived
// from. Top level columns and aliases are shown by their name alone.
func displayName(e *memo.Expr, top bool) string {
	switch e.Op {
	case plan.OpColumn:
		c, _ := plan.ColumnOf(e)
		if top {
			return c.Name
		}
		return c.String()
	case plan.OpAlias:
		if top {
			return plan.StringValue(e, 1)
		}
		return displayName(e.Child(0), false)
	case plan.OpLiteral:
		v, _ := plan.LiteralOf(e)
		s, err := inlineLiteral(v)
		if err != nil {
			return "?"
		}
		return s
	case plan.OpBinaryExpr:
		return displayName(e.Child(0), false) + " " + plan.StringValue(e, 1) + " " + displayName(e.Child(2), false)
	case plan.OpScalarFunction, plan.OpScalarUDF, plan.OpAggregateFunction:
		items, _ := plan.ListItems(e.Child(1))
		args := make([]string, len(items))
		for i, a := range items {
			args[i] = displayName(a, false)
		}
		prefix := ""
		if e.Op == plan.OpAggregateFunction && plan.BoolValue(e, 2) {
			prefix = "DISTINCT "
		}
		return strings.ToUpper(plan.StringValue(e, 0)) + "(" + prefix + strings.Join(args, ", ") + ")"
	case plan.OpInList:
		items, _ := plan.ListItems(e.Child(1))
		list := make([]string, len(items))
		for i, a := range items {
			list[i] = displayName(a, false)
		}
		return displayName(e.Child(0), false) + " IN (" + strings.Join(list, ", ") + ")"
	case plan.OpSortExpr:
		return displayName(e.Child(0), top)
	default:
		return e.Op.String()
	}
}
