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

import (
	"fmt"
	"strings"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
)

// Describe renders a plan as a tree with one relational node per line and the
// expressions of each node as its leading children.
func Describe(e *memo.Expr) string {
	if e == nil {
		return ""
	}

	p := sql.NewTreePrinter()
	var children []string
	switch e.Op {
	case OpCubeScanWrapper:
		_ = p.WriteNode("CubeScanWrapper(finalized: %t)", BoolValue(e, 1))
		children = append(children, Describe(e.Child(0)))
	case OpWrappedSelect:
		w, err := DecodeWrappedSelect(e)
		if err != nil {
			return e.String()
		}
		_ = p.WriteNode("WrappedSelect(%s, alias: %q, push_to_cube: %t, ungrouped: %t)",
			w.Type, w.Alias, w.PushToCube, w.UngroupedScan)
		children = appendExprs(children, "projection", w.Projection)
		children = appendExprs(children, "group", w.Group)
		children = appendExprs(children, "aggr", w.Aggr)
		children = appendExprs(children, "filter", w.Filter)
		children = appendExprs(children, "having", w.Having)
		children = appendExprs(children, "order", w.Order)
		children = appendBounds(children, w.Limit, w.Offset)
		if w.From != nil {
			children = append(children, Describe(w.From))
		}
	case OpCubeScan:
		s, err := DecodeCubeScan(e)
		if err != nil {
			return e.String()
		}
		cubes := make([]string, len(s.AliasToCube))
		for i, a := range s.AliasToCube {
			cubes[i] = a.String()
		}
		_ = p.WriteNode("CubeScan(%s, ungrouped: %t)", strings.Join(cubes, ", "), s.Ungrouped)
		children = appendExprs(children, "members", s.Members)
		children = appendExprs(children, "filters", s.Filters)
		children = appendExprs(children, "order", s.Order)
		children = appendBounds(children, s.Limit, s.Offset)
	case OpAggregate:
		_ = p.WriteNode("Aggregate")
		children = appendExprs(children, "group", listOf(e.Child(1)))
		children = appendExprs(children, "aggr", listOf(e.Child(2)))
		children = append(children, Describe(e.Child(0)))
	case OpProjection:
		_ = p.WriteNode("Projection(%s)", ExprListString(listOf(e.Child(0))))
		children = append(children, Describe(e.Child(1)))
	case OpFilter:
		_ = p.WriteNode("Filter(%s)", ExprString(e.Child(0)))
		children = append(children, Describe(e.Child(1)))
	case OpLimit:
		skip, _ := e.Child(0).Value.(OptionalInt)
		fetch, _ := e.Child(1).Value.(OptionalInt)
		_ = p.WriteNode("Limit(skip: %s, fetch: %s)", skip, fetch)
		children = append(children, Describe(e.Child(2)))
	case OpSort:
		_ = p.WriteNode("Sort(%s)", ExprListString(listOf(e.Child(0))))
		children = append(children, Describe(e.Child(1)))
	case OpSubqueryAlias:
		_ = p.WriteNode("SubqueryAlias(%s)", StringValue(e, 0))
		children = append(children, Describe(e.Child(1)))
	case OpPushdownReplacer, OpPullupReplacer:
		_ = p.WriteNode("%s", e.Op)
		children = append(children, Describe(e.Child(ReplacerExprIdx)))
	default:
		_ = p.WriteNode("%s", ExprString(e))
	}

	_ = p.WriteChildren(children...)
	return p.String()
}

func appendExprs(children []string, label string, exprs []*memo.Expr) []string {
	if len(exprs) == 0 {
		return children
	}
	return append(children, label+": "+ExprListString(exprs))
}

func appendBounds(children []string, limit, offset OptionalInt) []string {
	if limit.Valid {
		children = append(children, "limit: "+limit.String())
	}
	if offset.Valid {
		children = append(children, "offset: "+offset.String())
	}
	return children
}

func listOf(e *memo.Expr) []*memo.Expr {
	if e == nil {
		return nil
	}
	items, _ := ListItems(e)
	return items
}

// ExprListString renders a list of expressions separated by commas.
func ExprListString(exprs []*memo.Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = ExprString(e)
	}
	return strings.Join(parts, ", ")
}

// ExprString renders a scalar expression for humans. It is not valid SQL of
// any dialect.
func ExprString(e *memo.Expr) string {
	if e == nil {
		return "<nil>"
	}
	if items, ok := ListItems(e); ok {
		return "[" + ExprListString(items) + "]"
	}
	if m, ok := DecodeMember(e); ok {
		if m.Granularity != "" {
			return fmt.Sprintf("%s(%s, %s)", m.Kind, m.Name, m.Granularity)
		}
		return fmt.Sprintf("%s(%s)", m.Kind, m.Name)
	}

	switch e.Op {
	case OpColumn:
		c, _ := ColumnOf(e)
		return c.String()
	case OpLiteral:
		v, _ := LiteralOf(e)
		if s, ok := v.(string); ok {
			return "'" + strings.ReplaceAll(s, "'", "''") + "'"
		}
		return fmt.Sprint(v)
	case OpAlias:
		return ExprString(e.Child(0)) + " AS " + StringValue(e, 1)
	case OpBinaryExpr:
		return ExprString(e.Child(0)) + " " + StringValue(e, 1) + " " + ExprString(e.Child(2))
	case OpScalarFunction, OpScalarUDF:
		return StringValue(e, 0) + "(" + ExprListString(listOf(e.Child(1))) + ")"
	case OpAggregateFunction:
		distinct := ""
		if BoolValue(e, 2) {
			distinct = "DISTINCT "
		}
		return StringValue(e, 0) + "(" + distinct + ExprListString(listOf(e.Child(1))) + ")"
	case OpInList:
		return ExprString(e.Child(0)) + notIn(BoolValue(e, 2)) + "(" + ExprListString(listOf(e.Child(1))) + ")"
	case OpInSubquery:
		return ExprString(e.Child(0)) + notIn(BoolValue(e, 2)) + "(<subquery>)"
	case OpGroupingSet:
		kind, _ := e.Child(0).Value.(sql.GroupingSetKind)
		return strings.ToUpper(kind.String()) + "(" + ExprListString(listOf(e.Child(1))) + ")"
	case OpSortExpr:
		s := ExprString(e.Child(0))
		if BoolValue(e, 1) {
			s += " ASC"
		} else {
			s += " DESC"
		}
		if BoolValue(e, 2) {
			s += " NULLS FIRST"
		}
		return s
	case OpPushdownReplacer, OpPullupReplacer:
		return e.Op.String() + "(" + ExprString(e.Child(ReplacerExprIdx)) + ")"
	}

	if e.Value != nil {
		return fmt.Sprintf("%s:%v", e.Op, e.Value)
	}
	return e.Op.String()
}

func notIn(negated bool) string {
	if negated {
		return " NOT IN "
	}
	return " IN "
}
