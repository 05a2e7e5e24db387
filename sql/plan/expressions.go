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
	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
)

// NewColumn returns a column reference.
func NewColumn(relation, name string) *memo.Expr {
	return NewColumnExpr(sql.Column{Relation: relation, Name: name})
}

// NewColumnExpr returns a column reference term for |c|.
func NewColumnExpr(c sql.Column) *memo.Expr {
	return memo.NewExpr(OpColumn, memo.NewLeaf(OpColumnName, c))
}

// NewLiteral returns a literal. A nil value is the NULL literal.
func NewLiteral(v interface{}) *memo.Expr {
	if v == nil {
		v = Null{}
	}
	return memo.NewExpr(OpLiteral, memo.NewLeaf(OpLiteralValue, v))
}

// NewAlias names the result of |e|.
func NewAlias(e *memo.Expr, name string) *memo.Expr {
	return memo.NewExpr(OpAlias, e, memo.NewLeaf(OpAliasName, name))
}

// NewBinary returns |left| |op| |right|.
func NewBinary(left *memo.Expr, op string, right *memo.Expr) *memo.Expr {
	return memo.NewExpr(OpBinaryExpr, left, memo.NewLeaf(OpBinaryOperator, op), right)
}

// NewScalarFunction calls a built-in scalar function.
func NewScalarFunction(name string, args ...*memo.Expr) *memo.Expr {
	return memo.NewExpr(OpScalarFunction,
		memo.NewLeaf(OpScalarFunctionName, name),
		NewList(ScalarFunctionArgList, args...),
	)
}

// NewScalarUDF calls a user-defined scalar function.
func NewScalarUDF(name string, args ...*memo.Expr) *memo.Expr {
	return memo.NewExpr(OpScalarUDF,
		memo.NewLeaf(OpScalarUDFName, name),
		NewList(ScalarUDFArgList, args...),
	)
}

// NewAggregateFunction calls an aggregate function.
func NewAggregateFunction(name string, distinct bool, args ...*memo.Expr) *memo.Expr {
	return memo.NewExpr(OpAggregateFunction,
		memo.NewLeaf(OpAggregateFunctionName, name),
		NewList(AggregateFunctionArgList, args...),
		memo.NewLeaf(OpAggregateFunctionDistinct, distinct),
	)
}

// NewInList returns |e| [NOT] IN (list...).
func NewInList(e *memo.Expr, list []*memo.Expr, negated bool) *memo.Expr {
	return memo.NewExpr(OpInList,
		e,
		NewList(InListExprList, list...),
		memo.NewLeaf(OpInListNegated, negated),
	)
}

// NewInSubquery returns |e| [NOT] IN (subquery).
func NewInSubquery(e, subquery *memo.Expr, negated bool) *memo.Expr {
	return memo.NewExpr(OpInSubquery, e, subquery, memo.NewLeaf(OpInSubqueryNegated, negated))
}

// NewRollup returns ROLLUP(exprs...).
func NewRollup(exprs ...*memo.Expr) *memo.Expr {
	return newGroupingSet(sql.GroupingSetRollup, exprs)
}

// NewCube returns CUBE(exprs...).
func NewCube(exprs ...*memo.Expr) *memo.Expr {
	return newGroupingSet(sql.GroupingSetCube, exprs)
}

func newGroupingSet(kind sql.GroupingSetKind, exprs []*memo.Expr) *memo.Expr {
	return memo.NewExpr(OpGroupingSet,
		memo.NewLeaf(OpGroupingSetKind, kind),
		NewList(GroupingSetMemberList, exprs...),
	)
}

// NewSortExpr orders by |e|.
func NewSortExpr(e *memo.Expr, asc, nullsFirst bool) *memo.Expr {
	return memo.NewExpr(OpSortExpr,
		e,
		memo.NewLeaf(OpSortExprAsc, asc),
		memo.NewLeaf(OpSortExprNullsFirst, nullsFirst),
	)
}

// ColumnOf returns the column referenced by a Column term.
func ColumnOf(e *memo.Expr) (sql.Column, bool) {
	if e == nil || e.Op != OpColumn || len(e.Children) != 1 {
		return sql.Column{}, false
	}
	c, ok := e.Children[0].Value.(sql.Column)
	return c, ok
}

// LiteralOf returns the value of a Literal term.
func LiteralOf(e *memo.Expr) (interface{}, bool) {
	if e == nil || e.Op != OpLiteral || len(e.Children) != 1 {
		return nil, false
	}
	return e.Children[0].Value, true
}

// StringValue returns the string payload of the i-th child of |e|.
func StringValue(e *memo.Expr, i int) string {
	s, _ := e.Child(i).Value.(string)
	return s
}

// BoolValue returns the bool payload of the i-th child of |e|.
func BoolValue(e *memo.Expr, i int) bool {
	b, _ := e.Child(i).Value.(bool)
	return b
}
