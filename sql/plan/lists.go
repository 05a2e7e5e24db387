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

import "github.com/semlayer/pushdown/sql/memo"

// ListKind describes a cons-list: a Cons node holds a head item and the rest
// of the list, an Empty node terminates it. Every kind has its own empty tail
// so that lists of different kinds never collapse into the same group.
type ListKind struct {
	Name  string
	Cons  memo.Op
	Empty memo.Op
}

func listKind(name string, i memo.Op) ListKind {
	return ListKind{Name: name, Cons: opListBase + 2*i, Empty: opListBase + 2*i + 1}
}

var (
	ProjectionExprList        = listKind("ProjectionExpr", 0)
	AggregateGroupExprList    = listKind("AggregateGroupExpr", 1)
	AggregateAggrExprList     = listKind("AggregateAggrExpr", 2)
	SortExprList              = listKind("SortExprs", 3)
	WindowExprList            = listKind("WindowExpr", 4)
	SubqueryList              = listKind("WrappedSelectSubqueries", 5)
	JoinList                  = listKind("WrappedSelectJoins", 6)
	FilterExprList            = listKind("WrappedSelectFilterExpr", 7)
	HavingExprList            = listKind("WrappedSelectHavingExpr", 8)
	InListExprList            = listKind("InListExprList", 9)
	ScalarFunctionArgList     = listKind("ScalarFunctionExprArgs", 10)
	ScalarUDFArgList          = listKind("ScalarUDFExprArgs", 11)
	AggregateFunctionArgList  = listKind("AggregateFunctionExprArgs", 12)
	GroupingSetMemberList     = listKind("GroupingSetExprMembers", 13)
	CubeScanMemberList        = listKind("CubeScanMembers", 14)
	CubeScanFilterList        = listKind("CubeScanFilters", 15)
	CubeScanOrderList         = listKind("CubeScanOrder", 16)
)

var listKinds = []ListKind{
	ProjectionExprList,
	AggregateGroupExprList,
	AggregateAggrExprList,
	SortExprList,
	WindowExprList,
	SubqueryList,
	JoinList,
	FilterExprList,
	HavingExprList,
	InListExprList,
	ScalarFunctionArgList,
	ScalarUDFArgList,
	AggregateFunctionArgList,
	GroupingSetMemberList,
	CubeScanMemberList,
	CubeScanFilterList,
	CubeScanOrderList,
}

// ListKinds returns every list kind.
func ListKinds() []ListKind {
	return append([]ListKind(nil), listKinds...)
}

// ListKindOf returns the kind of a list operator, cons or empty tail.
func ListKindOf(op memo.Op) (ListKind, bool) {
	if op < opListBase {
		return ListKind{}, false
	}
	i := int(op-opListBase) / 2
	if i >= len(listKinds) {
		return ListKind{}, false
	}
	return listKinds[i], true
}

// NewList builds a cons-list of the given kind.
func NewList(kind ListKind, items ...*memo.Expr) *memo.Expr {
	list := memo.NewExpr(kind.Empty)
	for i := len(items) - 1; i >= 0; i-- {
		list = memo.NewExpr(kind.Cons, items[i], list)
	}
	return list
}

// ListItems returns the items of a cons-list term. The second return value is
// false if |e| is not a well formed list.
func ListItems(e *memo.Expr) ([]*memo.Expr, bool) {
	kind, ok := ListKindOf(e.Op)
	if !ok {
		return nil, false
	}
	var items []*memo.Expr
	for e.Op == kind.Cons {
		if len(e.Children) != 2 {
			return nil, false
		}
		items = append(items, e.Children[0])
		e = e.Children[1]
	}
	if e.Op != kind.Empty {
		return nil, false
	}
	return items, true
}
