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

// Child positions of a CubeScan.
const (
	CubeScanAliasToCubeIdx = iota
	CubeScanMembersIdx
	CubeScanFiltersIdx
	CubeScanOrderIdx
	CubeScanLimitIdx
	CubeScanOffsetIdx
	CubeScanWrappedIdx
	CubeScanUngroupedIdx
)

// NewCubeScan returns an unwrapped scan of the cubes in |aliasToCube|
// selecting |members|.
func NewCubeScan(
	aliasToCube []sql.AliasToCube,
	members []*memo.Expr,
	filters []*memo.Expr,
	order []*memo.Expr,
	limit, offset OptionalInt,
	ungrouped bool,
) *memo.Expr {
	return memo.NewExpr(OpCubeScan,
		memo.NewLeaf(OpCubeScanAliasToCube, aliasToCube),
		NewList(CubeScanMemberList, members...),
		NewList(CubeScanFilterList, filters...),
		NewList(CubeScanOrderList, order...),
		memo.NewLeaf(OpCubeScanLimit, limit),
		memo.NewLeaf(OpCubeScanOffset, offset),
		memo.NewLeaf(OpCubeScanWrapped, false),
		memo.NewLeaf(OpCubeScanUngrouped, ungrouped),
	)
}

// NewAggregate groups |input| by |group| computing |aggr|.
func NewAggregate(input *memo.Expr, group, aggr []*memo.Expr) *memo.Expr {
	return memo.NewExpr(OpAggregate,
		input,
		NewList(AggregateGroupExprList, group...),
		NewList(AggregateAggrExprList, aggr...),
	)
}

// NewProjection projects |exprs| over |input|. The alias names the relation
// produced, it may be empty.
func NewProjection(exprs []*memo.Expr, input *memo.Expr, alias string) *memo.Expr {
	return memo.NewExpr(OpProjection,
		NewList(ProjectionExprList, exprs...),
		input,
		memo.NewLeaf(OpProjectionAlias, alias),
	)
}

// NewFilter filters |input| by |predicate|.
func NewFilter(predicate, input *memo.Expr) *memo.Expr {
	return memo.NewExpr(OpFilter, predicate, input)
}

// NewLimit skips and fetches rows of |input|.
func NewLimit(skip, fetch OptionalInt, input *memo.Expr) *memo.Expr {
	return memo.NewExpr(OpLimit,
		memo.NewLeaf(OpLimitSkip, skip),
		memo.NewLeaf(OpLimitFetch, fetch),
		input,
	)
}

// NewSort orders |input| by the given sort expressions.
func NewSort(exprs []*memo.Expr, input *memo.Expr) *memo.Expr {
	return memo.NewExpr(OpSort, NewList(SortExprList, exprs...), input)
}

// NewSubqueryAlias names the relation produced by |input|.
func NewSubqueryAlias(alias string, input *memo.Expr) *memo.Expr {
	return memo.NewExpr(OpSubqueryAlias, memo.NewLeaf(OpSubqueryAliasName, alias), input)
}

// NewCubeScanWrapper wraps |input| in a wrapper with the given state.
func NewCubeScanWrapper(input *memo.Expr, finalized bool) *memo.Expr {
	return memo.NewExpr(OpCubeScanWrapper, input, memo.NewLeaf(OpCubeScanWrapperFinalized, finalized))
}

// Child positions of a WrappedSelect.
const (
	WSSelectTypeIdx = iota
	WSProjectionIdx
	WSSubqueriesIdx
	WSGroupIdx
	WSAggrIdx
	WSWindowIdx
	WSFromIdx
	WSJoinsIdx
	WSFilterIdx
	WSHavingIdx
	WSLimitIdx
	WSOffsetIdx
	WSOrderIdx
	WSAliasIdx
	WSDistinctIdx
	WSPushToCubeIdx
	WSUngroupedScanIdx
	WSFieldCount
)

// WrappedSelect is the decoded form of a WrappedSelect term.
type WrappedSelect struct {
	Type          SelectType
	Projection    []*memo.Expr
	Subqueries    []*memo.Expr
	Group         []*memo.Expr
	Aggr          []*memo.Expr
	Window        []*memo.Expr
	From          *memo.Expr
	Joins         []*memo.Expr
	Filter        []*memo.Expr
	Having        []*memo.Expr
	Limit         OptionalInt
	Offset        OptionalInt
	Order         []*memo.Expr
	Alias         string
	Distinct      bool
	PushToCube    bool
	UngroupedScan bool
}

// Expr encodes the select as a term.
func (w *WrappedSelect) Expr() *memo.Expr {
	return memo.NewExpr(OpWrappedSelect,
		memo.NewLeaf(OpWrappedSelectSelectType, w.Type),
		NewList(ProjectionExprList, w.Projection...),
		NewList(SubqueryList, w.Subqueries...),
		NewList(AggregateGroupExprList, w.Group...),
		NewList(AggregateAggrExprList, w.Aggr...),
		NewList(WindowExprList, w.Window...),
		w.From,
		NewList(JoinList, w.Joins...),
		NewList(FilterExprList, w.Filter...),
		NewList(HavingExprList, w.Having...),
		memo.NewLeaf(OpWrappedSelectLimit, w.Limit),
		memo.NewLeaf(OpWrappedSelectOffset, w.Offset),
		NewList(SortExprList, w.Order...),
		memo.NewLeaf(OpWrappedSelectAlias, w.Alias),
		memo.NewLeaf(OpWrappedSelectDistinct, w.Distinct),
		memo.NewLeaf(OpWrappedSelectPushToCube, w.PushToCube),
		memo.NewLeaf(OpWrappedSelectUngroupedScan, w.UngroupedScan),
	)
}

// DecodeWrappedSelect decodes an extracted WrappedSelect term. Every list
// field must be a plain list, replacers are rejected.
func DecodeWrappedSelect(e *memo.Expr) (*WrappedSelect, error) {
	if e == nil || e.Op != OpWrappedSelect || len(e.Children) != WSFieldCount {
		return nil, sql.ErrInvalidPlan.New("not a wrapped select")
	}
	w := &WrappedSelect{From: e.Children[WSFromIdx]}
	lists := []struct {
		idx int
		dst *[]*memo.Expr
	}{
		{WSProjectionIdx, &w.Projection},
		{WSSubqueriesIdx, &w.Subqueries},
		{WSGroupIdx, &w.Group},
		{WSAggrIdx, &w.Aggr},
		{WSWindowIdx, &w.Window},
		{WSJoinsIdx, &w.Joins},
		{WSFilterIdx, &w.Filter},
		{WSHavingIdx, &w.Having},
		{WSOrderIdx, &w.Order},
	}
	for _, l := range lists {
		items, ok := ListItems(e.Children[l.idx])
		if !ok {
			return nil, sql.ErrInvalidPlan.New("wrapped select field " + e.Children[l.idx].Op.String() + " is not a list")
		}
		*l.dst = items
	}

	var ok bool
	if w.Type, ok = e.Children[WSSelectTypeIdx].Value.(SelectType); !ok {
		return nil, sql.ErrInvalidPlan.New("wrapped select type")
	}
	if w.Limit, ok = e.Children[WSLimitIdx].Value.(OptionalInt); !ok {
		return nil, sql.ErrInvalidPlan.New("wrapped select limit")
	}
	if w.Offset, ok = e.Children[WSOffsetIdx].Value.(OptionalInt); !ok {
		return nil, sql.ErrInvalidPlan.New("wrapped select offset")
	}
	w.Alias, _ = e.Children[WSAliasIdx].Value.(string)
	w.Distinct, _ = e.Children[WSDistinctIdx].Value.(bool)
	w.PushToCube, _ = e.Children[WSPushToCubeIdx].Value.(bool)
	w.UngroupedScan, _ = e.Children[WSUngroupedScanIdx].Value.(bool)
	return w, nil
}

// CubeScan is the decoded form of a CubeScan term.
type CubeScan struct {
	AliasToCube []sql.AliasToCube
	Members     []*memo.Expr
	Filters     []*memo.Expr
	Order       []*memo.Expr
	Limit       OptionalInt
	Offset      OptionalInt
	Wrapped     bool
	Ungrouped   bool
}

// DecodeCubeScan decodes an extracted CubeScan term.
func DecodeCubeScan(e *memo.Expr) (*CubeScan, error) {
	if e == nil || e.Op != OpCubeScan || len(e.Children) != CubeScanUngroupedIdx+1 {
		return nil, sql.ErrInvalidPlan.New("not a cube scan")
	}
	s := &CubeScan{}
	var ok bool
	if s.AliasToCube, ok = e.Children[CubeScanAliasToCubeIdx].Value.([]sql.AliasToCube); !ok {
		return nil, sql.ErrInvalidPlan.New("cube scan alias to cube")
	}
	if s.Members, ok = ListItems(e.Children[CubeScanMembersIdx]); !ok {
		return nil, sql.ErrInvalidPlan.New("cube scan members")
	}
	if s.Filters, ok = ListItems(e.Children[CubeScanFiltersIdx]); !ok {
		return nil, sql.ErrInvalidPlan.New("cube scan filters")
	}
	if s.Order, ok = ListItems(e.Children[CubeScanOrderIdx]); !ok {
		return nil, sql.ErrInvalidPlan.New("cube scan order")
	}
	s.Limit, _ = e.Children[CubeScanLimitIdx].Value.(OptionalInt)
	s.Offset, _ = e.Children[CubeScanOffsetIdx].Value.(OptionalInt)
	s.Wrapped, _ = e.Children[CubeScanWrappedIdx].Value.(bool)
	s.Ungrouped, _ = e.Children[CubeScanUngroupedIdx].Value.(bool)
	return s, nil
}

// IsFinalizedWrapper reports whether |e| is a finalized CubeScanWrapper.
func IsFinalizedWrapper(e *memo.Expr) bool {
	if e == nil || e.Op != OpCubeScanWrapper || len(e.Children) != 2 {
		return false
	}
	finalized, _ := e.Children[1].Value.(bool)
	return finalized
}
