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

package analyzer

import (
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
)

// pullUpRules collapse a select whose fields are all resolved into a single
// pulled up select.
func (r *wrapperRules) pullUpRules() []*memo.Rewrite {
	// a select directly over a scan
	trivial := wsVars("").pulledUp("", ctxVars())
	trivialOut := wsVars("")

	// the same select, kept pushable so that a parent select can be
	// flattened into it
	aux := wsVars("")
	aux.pushToCube = wsPushToCube(true)
	aux.ungroupedScan = wsUngroupedScan(true)
	auxOut := aux
	aux = aux.pulledUp("", ctxVars())

	// a select over another select
	inner := wsVars("inner_")
	nested := wsVars("")
	nested.from = wrappedSelectP(inner)
	nested.pushToCube = wsPushToCube(false)
	nestedOut := nested
	nested = nested.pulledUp("", ctxVars())

	pulled := ctxVars().push(pullupPush(false)).ungrouped(V("ungrouped_scan_out"))
	copyUngrouped := func(m *memo.Memo, s memo.Subst) bool {
		return copyFlag[bool](m, s, V("select_ungrouped_scan"), plan.OpWrappedSelectUngroupedScan, V("ungrouped_scan_out"), plan.OpPullupUngroupedScan)
	}

	return []*memo.Rewrite{
		rewrite(
			"wrapper-pull-up-to-cube-scan-non-wrapped-select",
			cubeScanWrapperP(wrappedSelectP(trivial), finalized(false)),
			pulledSelectP(trivialOut, pulled),
			all(notWrappedSelect(V("cube_scan_input")), copyUngrouped),
		),
		rewrite(
			"wrapper-pull-up-to-cube-scan-non-trivial-wrapped-select-push-to-cube",
			cubeScanWrapperP(wrappedSelectP(aux), finalized(false)),
			pulledSelectP(auxOut, ctxVars().push(pullupPush(true)).ungrouped(pullupUngrouped(true))),
			notWrappedSelect(V("cube_scan_input")),
		),
		rewrite(
			"wrapper-pull-up-to-cube-scan-non-trivial-wrapped-select",
			cubeScanWrapperP(wrappedSelectP(nested), finalized(false)),
			pulledSelectP(nestedOut, pulled),
			all(canNestSelects, copyUngrouped),
		),
	}
}

func notWrappedSelect(v memo.Var) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		return !groupHas(m, s, v, plan.OpWrappedSelect)
	}
}

// canNestSelects decides whether an outer select can be pulled up over an
// inner one. Selects of different types always can. Projections over
// projections must project something else, and aggregates over aggregates
// always can.
func canNestSelects(m *memo.Memo, s memo.Subst) bool {
	outer, ok := selectTypeOf(m, s, V("select_type"))
	if !ok {
		return false
	}
	inner, ok := selectTypeOf(m, s, V("inner_select_type"))
	if !ok {
		return false
	}
	if outer != inner {
		return true
	}
	switch outer {
	case plan.SelectProjection:
		a, aok := s.Get(V("projection_expr"))
		b, bok := s.Get(V("inner_projection_expr"))
		return aok && bok && m.Find(a) != m.Find(b)
	case plan.SelectAggregate:
		// TODO: nested aggregates are pulled up unconditionally until the
		// cases that change results (e.g. COUNT over COUNT) get their own
		// rules.
		return true
	default:
		return false
	}
}

func selectTypeOf(m *memo.Memo, s memo.Subst, v memo.Var) (plan.SelectType, bool) {
	id, ok := s.Get(v)
	if !ok {
		return 0, false
	}
	return memo.LeafValue[plan.SelectType](m, id, plan.OpWrappedSelectSelectType)
}

// flattenRules merge a pushable select into the pushable projection it is
// over, so that both reach the cube as a single request.
func (r *wrapperRules) flattenRules() []*memo.Rewrite {
	inner := wsVars("inner_")
	inner.selectType = wsSelectType(plan.SelectProjection)
	inner.subqueries = emptyList(plan.SubqueryList)
	inner.group = emptyList(plan.AggregateGroupExprList)
	inner.aggr = emptyList(plan.AggregateAggrExprList)
	inner.window = emptyList(plan.WindowExprList)
	inner.limit = wsLimitNone()
	inner.offset = wsOffsetNone()
	inner.order = emptyList(plan.SortExprList)
	inner.distinct = wsDistinct(false)
	inner.pushToCube = wsPushToCube(true)
	inner.ungroupedScan = wsUngroupedScan(true)

	pushable := ctxVars().push(pullupPush(true)).ungrouped(pullupUngrouped(true))
	outer := wsVars("")
	outer.from = wrappedSelectP(inner)
	outer.pushToCube = wsPushToCube(true)
	outer.ungroupedScan = wsUngroupedScan(true)
	flat := outer
	flat.from = V("inner_cube_scan_input")
	flat.filter = V("flattened_filter_expr")
	outer = outer.pulledUp("", pushable)

	return []*memo.Rewrite{
		rewrite(
			"wrapper-flatten-push-to-cube-select",
			cubeScanWrapperP(wrappedSelectP(outer), finalized(false)),
			pulledSelectP(flat, pushable.push(pullupPush(false))),
			all(
				notWrappedSelect(V("inner_cube_scan_input")),
				projectsOnlyColumns(V("inner_projection_expr")),
				concatFilters(V("inner_filter_expr"), V("filter_expr"), V("flattened_filter_expr")),
			),
		),
	}
}

// projectsOnlyColumns reports whether the projection list bound to |v| only
// passes columns through, so that a select over it can read the columns of
// its source instead.
func projectsOnlyColumns(v memo.Var) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		id, ok := s.Get(v)
		if !ok {
			return false
		}
		items, ok := listItemGroups(m, id, plan.ProjectionExprList)
		if !ok {
			return false
		}
		for _, item := range items {
			if !m.Group(item).Has(plan.OpColumn) {
				return false
			}
		}
		return true
	}
}

// concatFilters binds |out| to the filters bound to |first| followed by the
// ones bound to |second|.
func concatFilters(first, second, out memo.Var) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		firstID, ok := s.Get(first)
		if !ok {
			return false
		}
		tail, ok := s.Get(second)
		if !ok {
			return false
		}
		items, ok := listItemGroups(m, firstID, plan.FilterExprList)
		if !ok {
			return false
		}
		for i := len(items) - 1; i >= 0; i-- {
			tail = m.Add(&memo.ExprNode{Op: plan.FilterExprList.Cons, Children: []memo.GroupId{items[i], tail}})
		}
		s.Bind(out, tail)
		return true
	}
}
