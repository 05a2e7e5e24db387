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

// openWrapperP matches a wrapper that is not finalized around a pulled up
// input.
func openWrapperP() *memo.PatternNode {
	return cubeScanWrapperP(pullupP(V("cube_scan_input"), ctxVars()), finalized(false))
}

// freshSelect returns the fields of a select of type |t| over the pulled up
// input. Every list starts as a resolved empty list.
func freshSelect(t plan.SelectType) wsFields {
	f := wsFields{
		selectType:    wsSelectType(t),
		projection:    emptyList(plan.ProjectionExprList),
		subqueries:    emptyList(plan.SubqueryList),
		group:         emptyList(plan.AggregateGroupExprList),
		aggr:          emptyList(plan.AggregateAggrExprList),
		window:        emptyList(plan.WindowExprList),
		from:          V("cube_scan_input"),
		joins:         emptyList(plan.JoinList),
		filter:        emptyList(plan.FilterExprList),
		having:        emptyList(plan.HavingExprList),
		limit:         wsLimitNone(),
		offset:        wsOffsetNone(),
		order:         emptyList(plan.SortExprList),
		alias:         wsNoAlias(),
		distinct:      wsDistinct(false),
		pushToCube:    V("select_push_to_cube"),
		ungroupedScan: V("select_ungrouped_scan"),
	}
	return f.wrappedIn(ctxVars())
}

// openWrappedInput continues the context of a pulled up input into the
// pushdown context of its new parent and into the flags of the select.
func openWrappedInput() memo.Condition {
	return all(
		pullupToPushdown(
			V("push_to_cube"), V("pushdown_push_to_cube"),
			V("ungrouped_scan"), V("pushdown_ungrouped_scan"),
		),
		func(m *memo.Memo, s memo.Subst) bool {
			return copyBoolFlags(m, s,
				flagCopy{V("push_to_cube"), plan.OpPullupPushToCube, V("select_push_to_cube"), plan.OpWrappedSelectPushToCube},
				flagCopy{V("ungrouped_scan"), plan.OpPullupUngroupedScan, V("select_ungrouped_scan"), plan.OpWrappedSelectUngroupedScan},
			)
		},
	)
}

func singleFilterP(predicate memo.Pattern) memo.Pattern {
	return consP(plan.FilterExprList, predicate, emptyList(plan.FilterExprList))
}

func (r *wrapperRules) aggregateRules() []*memo.Rewrite {
	aggregate := func(input memo.Pattern) *memo.PatternNode {
		return memo.P(plan.OpAggregate, input, V("group_expr"), V("aggr_expr"))
	}
	wrapped := func(filter bool) memo.Pattern {
		f := freshSelect(plan.SelectAggregate)
		f.group = pushdownP(V("group_expr"), openCtx().inProj(inProjection(false)))
		f.aggr = pushdownP(V("aggr_expr"), openCtx().inProj(inProjection(true)))
		if filter {
			f.filter = pushdownP(singleFilterP(V("filter_expr")), openCtx().inProj(inProjection(false)))
		}
		return cubeScanWrapperP(wrappedSelectP(f), finalized(false))
	}

	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-aggregate-to-cube-scan",
			aggregate(openWrapperP()),
			wrapped(false),
			openWrappedInput(),
		),
		rewrite(
			"wrapper-push-down-aggregate-and-filter-to-cube-scan",
			aggregate(memo.P(plan.OpFilter, V("filter_expr"), openWrapperP())),
			wrapped(true),
			openWrappedInput(),
		),
	}
}

func (r *wrapperRules) projectionRules() []*memo.Rewrite {
	projection := func(input memo.Pattern) *memo.PatternNode {
		return memo.P(plan.OpProjection, V("projection_expr"), input, V("projection_alias"))
	}
	wrapped := func(filter bool) memo.Pattern {
		f := freshSelect(plan.SelectProjection)
		f.projection = pushdownP(V("projection_expr"), openCtx().inProj(inProjection(true)))
		f.alias = V("select_alias")
		if filter {
			f.filter = pushdownP(singleFilterP(V("filter_expr")), openCtx().inProj(inProjection(false)))
		}
		return cubeScanWrapperP(wrappedSelectP(f), finalized(false))
	}
	cond := all(
		openWrappedInput(),
		func(m *memo.Memo, s memo.Subst) bool {
			return copyFlag[string](m, s, V("projection_alias"), plan.OpProjectionAlias, V("select_alias"), plan.OpWrappedSelectAlias)
		},
	)

	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-projection-to-cube-scan",
			projection(openWrapperP()),
			wrapped(false),
			cond,
		),
		rewrite(
			"wrapper-push-down-projection-and-filter-to-cube-scan",
			projection(memo.P(plan.OpFilter, V("filter_expr"), openWrapperP())),
			wrapped(true),
			cond,
		),
	}
}

// pulledSelectP matches a wrapper around a pulled up select with the given
// fields.
func pulledSelectP(f wsFields, c replacerCtx) *memo.PatternNode {
	return cubeScanWrapperP(pullupP(wrappedSelectP(f), c), finalized(false))
}

func (r *wrapperRules) limitRules() []*memo.Rewrite {
	unlimited := wsVars("")
	unlimited.limit = wsLimitNone()
	unlimited.offset = wsOffsetNone()
	limited := wsVars("")

	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-limit-to-cube-scan",
			memo.P(plan.OpLimit, V("skip"), V("fetch"), pulledSelectP(unlimited, ctxVars())),
			pulledSelectP(limited, ctxVars().push(pullupPush(false))),
			func(m *memo.Memo, s memo.Subst) bool {
				return copyFlag[plan.OptionalInt](m, s, V("fetch"), plan.OpLimitFetch, V("limit"), plan.OpWrappedSelectLimit) &&
					copyFlag[plan.OptionalInt](m, s, V("skip"), plan.OpLimitSkip, V("offset"), plan.OpWrappedSelectOffset)
			},
		),
	}
}

func (r *wrapperRules) subqueryAliasRules() []*memo.Rewrite {
	unnamed := wsVars("")
	unnamed.alias = wsNoAlias()
	named := wsVars("")

	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-subquery-alias-to-cube-scan",
			memo.P(plan.OpSubqueryAlias, V("subquery_alias"), pulledSelectP(unnamed, ctxVars())),
			pulledSelectP(named, ctxVars()),
			func(m *memo.Memo, s memo.Subst) bool {
				return copyFlag[string](m, s, V("subquery_alias"), plan.OpSubqueryAliasName, V("select_alias"), plan.OpWrappedSelectAlias)
			},
		),
	}
}

// sortRules open a pulled up select again so its order list can be pushed.
// The order is pushed with the flags of the select itself.
func (r *wrapperRules) sortRules() []*memo.Rewrite {
	unsorted := wsVars("")
	unsorted.order = emptyList(plan.SortExprList)
	unsorted.limit = wsLimitNone()
	unsorted.offset = wsOffsetNone()

	sorted := unsorted.wrappedIn(ctxVars())
	sorted.order = pushdownP(V("sort_expr"), openCtx().inProj(inProjection(false)))

	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-sort-to-cube-scan",
			memo.P(plan.OpSort, V("sort_expr"), pulledSelectP(unsorted, ctxVars())),
			cubeScanWrapperP(wrappedSelectP(sorted), finalized(false)),
			func(m *memo.Memo, s memo.Subst) bool {
				return copyBoolFlags(m, s,
					flagCopy{V("select_push_to_cube"), plan.OpWrappedSelectPushToCube, V("pushdown_push_to_cube"), plan.OpPushdownPushToCube},
					flagCopy{V("select_ungrouped_scan"), plan.OpWrappedSelectUngroupedScan, V("pushdown_ungrouped_scan"), plan.OpPushdownUngroupedScan},
				)
			},
		),
	}
}
