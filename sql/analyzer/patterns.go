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

// V is a pattern variable.
type V = memo.Var

// replacerCtx holds the patterns of a replacer's context slots.
type replacerCtx struct {
	aliasToCube   memo.Pattern
	pushToCube    memo.Pattern
	ungroupedScan memo.Pattern
	inProjection  memo.Pattern
	cubeMembers   memo.Pattern
}

// ctxVars returns a context of variables named after the slots.
func ctxVars() replacerCtx {
	return replacerCtx{
		aliasToCube:   V("alias_to_cube"),
		pushToCube:    V("push_to_cube"),
		ungroupedScan: V("ungrouped_scan"),
		inProjection:  V("in_projection"),
		cubeMembers:   V("cube_members"),
	}
}

func (c replacerCtx) push(p memo.Pattern) replacerCtx {
	c.pushToCube = p
	return c
}

func (c replacerCtx) ungrouped(p memo.Pattern) replacerCtx {
	c.ungroupedScan = p
	return c
}

func (c replacerCtx) inProj(p memo.Pattern) replacerCtx {
	c.inProjection = p
	return c
}

func pushdownP(expr memo.Pattern, c replacerCtx) *memo.PatternNode {
	return memo.P(plan.OpPushdownReplacer, expr, c.aliasToCube, c.pushToCube, c.ungroupedScan, c.inProjection, c.cubeMembers)
}

func pullupP(expr memo.Pattern, c replacerCtx) *memo.PatternNode {
	return memo.P(plan.OpPullupReplacer, expr, c.aliasToCube, c.pushToCube, c.ungroupedScan, c.inProjection, c.cubeMembers)
}

func pushdownPush(b bool) memo.Pattern { return memo.L(plan.OpPushdownPushToCube, b) }
func pullupPush(b bool) memo.Pattern { return memo.L(plan.OpPullupPushToCube, b) }
func pullupUngrouped(b bool) memo.Pattern { return memo.L(plan.OpPullupUngroupedScan, b) }
func inProjection(b bool) memo.Pattern { return memo.L(plan.OpPullupInProjection, b) }
func finalized(b bool) memo.Pattern { return memo.L(plan.OpCubeScanWrapperFinalized, b) }
func wsPushToCube(b bool) memo.Pattern { return memo.L(plan.OpWrappedSelectPushToCube, b) }
func wsUngroupedScan(b bool) memo.Pattern { return memo.L(plan.OpWrappedSelectUngroupedScan, b) }
func wsDistinct(b bool) memo.Pattern { return memo.L(plan.OpWrappedSelectDistinct, b) }
func wsSelectType(t plan.SelectType) memo.Pattern {
	return memo.L(plan.OpWrappedSelectSelectType, t)
}

func wsLimitNone() memo.Pattern { return memo.L(plan.OpWrappedSelectLimit, plan.None()) }
func wsOffsetNone() memo.Pattern { return memo.L(plan.OpWrappedSelectOffset, plan.None()) }
func wsNoAlias() memo.Pattern { return memo.L(plan.OpWrappedSelectAlias, "") }

func emptyList(k plan.ListKind) memo.Pattern { return memo.P(k.Empty) }

func cubeScanWrapperP(input, fin memo.Pattern) *memo.PatternNode {
	return memo.P(plan.OpCubeScanWrapper, input, fin)
}

// wsFields holds the patterns of the 17 fields of a WrappedSelect.
type wsFields struct {
	selectType    memo.Pattern
	projection    memo.Pattern
	subqueries    memo.Pattern
	group         memo.Pattern
	aggr          memo.Pattern
	window        memo.Pattern
	from          memo.Pattern
	joins         memo.Pattern
	filter        memo.Pattern
	having        memo.Pattern
	limit         memo.Pattern
	offset        memo.Pattern
	order         memo.Pattern
	alias         memo.Pattern
	distinct      memo.Pattern
	pushToCube    memo.Pattern
	ungroupedScan memo.Pattern
}

// wsVars returns fields bound to variables with the given prefix. Joins and
// having are the empty tails, which is all the rule set ever builds.
func wsVars(prefix string) wsFields {
	return wsFields{
		selectType:    V(prefix + "select_type"),
		projection:    V(prefix + "projection_expr"),
		subqueries:    V(prefix + "subqueries"),
		group:         V(prefix + "group_expr"),
		aggr:          V(prefix + "aggr_expr"),
		window:        V(prefix + "window_expr"),
		from:          V(prefix + "cube_scan_input"),
		joins:         emptyList(plan.JoinList),
		filter:        V(prefix + "filter_expr"),
		having:        emptyList(plan.HavingExprList),
		limit:         V(prefix + "limit"),
		offset:        V(prefix + "offset"),
		order:         V(prefix + "order_expr"),
		alias:         V(prefix + "select_alias"),
		distinct:      V(prefix + "select_distinct"),
		pushToCube:    V(prefix + "select_push_to_cube"),
		ungroupedScan: V(prefix + "select_ungrouped_scan"),
	}
}

type namedPattern struct {
	name string
	p    *memo.Pattern
}

// lists returns the fields holding expression lists, in field order.
func (f *wsFields) lists() []namedPattern {
	return []namedPattern{
		{"projection", &f.projection},
		{"subqueries", &f.subqueries},
		{"group", &f.group},
		{"aggr", &f.aggr},
		{"window", &f.window},
		{"filter", &f.filter},
		{"order", &f.order},
	}
}

// pulledUp wraps every expression list and the source in a pullup replacer
// sharing |c|. Each list gets its own in_projection variable, the source
// keeps the one of |c|.
func (f wsFields) pulledUp(prefix string, c replacerCtx) wsFields {
	for _, l := range f.lists() {
		*l.p = pullupP(*l.p, c.inProj(V(prefix+l.name+"_in_projection")))
	}
	f.from = pullupP(f.from, c)
	return f
}

// wrappedIn wraps every expression list and the source in a pullup replacer
// with exactly |c|.
func (f wsFields) wrappedIn(c replacerCtx) wsFields {
	for _, l := range f.lists() {
		*l.p = pullupP(*l.p, c)
	}
	f.from = pullupP(f.from, c)
	return f
}

func wrappedSelectP(f wsFields) *memo.PatternNode {
	return memo.P(plan.OpWrappedSelect,
		f.selectType,
		f.projection,
		f.subqueries,
		f.group,
		f.aggr,
		f.window,
		f.from,
		f.joins,
		f.filter,
		f.having,
		f.limit,
		f.offset,
		f.order,
		f.alias,
		f.distinct,
		f.pushToCube,
		f.ungroupedScan,
	)
}

// consP is the pattern of a cons-list node.
func consP(k plan.ListKind, head, tail memo.Pattern) *memo.PatternNode {
	return memo.P(k.Cons, head, tail)
}

// pullupCtx is the context a pushdown matched with ctxVars continues as.
// Only the flags differ, their leaves have their own operators.
func pullupCtx() replacerCtx {
	return ctxVars().push(V("pullup_push_to_cube")).ungrouped(V("pullup_ungrouped_scan"))
}

// openCtx is the pushdown context a pulled up input matched with ctxVars is
// opened again with.
func openCtx() replacerCtx {
	return ctxVars().push(V("pushdown_push_to_cube")).ungrouped(V("pushdown_ungrouped_scan"))
}

func rewrite(name string, searcher, applier memo.Pattern, cond memo.Condition) *memo.Rewrite {
	return &memo.Rewrite{Name: name, Searcher: searcher, Applier: applier, Condition: cond}
}

func (c replacerCtx) members(p memo.Pattern) replacerCtx {
	c.cubeMembers = p
	return c
}
