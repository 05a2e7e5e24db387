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
	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
)

func (r *wrapperRules) literalRules() []*memo.Rewrite {
	literal := memo.P(plan.OpLiteral, V("value"))
	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-literal",
			pushdownP(literal, ctxVars()),
			pullupP(literal, pullupCtx()),
			copyReplacerFlags(),
		),
	}
}

func (r *wrapperRules) aliasRules() []*memo.Rewrite {
	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-alias",
			pushdownP(memo.P(plan.OpAlias, V("expr"), V("alias")), ctxVars()),
			memo.P(plan.OpAlias, pushdownP(V("expr"), ctxVars()), V("alias")),
			nil,
		),
		rewrite(
			"wrapper-pull-up-alias",
			memo.P(plan.OpAlias, pullupP(V("expr"), ctxVars()), V("alias")),
			pullupP(memo.P(plan.OpAlias, V("expr"), V("alias")), ctxVars()),
			nil,
		),
	}
}

func (r *wrapperRules) binaryExprRules() []*memo.Rewrite {
	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-binary-expr",
			pushdownP(memo.P(plan.OpBinaryExpr, V("left"), V("op"), V("right")), ctxVars()),
			memo.P(plan.OpBinaryExpr, pushdownP(V("left"), ctxVars()), V("op"), pushdownP(V("right"), ctxVars())),
			nil,
		),
		rewrite(
			"wrapper-pull-up-binary-expr",
			memo.P(plan.OpBinaryExpr, pullupP(V("left"), ctxVars()), V("op"), pullupP(V("right"), ctxVars())),
			pullupP(memo.P(plan.OpBinaryExpr, V("left"), V("op"), V("right")), ctxVars()),
			r.templateExists(V("alias_to_cube"), binaryExprTemplate),
		),
	}
}

func (r *wrapperRules) groupingSetRules() []*memo.Rewrite {
	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-grouping-set",
			pushdownP(memo.P(plan.OpGroupingSet, V("type"), V("grouping_members")), ctxVars()),
			memo.P(plan.OpGroupingSet, V("type"), pushdownP(V("grouping_members"), ctxVars())),
			nil,
		),
		rewrite(
			"wrapper-pull-up-grouping-set",
			memo.P(plan.OpGroupingSet, V("type"), pullupP(V("grouping_members"), ctxVars())),
			pullupP(memo.P(plan.OpGroupingSet, V("type"), V("grouping_members")), ctxVars()),
			r.groupingSetTemplateExists(V("alias_to_cube"), V("type")),
		),
	}
}

func (r *wrapperRules) groupingSetTemplateExists(aliasToCube, kind memo.Var) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		id, ok := s.Get(kind)
		if !ok {
			return false
		}
		k, ok := memo.LeafValue[sql.GroupingSetKind](m, id, plan.OpGroupingSetKind)
		if !ok {
			return false
		}
		switch k {
		case sql.GroupingSetRollup:
			return r.hasTemplate(m, s, aliasToCube, rollupTemplate)
		case sql.GroupingSetCube:
			return r.hasTemplate(m, s, aliasToCube, cubeTemplate)
		default:
			return false
		}
	}
}

func (r *wrapperRules) sortExprRules() []*memo.Rewrite {
	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-sort-expr",
			pushdownP(memo.P(plan.OpSortExpr, V("expr"), V("asc"), V("nulls_first")), ctxVars()),
			memo.P(plan.OpSortExpr, pushdownP(V("expr"), ctxVars()), V("asc"), V("nulls_first")),
			nil,
		),
		rewrite(
			"wrapper-pull-up-sort-expr",
			memo.P(plan.OpSortExpr, pullupP(V("expr"), ctxVars()), V("asc"), V("nulls_first")),
			pullupP(memo.P(plan.OpSortExpr, V("expr"), V("asc"), V("nulls_first")), ctxVars()),
			r.templateExists(V("alias_to_cube"), sortExprTemplate),
		),
	}
}
