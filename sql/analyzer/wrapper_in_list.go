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

func (r *wrapperRules) inListRules() []*memo.Rewrite {
	inList := func(expr, list memo.Pattern) *memo.PatternNode {
		return memo.P(plan.OpInList, expr, list, V("negated"))
	}
	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-in-list",
			pushdownP(inList(V("expr"), V("list")), ctxVars()),
			inList(pushdownP(V("expr"), ctxVars()), pushdownP(V("list"), ctxVars())),
			nil,
		),
		rewrite(
			"wrapper-push-down-in-list-only-consts",
			pushdownP(inList(V("expr"), V("list")), ctxVars()),
			inList(pushdownP(V("expr"), ctxVars()), pullupP(V("list"), pullupCtx())),
			all(constantInList(V("list")), copyReplacerFlags()),
		),
		rewrite(
			"wrapper-pull-up-in-list",
			inList(pullupP(V("expr"), ctxVars()), pullupP(V("list"), ctxVars())),
			pullupP(inList(V("expr"), V("list")), ctxVars()),
			r.templateExists(V("alias_to_cube"), inListTemplate),
		),
	}
}

// constantInList reports whether the list bound to |v| holds only literals.
func constantInList(v memo.Var) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		id, ok := s.Get(v)
		if !ok {
			return false
		}
		_, ok = planData(m, id).ConstantInList()
		return ok
	}
}

// inSubqueryRules never push into the subquery, it is already planned on its
// own.
func (r *wrapperRules) inSubqueryRules() []*memo.Rewrite {
	inSubquery := func(expr, subquery memo.Pattern) *memo.PatternNode {
		return memo.P(plan.OpInSubquery, expr, subquery, V("negated"))
	}
	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-in-subquery",
			pushdownP(inSubquery(V("expr"), V("subquery")), ctxVars()),
			inSubquery(pushdownP(V("expr"), ctxVars()), pullupP(V("subquery"), pullupCtx())),
			copyReplacerFlags(),
		),
		rewrite(
			"wrapper-pull-up-in-subquery",
			inSubquery(pullupP(V("expr"), ctxVars()), pullupP(V("subquery"), ctxVars())),
			pullupP(inSubquery(V("expr"), V("subquery")), ctxVars()),
			nil,
		),
	}
}
