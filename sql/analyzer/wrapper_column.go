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
	"strings"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
)

func (r *wrapperRules) columnRules() []*memo.Rewrite {
	column := memo.P(plan.OpColumn, V("column"))
	return []*memo.Rewrite{
		rewrite(
			"wrapper-push-down-column",
			pushdownP(column, ctxVars()),
			pullupP(column, pullupCtx()),
			all(flagIs(V("push_to_cube"), plan.OpPushdownPushToCube, false), copyReplacerFlags()),
		),
		rewrite(
			"wrapper-push-down-measure-column",
			pushdownP(column, ctxVars().inProj(inProjection(true))),
			pullupP(column, pullupCtx().inProj(inProjection(true))),
			all(
				flagIs(V("push_to_cube"), plan.OpPushdownPushToCube, true),
				r.isSimpleMeasure(V("column"), V("cube_members")),
				copyReplacerFlags(),
			),
		),
		rewrite(
			"wrapper-push-down-dimension-column",
			pushdownP(column, ctxVars()),
			pullupP(V("dimension"), pullupCtx()),
			all(
				flagIs(V("push_to_cube"), plan.OpPushdownPushToCube, true),
				r.resolveDimension(V("column"), V("alias_to_cube"), V("cube_members"), V("dimension")),
				copyReplacerFlags(),
			),
		),
	}
}

// isSimpleMeasure reports whether the column is a measure that can be
// referenced directly. Measures of the number type are computed from other
// measures and cannot.
func (r *wrapperRules) isSimpleMeasure(column, members memo.Var) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		col, ok := columnOf(m, s, column)
		if !ok {
			return false
		}
		member, ok := findMember(m, s, members, col.Name)
		if !ok || member.Kind != sql.MemberMeasure || r.meta == nil {
			return false
		}
		measure, ok := r.meta.FindMeasureWithName(member.Name)
		return ok && measure.AggType != sql.MeasureAggTypeNumber
	}
}

// resolveDimension binds |dimension| to the column when it resolves to a
// dimension like member. Columns of a flattened subquery are taken as
// dimensions without looking them up.
func (r *wrapperRules) resolveDimension(column, aliasToCube, members, dimension memo.Var) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		col, ok := columnOf(m, s, column)
		if !ok {
			return false
		}
		if a2c, ok := aliasToCubeOf(m, s, aliasToCube); ok && len(a2c) > 0 {
			if col.Relation != a2c[0].Alias && strings.HasPrefix(col.Relation, subqueryAliasPrefix) {
				s.Bind(dimension, m.AddExpr(plan.NewColumnExpr(col)))
				return true
			}
		}
		member, ok := findMember(m, s, members, col.Name)
		if !ok || !member.Kind.IsDimensionLike() {
			return false
		}
		s.Bind(dimension, m.AddExpr(plan.NewColumnExpr(col)))
		return true
	}
}
