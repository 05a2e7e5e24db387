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
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
	"github.com/semlayer/pushdown/sql/templates"
)

var (
	// ErrMaxAnalysisIters is returned when a batch reaches its iteration
	// limit before saturating.
	ErrMaxAnalysisIters = errors.NewKind("exceeded max analysis iterations (%d)")
	// ErrMaxMemoNodes is returned when the memo grows past the node limit.
	ErrMaxMemoNodes = errors.NewKind("exceeded max memo nodes (%d)")
	// ErrAnalysisTimeout is returned when the analysis runs out of time.
	ErrAnalysisTimeout = errors.NewKind("analysis timed out after %s")
	// ErrInAnalysis is returned for rule failures that are not budget related.
	ErrInAnalysis = errors.NewKind("error in analysis: %s")
	// ErrNilPlan is returned when there is nothing to analyze.
	ErrNilPlan = errors.NewKind("cannot analyze a nil plan")
)

// isBudgetError reports whether |err| only means the analysis stopped early.
func isBudgetError(err error) bool {
	return ErrMaxAnalysisIters.Is(err) || ErrMaxMemoNodes.Is(err) || ErrAnalysisTimeout.Is(err)
}

const (
	// subqueryAliasPrefix starts the relation name of flattened correlated
	// subqueries.
	subqueryAliasPrefix = "__subquery"

	binaryExprTemplate = templates.BinaryExpr
	inListTemplate     = templates.InList
	rollupTemplate     = templates.Rollup
	cubeTemplate       = templates.Cube
	sortExprTemplate   = templates.SortExpr
)

// DefaultRules returns the rules pushing plans over cube scans into wrapped
// selects, in the order they are searched.
func DefaultRules(meta sql.MetaContext) []*memo.Rewrite {
	r := &wrapperRules{meta: meta}
	var rules []*memo.Rewrite
	for _, family := range []func() []*memo.Rewrite{
		r.cubeScanRules,
		r.aggregateRules,
		r.projectionRules,
		r.limitRules,
		r.sortRules,
		r.subqueryAliasRules,
		r.pullUpRules,
		r.flattenRules,
		r.columnRules,
		r.literalRules,
		r.aliasRules,
		r.binaryExprRules,
		r.functionRules,
		r.inListRules,
		r.inSubqueryRules,
		r.groupingSetRules,
		r.sortExprRules,
		r.listRules,
	} {
		rules = append(rules, family()...)
	}
	return rules
}

// wrapperRules builds the rules. Its guards consult meta, which is never
// modified.
type wrapperRules struct {
	meta sql.MetaContext
}

// hasTemplate reports whether the template catalog of the cubes bound to
// |aliasToCube| declares |name|.
func (r *wrapperRules) hasTemplate(m *memo.Memo, s memo.Subst, aliasToCube memo.Var, name string) bool {
	id, ok := s.Get(aliasToCube)
	if !ok || r.meta == nil {
		return false
	}
	for _, a2c := range memo.LeafValues[[]sql.AliasToCube](m, id, plan.OpPullupAliasToCube) {
		catalog, ok := r.meta.SQLGeneratorByAliasToCube(a2c)
		if ok && catalog.ContainsKey(name) {
			return true
		}
	}
	return false
}

func (r *wrapperRules) templateExists(aliasToCube memo.Var, name string) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		return r.hasTemplate(m, s, aliasToCube, name)
	}
}

// functionTemplateExists checks the template of the function named by the
// |nameOp| leaf bound to |fun|.
func (r *wrapperRules) functionTemplateExists(aliasToCube, fun memo.Var, nameOp memo.Op) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		id, ok := s.Get(fun)
		if !ok {
			return false
		}
		name, ok := memo.LeafValue[string](m, id, nameOp)
		if !ok {
			return false
		}
		return r.hasTemplate(m, s, aliasToCube, templates.Function(name))
	}
}

// aliasToCubeOf returns the alias to cube mapping bound to |v|.
func aliasToCubeOf(m *memo.Memo, s memo.Subst, v memo.Var) ([]sql.AliasToCube, bool) {
	id, ok := s.Get(v)
	if !ok {
		return nil, false
	}
	return memo.LeafValue[[]sql.AliasToCube](m, id, plan.OpPullupAliasToCube)
}

// columnOf returns the column bound to |v|.
func columnOf(m *memo.Memo, s memo.Subst, v memo.Var) (sql.Column, bool) {
	id, ok := s.Get(v)
	if !ok {
		return sql.Column{}, false
	}
	return memo.LeafValue[sql.Column](m, id, plan.OpColumnName)
}

// findMember looks a column name up in the members bound to |members|.
func findMember(m *memo.Memo, s memo.Subst, members memo.Var, alias string) (MemberEntry, bool) {
	id, ok := s.Get(members)
	if !ok {
		return MemberEntry{}, false
	}
	return planData(m, id).FindMemberByAlias(alias)
}

// hasMembers reports whether the member list bound to |v| resolves to at
// least one cube member.
func hasMembers(v memo.Var) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		id, ok := s.Get(v)
		if !ok {
			return false
		}
		members, ok := planData(m, id).MemberNameToExpr()
		return ok && len(members) > 0
	}
}

// listItemGroups returns the item groups of the |kind| list held by the group
// of |id|.
func listItemGroups(m *memo.Memo, id memo.GroupId, kind plan.ListKind) ([]memo.GroupId, bool) {
	var items []memo.GroupId
	seen := map[memo.GroupId]bool{}
	for {
		id = m.Find(id)
		if seen[id] {
			return nil, false
		}
		seen[id] = true
		g := m.Group(id)
		if g.Has(kind.Empty) {
			return items, true
		}
		cons := g.NodesOf(kind.Cons)
		if len(cons) == 0 {
			return nil, false
		}
		items = append(items, cons[0].Children[0])
		id = cons[0].Children[1]
	}
}
