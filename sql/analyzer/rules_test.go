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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
	"github.com/semlayer/pushdown/sql/templates"
)

func TestPushDownLeafFlags(t *testing.T) {
	leaves := []struct {
		name string
		expr *memo.Expr
	}{
		{"literal", lit(1)},
		{"null literal", lit(nil)},
		{"empty projection tail", plan.NewList(plan.ProjectionExprList)},
		{"empty filter tail", plan.NewList(plan.FilterExprList)},
		{"empty udf argument tail", plan.NewList(plan.ScalarUDFArgList)},
	}
	flags := []pullupFlags{
		{push: false, ungrouped: false},
		{push: false, ungrouped: true},
		{push: true, ungrouped: false},
		{push: true, ungrouped: true},
	}

	rules := DefaultRules(newTestMeta())
	for _, leaf := range leaves {
		for _, f := range flags {
			t.Run(leaf.name, func(t *testing.T) {
				e := plan.NewPushdownReplacer(leaf.expr, testReplacerCtx(f.push, f.ungrouped, false))
				m, id := saturate(t, rules, e)
				pullups := pullupsOf(m, id)
				require.Len(t, pullups, 1)
				assert.Equal(t, f, flagsOf(t, m, pullups[0]))
			})
		}
	}
}

func TestPushDownColumn(t *testing.T) {
	tests := []struct {
		name     string
		column   *memo.Expr
		push     bool
		inProj   bool
		pulledUp bool
	}{
		{"any column without push", col("unknown"), false, false, true},
		{"dimension", col("customer_gender"), true, false, true},
		{"time dimension", col("order_date"), true, false, true},
		{"segment", col("is_male"), true, false, true},
		{"change user", col("__user"), true, false, true},
		{"virtual field", col("__cubeJoinField"), true, false, true},
		{"literal member", col("lit"), true, false, true},
		{"measure in projection", col("sumPrice"), true, true, true},
		{"measure outside of projection", col("sumPrice"), true, false, false},
		{"number measure", col("priceRatio"), true, true, false},
		{"unknown column", col("unknown"), true, false, false},
		{"unknown measure", col("countDistinct"), true, true, false},
		{"flattened subquery column", plan.NewColumn(subqueryAliasPrefix+"_0", "anything"), true, false, true},
	}

	rules := DefaultRules(newTestMeta())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := plan.NewPushdownReplacer(tt.column, testReplacerCtx(tt.push, true, tt.inProj))
			m, id := saturate(t, rules, e)
			pullups := pullupsOf(m, id)
			if !tt.pulledUp {
				require.Empty(t, pullups)
				return
			}
			require.Len(t, pullups, 1)
			assert.Equal(t, pullupFlags{push: tt.push, ungrouped: true}, flagsOf(t, m, pullups[0]))
		})
	}
}

func TestPushDownFunctionNeedsTemplate(t *testing.T) {
	lower := plan.NewScalarFunction("lower", col("customer_gender"))
	myfn := plan.NewScalarUDF("myfn", col("customer_gender"))
	tests := []struct {
		name     string
		meta     *testMeta
		expr     *memo.Expr
		pulledUp bool
	}{
		{"with template", newTestMeta(), lower, true},
		{"without template", newTestMeta().without(templates.Function("lower")), lower, false},
		{"without catalog", &testMeta{measures: newTestMeta().measures}, lower, false},
		{"udf with template", newTestMeta().with(templates.Function("myfn")), myfn, true},
		{"udf without template", newTestMeta(), myfn, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := plan.NewPushdownReplacer(tt.expr, testReplacerCtx(true, true, false))
			m, id := saturate(t, DefaultRules(tt.meta), e)
			if tt.pulledUp {
				require.Len(t, pullupsOf(m, id), 1)
			} else {
				require.Empty(t, pullupsOf(m, id))
			}
		})
	}
}

func TestPushDownInList(t *testing.T) {
	inList := func(items ...*memo.Expr) *memo.Expr {
		return plan.NewInList(col("customer_gender"), items, false)
	}
	tests := []struct {
		name     string
		meta     *testMeta
		expr     *memo.Expr
		pulledUp bool
	}{
		{"constants", newTestMeta(), inList(lit("female"), lit("male")), true},
		{"column item", newTestMeta(), inList(lit("female"), col("notes")), true},
		{"unknown column item", newTestMeta(), inList(lit("female"), col("unknown")), false},
		{"without template", newTestMeta().without(inListTemplate), inList(lit("female")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := plan.NewPushdownReplacer(tt.expr, testReplacerCtx(true, true, false))
			m, id := saturate(t, DefaultRules(tt.meta), e)
			if tt.pulledUp {
				require.Len(t, pullupsOf(m, id), 1)
			} else {
				require.Empty(t, pullupsOf(m, id))
			}
		})
	}
}

func TestPushDownGroupingSet(t *testing.T) {
	require := require.New(t)
	rollup := plan.NewRollup(col("customer_gender"), col("notes"))

	e := plan.NewPushdownReplacer(rollup, testReplacerCtx(false, false, false))
	m, id := saturate(t, DefaultRules(newTestMeta()), e)
	require.Len(pullupsOf(m, id), 1)

	e = plan.NewPushdownReplacer(plan.NewCube(col("customer_gender")), testReplacerCtx(false, false, false))
	m, id = saturate(t, DefaultRules(newTestMeta().without(cubeTemplate)), e)
	require.Empty(pullupsOf(m, id))
}

func TestPushDownKeepsFlags(t *testing.T) {
	sub := plan.NewProjection(exprs(col("customer_gender")), kibanaScan(false), "")
	tests := []struct {
		name string
		expr *memo.Expr
	}{
		{"constant in list", plan.NewInList(col("customer_gender"), exprs(lit("female"), lit("male")), false)},
		{"in subquery", plan.NewInSubquery(col("customer_gender"), sub, false)},
		{"udf without arguments", plan.NewScalarUDF("myfn")},
	}
	flags := []pullupFlags{
		{push: false, ungrouped: false},
		{push: false, ungrouped: true},
		{push: true, ungrouped: false},
		{push: true, ungrouped: true},
	}

	rules := DefaultRules(newTestMeta().with(templates.Function("myfn")))
	for _, tt := range tests {
		for _, f := range flags {
			t.Run(tt.name, func(t *testing.T) {
				e := plan.NewPushdownReplacer(tt.expr, testReplacerCtx(f.push, f.ungrouped, false))
				m, id := saturate(t, rules, e)
				pullups := pullupsOf(m, id)
				require.Len(t, pullups, 1)
				assert.Equal(t, f, flagsOf(t, m, pullups[0]))
			})
		}
	}
}

func TestCopyFlag(t *testing.T) {
	require := require.New(t)
	m := memo.NewMemo(logicalPlanAnalysis{})
	src := m.AddExpr(memo.NewLeaf(plan.OpPushdownPushToCube, true))

	s := memo.Subst{"from": src}
	require.True(copyFlag[bool](m, s, "from", plan.OpPushdownPushToCube, "to", plan.OpPullupPushToCube))
	to, ok := s.Get("to")
	require.True(ok)
	v, ok := memo.LeafValue[bool](m, to, plan.OpPullupPushToCube)
	require.True(ok)
	require.True(v)

	// an already bound target must agree
	other := m.AddExpr(memo.NewLeaf(plan.OpPullupPushToCube, false))
	s = memo.Subst{"from": src, "to": other}
	require.False(copyFlag[bool](m, s, "from", plan.OpPushdownPushToCube, "to", plan.OpPullupPushToCube))

	// wrong payload type
	s = memo.Subst{"from": src}
	require.False(copyFlag[string](m, s, "from", plan.OpPushdownPushToCube, "to", plan.OpPullupPushToCube))

	// unbound source
	require.False(copyFlag[bool](m, memo.Subst{}, "from", plan.OpPushdownPushToCube, "to", plan.OpPullupPushToCube))
}

func TestDefaultRulesAreNamedUniquely(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range DefaultRules(newTestMeta()) {
		require.NotEmpty(t, r.Name)
		require.False(t, seen[r.Name], "duplicated rule %s", r.Name)
		seen[r.Name] = true
	}
}
