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

	"github.com/stretchr/testify/require"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
	"github.com/semlayer/pushdown/sql/templates"
)

const (
	kibanaCube = "KibanaSampleDataEcommerce"
	kibana     = kibanaCube
)

var kibanaAliasToCube = []sql.AliasToCube{{Alias: kibana, Cube: kibanaCube}}

// testCatalog declares the templates in it. It never renders.
type testCatalog map[string]bool

func (c testCatalog) ContainsKey(name string) bool { return c[name] }

func (c testCatalog) Render(string, interface{}) (string, error) { return "", nil }

func allTemplates() testCatalog {
	return testCatalog{
		templates.Function("sum"):   true,
		templates.Function("avg"):   true,
		templates.Function("max"):   true,
		templates.Function("count"): true,
		templates.Function("lower"): true,
		binaryExprTemplate:          true,
		inListTemplate:              true,
		rollupTemplate:              true,
		cubeTemplate:                true,
		sortExprTemplate:            true,
	}
}

type testMeta struct {
	measures  map[string]sql.MeasureDescriptor
	templates testCatalog
}

var _ sql.MetaContext = (*testMeta)(nil)

func newTestMeta() *testMeta {
	return &testMeta{
		measures: map[string]sql.MeasureDescriptor{
			kibanaCube + ".sumPrice":      {Name: kibanaCube + ".sumPrice", AggType: "sum"},
			kibanaCube + ".avgPrice":      {Name: kibanaCube + ".avgPrice", AggType: "avg"},
			kibanaCube + ".priceRatio":    {Name: kibanaCube + ".priceRatio", AggType: sql.MeasureAggTypeNumber},
			kibanaCube + ".countDistinct": {Name: kibanaCube + ".countDistinct", AggType: "countDistinct"},
		},
		templates: allTemplates(),
	}
}

func (m *testMeta) FindMeasureWithName(name string) (sql.MeasureDescriptor, bool) {
	d, ok := m.measures[name]
	return d, ok
}

func (m *testMeta) SQLGeneratorByAliasToCube([]sql.AliasToCube) (sql.TemplateCatalog, bool) {
	if m.templates == nil {
		return nil, false
	}
	return m.templates, true
}

func (m *testMeta) without(names ...string) *testMeta {
	c := testCatalog{}
	for k, v := range m.templates {
		c[k] = v
	}
	for _, n := range names {
		delete(c, n)
	}
	return &testMeta{measures: m.measures, templates: c}
}

func (m *testMeta) with(names ...string) *testMeta {
	c := testCatalog{}
	for k, v := range m.templates {
		c[k] = v
	}
	for _, n := range names {
		c[n] = true
	}
	return &testMeta{measures: m.measures, templates: c}
}

func kibanaMembers() []*memo.Expr {
	return []*memo.Expr{
		plan.NewMember(sql.MemberDimension, kibanaCube+".customer_gender", "customer_gender"),
		plan.NewMember(sql.MemberDimension, kibanaCube+".notes", "notes"),
		plan.NewMember(sql.MemberDimension, kibanaCube+".taxful_total_price", "taxful_total_price"),
		plan.NewTimeDimension(kibanaCube+".order_date", "", "order_date"),
		plan.NewMember(sql.MemberSegment, kibanaCube+".is_male", "is_male"),
		plan.NewMember(sql.MemberMeasure, kibanaCube+".sumPrice", "sumPrice"),
		plan.NewMember(sql.MemberMeasure, kibanaCube+".avgPrice", "avgPrice"),
		plan.NewMember(sql.MemberMeasure, kibanaCube+".priceRatio", "priceRatio"),
		plan.NewMember(sql.MemberChangeUser, kibanaCube+".__user", "__user"),
		plan.NewMember(sql.MemberVirtualField, kibanaCube+".__cubeJoinField", "__cubeJoinField"),
		plan.NewMember(sql.MemberLiteral, kibanaCube+".lit", "lit"),
	}
}

func kibanaScan(ungrouped bool) *memo.Expr {
	return plan.NewCubeScan(kibanaAliasToCube, kibanaMembers(), nil, nil, plan.None(), plan.None(), ungrouped)
}

func col(name string) *memo.Expr {
	return plan.NewColumn(kibana, name)
}

func lit(v interface{}) *memo.Expr {
	return plan.NewLiteral(v)
}

func sum(e *memo.Expr) *memo.Expr {
	return plan.NewAggregateFunction("SUM", false, e)
}

func exprs(e ...*memo.Expr) []*memo.Expr {
	return e
}

func analyze(t *testing.T, meta sql.MetaContext, n *memo.Expr) *Analyzed {
	t.Helper()
	res, err := NewDefault(meta).Analyze(sql.NewEmptyContext(), n)
	require.NoError(t, err)
	require.NotNil(t, res.Plan)
	return res
}

// finalizedSelect asserts |e| is a finalized wrapper around a select and
// decodes it.
func finalizedSelect(t *testing.T, e *memo.Expr) *plan.WrappedSelect {
	t.Helper()
	require.True(t, plan.IsFinalizedWrapper(e), "expected a finalized wrapper, got:\n%s", e)
	ws, err := plan.DecodeWrappedSelect(e.Child(0))
	require.NoError(t, err)
	return ws
}

// testReplacerCtx builds the context children of a replacer for direct rule
// tests.
func testReplacerCtx(push, ungrouped, inProjection bool) plan.ReplacerContext {
	return plan.ReplacerContext{
		AliasToCube:   kibanaAliasToCube,
		PushToCube:    push,
		UngroupedScan: ungrouped,
		InProjection:  inProjection,
		Members:       plan.NewList(plan.CubeScanMemberList, kibanaMembers()...),
	}
}

// saturate runs |rules| over |e| and returns the memo and the group of |e|.
func saturate(t *testing.T, rules []*memo.Rewrite, e *memo.Expr) (*memo.Memo, memo.GroupId) {
	t.Helper()
	a := &Analyzer{}
	m := memo.NewMemo(logicalPlanAnalysis{})
	id := m.AddExpr(e)
	b := &Batch{Desc: "test", Iterations: 100, Rules: rules}
	_, err := b.Eval(sql.NewEmptyContext(), a, m)
	require.NoError(t, err)
	return m, m.Find(id)
}

// pullupsOf returns the pullup replacers held by the group of |id|.
func pullupsOf(m *memo.Memo, id memo.GroupId) []*memo.ExprNode {
	return m.Group(id).NodesOf(plan.OpPullupReplacer)
}

type pullupFlags struct {
	push      bool
	ungrouped bool
}

func flagsOf(t *testing.T, m *memo.Memo, n *memo.ExprNode) pullupFlags {
	t.Helper()
	push, ok := memo.LeafValue[bool](m, n.Children[plan.ReplacerPushToCubeIdx], plan.OpPullupPushToCube)
	require.True(t, ok)
	ungrouped, ok := memo.LeafValue[bool](m, n.Children[plan.ReplacerUngroupedScanIdx], plan.OpPullupUngroupedScan)
	require.True(t, ok)
	return pullupFlags{push: push, ungrouped: ungrouped}
}
