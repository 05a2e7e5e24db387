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

package pushdown_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/semlayer/pushdown"
	"github.com/semlayer/pushdown/memory"
	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/analyzer"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
	"github.com/semlayer/pushdown/sql/templates"
)

const kibana = memory.KibanaSampleDataEcommerce

func col(name string) *memo.Expr {
	return plan.NewColumn(kibana, name)
}

func kibanaScan(t *testing.T, meta *memory.Meta, ungrouped bool) *memo.Expr {
	t.Helper()
	scan, err := meta.CubeScan(kibana, kibana, ungrouped)
	require.NoError(t, err)
	return scan
}

func genderTotals(scan *memo.Expr) *memo.Expr {
	return plan.NewAggregate(scan,
		[]*memo.Expr{col("customer_gender")},
		[]*memo.Expr{plan.NewAggregateFunction("SUM", false, col("sumPrice"))},
	)
}

func TestCompilePushesAggregate(t *testing.T) {
	require := require.New(t)

	meta := memory.KibanaSampleData()
	e := pushdown.NewDefault(meta)
	ctx := sql.NewContext(context.Background(), sql.WithQuery("SELECT customer_gender, SUM(sumPrice) FROM KibanaSampleDataEcommerce GROUP BY 1"))

	res, err := e.Compile(ctx, genderTotals(kibanaScan(t, meta, true)))
	require.NoError(err)
	require.Equal(analyzer.StopSaturated, res.StopReason)
	require.True(plan.IsFinalizedWrapper(res.Plan))
	require.Zero(res.Cost.Replacers)

	require.Len(res.Queries, 1)
	q := res.Queries[0]
	require.True(q.PushToCube)
	require.Len(q.Request.Dimensions, 1)
	require.Len(q.Request.Measures, 1)
	require.Contains(q.SQL, `SUM("KibanaSampleDataEcommerce".taxful_total_price) "sum_kibanasample"`)
	require.Contains(q.SQL, ` GROUP BY 1 LIMIT 50000`)
	require.True(strings.HasPrefix(res.String(), "CubeScanWrapper(finalized: true)\n └─ WrappedSelect(Aggregate"))
}

func TestCompileKeepsUnsupportedFunctionOnHost(t *testing.T) {
	require := require.New(t)

	meta := memory.KibanaSampleData()
	meta.AddCatalog(memory.DefaultDataSource, templates.DefaultPostgres().Without(templates.Function("LOWER")))

	lower := plan.NewAlias(plan.NewScalarFunction("LOWER", col("customer_gender")), "gender")
	n := plan.NewProjection([]*memo.Expr{lower}, kibanaScan(t, meta, false), "")

	res, err := pushdown.NewDefault(meta).Compile(sql.NewEmptyContext(), n)
	require.NoError(err)
	require.Equal(plan.OpProjection, res.Plan.Op)
	require.Equal(1, res.Cost.HostNodes)

	require.Len(res.Queries, 1)
	q := res.Queries[0]
	require.False(q.PushToCube)
	require.Len(q.Request.Measures, 7)
	require.Contains(q.SQL, ` GROUP BY 1, 2, 3, 4, 5, 6 LIMIT 50000`)
}

func TestCompileRollupWithLiteral(t *testing.T) {
	require := require.New(t)

	meta := memory.KibanaSampleData()
	rollup := plan.NewRollup(plan.NewAlias(plan.NewLiteral("all"), "label"), col("customer_gender"), col("notes"))
	n := plan.NewAggregate(kibanaScan(t, meta, true),
		[]*memo.Expr{rollup},
		[]*memo.Expr{plan.NewAggregateFunction("SUM", false, col("sumPrice"))},
	)

	res, err := pushdown.NewDefault(meta).Compile(sql.NewEmptyContext(), n)
	require.NoError(err)
	require.Len(res.Queries, 1)
	q := res.Queries[0]
	require.True(q.PushToCube)
	require.Contains(q.SQL, "GROUP BY ROLLUP(1, 2, 3)")

	require.Len(q.Request.Dimensions, 3)
	for i, d := range q.Request.Dimensions {
		var member sql.MemberExpression
		require.NoError(json.Unmarshal([]byte(d), &member))
		require.NotNil(member.GroupingSet, d)
		require.Equal("Rollup", member.GroupingSet.GroupType)
		require.NotNil(member.GroupingSet.SubID, d)
		require.Equal(i, *member.GroupingSet.SubID)
	}
}

func TestCompileFlattensLowerFilter(t *testing.T) {
	require := require.New(t)

	meta := memory.KibanaSampleData()
	pred := plan.NewBinary(plan.NewScalarFunction("LOWER", col("customer_gender")), "=", plan.NewLiteral("male"))
	projection := plan.NewProjection(
		[]*memo.Expr{col("customer_gender"), col("sumPrice")},
		plan.NewFilter(pred, kibanaScan(t, meta, true)),
		"",
	)

	res, err := pushdown.NewDefault(meta).Compile(sql.NewEmptyContext(), genderTotals(projection))
	require.NoError(err)
	require.Len(res.Queries, 1)
	q := res.Queries[0]
	require.True(q.PushToCube)
	require.Len(q.Request.Measures, 1)
	require.Contains(q.Request.Measures[0], `SUM(${KibanaSampleDataEcommerce.sumPrice})`)
	require.Len(q.Request.Segments, 1)
	require.Contains(q.Request.Segments[0], `(LOWER(${KibanaSampleDataEcommerce.customer_gender}) = $0$)`)
	require.Equal([]interface{}{"male"}, q.Values)
}

func TestCompileLimitZeroOverSubquery(t *testing.T) {
	require := require.New(t)

	meta := memory.KibanaSampleData()
	n := plan.NewLimit(plan.None(), plan.Some(0),
		plan.NewProjection(
			[]*memo.Expr{plan.NewColumn("t", "customer_gender")},
			plan.NewSubqueryAlias("t", genderTotals(kibanaScan(t, meta, false))),
			"",
		),
	)

	res, err := pushdown.NewDefault(meta).Compile(sql.NewEmptyContext(), n)
	require.NoError(err)
	require.Len(res.Queries, 1)
	require.True(strings.HasSuffix(res.Queries[0].SQL, `) AS "t" LIMIT 0`), res.Queries[0].SQL)
}

func TestCompileStoppedAnalysis(t *testing.T) {
	require := require.New(t)

	meta := memory.KibanaSampleData()
	n := genderTotals(kibanaScan(t, meta, true))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := pushdown.NewDefault(meta).Compile(sql.NewContext(ctx), n)
	require.NoError(err)
	require.Equal(analyzer.StopTimeLimit, res.StopReason)
	require.True(n.Equal(res.Plan))
	require.Empty(res.Queries)
}

func TestCompileErrors(t *testing.T) {
	require := require.New(t)
	meta := memory.KibanaSampleData()

	_, err := pushdown.NewDefault(meta).Compile(sql.NewEmptyContext(), nil)
	require.Error(err)
	require.True(analyzer.ErrNilPlan.Is(err))

	orphan := memory.NewMeta(memory.NewCube(kibana, "kibana").AddDimension("customer_gender", "", "string"))
	scan, err := orphan.CubeScan(kibana, kibana, false)
	require.NoError(err)
	_, err = pushdown.NewDefault(orphan).Compile(sql.NewEmptyContext(), scan)
	require.Error(err)
	require.True(sql.ErrNoTemplateCatalog.Is(err))
}

func TestCompileConcurrently(t *testing.T) {
	meta := memory.KibanaSampleData()
	e := pushdown.NewDefault(meta)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scan, err := meta.CubeScan(kibana, kibana, true)
			if err != nil {
				errs[i] = err
				return
			}
			_, errs[i] = e.Compile(sql.NewEmptyContext(), genderTotals(scan))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestEngineMetrics(t *testing.T) {
	require := require.New(t)

	meta := memory.KibanaSampleData()
	e := pushdown.NewDefault(meta)
	reg := prometheus.NewRegistry()
	require.NoError(e.Metrics.Register(reg))

	_, err := e.Compile(sql.NewEmptyContext(), genderTotals(kibanaScan(t, meta, true)))
	require.NoError(err)

	families, err := reg.Gather()
	require.NoError(err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.Contains(names, "pushdown_analyzer_stop_reason_total")
	require.Contains(names, "pushdown_analyzer_rule_applications_total")
}

func TestNewAppliesConfig(t *testing.T) {
	require := require.New(t)

	cfg := pushdown.DefaultConfig()
	cfg.Debug = true
	cfg.DefaultLimit = 0
	cfg.MaxNodes = 42

	e := pushdown.New(memory.KibanaSampleData(), cfg)
	require.True(e.Analyzer.Debug)
	require.Equal(42, e.Analyzer.MaxNodes)
	require.Equal(0, e.Generator.DefaultLimit)
	require.Equal(cfg, e.Config)
}
