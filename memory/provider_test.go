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

package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/plan"
)

func TestMetaCube(t *testing.T) {
	require := require.New(t)
	meta := KibanaSampleData()

	c, err := meta.Cube(KibanaSampleDataEcommerce)
	require.NoError(err)
	require.Equal("public.kibana_sample_data_ecommerce", c.Table)
	require.Equal(DefaultDataSource, c.DataSource)

	_, err = meta.Cube("KibanaSampleDataEcomerce")
	require.Error(err)
	require.True(sql.ErrCubeNotFound.Is(err))
	require.Contains(err.Error(), "maybe you mean KibanaSampleDataEcommerce?")

	_, err = meta.Cube("Orders")
	require.Error(err)
	require.NotContains(err.Error(), "maybe you mean")
}

func TestMetaResolveSuggestsMembers(t *testing.T) {
	require := require.New(t)
	meta := KibanaSampleData()

	m, err := meta.resolve(sql.MemberName(KibanaSampleDataEcommerce, "sumPrice"))
	require.NoError(err)
	require.Equal(sql.MemberMeasure, m.kind)

	_, err = meta.resolve(sql.MemberName(KibanaSampleDataEcommerce, "sumPrise"))
	require.True(sql.ErrMemberNotFound.Is(err))
	require.Contains(err.Error(), "maybe you mean sumPrice?")
}

func TestMetaAllCubes(t *testing.T) {
	require := require.New(t)
	meta := NewMeta(NewCube("b", "b"), NewCube("a", "a"))
	meta.AddCube(NewCube("c", "c"))

	var names []string
	for _, c := range meta.AllCubes() {
		names = append(names, c.Name)
	}
	require.Equal([]string{"a", "b", "c"}, names)
}

func TestFindMeasureWithName(t *testing.T) {
	meta := KibanaSampleData()

	testCases := []struct {
		name     string
		expected sql.MeasureDescriptor
		ok       bool
	}{
		{kibanaMember("sumPrice"), sql.MeasureDescriptor{Name: kibanaMember("sumPrice"), AggType: "sum"}, true},
		{kibanaMember("priceRatio"), sql.MeasureDescriptor{Name: kibanaMember("priceRatio"), AggType: sql.MeasureAggTypeNumber}, true},
		{kibanaMember("countDistinct"), sql.MeasureDescriptor{Name: kibanaMember("countDistinct"), AggType: "countDistinct"}, true},
		{kibanaMember("customer_gender"), sql.MeasureDescriptor{}, false},
		{kibanaMember("is_male"), sql.MeasureDescriptor{}, false},
		{"Unknown.sumPrice", sql.MeasureDescriptor{}, false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := meta.FindMeasureWithName(tt.name)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.expected, m)
		})
	}
}

func TestSQLGeneratorByAliasToCube(t *testing.T) {
	require := require.New(t)
	meta := KibanaSampleData()

	catalog, ok := meta.SQLGeneratorByAliasToCube([]sql.AliasToCube{{Alias: "k", Cube: KibanaSampleDataEcommerce}})
	require.True(ok)
	require.True(catalog.ContainsKey("functions/SUM"))

	_, ok = meta.SQLGeneratorByAliasToCube(nil)
	require.False(ok)

	_, ok = meta.SQLGeneratorByAliasToCube([]sql.AliasToCube{{Alias: "o", Cube: "Orders"}})
	require.False(ok)

	other := NewCube("Orders", "orders")
	other.DataSource = "warehouse"
	meta.AddCube(other)
	_, ok = meta.SQLGeneratorByAliasToCube([]sql.AliasToCube{{Alias: "o", Cube: "Orders"}})
	require.False(ok)
}

func TestMetaCubeScan(t *testing.T) {
	require := require.New(t)
	meta := KibanaSampleData()

	e, err := meta.CubeScan("k", KibanaSampleDataEcommerce, true)
	require.NoError(err)

	scan, err := plan.DecodeCubeScan(e)
	require.NoError(err)
	require.Equal([]sql.AliasToCube{{Alias: "k", Cube: KibanaSampleDataEcommerce}}, scan.AliasToCube)
	require.True(scan.Ungrouped)
	require.False(scan.Wrapped)
	require.False(scan.Limit.Valid)
	require.Empty(scan.Filters)
	require.Len(scan.Members, 15)

	kinds := map[sql.MemberKind]int{}
	for _, me := range scan.Members {
		m, ok := plan.DecodeMember(me)
		require.True(ok)
		kinds[m.Kind]++
	}
	require.Equal(map[sql.MemberKind]int{
		sql.MemberTimeDimension: 2,
		sql.MemberDimension:     4,
		sql.MemberSegment:       2,
		sql.MemberMeasure:       7,
	}, kinds)

	first, _ := plan.DecodeMember(scan.Members[0])
	require.Equal(plan.Member{Kind: sql.MemberTimeDimension, Name: kibanaMember("order_date"), Alias: "order_date"}, first)

	_, err = meta.CubeScan("x", "Unknown", false)
	require.True(sql.ErrCubeNotFound.Is(err))
}
