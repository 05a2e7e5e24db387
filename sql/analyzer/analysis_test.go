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

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
)

func TestLogicalPlanAnalysis(t *testing.T) {
	m := memo.NewMemo(logicalPlanAnalysis{})

	id := m.AddExpr(lit("male"))
	v, ok := planData(m, id).Constant()
	require.True(t, ok)
	assert.Equal(t, "male", v)

	id = m.AddExpr(plan.NewList(plan.InListExprList, lit(1), lit(2)))
	vals, ok := planData(m, id).ConstantInList()
	require.True(t, ok)
	assert.Equal(t, []interface{}{1, 2}, vals)

	id = m.AddExpr(plan.NewList(plan.InListExprList, lit(1), col("notes")))
	_, ok = planData(m, id).ConstantInList()
	assert.False(t, ok)

	id = m.AddExpr(kibanaScan(false))
	members, ok := planData(m, id).MemberNameToExpr()
	require.True(t, ok)
	assert.Len(t, members, len(kibanaMembers()))

	entry, ok := planData(m, id).FindMemberByAlias("order_date")
	require.True(t, ok)
	assert.Equal(t, MemberEntry{
		Name:   kibanaCube + ".order_date",
		Kind:   sql.MemberTimeDimension,
		Alias:  "order_date",
		Column: sql.Column{Relation: kibanaCube, Name: "order_date"},
	}, entry)

	_, ok = planData(m, id).FindMemberByAlias("missing")
	assert.False(t, ok)
}

func TestLogicalPlanAnalysisMerge(t *testing.T) {
	a := logicalPlanAnalysis{}
	constant := &LogicalPlanData{constant: 1, hasConstant: true}
	members := &LogicalPlanData{members: []MemberEntry{{Name: "c.m"}}, hasMembers: true}

	merged, changed := a.Merge(constant, members)
	require.True(t, changed)
	d := merged.(*LogicalPlanData)
	_, ok := d.Constant()
	assert.True(t, ok)
	_, ok = d.MemberNameToExpr()
	assert.True(t, ok)

	// facts already known are kept
	_, changed = a.Merge(d, &LogicalPlanData{constant: 2, hasConstant: true})
	assert.False(t, changed)
	v, _ := d.Constant()
	assert.Equal(t, 1, v)

	_, changed = a.Merge(d, nil)
	assert.False(t, changed)
}
