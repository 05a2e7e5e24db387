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

	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
)

func TestPlanCostLess(t *testing.T) {
	tests := []struct {
		a, b PlanCost
		less bool
	}{
		{PlanCost{}, PlanCost{}, false},
		{PlanCost{Nodes: 1}, PlanCost{Nodes: 2}, true},
		{PlanCost{Replacers: 1}, PlanCost{Nodes: 100}, false},
		{PlanCost{HostNodes: 1}, PlanCost{WrappedSelects: 5, Nodes: 50}, false},
		{PlanCost{WrappedSelects: 1, UnpushedSelects: 1}, PlanCost{WrappedSelects: 2}, true},
		{PlanCost{WrappedSelects: 1, UnpushedSelects: 1}, PlanCost{WrappedSelects: 1}, false},
		{PlanCost{OpenWrappers: 1}, PlanCost{HostNodes: 3}, false},
		{PlanCost{UnwrappedScans: 1}, PlanCost{UnwrappedScans: 1, Nodes: 1}, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.less, tt.a.Less(tt.b), "%+v < %+v", tt.a, tt.b)
	}
}

func TestCosterChargesFlagLeaves(t *testing.T) {
	c := coster{}
	tests := []struct {
		node *memo.ExprNode
		want PlanCost
	}{
		{&memo.ExprNode{Op: plan.OpPullupReplacer}, PlanCost{Replacers: 1, Nodes: 1}},
		{&memo.ExprNode{Op: plan.OpAggregate}, PlanCost{HostNodes: 1, Nodes: 1}},
		{&memo.ExprNode{Op: plan.OpWrappedSelect}, PlanCost{WrappedSelects: 1, Nodes: 1}},
		{&memo.ExprNode{Op: plan.OpCubeScanWrapperFinalized, Value: false}, PlanCost{OpenWrappers: 1, Nodes: 1}},
		{&memo.ExprNode{Op: plan.OpCubeScanWrapperFinalized, Value: true}, PlanCost{Nodes: 1}},
		{&memo.ExprNode{Op: plan.OpCubeScanWrapped, Value: false}, PlanCost{UnwrappedScans: 1, Nodes: 1}},
		{&memo.ExprNode{Op: plan.OpWrappedSelectPushToCube, Value: false}, PlanCost{UnpushedSelects: 1, Nodes: 1}},
		{&memo.ExprNode{Op: plan.OpWrappedSelectPushToCube, Value: true}, PlanCost{Nodes: 1}},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, c.EstimateCost(tt.node, nil), tt.node.String())
	}

	sum := c.EstimateCost(&memo.ExprNode{Op: plan.OpCubeScanWrapper}, []memo.Cost{
		PlanCost{WrappedSelects: 1, Nodes: 3},
		PlanCost{OpenWrappers: 1, Nodes: 1},
	})
	require.Equal(t, PlanCost{WrappedSelects: 1, OpenWrappers: 1, Nodes: 5}, sum)
}
