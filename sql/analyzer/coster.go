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

// PlanCost ranks the terms of a group. Fields are compared in order: a term
// with fewer open replacers always wins, then fewer wrappers left open, fewer
// nodes evaluated by the host, fewer scans not wrapped, fewer selects, fewer
// selects not pushed to the cube and finally fewer nodes.
type PlanCost struct {
	Replacers       int
	OpenWrappers    int
	HostNodes       int
	UnwrappedScans  int
	WrappedSelects  int
	UnpushedSelects int
	Nodes           int
}

var _ memo.Cost = PlanCost{}

func (c PlanCost) fields() [7]int {
	return [7]int{c.Replacers, c.OpenWrappers, c.HostNodes, c.UnwrappedScans, c.WrappedSelects, c.UnpushedSelects, c.Nodes}
}

// Less compares costs lexicographically.
func (c PlanCost) Less(other memo.Cost) bool {
	o, ok := other.(PlanCost)
	if !ok {
		return false
	}
	a, b := c.fields(), o.fields()
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (c PlanCost) add(o PlanCost) PlanCost {
	return PlanCost{
		Replacers:       c.Replacers + o.Replacers,
		OpenWrappers:    c.OpenWrappers + o.OpenWrappers,
		HostNodes:       c.HostNodes + o.HostNodes,
		UnwrappedScans:  c.UnwrappedScans + o.UnwrappedScans,
		WrappedSelects:  c.WrappedSelects + o.WrappedSelects,
		UnpushedSelects: c.UnpushedSelects + o.UnpushedSelects,
		Nodes:           c.Nodes + o.Nodes,
	}
}

// coster charges every node for what it leaves to the host. Flags are
// charged on their leaves, which is where their value lives.
type coster struct{}

var _ memo.Coster = coster{}

func (coster) EstimateCost(n *memo.ExprNode, children []memo.Cost) memo.Cost {
	var c PlanCost
	for _, child := range children {
		if cc, ok := child.(PlanCost); ok {
			c = c.add(cc)
		}
	}
	c.Nodes++

	switch {
	case plan.IsReplacer(n.Op):
		c.Replacers++
	case plan.IsHostNode(n.Op):
		c.HostNodes++
	case n.Op == plan.OpWrappedSelect:
		c.WrappedSelects++
	case n.Op == plan.OpCubeScanWrapperFinalized:
		if fin, _ := n.Value.(bool); !fin {
			c.OpenWrappers++
		}
	case n.Op == plan.OpCubeScanWrapped:
		if wrapped, _ := n.Value.(bool); !wrapped {
			c.UnwrappedScans++
		}
	case n.Op == plan.OpWrappedSelectPushToCube:
		if push, _ := n.Value.(bool); !push {
			c.UnpushedSelects++
		}
	}
	return c
}
