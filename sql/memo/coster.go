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

package memo

// Cost is the estimated cost of a term. Costs are compared, never combined by
// the memo: the Coster folds child costs into the cost of their parent.
type Cost interface {
	Less(Cost) bool
}

// Coster estimates the cost of a node given the best costs of its children.
type Coster interface {
	EstimateCost(n *ExprNode, children []Cost) Cost
}

type best struct {
	node *ExprNode
	cost Cost
}

// Extract returns the cheapest term represented by the group of |root|.
func (m *Memo) Extract(root GroupId, c Coster) (*Expr, Cost, error) {
	bests := m.bestNodes(c)
	root = m.Find(root)
	b, ok := bests[root]
	if !ok {
		return nil, nil, ErrNoExtraction.New(root)
	}
	e, err := m.buildExpr(root, bests, make(map[GroupId]bool))
	if err != nil {
		return nil, nil, err
	}
	return e, b.cost, nil
}

// bestNodes computes, for every group with a finite term, its cheapest node.
// Costs of a group only decrease, so the loop reaches a fixpoint.
func (m *Memo) bestNodes(c Coster) map[GroupId]best {
	bests := make(map[GroupId]best)
	groups := m.Groups()
	for i, changed := 0, true; changed && i <= m.NodeCount(); i++ {
		changed = false
		for _, g := range groups {
			for _, n := range g.Nodes {
				cost, ok := m.nodeCost(n, c, bests)
				if !ok {
					continue
				}
				cur, has := bests[g.Id]
				if !has || cost.Less(cur.cost) {
					bests[g.Id] = best{node: n, cost: cost}
					changed = true
				}
			}
		}
	}
	return bests
}

func (m *Memo) nodeCost(n *ExprNode, c Coster, bests map[GroupId]best) (Cost, bool) {
	children := make([]Cost, len(n.Children))
	for i, child := range n.Children {
		b, ok := bests[m.Find(child)]
		if !ok {
			return nil, false
		}
		children[i] = b.cost
	}
	return c.EstimateCost(n, children), true
}

func (m *Memo) buildExpr(id GroupId, bests map[GroupId]best, visiting map[GroupId]bool) (*Expr, error) {
	id = m.Find(id)
	if visiting[id] {
		return nil, ErrCyclicExtraction.New(id)
	}
	b, ok := bests[id]
	if !ok {
		return nil, ErrNoExtraction.New(id)
	}
	visiting[id] = true
	defer delete(visiting, id)

	e := &Expr{Op: b.node.Op, Value: b.node.Value, Children: make([]*Expr, len(b.node.Children))}
	for i, child := range b.node.Children {
		ce, err := m.buildExpr(child, bests, visiting)
		if err != nil {
			return nil, err
		}
		e.Children[i] = ce
	}
	return e, nil
}
