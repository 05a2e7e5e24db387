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

import (
	"fmt"
	"strings"
)

// ExprGroup is a set of equivalent expressions together with the analysis
// data shared by all of them.
type ExprGroup struct {
	m     *Memo
	Id    GroupId
	Nodes []*ExprNode
	Data  interface{}
}

func newExprGroup(m *Memo, id GroupId, n *ExprNode) *ExprGroup {
	return &ExprGroup{
		m:     m,
		Id:    id,
		Nodes: []*ExprNode{n},
	}
}

// NodesOf returns the nodes of the group with the given operator.
func (e *ExprGroup) NodesOf(op Op) []*ExprNode {
	var ret []*ExprNode
	for _, n := range e.Nodes {
		if n.Op == op {
			ret = append(ret, n)
		}
	}
	return ret
}

// Has reports whether the group holds a node with the given operator.
func (e *ExprGroup) Has(op Op) bool {
	for _, n := range e.Nodes {
		if n.Op == op {
			return true
		}
	}
	return false
}

func (e *ExprGroup) String() string {
	nodes := make([]string, len(e.Nodes))
	for i, n := range e.Nodes {
		nodes[i] = n.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(nodes, " "))
}

// LeafValues returns the payloads of type T held by the |op| nodes of the
// group of |id|.
func LeafValues[T any](m *Memo, id GroupId, op Op) []T {
	var ret []T
	for _, n := range m.Group(id).Nodes {
		if n.Op != op {
			continue
		}
		if v, ok := n.Value.(T); ok {
			ret = append(ret, v)
		}
	}
	return ret
}

// LeafValue returns the first payload of type T held by an |op| node of the
// group of |id|.
func LeafValue[T any](m *Memo, id GroupId, op Op) (T, bool) {
	vals := LeafValues[T](m, id, op)
	if len(vals) == 0 {
		var zero T
		return zero, false
	}
	return vals[0], true
}
