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
	"sort"
	"strings"
)

// GroupId identifies an equivalence class of expressions.
type GroupId uint32

// Analysis computes the per-group data of the memo. Make derives the data of
// a single node from the data of its children, Merge joins the data of two
// equivalent groups. Merge must be monotone: the merged value only ever gains
// information, and the returned flag reports whether |a| changed.
type Analysis interface {
	Make(m *Memo, n *ExprNode) interface{}
	Merge(a, b interface{}) (interface{}, bool)
}

// Memo is an equality graph: a forest of expressions deduplicated by
// structure and partitioned into groups of equivalent expressions. Unions are
// cheap and leave the memo dirty; Rebuild restores congruence and the
// analysis data before the next search.
type Memo struct {
	analysis Analysis
	parents  []GroupId
	groups   map[GroupId]*ExprGroup
	cons     map[uint64][]consEntry
	dirty    bool
	unions   int
	created  int
}

type consEntry struct {
	node *ExprNode
	id   GroupId
}

// NewMemo returns an empty memo. The analysis may be nil.
func NewMemo(a Analysis) *Memo {
	return &Memo{
		analysis: a,
		groups:   make(map[GroupId]*ExprGroup),
		cons:     make(map[uint64][]consEntry),
	}
}

// Find returns the canonical id of the group |id| belongs to.
func (m *Memo) Find(id GroupId) GroupId {
	root := id
	for m.parents[root] != root {
		root = m.parents[root]
	}
	for m.parents[id] != root {
		next := m.parents[id]
		m.parents[id] = root
		id = next
	}
	return root
}

// Group returns the group of |id|.
func (m *Memo) Group(id GroupId) *ExprGroup {
	return m.groups[m.Find(id)]
}

// Data returns the analysis data of the group of |id|.
func (m *Memo) Data(id GroupId) interface{} {
	return m.Group(id).Data
}

// Add inserts the node, returning the id of the group that holds it. Adding
// a node that is already present returns the existing group.
func (m *Memo) Add(n *ExprNode) GroupId {
	c := m.canonical(n)
	h := hashNode(c)
	for _, e := range m.cons[h] {
		if m.nodesEqual(e.node, c) {
			return m.Find(e.id)
		}
	}

	id := GroupId(len(m.parents))
	m.parents = append(m.parents, id)
	grp := newExprGroup(m, id, c)
	m.groups[id] = grp
	m.cons[h] = append(m.cons[h], consEntry{node: c, id: id})
	m.created++
	if m.analysis != nil {
		grp.Data = m.analysis.Make(m, c)
	}
	return id
}

// AddExpr inserts every node of the expression tree and returns the group of
// its root.
func (m *Memo) AddExpr(e *Expr) GroupId {
	children := make([]GroupId, len(e.Children))
	for i, child := range e.Children {
		children[i] = m.AddExpr(child)
	}
	return m.Add(&ExprNode{Op: e.Op, Value: e.Value, Children: children})
}

// Union merges the groups of |a| and |b|. It returns the surviving id and
// whether the groups were distinct.
func (m *Memo) Union(a, b GroupId) (GroupId, bool) {
	a, b = m.Find(a), m.Find(b)
	if a == b {
		return a, false
	}
	ga, gb := m.groups[a], m.groups[b]
	if len(ga.Nodes) < len(gb.Nodes) {
		a, b = b, a
		ga, gb = gb, ga
	}

	m.parents[b] = a
	ga.Nodes = append(ga.Nodes, gb.Nodes...)
	if m.analysis != nil {
		ga.Data, _ = m.analysis.Merge(ga.Data, gb.Data)
	}
	delete(m.groups, b)
	m.dirty = true
	m.unions++
	return a, true
}

// Rebuild restores the congruence invariant after unions: two nodes with the
// same operator, payload and equivalent children live in the same group. It
// then recomputes the analysis data to a fixpoint. Returns the number of
// unions performed by congruence closure.
func (m *Memo) Rebuild() int {
	if !m.dirty {
		return 0
	}
	merged := 0
	for {
		n := m.repairCongruence()
		merged += n
		if n == 0 {
			break
		}
	}
	m.repairAnalysis()
	m.dirty = false
	return merged
}

func (m *Memo) repairCongruence() int {
	cons := make(map[uint64][]consEntry, len(m.cons))
	var pending [][2]GroupId
	for _, grp := range m.Groups() {
		nodes := grp.Nodes[:0]
		for _, n := range grp.Nodes {
			c := m.canonical(n)
			h := hashNode(c)
			dup := false
			for _, e := range cons[h] {
				if nodesEqualExact(e.node, c) {
					dup = true
					if e.id != grp.Id {
						pending = append(pending, [2]GroupId{e.id, grp.Id})
					}
					break
				}
			}
			if !dup {
				cons[h] = append(cons[h], consEntry{node: c, id: grp.Id})
				nodes = append(nodes, c)
			}
		}
		grp.Nodes = nodes
	}
	m.cons = cons

	n := 0
	for _, p := range pending {
		if _, ok := m.Union(p[0], p[1]); ok {
			n++
		}
	}
	return n
}

func (m *Memo) repairAnalysis() {
	if m.analysis == nil {
		return
	}
	for changed := true; changed; {
		changed = false
		for _, grp := range m.Groups() {
			for _, n := range grp.Nodes {
				var ok bool
				grp.Data, ok = m.analysis.Merge(grp.Data, m.analysis.Make(m, n))
				changed = changed || ok
			}
		}
	}
}

// Dirty reports whether unions happened since the last Rebuild.
func (m *Memo) Dirty() bool {
	return m.dirty
}

// Groups returns the canonical groups ordered by id.
func (m *Memo) Groups() []*ExprGroup {
	groups := make([]*ExprGroup, 0, len(m.groups))
	for _, g := range m.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Id < groups[j].Id })
	return groups
}

// GroupCount returns the number of canonical groups.
func (m *Memo) GroupCount() int {
	return len(m.groups)
}

// NodeCount returns the number of distinct nodes in the memo.
func (m *Memo) NodeCount() int {
	cnt := 0
	for _, g := range m.groups {
		cnt += len(g.Nodes)
	}
	return cnt
}

// Unions returns the number of effective unions performed so far.
func (m *Memo) Unions() int {
	return m.unions
}

// Created returns the number of distinct nodes added so far.
func (m *Memo) Created() int {
	return m.created
}

func (m *Memo) canonical(n *ExprNode) *ExprNode {
	children := make([]GroupId, len(n.Children))
	for i, c := range n.Children {
		children[i] = m.Find(c)
	}
	return &ExprNode{Op: n.Op, Value: n.Value, Children: children}
}

func (m *Memo) nodesEqual(a, b *ExprNode) bool {
	if a.Op != b.Op || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if m.Find(a.Children[i]) != m.Find(b.Children[i]) {
			return false
		}
	}
	return valuesEqual(a.Value, b.Value)
}

func (m *Memo) String() string {
	b := strings.Builder{}
	b.WriteString("memo:\n")
	groups := m.Groups()
	beg := "├──"
	for i, g := range groups {
		if i == len(groups)-1 {
			beg = "└──"
		}
		b.WriteString(fmt.Sprintf("%s G%d: %s\n", beg, g.Id, g))
	}
	return b.String()
}
