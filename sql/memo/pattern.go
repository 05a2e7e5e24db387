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

// Pattern is either a Var, which matches any group, or a *PatternNode, which
// matches the nodes of a group with the same operator and arity.
type Pattern interface {
	fmt.Stringer
	isPattern()
}

// Var is a pattern variable. Variables with the same name must match the same
// group.
type Var string

func (Var) isPattern() {}

func (v Var) String() string { return "?" + string(v) }

// PatternNode matches nodes with the given operator whose children match the
// child patterns. When MatchValue is set the payload must be equal as well.
type PatternNode struct {
	Op         Op
	Value      interface{}
	MatchValue bool
	Children   []Pattern
}

func (*PatternNode) isPattern() {}

func (p *PatternNode) String() string {
	b := strings.Builder{}
	b.WriteString("(")
	b.WriteString(p.Op.String())
	if p.MatchValue {
		b.WriteString(fmt.Sprintf(":%v", p.Value))
	}
	for _, c := range p.Children {
		b.WriteString(" ")
		b.WriteString(c.String())
	}
	b.WriteString(")")
	return b.String()
}

// P returns an interior pattern node.
func P(op Op, children ...Pattern) *PatternNode {
	return &PatternNode{Op: op, Children: children}
}

// L returns a payload pattern that matches only |value|.
func L(op Op, value interface{}) *PatternNode {
	return &PatternNode{Op: op, Value: value, MatchValue: true}
}

// Subst binds pattern variables to groups.
type Subst map[Var]GroupId

// Get returns the group bound to |v|.
func (s Subst) Get(v Var) (GroupId, bool) {
	id, ok := s[v]
	return id, ok
}

// Bind binds |v| to |id|, replacing any previous binding.
func (s Subst) Bind(v Var, id GroupId) {
	s[v] = id
}

func (s Subst) clone() Subst {
	ns := make(Subst, len(s))
	for k, val := range s {
		ns[k] = val
	}
	return ns
}

func (s Subst) extend(v Var, id GroupId) Subst {
	ns := make(Subst, len(s)+1)
	for k, val := range s {
		ns[k] = val
	}
	ns[v] = id
	return ns
}

// Search returns every substitution under which |p| matches a node of the
// group of |id|.
func (m *Memo) Search(p Pattern, id GroupId) []Subst {
	return m.match(p, m.Find(id), Subst{})
}

func (m *Memo) match(p Pattern, id GroupId, s Subst) []Subst {
	switch p := p.(type) {
	case Var:
		if bound, ok := s[p]; ok {
			if m.Find(bound) == id {
				return []Subst{s}
			}
			return nil
		}
		return []Subst{s.extend(p, id)}
	case *PatternNode:
		var ret []Subst
		for _, n := range m.groups[id].Nodes {
			if n.Op != p.Op || len(n.Children) != len(p.Children) {
				continue
			}
			if p.MatchValue && !valuesEqual(n.Value, p.Value) {
				continue
			}
			substs := []Subst{s}
			for i, cp := range p.Children {
				var next []Subst
				for _, cs := range substs {
					next = append(next, m.match(cp, m.Find(n.Children[i]), cs)...)
				}
				substs = next
				if len(substs) == 0 {
					break
				}
			}
			ret = append(ret, substs...)
		}
		return ret
	default:
		panic(fmt.Sprintf("unknown pattern type %T", p))
	}
}

// Instantiate adds the nodes of |p| under the substitution and returns the
// group of its root.
func (m *Memo) Instantiate(p Pattern, s Subst) (GroupId, error) {
	switch p := p.(type) {
	case Var:
		id, ok := s[p]
		if !ok {
			return 0, ErrUnboundVar.New(p)
		}
		return m.Find(id), nil
	case *PatternNode:
		children := make([]GroupId, len(p.Children))
		for i, c := range p.Children {
			id, err := m.Instantiate(c, s)
			if err != nil {
				return 0, err
			}
			children[i] = id
		}
		return m.Add(&ExprNode{Op: p.Op, Value: p.Value, Children: children}), nil
	default:
		panic(fmt.Sprintf("unknown pattern type %T", p))
	}
}

// Condition guards a rewrite. It runs against the memo before the applier is
// instantiated and may add nodes and bind fresh variables in |s|. Returning
// false means the rewrite does not apply to this match.
type Condition func(m *Memo, s Subst) bool

// Rewrite states that whatever matches Searcher is equivalent to Applier.
type Rewrite struct {
	Name      string
	Searcher  Pattern
	Applier   Pattern
	Condition Condition
}

// SearchMatch is a group matched by a rewrite and the substitutions found.
type SearchMatch struct {
	Group  GroupId
	Substs []Subst
}

// Search matches the rewrite against every group of the memo.
func (r *Rewrite) Search(m *Memo) []SearchMatch {
	var matches []SearchMatch
	root, isNode := r.Searcher.(*PatternNode)
	for _, g := range m.Groups() {
		if isNode && !g.Has(root.Op) {
			continue
		}
		if substs := m.match(r.Searcher, g.Id, Subst{}); len(substs) > 0 {
			matches = append(matches, SearchMatch{Group: g.Id, Substs: substs})
		}
	}
	return matches
}

// Apply runs the condition for one substitution and, when it holds,
// instantiates the applier. It returns the group that must be unioned with
// the matched group and whether the rewrite applied.
func (r *Rewrite) Apply(m *Memo, s Subst) (GroupId, bool, error) {
	// substitutions found by one search may share their maps
	s = s.clone()
	if r.Condition != nil && !r.Condition(m, s) {
		return 0, false, nil
	}
	id, err := m.Instantiate(r.Applier, s)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (r *Rewrite) String() string {
	return fmt.Sprintf("%s: %s => %s", r.Name, r.Searcher, r.Applier)
}
