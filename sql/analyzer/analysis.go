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
	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
)

// MemberEntry is a cube member visible through a scan, together with the
// column the scan exposes it as.
type MemberEntry struct {
	Name   string
	Kind   sql.MemberKind
	Alias  string
	Column sql.Column
}

// LogicalPlanData is the analysis data of a group. Every fact is optional and,
// once known, never changes.
type LogicalPlanData struct {
	constant       interface{}
	hasConstant    bool
	constantInList []interface{}
	hasConstInList bool
	members        []MemberEntry
	hasMembers     bool
}

// Constant returns the literal value of the group.
func (d *LogicalPlanData) Constant() (interface{}, bool) {
	if d == nil {
		return nil, false
	}
	return d.constant, d.hasConstant
}

// ConstantInList returns the values of an IN list made only of literals.
func (d *LogicalPlanData) ConstantInList() ([]interface{}, bool) {
	if d == nil {
		return nil, false
	}
	return d.constantInList, d.hasConstInList
}

// MemberNameToExpr returns the members of a member list.
func (d *LogicalPlanData) MemberNameToExpr() ([]MemberEntry, bool) {
	if d == nil {
		return nil, false
	}
	return d.members, d.hasMembers
}

// FindMemberByAlias returns the member exposed under the column name |alias|.
func (d *LogicalPlanData) FindMemberByAlias(alias string) (MemberEntry, bool) {
	members, ok := d.MemberNameToExpr()
	if !ok {
		return MemberEntry{}, false
	}
	for _, m := range members {
		if m.Alias == alias {
			return m, true
		}
	}
	return MemberEntry{}, false
}

// planData returns the data of the group of |id|.
func planData(m *memo.Memo, id memo.GroupId) *LogicalPlanData {
	d, _ := m.Data(id).(*LogicalPlanData)
	return d
}

// logicalPlanAnalysis derives LogicalPlanData.
type logicalPlanAnalysis struct{}

var _ memo.Analysis = logicalPlanAnalysis{}

func (logicalPlanAnalysis) Make(m *memo.Memo, n *memo.ExprNode) interface{} {
	d := &LogicalPlanData{}
	switch {
	case n.Op == plan.OpLiteral:
		d.constant, d.hasConstant = memo.LeafValue[interface{}](m, n.Children[0], plan.OpLiteralValue)
	case n.Op == plan.InListExprList.Empty:
		d.constantInList, d.hasConstInList = []interface{}{}, true
	case n.Op == plan.InListExprList.Cons:
		head, hok := planData(m, n.Children[0]).Constant()
		tail, tok := planData(m, n.Children[1]).ConstantInList()
		if hok && tok {
			d.constantInList = append([]interface{}{head}, tail...)
			d.hasConstInList = true
		}
	case plan.IsMember(n.Op):
		if entry, ok := memberEntry(m, n); ok {
			d.members, d.hasMembers = []MemberEntry{entry}, true
		}
	case n.Op == plan.CubeScanMemberList.Empty:
		d.members, d.hasMembers = []MemberEntry{}, true
	case n.Op == plan.CubeScanMemberList.Cons:
		head, hok := planData(m, n.Children[0]).MemberNameToExpr()
		tail, tok := planData(m, n.Children[1]).MemberNameToExpr()
		if hok && tok {
			d.members = append(append([]MemberEntry{}, head...), tail...)
			d.hasMembers = true
		}
	case n.Op == plan.OpCubeScan:
		d.members, d.hasMembers = planData(m, n.Children[plan.CubeScanMembersIdx]).MemberNameToExpr()
	}
	return d
}

func (logicalPlanAnalysis) Merge(a, b interface{}) (interface{}, bool) {
	da, _ := a.(*LogicalPlanData)
	db, _ := b.(*LogicalPlanData)
	if db == nil {
		return da, false
	}
	if da == nil {
		return db, true
	}

	merged := *da
	changed := false
	if !merged.hasConstant && db.hasConstant {
		merged.constant, merged.hasConstant = db.constant, true
		changed = true
	}
	if !merged.hasConstInList && db.hasConstInList {
		merged.constantInList, merged.hasConstInList = db.constantInList, true
		changed = true
	}
	if !merged.hasMembers && db.hasMembers {
		merged.members, merged.hasMembers = db.members, true
		changed = true
	}
	if !changed {
		return da, false
	}
	return &merged, true
}

func memberEntry(m *memo.Memo, n *memo.ExprNode) (MemberEntry, bool) {
	entry := MemberEntry{Kind: plan.MemberKindOf(n.Op)}
	var hasName, hasAlias bool
	for _, c := range n.Children {
		if name, ok := memo.LeafValue[string](m, c, plan.OpMemberName); ok {
			entry.Name, hasName = name, true
		}
		if alias, ok := memo.LeafValue[string](m, c, plan.OpMemberAlias); ok {
			entry.Alias, hasAlias = alias, true
		}
	}
	if !hasName || !hasAlias {
		return MemberEntry{}, false
	}
	cube, _ := sql.SplitMemberName(entry.Name)
	entry.Column = sql.Column{Relation: cube, Name: entry.Alias}
	return entry, true
}
