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

// copyFlag reads the |fromOp| payload of the group bound to |from| and binds
// |to| to an |toOp| leaf with the same payload. If |to| is already bound, its
// group must hold that leaf. Returns false when the source holds no payload
// of type T.
func copyFlag[T any](m *memo.Memo, s memo.Subst, from memo.Var, fromOp memo.Op, to memo.Var, toOp memo.Op) bool {
	src, ok := s.Get(from)
	if !ok {
		return false
	}
	for _, v := range memo.LeafValues[T](m, src, fromOp) {
		id := m.Add(&memo.ExprNode{Op: toOp, Value: v})
		if bound, ok := s.Get(to); ok {
			if m.Find(bound) == m.Find(id) {
				return true
			}
			continue
		}
		s.Bind(to, id)
		return true
	}
	return false
}

// flagCopy is one copyFlag step of a condition.
type flagCopy struct {
	from   memo.Var
	fromOp memo.Op
	to     memo.Var
	toOp   memo.Op
}

// copyBoolFlags runs every copy in order and stops at the first failure.
func copyBoolFlags(m *memo.Memo, s memo.Subst, copies ...flagCopy) bool {
	for _, c := range copies {
		if !copyFlag[bool](m, s, c.from, c.fromOp, c.to, c.toOp) {
			return false
		}
	}
	return true
}

// pushdownToPullup copies the push-to-cube and ungrouped-scan flags of a
// pushdown replacer onto the flags of the pullup replacer replacing it.
func pushdownToPullup(pushFrom, pushTo, ungroupedFrom, ungroupedTo memo.Var) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		return copyBoolFlags(m, s,
			flagCopy{pushFrom, plan.OpPushdownPushToCube, pushTo, plan.OpPullupPushToCube},
			flagCopy{ungroupedFrom, plan.OpPushdownUngroupedScan, ungroupedTo, plan.OpPullupUngroupedScan},
		)
	}
}

// pullupToPushdown is the reverse of pushdownToPullup, used when a pulled up
// input is opened again for its parent's expressions.
func pullupToPushdown(pushFrom, pushTo, ungroupedFrom, ungroupedTo memo.Var) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		return copyBoolFlags(m, s,
			flagCopy{pushFrom, plan.OpPullupPushToCube, pushTo, plan.OpPushdownPushToCube},
			flagCopy{ungroupedFrom, plan.OpPullupUngroupedScan, ungroupedTo, plan.OpPushdownUngroupedScan},
		)
	}
}

// all combines conditions, short-circuiting on the first failure.
func all(conds ...memo.Condition) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		for _, c := range conds {
			if !c(m, s) {
				return false
			}
		}
		return true
	}
}

// groupHas reports whether the group bound to |v| holds a node of |op|.
func groupHas(m *memo.Memo, s memo.Subst, v memo.Var, op memo.Op) bool {
	id, ok := s.Get(v)
	if !ok {
		return false
	}
	return m.Group(id).Has(op)
}

// flagIs reports whether the group bound to |v| holds the |op| leaf |want|.
func flagIs(v memo.Var, op memo.Op, want bool) memo.Condition {
	return func(m *memo.Memo, s memo.Subst) bool {
		id, ok := s.Get(v)
		if !ok {
			return false
		}
		for _, b := range memo.LeafValues[bool](m, id, op) {
			if b == want {
				return true
			}
		}
		return false
	}
}

// copyReplacerFlags continues the flags of the pushdown context of a rule
// onto its pullup context.
func copyReplacerFlags() memo.Condition {
	return pushdownToPullup(
		V("push_to_cube"), V("pullup_push_to_cube"),
		V("ungrouped_scan"), V("pullup_ungrouped_scan"),
	)
}
