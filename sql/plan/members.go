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

package plan

import (
	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
)

var memberOps = map[sql.MemberKind]memo.Op{
	sql.MemberDimension:     OpDimension,
	sql.MemberTimeDimension: OpTimeDimension,
	sql.MemberMeasure:       OpMeasure,
	sql.MemberSegment:       OpSegment,
	sql.MemberChangeUser:    OpChangeUser,
	sql.MemberVirtualField:  OpVirtualField,
	sql.MemberLiteral:       OpLiteralMember,
}

// MemberKindOf returns the member kind of a member operator.
func MemberKindOf(op memo.Op) sql.MemberKind {
	for k, o := range memberOps {
		if o == op {
			return k
		}
	}
	return sql.MemberUnknown
}

// NewMember returns a member term. |name| is the fully qualified member name,
// |alias| the name of the column the scan exposes it as.
func NewMember(kind sql.MemberKind, name, alias string) *memo.Expr {
	op, ok := memberOps[kind]
	if !ok {
		op = OpDimension
	}
	if op == OpTimeDimension {
		return NewTimeDimension(name, "", alias)
	}
	return memo.NewExpr(op,
		memo.NewLeaf(OpMemberName, name),
		memo.NewLeaf(OpMemberAlias, alias),
	)
}

// NewTimeDimension returns a time dimension member with an optional
// granularity.
func NewTimeDimension(name, granularity, alias string) *memo.Expr {
	return memo.NewExpr(OpTimeDimension,
		memo.NewLeaf(OpMemberName, name),
		memo.NewLeaf(OpTimeDimensionGranularity, granularity),
		memo.NewLeaf(OpMemberAlias, alias),
	)
}

// Member is the decoded form of a member term.
type Member struct {
	Kind        sql.MemberKind
	Name        string
	Alias       string
	Granularity string
}

// DecodeMember decodes a member term.
func DecodeMember(e *memo.Expr) (Member, bool) {
	if e == nil || !IsMember(e.Op) {
		return Member{}, false
	}
	m := Member{Kind: MemberKindOf(e.Op)}
	for _, c := range e.Children {
		switch c.Op {
		case OpMemberName:
			m.Name, _ = c.Value.(string)
		case OpMemberAlias:
			m.Alias, _ = c.Value.(string)
		case OpTimeDimensionGranularity:
			m.Granularity, _ = c.Value.(string)
		}
	}
	return m, true
}
