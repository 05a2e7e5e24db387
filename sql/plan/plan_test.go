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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
)

func TestListItems(t *testing.T) {
	a, b := NewColumn("t", "a"), NewColumn("t", "b")

	testCases := []struct {
		name     string
		list     *memo.Expr
		expected []*memo.Expr
		ok       bool
	}{
		{"empty", NewList(ProjectionExprList), nil, true},
		{"two items", NewList(ProjectionExprList, a, b), []*memo.Expr{a, b}, true},
		{"not a list", a, nil, false},
		{
			"mismatched tail",
			memo.NewExpr(ProjectionExprList.Cons, a, memo.NewExpr(FilterExprList.Empty)),
			nil,
			false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			items, ok := ListItems(tt.list)
			require.Equal(tt.ok, ok)
			require.Equal(len(tt.expected), len(items))
			for i := range tt.expected {
				require.True(tt.expected[i].Equal(items[i]))
			}
		})
	}
}

func TestListKindOf(t *testing.T) {
	require := require.New(t)
	for _, k := range ListKinds() {
		got, ok := ListKindOf(k.Cons)
		require.True(ok)
		require.Equal(k, got)
		got, ok = ListKindOf(k.Empty)
		require.True(ok)
		require.Equal(k, got)
	}
	_, ok := ListKindOf(OpWrappedSelect)
	require.False(ok)
	require.Equal("InListExprListEmptyTail", InListExprList.Empty.String())
}

func TestDecodeWrappedSelect(t *testing.T) {
	require := require.New(t)
	scan := NewCubeScan(
		[]sql.AliasToCube{{Alias: "t", Cube: "Orders"}},
		[]*memo.Expr{NewMember(sql.MemberDimension, "Orders.status", "status")},
		nil, nil, None(), None(), true,
	)
	ws := &WrappedSelect{
		Type:       SelectAggregate,
		Group:      []*memo.Expr{NewColumn("t", "status")},
		Aggr:       []*memo.Expr{NewAggregateFunction("COUNT", false, NewLiteral(int64(1)))},
		From:       scan,
		Limit:      Some(0),
		Offset:     None(),
		Alias:      "q",
		PushToCube: true,
	}

	decoded, err := DecodeWrappedSelect(ws.Expr())
	require.NoError(err)
	require.Equal(SelectAggregate, decoded.Type)
	require.Len(decoded.Group, 1)
	require.Len(decoded.Aggr, 1)
	require.Empty(decoded.Projection)
	require.Equal(Some(0), decoded.Limit)
	require.Equal("q", decoded.Alias)
	require.True(decoded.PushToCube)
	require.False(decoded.UngroupedScan)

	s, err := DecodeCubeScan(decoded.From)
	require.NoError(err)
	require.True(s.Ungrouped)
	require.False(s.Wrapped)
	require.Len(s.Members, 1)

	m, ok := DecodeMember(s.Members[0])
	require.True(ok)
	require.Equal(Member{Kind: sql.MemberDimension, Name: "Orders.status", Alias: "status"}, m)

	_, err = DecodeWrappedSelect(scan)
	require.Error(err)
	require.True(sql.ErrInvalidPlan.Is(err))
}

func TestDecodeWrappedSelectRejectsReplacers(t *testing.T) {
	ws := (&WrappedSelect{Type: SelectProjection, From: NewColumn("", "x")}).Expr()
	ws.Children[WSProjectionIdx] = NewPullupReplacer(NewList(ProjectionExprList), ReplacerContext{
		Members: NewList(CubeScanMemberList),
	})
	_, err := DecodeWrappedSelect(ws)
	require.Error(t, err)
}

func TestMemberKindOf(t *testing.T) {
	require := require.New(t)
	require.Equal(sql.MemberMeasure, MemberKindOf(OpMeasure))
	require.Equal(sql.MemberUnknown, MemberKindOf(OpColumn))

	td, ok := DecodeMember(NewTimeDimension("Orders.createdAt", "day", "createdAt_day"))
	require.True(ok)
	require.Equal(sql.MemberTimeDimension, td.Kind)
	require.Equal("day", td.Granularity)
	require.True(IsMember(OpLiteralMember))
	require.False(IsMember(OpPullupReplacer))
}
