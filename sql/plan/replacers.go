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

// Child positions shared by both replacer markers.
const (
	ReplacerExprIdx = iota
	ReplacerAliasToCubeIdx
	ReplacerPushToCubeIdx
	ReplacerUngroupedScanIdx
	ReplacerInProjectionIdx
	ReplacerMembersIdx
)

// ReplacerContext is the context carried by a replacer marker.
type ReplacerContext struct {
	AliasToCube   []sql.AliasToCube
	PushToCube    bool
	UngroupedScan bool
	InProjection  bool
	Members       *memo.Expr
}

// NewPushdownReplacer asks for |e| to be translated under |ctx|.
func NewPushdownReplacer(e *memo.Expr, ctx ReplacerContext) *memo.Expr {
	return memo.NewExpr(OpPushdownReplacer,
		e,
		memo.NewLeaf(OpPullupAliasToCube, ctx.AliasToCube),
		memo.NewLeaf(OpPushdownPushToCube, ctx.PushToCube),
		memo.NewLeaf(OpPushdownUngroupedScan, ctx.UngroupedScan),
		memo.NewLeaf(OpPullupInProjection, ctx.InProjection),
		ctx.Members,
	)
}

// NewPullupReplacer marks |e| as resolved under |ctx|.
func NewPullupReplacer(e *memo.Expr, ctx ReplacerContext) *memo.Expr {
	return memo.NewExpr(OpPullupReplacer,
		e,
		memo.NewLeaf(OpPullupAliasToCube, ctx.AliasToCube),
		memo.NewLeaf(OpPullupPushToCube, ctx.PushToCube),
		memo.NewLeaf(OpPullupUngroupedScan, ctx.UngroupedScan),
		memo.NewLeaf(OpPullupInProjection, ctx.InProjection),
		ctx.Members,
	)
}
