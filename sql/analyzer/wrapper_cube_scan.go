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

func cubeScanP(aliasToCube, wrapped, ungrouped memo.Pattern) *memo.PatternNode {
	return memo.P(plan.OpCubeScan,
		aliasToCube,
		V("members"),
		V("filters"),
		V("order"),
		V("limit"),
		V("offset"),
		wrapped,
		ungrouped,
	)
}

func (r *wrapperRules) cubeScanRules() []*memo.Rewrite {
	scanned := func(ungrouped memo.Pattern) memo.Pattern {
		return cubeScanP(V("scan_alias_to_cube"), memo.L(plan.OpCubeScanWrapped, true), ungrouped)
	}
	wrap := func(ungrouped memo.Pattern, c replacerCtx) memo.Pattern {
		return cubeScanWrapperP(pullupP(scanned(ungrouped), c), finalized(false))
	}

	return []*memo.Rewrite{
		rewrite(
			"wrapper-wrap-cube-scan",
			cubeScanP(V("scan_alias_to_cube"), memo.L(plan.OpCubeScanWrapped, false), V("ungrouped")),
			wrap(V("ungrouped"), ctxVars().inProj(inProjection(false)).members(V("members"))),
			all(
				hasMembers(V("members")),
				copyScanAliasToCube,
				func(m *memo.Memo, s memo.Subst) bool {
					return copyBoolFlags(m, s,
						flagCopy{V("ungrouped"), plan.OpCubeScanUngrouped, V("push_to_cube"), plan.OpPullupPushToCube},
						flagCopy{V("ungrouped"), plan.OpCubeScanUngrouped, V("ungrouped_scan"), plan.OpPullupUngroupedScan},
					)
				},
			),
		),
		rewrite(
			"wrapper-wrap-ungrouped-cube-scan-as-grouped",
			cubeScanP(V("scan_alias_to_cube"), memo.L(plan.OpCubeScanWrapped, false), memo.L(plan.OpCubeScanUngrouped, true)),
			wrap(
				memo.L(plan.OpCubeScanUngrouped, true),
				ctxVars().push(pullupPush(false)).ungrouped(pullupUngrouped(true)).inProj(inProjection(false)).members(V("members")),
			),
			all(hasMembers(V("members")), copyScanAliasToCube),
		),
		rewrite(
			"wrapper-finalize-pull-up-replacer",
			cubeScanWrapperP(pullupP(V("member"), ctxVars()), finalized(false)),
			cubeScanWrapperP(V("member"), finalized(true)),
			nil,
		),
	}
}

func copyScanAliasToCube(m *memo.Memo, s memo.Subst) bool {
	return copyFlag[[]sql.AliasToCube](m, s, V("scan_alias_to_cube"), plan.OpCubeScanAliasToCube, V("alias_to_cube"), plan.OpPullupAliasToCube)
}
