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

// listRules push replacers through the cells of every expression list. Lists
// of the cube scan are never pushed into, nor are joins and having, which
// are always empty.
func (r *wrapperRules) listRules() []*memo.Rewrite {
	var rules []*memo.Rewrite
	for _, k := range plan.ListKinds() {
		if !pushableList(k) {
			continue
		}
		rules = append(rules,
			rewrite(
				"wrapper-push-down-"+k.Name,
				pushdownP(consP(k, V("head"), V("tail")), ctxVars()),
				consP(k, pushdownP(V("head"), ctxVars()), pushdownP(V("tail"), ctxVars())),
				nil,
			),
			rewrite(
				"wrapper-pull-up-"+k.Name,
				consP(k, pullupP(V("head"), ctxVars()), pullupP(V("tail"), ctxVars())),
				pullupP(consP(k, V("head"), V("tail")), ctxVars()),
				nil,
			),
			rewrite(
				"wrapper-push-down-"+k.Name+"-empty-tail",
				pushdownP(emptyList(k), ctxVars()),
				pullupP(emptyList(k), pullupCtx()),
				copyReplacerFlags(),
			),
		)
	}
	return rules
}

func pushableList(k plan.ListKind) bool {
	switch k {
	case plan.CubeScanMemberList, plan.CubeScanFilterList, plan.CubeScanOrderList, plan.JoinList, plan.HavingExprList:
		return false
	default:
		return true
	}
}
