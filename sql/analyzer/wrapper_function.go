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

// functionRules push into the arguments of every kind of function call and
// pull the call up only when the cubes can render the function.
func (r *wrapperRules) functionRules() []*memo.Rewrite {
	calls := []struct {
		name   string
		op     memo.Op
		nameOp memo.Op
		// extra children after the argument list
		extra []memo.Pattern
	}{
		{"scalar-function", plan.OpScalarFunction, plan.OpScalarFunctionName, nil},
		{"udf", plan.OpScalarUDF, plan.OpScalarUDFName, nil},
		{"aggregate-function", plan.OpAggregateFunction, plan.OpAggregateFunctionName, []memo.Pattern{V("distinct")}},
	}

	var rules []*memo.Rewrite
	for _, c := range calls {
		call := func(args memo.Pattern) *memo.PatternNode {
			return memo.P(c.op, append([]memo.Pattern{V("fun"), args}, c.extra...)...)
		}
		rules = append(rules,
			rewrite(
				"wrapper-push-down-"+c.name,
				pushdownP(call(V("args")), ctxVars()),
				call(pushdownP(V("args"), ctxVars())),
				nil,
			),
			rewrite(
				"wrapper-pull-up-"+c.name,
				call(pullupP(V("args"), ctxVars())),
				pullupP(call(V("args")), ctxVars()),
				r.functionTemplateExists(V("alias_to_cube"), V("fun"), c.nameOp),
			),
		)
	}
	return rules
}
