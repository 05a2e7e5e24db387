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

import "github.com/semlayer/pushdown/sql/memo"

// Term kinds. Relational nodes come first, followed by expressions, cube
// members, the replacer markers, payload leaves and finally cons-lists.
const (
	OpCubeScan memo.Op = iota + 1
	OpAggregate
	OpProjection
	OpFilter
	OpLimit
	OpSort
	OpSubqueryAlias
	OpCubeScanWrapper
	OpWrappedSelect

	OpColumn
	OpLiteral
	OpAlias
	OpBinaryExpr
	OpScalarFunction
	OpScalarUDF
	OpAggregateFunction
	OpInList
	OpInSubquery
	OpGroupingSet
	OpSortExpr

	OpDimension
	OpTimeDimension
	OpMeasure
	OpSegment
	OpChangeUser
	OpVirtualField
	OpLiteralMember

	OpPushdownReplacer
	OpPullupReplacer

	// replacer context
	OpPushdownPushToCube
	OpPushdownUngroupedScan
	OpPullupPushToCube
	OpPullupUngroupedScan
	OpPullupAliasToCube
	OpPullupInProjection

	// scan and wrapper payloads
	OpCubeScanAliasToCube
	OpCubeScanLimit
	OpCubeScanOffset
	OpCubeScanWrapped
	OpCubeScanUngrouped
	OpCubeScanWrapperFinalized

	// wrapped select payloads
	OpWrappedSelectSelectType
	OpWrappedSelectLimit
	OpWrappedSelectOffset
	OpWrappedSelectAlias
	OpWrappedSelectDistinct
	OpWrappedSelectPushToCube
	OpWrappedSelectUngroupedScan

	// relational payloads
	OpProjectionAlias
	OpLimitSkip
	OpLimitFetch
	OpSubqueryAliasName

	// expression payloads
	OpColumnName
	OpLiteralValue
	OpAliasName
	OpBinaryOperator
	OpScalarFunctionName
	OpScalarUDFName
	OpAggregateFunctionName
	OpAggregateFunctionDistinct
	OpInListNegated
	OpInSubqueryNegated
	OpGroupingSetKind
	OpSortExprAsc
	OpSortExprNullsFirst

	// member payloads
	OpMemberName
	OpMemberAlias
	OpTimeDimensionGranularity

	opListBase
)

var opNames = map[memo.Op]string{
	OpCubeScan:        "CubeScan",
	OpAggregate:       "Aggregate",
	OpProjection:      "Projection",
	OpFilter:          "Filter",
	OpLimit:           "Limit",
	OpSort:            "Sort",
	OpSubqueryAlias:   "SubqueryAlias",
	OpCubeScanWrapper: "CubeScanWrapper",
	OpWrappedSelect:   "WrappedSelect",

	OpColumn:            "Column",
	OpLiteral:           "Literal",
	OpAlias:             "Alias",
	OpBinaryExpr:        "BinaryExpr",
	OpScalarFunction:    "ScalarFunction",
	OpScalarUDF:         "ScalarUDF",
	OpAggregateFunction: "AggregateFunction",
	OpInList:            "InList",
	OpInSubquery:        "InSubquery",
	OpGroupingSet:       "GroupingSet",
	OpSortExpr:          "SortExpr",

	OpDimension:     "Dimension",
	OpTimeDimension: "TimeDimension",
	OpMeasure:       "Measure",
	OpSegment:       "Segment",
	OpChangeUser:    "ChangeUser",
	OpVirtualField:  "VirtualField",
	OpLiteralMember: "LiteralMember",

	OpPushdownReplacer: "WrapperPushdownReplacer",
	OpPullupReplacer:   "WrapperPullupReplacer",

	OpPushdownPushToCube:    "WrapperPushdownReplacerPushToCube",
	OpPushdownUngroupedScan: "WrapperPushdownReplacerUngroupedScan",
	OpPullupPushToCube:      "WrapperPullupReplacerPushToCube",
	OpPullupUngroupedScan:   "WrapperPullupReplacerUngroupedScan",
	OpPullupAliasToCube:     "WrapperPullupReplacerAliasToCube",
	OpPullupInProjection:    "WrapperPullupReplacerInProjection",

	OpCubeScanAliasToCube:      "CubeScanAliasToCube",
	OpCubeScanLimit:            "CubeScanLimit",
	OpCubeScanOffset:           "CubeScanOffset",
	OpCubeScanWrapped:          "CubeScanWrapped",
	OpCubeScanUngrouped:        "CubeScanUngrouped",
	OpCubeScanWrapperFinalized: "CubeScanWrapperFinalized",

	OpWrappedSelectSelectType:    "WrappedSelectSelectType",
	OpWrappedSelectLimit:         "WrappedSelectLimit",
	OpWrappedSelectOffset:        "WrappedSelectOffset",
	OpWrappedSelectAlias:         "WrappedSelectAlias",
	OpWrappedSelectDistinct:      "WrappedSelectDistinct",
	OpWrappedSelectPushToCube:    "WrappedSelectPushToCube",
	OpWrappedSelectUngroupedScan: "WrappedSelectUngroupedScan",

	OpProjectionAlias:   "ProjectionAlias",
	OpLimitSkip:         "LimitSkip",
	OpLimitFetch:        "LimitFetch",
	OpSubqueryAliasName: "SubqueryAliasName",

	OpColumnName:                "ColumnExprColumn",
	OpLiteralValue:              "LiteralExprValue",
	OpAliasName:                 "AliasExprAlias",
	OpBinaryOperator:            "BinaryExprOp",
	OpScalarFunctionName:        "ScalarFunctionExprFun",
	OpScalarUDFName:             "ScalarUDFExprFun",
	OpAggregateFunctionName:     "AggregateFunctionExprFun",
	OpAggregateFunctionDistinct: "AggregateFunctionExprDistinct",
	OpInListNegated:             "InListExprNegated",
	OpInSubqueryNegated:         "InSubqueryExprNegated",
	OpGroupingSetKind:           "GroupingSetType",
	OpSortExprAsc:               "SortExprAsc",
	OpSortExprNullsFirst:        "SortExprNullsFirst",

	OpMemberName:               "MemberName",
	OpMemberAlias:              "MemberAlias",
	OpTimeDimensionGranularity: "TimeDimensionGranularity",
}

func init() {
	for op, name := range opNames {
		memo.RegisterOp(op, name)
	}
	for _, k := range listKinds {
		memo.RegisterOp(k.Cons, k.Name)
		memo.RegisterOp(k.Empty, k.Name+"EmptyTail")
	}
}

// IsReplacer reports whether the operator is one of the replacer markers.
func IsReplacer(op memo.Op) bool {
	return op == OpPushdownReplacer || op == OpPullupReplacer
}

// IsHostNode reports whether the operator is a relational node evaluated by
// the host engine when it is not wrapped.
func IsHostNode(op memo.Op) bool {
	switch op {
	case OpAggregate, OpProjection, OpFilter, OpLimit, OpSort, OpSubqueryAlias:
		return true
	default:
		return false
	}
}

// IsMember reports whether the operator is a cube member term.
func IsMember(op memo.Op) bool {
	return op >= OpDimension && op <= OpLiteralMember
}
