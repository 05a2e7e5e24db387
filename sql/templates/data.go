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

package templates

// Data passed to the templates of each key.
type (
	// FunctionData renders functions/{NAME}.
	FunctionData struct {
		Name     string
		Args     []string
		Distinct bool
	}

	// ColumnData renders expressions/column.
	ColumnData struct {
		Relation string
		Name     string
	}

	// ColumnAliasedData renders expressions/column_aliased.
	ColumnAliasedData struct {
		Expr  string
		Alias string
	}

	// BinaryData renders expressions/binary.
	BinaryData struct {
		Left  string
		Op    string
		Right string
	}

	// InListData renders expressions/in_list.
	InListData struct {
		Expr    string
		List    []string
		Negated bool
	}

	// InSubqueryData renders expressions/in_subquery.
	InSubqueryData struct {
		Expr     string
		Subquery string
		Negated  bool
	}

	// GroupingSetData renders expressions/rollup and expressions/cube.
	GroupingSetData struct {
		Exprs []string
	}

	// SortData renders expressions/sort.
	SortData struct {
		Expr       string
		Asc        bool
		NullsFirst bool
	}

	// SelectData renders statements/select.
	SelectData struct {
		Distinct  bool
		Columns   []string
		From      string
		FromAlias string
		Filter    []string
		GroupBy   []string
		OrderBy   []string
		HasLimit  bool
		Limit     int
		HasOffset bool
		Offset    int
	}
)
