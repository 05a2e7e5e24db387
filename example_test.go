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

package pushdown_test

import (
	"fmt"

	"github.com/semlayer/pushdown"
	"github.com/semlayer/pushdown/memory"
	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
)

func Example() {
	meta := memory.KibanaSampleData()
	e := pushdown.NewDefault(meta)

	// SELECT customer_gender, SUM(sumPrice) FROM KibanaSampleDataEcommerce
	// GROUP BY 1
	scan, err := meta.CubeScan(memory.KibanaSampleDataEcommerce, memory.KibanaSampleDataEcommerce, true)
	checkIfError(err)
	gender := plan.NewColumn(memory.KibanaSampleDataEcommerce, "customer_gender")
	price := plan.NewColumn(memory.KibanaSampleDataEcommerce, "sumPrice")
	n := plan.NewAggregate(scan,
		[]*memo.Expr{gender},
		[]*memo.Expr{plan.NewAggregateFunction("SUM", false, price)},
	)

	res, err := e.Compile(sql.NewEmptyContext(), n)
	checkIfError(err)

	fmt.Println(res.StopReason)
	for _, q := range res.Queries {
		fmt.Println(q.PushToCube, len(q.Request.Dimensions), len(q.Request.Measures))
	}

	// Output: saturated
	// true 1 1
}

func checkIfError(err error) {
	if err != nil {
		panic(err)
	}
}
