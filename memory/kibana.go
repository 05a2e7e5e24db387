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

package memory

import "github.com/semlayer/pushdown/sql/templates"

// KibanaSampleDataEcommerce is the name of the cube of KibanaSampleData.
const KibanaSampleDataEcommerce = "KibanaSampleDataEcommerce"

// KibanaSampleData returns a meta holding the ecommerce sample cube of the
// default data source, rendered with the postgres catalog.
func KibanaSampleData() *Meta {
	cube := NewCube(KibanaSampleDataEcommerce, "public.kibana_sample_data_ecommerce").
		AddDimension("order_date", "", DimensionTypeTime).
		AddDimension("last_mod", "", DimensionTypeTime).
		AddDimension("customer_gender", "", "string").
		AddDimension("notes", "", "string").
		AddDimension("taxful_total_price", "", "number").
		AddDimension("has_subscription", "", "boolean").
		AddSegment("is_male", `{CUBE}."customer_gender" = 'male'`).
		AddSegment("is_female", `{CUBE}."customer_gender" = 'female'`).
		AddMeasure("count", "", "count").
		AddMeasure("maxPrice", "{CUBE}.taxful_total_price", "max").
		AddMeasure("sumPrice", "{CUBE}.taxful_total_price", "sum").
		AddMeasure("minPrice", "{CUBE}.taxful_total_price", "min").
		AddMeasure("avgPrice", "{CUBE}.taxful_total_price", "avg").
		AddMeasure("countDistinct", "{CUBE}.id", "countDistinct").
		AddMeasure("priceRatio", "SUM({CUBE}.taxful_total_price) / COUNT(*)", "number")

	m := NewMeta(cube)
	m.AddCatalog(DefaultDataSource, templates.DefaultPostgres())
	return m
}
