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

import (
	"os"

	"gopkg.in/yaml.v2"
)

const functionCall = `{{ .Name }}({{ if .Distinct }}DISTINCT {{ end }}{{ join ", " .Args }})`

// postgresFunctions are the functions the default catalog can render.
var postgresFunctions = []string{
	"SUM", "AVG", "MIN", "MAX", "COUNT",
	"LOWER", "UPPER", "TRIM", "SUBSTRING", "CONCAT",
	"ABS", "CEIL", "FLOOR", "ROUND", "COALESCE", "NULLIF",
	"DATE_TRUNC", "DATE_PART",
}

var postgresTemplates = map[string]string{
	SelectStatement: `SELECT {{ if .Distinct }}DISTINCT {{ end }}{{ join ", " .Columns }}` +
		` FROM {{ .From }}{{ if .FromAlias }} AS {{ quoteIdentifier .FromAlias }}{{ end }}` +
		`{{ if .Filter }} WHERE {{ join " AND " .Filter }}{{ end }}` +
		`{{ if .GroupBy }} GROUP BY {{ join ", " .GroupBy }}{{ end }}` +
		`{{ if .OrderBy }} ORDER BY {{ join ", " .OrderBy }}{{ end }}` +
		`{{ if .HasLimit }} LIMIT {{ .Limit }}{{ end }}` +
		`{{ if .HasOffset }} OFFSET {{ .Offset }}{{ end }}`,
	Column:        `{{ if .Relation }}{{ quoteIdentifier .Relation }}.{{ end }}{{ quoteIdentifier .Name }}`,
	ColumnAliased: `{{ .Expr }} {{ quoteIdentifier .Alias }}`,
	BinaryExpr:    `({{ .Left }} {{ .Op }} {{ .Right }})`,
	InList:        `{{ .Expr }} {{ if .Negated }}NOT {{ end }}IN ({{ join ", " .List }})`,
	InSubquery:    `{{ .Expr }} {{ if .Negated }}NOT {{ end }}IN ({{ .Subquery }})`,
	Rollup:        `ROLLUP({{ join ", " .Exprs }})`,
	Cube:          `CUBE({{ join ", " .Exprs }})`,
	SortExpr:      `{{ .Expr }} {{ if .Asc }}ASC{{ else }}DESC{{ end }} NULLS {{ if .NullsFirst }}FIRST{{ else }}LAST{{ end }}`,
}

// DefaultPostgres returns the catalog of a PostgreSQL data source.
func DefaultPostgres() *Catalog {
	sources := make(map[string]string, len(postgresTemplates)+len(postgresFunctions))
	for k, v := range postgresTemplates {
		sources[k] = v
	}
	for _, f := range postgresFunctions {
		sources[Function(f)] = functionCall
	}
	c, err := NewCatalog("postgres", sources)
	if err != nil {
		panic(err)
	}
	return c
}

// CatalogConfig describes a catalog. Functions listed by name use the
// generic call template. A catalog may extend "postgres", the built-in one.
type CatalogConfig struct {
	Name      string            `yaml:"name" mapstructure:"name"`
	Extends   string            `yaml:"extends" mapstructure:"extends"`
	Functions []string          `yaml:"functions" mapstructure:"functions"`
	Templates map[string]string `yaml:"templates" mapstructure:"templates"`
	Remove    []string          `yaml:"remove" mapstructure:"remove"`
}

// FromConfig builds the catalog described by |cfg|.
func FromConfig(cfg CatalogConfig) (*Catalog, error) {
	sources := map[string]string{}
	switch cfg.Extends {
	case "":
	case "postgres":
		base := DefaultPostgres()
		for k, v := range base.sources {
			sources[k] = v
		}
	default:
		return nil, ErrUnknownBaseCatalog.New(cfg.Extends)
	}
	for _, fn := range cfg.Functions {
		sources[Function(fn)] = functionCall
	}
	for k, v := range cfg.Templates {
		sources[k] = v
	}
	for _, k := range cfg.Remove {
		delete(sources, k)
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Extends
	}
	return NewCatalog(name, sources)
}

// ParseYAML builds a catalog from its YAML description.
func ParseYAML(data []byte) (*Catalog, error) {
	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return FromConfig(cfg)
}

// LoadYAML reads a catalog from a YAML file.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseYAML(data)
}
