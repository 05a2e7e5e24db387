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

// Package templates holds the SQL templates a data source renders wrapped
// selects with. A catalog is immutable once built: the analyzer probes it
// for capabilities while rules run and the generator renders with it after.
package templates

import (
	"bytes"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/src-d/go-errors.v1"

	"github.com/semlayer/pushdown/sql"
)

// Template keys.
const (
	SelectStatement = "statements/select"
	Column          = "expressions/column"
	ColumnAliased   = "expressions/column_aliased"
	BinaryExpr      = "expressions/binary"
	InList          = "expressions/in_list"
	InSubquery      = "expressions/in_subquery"
	Rollup          = "expressions/rollup"
	Cube            = "expressions/cube"
	SortExpr        = "expressions/sort"

	functionPrefix = "functions/"
)

var (
	// ErrInvalidTemplate is returned when a template source does not parse.
	ErrInvalidTemplate = errors.NewKind("invalid template %q: %s")

	// ErrUnknownBaseCatalog is returned when a catalog extends one that does
	// not exist.
	ErrUnknownBaseCatalog = errors.NewKind("unknown base catalog %q")
)

// Function returns the key a function call named |name| renders with.
// Function names are case insensitive.
func Function(name string) string {
	return functionPrefix + strings.ToUpper(name)
}

// FuncMap is available to every template: the sprig functions plus
// quoteIdentifier.
var FuncMap template.FuncMap

func init() {
	FuncMap = template.FuncMap(sprig.TxtFuncMap())
	FuncMap["quoteIdentifier"] = QuoteIdentifier
}

// QuoteIdentifier double quotes an identifier, doubling the quotes inside it.
func QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Catalog is a named set of parsed templates.
type Catalog struct {
	name      string
	sources   map[string]string
	templates map[string]*template.Template
}

var _ sql.TemplateCatalog = (*Catalog)(nil)

// NewCatalog parses every source. Keys are template names such as
// "functions/SUM".
func NewCatalog(name string, sources map[string]string) (*Catalog, error) {
	c := &Catalog{
		name:      name,
		sources:   make(map[string]string, len(sources)),
		templates: make(map[string]*template.Template, len(sources)),
	}
	for key, src := range sources {
		t, err := template.New(key).Funcs(FuncMap).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, ErrInvalidTemplate.New(key, err)
		}
		c.sources[key] = src
		c.templates[key] = t
	}
	return c, nil
}

// Name of the catalog, usually the dialect it renders.
func (c *Catalog) Name() string {
	return c.name
}

// ContainsKey reports whether the catalog declares the template |name|.
func (c *Catalog) ContainsKey(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.templates[name]
	return ok
}

// Render executes the template |name| with |data|.
func (c *Catalog) Render(name string, data interface{}) (string, error) {
	if !c.ContainsKey(name) {
		return "", sql.ErrTemplateNotFound.New(name)
	}
	var buf bytes.Buffer
	if err := c.templates[name].Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Keys returns the declared template names, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.templates))
	for k := range c.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of the catalog where |overrides| replace or add
// templates.
func (c *Catalog) With(overrides map[string]string) (*Catalog, error) {
	sources := make(map[string]string, len(c.sources)+len(overrides))
	for k, v := range c.sources {
		sources[k] = v
	}
	for k, v := range overrides {
		sources[k] = v
	}
	return NewCatalog(c.name, sources)
}

// Without returns a copy of the catalog that does not declare |names|. Data
// sources that cannot render a construct are modeled this way.
func (c *Catalog) Without(names ...string) *Catalog {
	nc := &Catalog{
		name:      c.name,
		sources:   make(map[string]string, len(c.sources)),
		templates: make(map[string]*template.Template, len(c.templates)),
	}
	for k, v := range c.sources {
		nc.sources[k] = v
		nc.templates[k] = c.templates[k]
	}
	for _, n := range names {
		delete(nc.sources, n)
		delete(nc.templates, n)
	}
	return nc
}
