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

import (
	"os"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/yaml.v2"

	"github.com/semlayer/pushdown/sql/templates"
)

// ErrInvalidMeta is returned when a meta description cannot be loaded.
var ErrInvalidMeta = errors.NewKind("invalid meta: %s")

// MetaConfig is the description of a meta: the catalogs of its data sources
// and its cubes.
type MetaConfig struct {
	DataSources map[string]templates.CatalogConfig `mapstructure:"data_sources"`
	Cubes       []*Cube                            `mapstructure:"cubes"`
}

// NewMetaFromConfig builds the meta described by |cfg|.
func NewMetaFromConfig(cfg MetaConfig) (*Meta, error) {
	m := NewMeta()
	for name, cc := range cfg.DataSources {
		if cc.Name == "" {
			cc.Name = name
		}
		c, err := templates.FromConfig(cc)
		if err != nil {
			return nil, err
		}
		m.AddCatalog(name, c)
	}

	for i, c := range cfg.Cubes {
		if c == nil || c.Name == "" {
			return nil, ErrInvalidMeta.New("cube " + strconv.Itoa(i) + " has no name")
		}
		if _, err := m.Cube(c.Name); err == nil {
			return nil, ErrInvalidMeta.New("duplicate cube " + c.Name)
		}
		m.AddCube(c)
	}
	return m, nil
}

// ParseMetaYAML builds a meta from its YAML description:
//
//	data_sources:
//	  default:
//	    extends: postgres
//	cubes:
//	  - name: Orders
//	    sql_table: public.orders
//	    dimensions:
//	      - name: status
//	    measures:
//	      - name: count
//	        type: count
func ParseMetaYAML(data []byte) (*Meta, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ErrInvalidMeta.New(err.Error())
	}

	var cfg MetaConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, ErrInvalidMeta.New(err.Error())
	}
	return NewMetaFromConfig(cfg)
}

// LoadMetaYAML reads a meta from a YAML file.
func LoadMetaYAML(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseMetaYAML(data)
}
