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
	"sort"
	"sync"

	"github.com/semlayer/pushdown/internal/similartext"
	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
)

// DefaultDataSource is the data source of cubes that name none.
const DefaultDataSource = "default"

// Meta is an in-memory semantic layer: a set of cubes and the template
// catalogs of their data sources.
type Meta struct {
	cubes    map[string]*Cube
	catalogs map[string]sql.TemplateCatalog
	mu       *sync.RWMutex
}

var _ sql.MetaContext = (*Meta)(nil)
var _ sql.LoadSQLProvider = (*Meta)(nil)

// NewMeta returns a meta holding |cubes| and no catalogs.
func NewMeta(cubes ...*Cube) *Meta {
	m := &Meta{
		cubes:    make(map[string]*Cube, len(cubes)),
		catalogs: make(map[string]sql.TemplateCatalog),
		mu:       &sync.RWMutex{},
	}
	for _, c := range cubes {
		m.AddCube(c)
	}
	return m
}

// AddCube adds or replaces a cube.
func (m *Meta) AddCube(c *Cube) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.DataSource == "" {
		c.DataSource = DefaultDataSource
	}
	m.cubes[c.Name] = c
}

// AddCatalog registers the template catalog of a data source.
func (m *Meta) AddCatalog(dataSource string, c sql.TemplateCatalog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs[dataSource] = c
}

// Cube returns the cube with the given name.
func (m *Meta) Cube(name string) (*Cube, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cube(name)
}

func (m *Meta) cube(name string) (*Cube, error) {
	c, ok := m.cubes[name]
	if ok {
		return c, nil
	}
	similar := similartext.FindFromMap(m.cubes, name)
	return nil, sql.ErrCubeNotFound.New(name + similar)
}

// AllCubes returns every cube sorted by name.
func (m *Meta) AllCubes() []*Cube {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*Cube, 0, len(m.cubes))
	for _, c := range m.cubes {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name < all[j].Name
	})
	return all
}

// FindMeasureWithName implements sql.MetaContext.
func (m *Meta) FindMeasureWithName(name string) (sql.MeasureDescriptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mem, err := m.resolve(name)
	if err != nil || mem.kind != sql.MemberMeasure {
		return sql.MeasureDescriptor{}, false
	}
	return sql.MeasureDescriptor{Name: name, AggType: mem.aggType}, true
}

// SQLGeneratorByAliasToCube implements sql.MetaContext.
func (m *Meta) SQLGeneratorByAliasToCube(aliasToCube []sql.AliasToCube) (sql.TemplateCatalog, bool) {
	if len(aliasToCube) == 0 {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, err := m.cube(aliasToCube[0].Cube)
	if err != nil {
		return nil, false
	}
	catalog, ok := m.catalogs[c.DataSource]
	return catalog, ok
}

// resolve finds the member with the fully qualified |name|.
func (m *Meta) resolve(name string) (member, error) {
	cubeName, memberName := sql.SplitMemberName(name)
	c, err := m.cube(cubeName)
	if err != nil {
		return member{}, err
	}
	mem, ok := c.member(memberName)
	if !ok {
		return member{}, sql.ErrMemberNotFound.New(name + similartext.Find(c.memberNames(), memberName))
	}
	return mem, nil
}

// CubeScan returns an unwrapped scan of every member of |cube| under
// |alias|. Members are exposed as columns named after them.
func (m *Meta) CubeScan(alias, cube string, ungrouped bool) (*memo.Expr, error) {
	c, err := m.Cube(cube)
	if err != nil {
		return nil, err
	}

	var members []*memo.Expr
	for _, d := range c.Dimensions {
		name := sql.MemberName(c.Name, d.Name)
		if d.Type == DimensionTypeTime {
			members = append(members, plan.NewTimeDimension(name, "", d.Name))
		} else {
			members = append(members, plan.NewMember(sql.MemberDimension, name, d.Name))
		}
	}
	for _, s := range c.Segments {
		members = append(members, plan.NewMember(sql.MemberSegment, sql.MemberName(c.Name, s.Name), s.Name))
	}
	for _, ms := range c.Measures {
		members = append(members, plan.NewMember(sql.MemberMeasure, sql.MemberName(c.Name, ms.Name), ms.Name))
	}

	a2c := []sql.AliasToCube{{Alias: alias, Cube: c.Name}}
	return plan.NewCubeScan(a2c, members, nil, nil, plan.None(), plan.None(), ungrouped), nil
}
