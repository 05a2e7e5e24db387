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

package memo

import (
	"fmt"
	"strings"
	"sync"
)

// Op is the kind of a term. The set of operators is declared by the users of
// the memo, which register a name for each of them.
type Op uint16

var (
	opNamesMu sync.RWMutex
	opNames   = make(map[Op]string)
)

// RegisterOp names an operator for printing.
func RegisterOp(op Op, name string) {
	opNamesMu.Lock()
	defer opNamesMu.Unlock()
	opNames[op] = name
}

func (o Op) String() string {
	opNamesMu.RLock()
	defer opNamesMu.RUnlock()
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint16(o))
}

// ExprNode is a node of the memo: an operator, an optional payload and
// references to the groups of its children.
type ExprNode struct {
	Op       Op
	Value    interface{}
	Children []GroupId
}

func (n *ExprNode) String() string {
	b := strings.Builder{}
	b.WriteString(n.Op.String())
	if n.Value != nil {
		b.WriteString(fmt.Sprintf(":%v", n.Value))
	}
	for _, c := range n.Children {
		b.WriteString(fmt.Sprintf(" G%d", c))
	}
	return b.String()
}

// Expr is a term tree outside of the memo. Plans are handed to the memo as
// Exprs and extracted from it as Exprs.
type Expr struct {
	Op       Op
	Value    interface{}
	Children []*Expr
}

// NewExpr returns an interior term.
func NewExpr(op Op, children ...*Expr) *Expr {
	return &Expr{Op: op, Children: children}
}

// NewLeaf returns a payload term.
func NewLeaf(op Op, value interface{}) *Expr {
	return &Expr{Op: op, Value: value}
}

// Child returns the i-th child of the term, or nil.
func (e *Expr) Child(i int) *Expr {
	if e == nil || i < 0 || i >= len(e.Children) {
		return nil
	}
	return e.Children[i]
}

// Walk calls fn for every term of the tree in pre-order, stopping the descent
// below a term when fn returns false.
func (e *Expr) Walk(fn func(*Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Equal reports whether two term trees are structurally identical.
func (e *Expr) Equal(o *Expr) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Op != o.Op || len(e.Children) != len(o.Children) || !valuesEqual(e.Value, o.Value) {
		return false
	}
	for i := range e.Children {
		if !e.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

func (e *Expr) String() string {
	b := strings.Builder{}
	e.format(&b, "", "")
	return b.String()
}

func (e *Expr) format(b *strings.Builder, prefix, childPrefix string) {
	b.WriteString(prefix)
	b.WriteString(e.Op.String())
	if e.Value != nil {
		b.WriteString(fmt.Sprintf(":%v", e.Value))
	}
	b.WriteString("\n")
	for i, c := range e.Children {
		if i == len(e.Children)-1 {
			c.format(b, childPrefix+"└── ", childPrefix+"    ")
		} else {
			c.format(b, childPrefix+"├── ", childPrefix+"│   ")
		}
	}
}
