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

// Package pushdown compiles relational plans issued against a semantic layer
// into the SQL its data sources run, pushing as much of each plan as the
// data source templates allow.
package pushdown

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/analyzer"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
	"github.com/semlayer/pushdown/sql/sqlgen"
)

// Meta is the semantic layer an Engine compiles against.
type Meta interface {
	sql.MetaContext
	sql.LoadSQLProvider
}

// Engine is a plan compiler.
type Engine struct {
	Analyzer  *analyzer.Analyzer
	Generator *sqlgen.Generator
	Metrics   *analyzer.Metrics
	Config    Config
	// the analyzer keeps per analysis state
	mu sync.Mutex
}

// New creates a new Engine over |meta| with the given configuration.
func New(meta Meta, cfg Config) *Engine {
	metrics := analyzer.NewMetrics()
	b := analyzer.NewBuilder(meta).
		WithLimits(cfg.MaxIterations, cfg.MaxNodes, cfg.Timeout).
		WithMetrics(metrics)
	if cfg.Debug {
		b = b.WithDebug()
	}

	g := sqlgen.NewGenerator(meta, meta)
	g.DefaultLimit = cfg.DefaultLimit

	return &Engine{
		Analyzer:  b.Build(),
		Generator: g,
		Metrics:   metrics,
		Config:    cfg,
	}
}

// NewDefault creates a new Engine with the default configuration.
func NewDefault(meta Meta) *Engine {
	return New(meta, DefaultConfig())
}

// Result is a compiled plan.
type Result struct {
	// Plan is the rewritten plan. Its finalized cube scan wrappers are the
	// parts run by the data sources, the rest is evaluated by the host.
	Plan *memo.Expr
	// Queries holds the rendering of every finalized wrapper of Plan,
	// outermost first.
	Queries    []*sqlgen.Query
	Cost       analyzer.PlanCost
	StopReason analyzer.StopReason
	Iterations int
	MemoNodes  int
}

// String renders the rewritten plan as a tree.
func (r *Result) String() string {
	return plan.Describe(r.Plan)
}

// Compile rewrites |n| and renders the queries of its pushed parts. Running
// out of analysis budget is not an error: the best plan found is compiled
// and the stop reason reported.
func (e *Engine) Compile(ctx *sql.Context, n *memo.Expr) (*Result, error) {
	span, ctx := ctx.Span("engine.compile")
	defer span.Finish()

	logger := logrus.WithField(QueryIDLogField, ctx.QueryID())
	if q := ctx.Query(); q != "" {
		logger = logger.WithField(QueryLogField, q)
	}

	e.mu.Lock()
	analyzed, err := e.Analyzer.Analyze(ctx, n)
	e.mu.Unlock()
	if err != nil {
		logger.WithError(err).Warn("unable to analyze plan")
		return nil, err
	}

	logger = logger.WithFields(logrus.Fields{
		StopReasonLogField: analyzed.StopReason,
		IterationsLogField: analyzed.Iterations,
		MemoNodesLogField:  analyzed.Nodes,
	})
	if analyzed.StopReason != analyzer.StopSaturated {
		logger.Warn("analysis stopped before saturation, compiling best plan found")
	}

	queries, err := e.Generator.Generate(ctx, analyzed.Plan)
	if err != nil {
		logger.WithError(err).Warn("unable to render plan")
		return nil, err
	}
	logger.WithField(QueriesLogField, len(queries)).Debug("compiled plan")

	span.SetTag("queries", len(queries))
	return &Result{
		Plan:       analyzed.Plan,
		Queries:    queries,
		Cost:       analyzed.Cost,
		StopReason: analyzed.StopReason,
		Iterations: analyzed.Iterations,
		MemoNodes:  analyzed.Nodes,
	}, nil
}
