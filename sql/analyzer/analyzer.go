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

package analyzer

import (
	"os"
	"strings"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
	"github.com/semlayer/pushdown/sql/plan"
)

const debugAnalyzerKey = "DEBUG_ANALYZER"

const (
	maxAnalysisIterations = 1000
	maxMemoNodes          = 100000
	analysisTimeout       = 10 * time.Second
)

// StopReason tells why an analysis stopped rewriting.
type StopReason string

const (
	// StopSaturated means no rule could change the memo any more.
	StopSaturated StopReason = "saturated"
	// StopIterationLimit means a batch ran out of iterations.
	StopIterationLimit StopReason = "iteration_limit"
	// StopNodeLimit means the memo grew past its node limit.
	StopNodeLimit StopReason = "node_limit"
	// StopTimeLimit means the analysis ran out of time.
	StopTimeLimit StopReason = "time_limit"
)

func stopReasonOf(err error) StopReason {
	switch {
	case ErrMaxAnalysisIters.Is(err):
		return StopIterationLimit
	case ErrMaxMemoNodes.Is(err):
		return StopNodeLimit
	case ErrAnalysisTimeout.Is(err):
		return StopTimeLimit
	default:
		return StopSaturated
	}
}

// Builder provides an easy way to generate an Analyzer with custom rules and
// options.
type Builder struct {
	preAnalyzeRules  []*memo.Rewrite
	postAnalyzeRules []*memo.Rewrite
	meta             sql.MetaContext
	debug            bool
	maxIterations    int
	maxNodes         int
	timeout          time.Duration
	metrics          *Metrics
}

// NewBuilder creates a new Builder over the given cube metadata.
func NewBuilder(meta sql.MetaContext) *Builder {
	return &Builder{
		meta:          meta,
		maxIterations: maxAnalysisIterations,
		maxNodes:      maxMemoNodes,
		timeout:       analysisTimeout,
	}
}

// WithDebug activates debug on the Analyzer.
func (ab *Builder) WithDebug() *Builder {
	ab.debug = true
	return ab
}

// WithLimits overrides the analysis budgets. Zero values keep the current
// ones.
func (ab *Builder) WithLimits(iterations, nodes int, timeout time.Duration) *Builder {
	if iterations > 0 {
		ab.maxIterations = iterations
	}
	if nodes > 0 {
		ab.maxNodes = nodes
	}
	if timeout > 0 {
		ab.timeout = timeout
	}
	return ab
}

// WithMetrics makes the analyzer record into |m|.
func (ab *Builder) WithMetrics(m *Metrics) *Builder {
	ab.metrics = m
	return ab
}

// AddPreAnalyzeRule adds a rewrite saturated before the default rules.
func (ab *Builder) AddPreAnalyzeRule(r *memo.Rewrite) *Builder {
	ab.preAnalyzeRules = append(ab.preAnalyzeRules, r)
	return ab
}

// AddPostAnalyzeRule adds a rewrite saturated after the default rules.
func (ab *Builder) AddPostAnalyzeRule(r *memo.Rewrite) *Builder {
	ab.postAnalyzeRules = append(ab.postAnalyzeRules, r)
	return ab
}

// Build creates a new Analyzer using all previous data set to the Builder.
func (ab *Builder) Build() *Analyzer {
	_, debug := os.LookupEnv(debugAnalyzerKey)
	batches := []*Batch{
		{
			Desc:       "pre-analyzer",
			Iterations: ab.maxIterations,
			Rules:      ab.preAnalyzeRules,
		},
		{
			Desc:       "wrapper-rules",
			Iterations: ab.maxIterations,
			Rules:      DefaultRules(ab.meta),
		},
		{
			Desc:       "post-analyzer",
			Iterations: ab.maxIterations,
			Rules:      ab.postAnalyzeRules,
		},
	}

	return &Analyzer{
		Debug:    debug || ab.debug,
		debugCtx: make([]string, 0),
		Batches:  batches,
		Meta:     ab.meta,
		Metrics:  ab.metrics,
		MaxNodes: ab.maxNodes,
		Timeout:  ab.timeout,
	}
}

// Analyzer rewrites plans over cube scans until as much as possible of them
// is pushed into wrapped selects.
type Analyzer struct {
	// Whether to log various debugging messages
	Debug bool
	// Whether to log the memo after every batch
	Verbose  bool
	debugCtx []string
	// Batches of rules to apply.
	Batches []*Batch
	// Meta is the cube metadata the rules consult.
	Meta     sql.MetaContext
	Metrics  *Metrics
	MaxNodes int
	Timeout  time.Duration
	started  time.Time
}

// NewDefault creates a default Analyzer instance with all default rules and
// configuration.
func NewDefault(meta sql.MetaContext) *Analyzer {
	return NewBuilder(meta).Build()
}

// Log prints an INFO message with the given message and args if the analyzer
// is in debug mode.
func (a *Analyzer) Log(msg string, args ...interface{}) {
	if a != nil && a.Debug {
		if len(a.debugCtx) > 0 {
			ctx := strings.Join(a.debugCtx, "/")
			logrus.Infof("%s: "+msg, append([]interface{}{ctx}, args...)...)
		} else {
			logrus.Infof(msg, args...)
		}
	}
}

// LogMemo prints the memo if Verbose logging is enabled.
func (a *Analyzer) LogMemo(m *memo.Memo) {
	if a != nil && m != nil && a.Verbose {
		a.Log("%s", m.String())
	}
}

// PushDebugContext pushes the given context string onto the context stack,
// to use when logging debug messages.
func (a *Analyzer) PushDebugContext(msg string) {
	if a != nil {
		a.debugCtx = append(a.debugCtx, msg)
	}
}

// PopDebugContext pops a context message off the context stack.
func (a *Analyzer) PopDebugContext() {
	if a != nil && len(a.debugCtx) > 0 {
		a.debugCtx = a.debugCtx[:len(a.debugCtx)-1]
	}
}

// Analyzed is the outcome of an analysis.
type Analyzed struct {
	// Plan is the cheapest term equivalent to the analyzed plan.
	Plan       *memo.Expr
	Cost       PlanCost
	StopReason StopReason
	Iterations int
	Nodes      int
	Groups     int
}

// Analyze saturates the rules over |n| and extracts the cheapest equivalent
// plan. Running out of budget is not an error: the best plan found so far is
// returned together with the reason the analysis stopped.
func (a *Analyzer) Analyze(ctx *sql.Context, n *memo.Expr) (*Analyzed, error) {
	if n == nil {
		return nil, ErrNilPlan.New()
	}

	span, ctx := ctx.Span("analyze", opentracing.Tags{
		"root": n.Op.String(),
	})
	defer span.Finish()

	a.started = time.Now()
	m := memo.NewMemo(logicalPlanAnalysis{})
	root := m.AddExpr(n)

	res := &Analyzed{StopReason: StopSaturated}
	if a.Debug {
		a.Log("starting analysis of plan:\n%s", plan.Describe(n))
	}
	for _, batch := range a.Batches {
		a.PushDebugContext(batch.Desc)
		iters, err := batch.Eval(ctx, a, m)
		a.LogMemo(m)
		a.PopDebugContext()
		res.Iterations += iters
		if isBudgetError(err) {
			a.Log(err.Error())
			res.StopReason = stopReasonOf(err)
			break
		}
		if err != nil {
			return nil, err
		}
	}

	m.Rebuild()
	best, cost, err := m.Extract(root, coster{})
	if err != nil {
		return nil, err
	}
	res.Plan = best
	res.Cost, _ = cost.(PlanCost)
	res.Nodes = m.NodeCount()
	res.Groups = m.GroupCount()

	span.SetTag("stop_reason", string(res.StopReason))
	span.SetTag("iterations", res.Iterations)
	a.Metrics.observe(res)
	if a.Debug {
		a.Log("extracted plan with cost %v:\n%s", res.Cost, plan.Describe(best))
	}
	return res, nil
}
