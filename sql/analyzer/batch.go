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
	"time"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/semlayer/pushdown/sql"
	"github.com/semlayer/pushdown/sql/memo"
)

// Batch runs a set of rules over the memo until it saturates or runs out of
// iterations. One iteration searches every rule against the memo as it is,
// applies the matches and only then merges the matched groups.
type Batch struct {
	Desc       string
	Iterations int
	Rules      []*memo.Rewrite
}

type ruleMatch struct {
	rule  *memo.Rewrite
	group memo.GroupId
	subst memo.Subst
}

// Eval runs the batch and returns the number of iterations performed. When a
// budget runs out it returns ErrMaxAnalysisIters, ErrMaxMemoNodes or
// ErrAnalysisTimeout, leaving the memo usable.
func (b *Batch) Eval(ctx *sql.Context, a *Analyzer, m *memo.Memo) (int, error) {
	if b.Iterations == 0 || len(b.Rules) == 0 {
		return 0, nil
	}

	span, ctx := ctx.Span("analyze.batch", opentracing.Tags{"batch": b.Desc})
	defer span.Finish()

	for i := 0; ; i++ {
		if i >= b.Iterations {
			return i, ErrMaxAnalysisIters.New(b.Iterations)
		}
		if err := a.checkDeadline(ctx); err != nil {
			return i, err
		}

		changed, err := b.evalOnce(ctx, a, m)
		if err != nil {
			return i + 1, err
		}
		if a.MaxNodes > 0 && m.NodeCount() > a.MaxNodes {
			return i + 1, ErrMaxMemoNodes.New(a.MaxNodes)
		}
		if !changed {
			a.Log("saturated after %d iterations", i+1)
			return i + 1, nil
		}
	}
}

func (b *Batch) evalOnce(ctx *sql.Context, a *Analyzer, m *memo.Memo) (bool, error) {
	m.Rebuild()
	created := m.Created()

	var matches []ruleMatch
	for _, r := range b.Rules {
		for _, sm := range r.Search(m) {
			for _, s := range sm.Substs {
				matches = append(matches, ruleMatch{rule: r, group: sm.Group, subst: s})
			}
		}
	}

	var unions [][2]memo.GroupId
	fired := make(map[string]int)
	for _, match := range matches {
		id, ok, err := match.rule.Apply(m, match.subst)
		if err != nil {
			return false, ErrInAnalysis.Wrap(err, match.rule.Name)
		}
		if !ok {
			continue
		}
		fired[match.rule.Name]++
		unions = append(unions, [2]memo.GroupId{match.group, id})
	}

	merged := 0
	for _, u := range unions {
		if _, ok := m.Union(u[0], u[1]); ok {
			merged++
		}
	}
	merged += m.Rebuild()

	for name, n := range fired {
		a.Metrics.ruleFired(name, n)
	}
	a.Log("%d matches, %d rules fired, %d unions, %d nodes", len(matches), len(fired), merged, m.NodeCount())
	return merged > 0 || m.Created() != created, nil
}

func (a *Analyzer) checkDeadline(ctx *sql.Context) error {
	if err := ctx.Err(); err != nil {
		return ErrAnalysisTimeout.Wrap(err, time.Since(ctx.QueryTime()).Round(time.Millisecond))
	}
	if a.Timeout > 0 && time.Since(a.started) > a.Timeout {
		return ErrAnalysisTimeout.New(a.Timeout)
	}
	return nil
}
