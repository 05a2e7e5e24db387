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
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "pushdown"
	metricsSubsystem = "analyzer"

	lblRule   = "rule"
	lblReason = "reason"
)

// Metrics collects statistics about the analyses run. A nil *Metrics
// records nothing.
type Metrics struct {
	RuleApplications *prometheus.CounterVec
	StopReasons      *prometheus.CounterVec
	Iterations       prometheus.Histogram
	MemoNodes        prometheus.Histogram
}

// NewMetrics returns unregistered analyzer metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RuleApplications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "rule_applications_total",
			Help:      "Number of rewrites applied, by rule",
		}, []string{lblRule}),
		StopReasons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "stop_reason_total",
			Help:      "Number of analyses, by the reason they stopped",
		}, []string{lblReason}),
		Iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "saturation_iterations",
			Help:      "Iterations run by an analysis",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11), // 1 ~ 1024
		}),
		MemoNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "memo_nodes",
			Help:      "Nodes in the memo at the end of an analysis",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 9), // 16 ~ 1M
		}),
	}
}

// Register registers every collector with |r|.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.RuleApplications, m.StopReasons, m.Iterations, m.MemoNodes} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ruleFired(rule string, n int) {
	if m == nil {
		return
	}
	m.RuleApplications.WithLabelValues(rule).Add(float64(n))
}

func (m *Metrics) observe(res *Analyzed) {
	if m == nil {
		return
	}
	m.StopReasons.WithLabelValues(string(res.StopReason)).Inc()
	m.Iterations.Observe(float64(res.Iterations))
	m.MemoNodes.Observe(float64(res.Nodes))
}
