/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"strings"

	"chainguard.dev/textclassify/classify/trainer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exports split metrics as Prometheus series.
type Recorder struct {
	run string

	metricGauge  *prometheus.GaugeVec
	exampleCount *prometheus.CounterVec
	failureCount *prometheus.CounterVec
}

// NewRecorder registers the recorder's collectors on reg. A nil reg
// registers nothing, which keeps repeated test runs independent.
func NewRecorder(reg prometheus.Registerer, run string) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		run: run,
		metricGauge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "textclassify_metric",
				Help: "Most recent value of an evaluation metric",
			},
			[]string{"run", "split", "metric"},
		),
		exampleCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textclassify_examples_scored_total",
				Help: "Total number of examples scored",
			},
			[]string{"run", "split"},
		),
		failureCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textclassify_scoring_failures_total",
				Help: "Total number of failed scoring passes",
			},
			[]string{"run", "split"},
		),
	}
}

// Record sets one gauge per metric and counts examples scored. The split
// prefix is stripped from metric names, so "eval_accuracy" becomes
// metric="accuracy".
func (r *Recorder) Record(split string, m trainer.Metrics, examples int) {
	for name, v := range m {
		r.metricGauge.With(prometheus.Labels{
			"run":    r.run,
			"split":  split,
			"metric": strings.TrimPrefix(name, split+"_"),
		}).Set(v)
	}
	r.exampleCount.With(prometheus.Labels{"run": r.run, "split": split}).Add(float64(examples))
}

// Fail counts a failed scoring pass for split.
func (r *Recorder) Fail(split string) {
	r.failureCount.With(prometheus.Labels{"run": r.run, "split": split}).Inc()
}
