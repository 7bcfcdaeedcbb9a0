/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals_test

import (
	"strings"
	"testing"

	"chainguard.dev/textclassify/classify/evals"
	"chainguard.dev/textclassify/classify/trainer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	rec := evals.NewRecorder(reg, "xlm-r")

	rec.Record("eval", trainer.Metrics{"eval_accuracy": 0.9, "eval_f1_score": 0.75}, 10)
	rec.Record("eval", trainer.Metrics{"eval_accuracy": 0.8}, 5)
	rec.Fail("predict")

	const want = `
# HELP textclassify_examples_scored_total Total number of examples scored
# TYPE textclassify_examples_scored_total counter
textclassify_examples_scored_total{run="xlm-r",split="eval"} 15
# HELP textclassify_metric Most recent value of an evaluation metric
# TYPE textclassify_metric gauge
textclassify_metric{metric="accuracy",run="xlm-r",split="eval"} 0.8
textclassify_metric{metric="f1_score",run="xlm-r",split="eval"} 0.75
# HELP textclassify_scoring_failures_total Total number of failed scoring passes
# TYPE textclassify_scoring_failures_total counter
textclassify_scoring_failures_total{run="xlm-r",split="predict"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want),
		"textclassify_examples_scored_total",
		"textclassify_metric",
		"textclassify_scoring_failures_total",
	); err != nil {
		t.Error(err)
	}
}
