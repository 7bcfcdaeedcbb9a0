/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package evals computes classification metrics from raw model outputs.

# Reductions

Raw outputs are reduced to decisions before scoring:

  - Single-label: the arg-max over the class axis (first maximum wins).
  - Multi-label: each score is compared independently against a threshold;
    a score equal to the threshold is negative. Gold values equal to 1 are
    positive.

# Metrics

ComputeMetrics returns the trainer.MetricsFunc for a problem type. For
classification it reports accuracy plus precision, recall and F1 averaged
over labels weighted by their support, which keeps frequent labels from
being drowned out on imbalanced data. Multi-label accuracy is exact-match
accuracy over whole label sets. Undefined ratios (no predicted or no gold
positives) count as 0.

	fn := evals.ComputeMetrics(labels.MultiLabel, 0)
	m, err := fn(trainer.EvalPrediction{Predictions: scores, LabelIDs: gold})

# Reports

ConfusionMatrix, MultilabelConfusionMatrix and Classify produce the data
rendered by the report package.

# Recording

Recorder exports metric values as Prometheus gauges labeled by split.
*/
package evals
