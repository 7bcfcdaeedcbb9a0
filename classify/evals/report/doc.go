/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package report writes the human-readable outputs of a prediction run.

# Files

  - predictions.txt: a tab-separated "index\tprediction" table with one row
    per example. Single-label rows hold the class name, multi-label rows a
    JSON array of names in registry order, regression rows the raw value.
  - prediction_report.txt: confusion matrices followed by a classification
    report, both rendered as markdown tables. Only written for labeled
    classification splits.

# Coordination

In a multi-process run every rank reaches the report step. Writer consults
its IsCoordinator predicate first and writes nothing when it returns false.

	w := &report.Writer{
		Dir:           outputDir,
		Encoder:       enc,
		Names:         reg.Names(),
		Threshold:     0,
		IsCoordinator: tr.IsWorldProcessZero,
	}
	paths, err := w.Write(ctx, out)
*/
package report
