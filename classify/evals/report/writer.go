/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"chainguard.dev/textclassify/classify/evals"
	"chainguard.dev/textclassify/classify/labels"
	"chainguard.dev/textclassify/classify/trainer"
	"github.com/chainguard-dev/clog"
)

// Writer writes the report files of a prediction run.
type Writer struct {
	// Dir is the output directory.
	Dir     string
	Encoder labels.Encoder
	// Names are the class names in registry order, so Names[id] names id.
	Names     []string
	Threshold float64
	// IsCoordinator guards every write. A nil predicate always writes.
	IsCoordinator func() bool
}

// Write writes predictions.txt and, for labeled classification output,
// prediction_report.txt. It returns the paths written, which are empty on
// non-coordinating processes.
func (w *Writer) Write(ctx context.Context, out *trainer.PredictionOutput) ([]string, error) {
	log := clog.FromContext(ctx).With("dir", w.Dir)
	if w.IsCoordinator != nil && !w.IsCoordinator() {
		log.Debug("Skipping report files on non-coordinating process")
		return nil, nil
	}

	problem := w.Encoder.Problem()

	// Both files are rendered before either is written, so a failed report
	// leaves no partial output behind.
	var preds bytes.Buffer
	targets := evals.Targets(problem, w.Threshold, out.Predictions)
	if err := WritePredictions(&preds, w.Encoder, targets); err != nil {
		return nil, fmt.Errorf("writing predictions: %w", err)
	}

	var rep *bytes.Buffer
	switch {
	case !problem.IsClassification():
	case out.LabelIDs == nil:
		log.Warn("Prediction split has no labels, skipping report")
	default:
		rep = &bytes.Buffer{}
		if err := WriteReport(rep, problem, w.Names, out.LabelIDs, out.Predictions, w.Threshold); err != nil {
			return nil, fmt.Errorf("writing report: %w", err)
		}
	}

	var paths []string
	path, err := w.writeFile(PredictionsFile, preds.Bytes())
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)
	if rep != nil {
		path, err := w.writeFile(ReportFile, rep.Bytes())
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	log.With("files", len(paths)).Info("Wrote prediction reports")
	return paths, nil
}

func (w *Writer) writeFile(name string, b []byte) (string, error) {
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
