/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chainguard.dev/textclassify/classify/evals/report"
	"chainguard.dev/textclassify/classify/labels"
	"chainguard.dev/textclassify/classify/trainer"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWriterSkipsNonCoordinator(t *testing.T) {
	dir := t.TempDir()
	w := &report.Writer{
		Dir:           dir,
		Encoder:       encoder(t, labels.SingleLabel, "a", "b"),
		Names:         []string{"a", "b"},
		IsCoordinator: func() bool { return false },
	}

	paths, err := w.Write(context.Background(), &trainer.PredictionOutput{
		Predictions: [][]float64{{1, 0}},
		LabelIDs:    [][]float64{{0}},
	})
	require.NoError(t, err)

	if len(paths) != 0 {
		t.Errorf("Write() paths = %v, want none", paths)
	}
	if got := listDir(t, dir); len(got) != 0 {
		t.Errorf("output dir = %v, want empty", got)
	}
}

func TestWriterWritesFiles(t *testing.T) {
	tests := []struct {
		name    string
		problem labels.ProblemType
		out     *trainer.PredictionOutput
		want    []string
	}{{
		name:    "labeled",
		problem: labels.MultiLabel,
		out: &trainer.PredictionOutput{
			Predictions: [][]float64{{1, -1}, {-1, 1}},
			LabelIDs:    [][]float64{{1, 0}, {0, 1}},
		},
		want: []string{report.ReportFile, report.PredictionsFile},
	}, {
		name:    "unlabeled",
		problem: labels.MultiLabel,
		out: &trainer.PredictionOutput{
			Predictions: [][]float64{{1, -1}},
		},
		want: []string{report.PredictionsFile},
	}, {
		name:    "regression",
		problem: labels.Regression,
		out: &trainer.PredictionOutput{
			Predictions: [][]float64{{0.5}},
			LabelIDs:    [][]float64{{1}},
		},
		want: []string{report.PredictionsFile},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			names := []string{"civil", "penal"}
			if tt.problem == labels.Regression {
				names = nil
			}
			w := &report.Writer{
				Dir:           dir,
				Encoder:       encoder(t, tt.problem, names...),
				Names:         names,
				IsCoordinator: func() bool { return true },
			}

			paths, err := w.Write(context.Background(), tt.out)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, listDir(t, dir)); diff != "" {
				t.Errorf("output dir mismatch (-want +got):\n%s", diff)
			}
			for _, p := range paths {
				if filepath.Dir(p) != dir {
					t.Errorf("path %s is outside %s", p, dir)
				}
			}
		})
	}
}

func TestWriterReportErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	w := &report.Writer{
		Dir:     dir,
		Encoder: encoder(t, labels.SingleLabel, "approval", "dismissal"),
		Names:   []string{"approval", "dismissal"},
	}

	// One gold row for two predictions cannot be reported.
	_, err := w.Write(context.Background(), &trainer.PredictionOutput{
		Predictions: [][]float64{{1, 0}, {0, 1}},
		LabelIDs:    [][]float64{{0}},
	})
	if err == nil {
		t.Fatal("Write() error = nil, want report error")
	}
	if got := listDir(t, dir); len(got) != 0 {
		t.Errorf("output dir = %v, want empty", got)
	}
}

func TestWriterOutOfOrderRegistry(t *testing.T) {
	reg, err := labels.ParseRegistry(strings.NewReader(`{
	  "id2label": {"0": "approval", "1": "dismissal"},
	  "label2id": {"dismissal": "1", "approval": "0"}
	}`))
	require.NoError(t, err)
	enc, err := labels.NewEncoder(labels.SingleLabel, reg)
	require.NoError(t, err)

	dir := t.TempDir()
	w := &report.Writer{Dir: dir, Encoder: enc, Names: reg.Names()}
	_, err = w.Write(context.Background(), &trainer.PredictionOutput{
		Predictions: [][]float64{{0.9, 0.1}, {0.8, 0.2}},
		LabelIDs:    [][]float64{{0}, {0}},
	})
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, report.PredictionsFile))
	require.NoError(t, err)
	if diff := cmp.Diff("index\tprediction\n0\tapproval\n1\tapproval\n", string(b)); diff != "" {
		t.Errorf("predictions.txt mismatch (-want +got):\n%s", diff)
	}

	b, err = os.ReadFile(filepath.Join(dir, report.ReportFile))
	require.NoError(t, err)
	rows := cells(string(b), "approval")
	require.Len(t, rows, 2)
	// Confusion row: both gold approvals predicted as approval.
	if diff := cmp.Diff([]string{"approval", "2", "0"}, rows[0]); diff != "" {
		t.Errorf("confusion row mismatch (-want +got):\n%s", diff)
	}
	// Classification row: support of approval is 2.
	if got := rows[1][len(rows[1])-1]; got != "2" {
		t.Errorf("approval support = %s, want 2", got)
	}
}
