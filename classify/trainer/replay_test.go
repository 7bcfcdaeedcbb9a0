/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package trainer_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"chainguard.dev/textclassify/classify/dataset"
	"chainguard.dev/textclassify/classify/trainer"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func labeled(rows ...float64) *dataset.Dataset {
	ds := &dataset.Dataset{Split: dataset.Validation}
	for _, r := range rows {
		ds.Examples = append(ds.Examples, dataset.Encoded{Label: []float64{r}})
	}
	return ds
}

func newReplay(t *testing.T, dir string, rank int, fn trainer.MetricsFunc) trainer.Trainer {
	t.Helper()
	backend, err := trainer.Lookup("replay")
	require.NoError(t, err)

	tok, err := backend.Tokenizer(context.Background(), trainer.TokenizerSpec{})
	require.NoError(t, err)
	if tok != nil {
		t.Errorf("replay Tokenizer() = %v, want nil", tok)
	}

	tr, err := backend.NewTrainer(context.Background(), trainer.Options{
		Args:           trainer.Args{OutputDir: dir, LocalRank: rank},
		ComputeMetrics: fn,
	})
	require.NoError(t, err)
	return tr
}

func TestReplayEvaluate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(trainer.PredictionsFile(dir, "eval"),
		[]byte(`{"predictions": [[0.1, 0.9], [0.8, 0.2]]}`), 0o600))

	var seen trainer.EvalPrediction
	tr := newReplay(t, dir, -1, func(p trainer.EvalPrediction) (trainer.Metrics, error) {
		seen = p
		return trainer.Metrics{"accuracy": 0.5}, nil
	})

	got, err := tr.Evaluate(context.Background(), labeled(1, 1))
	require.NoError(t, err)

	if diff := cmp.Diff(trainer.Metrics{"eval_accuracy": 0.5}, got); diff != "" {
		t.Errorf("Evaluate() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]float64{{1}, {1}}, seen.LabelIDs); diff != "" {
		t.Errorf("LabelIDs mismatch (-want +got):\n%s", diff)
	}
	if !tr.IsWorldProcessZero() {
		t.Error("IsWorldProcessZero() = false for rank -1")
	}
}

func TestReplayPredictUnlabeled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(trainer.PredictionsFile(dir, "predict"),
		[]byte(`{"predictions": [[0.3]]}`), 0o600))

	called := false
	tr := newReplay(t, dir, 1, func(trainer.EvalPrediction) (trainer.Metrics, error) {
		called = true
		return nil, nil
	})

	ds := &dataset.Dataset{Examples: []dataset.Encoded{{Text: "no label"}}}
	out, err := tr.Predict(context.Background(), ds, "predict")
	require.NoError(t, err)
	if called {
		t.Error("metrics computed for unlabeled split")
	}
	if out.LabelIDs != nil {
		t.Errorf("LabelIDs = %v, want nil", out.LabelIDs)
	}
	if tr.IsWorldProcessZero() {
		t.Error("IsWorldProcessZero() = true for rank 1")
	}
}

func TestReplayErrors(t *testing.T) {
	dir := t.TempDir()
	tr := newReplay(t, dir, 0, nil)

	if _, err := tr.Train(context.Background(), ""); !errors.Is(err, trainer.ErrNotSupported) {
		t.Errorf("Train() error = %v, want ErrNotSupported", err)
	}
	if _, err := tr.Predict(context.Background(), labeled(0), "predict"); err == nil {
		t.Error("Predict() without dump error = nil")
	}

	require.NoError(t, os.WriteFile(trainer.PredictionsFile(dir, "predict"),
		[]byte(`{"predictions": [[0.3], [0.4]]}`), 0o600))
	if _, err := tr.Predict(context.Background(), labeled(0), "predict"); err == nil {
		t.Error("Predict() with row mismatch error = nil")
	}
}

func TestLookupUnknownBackend(t *testing.T) {
	if _, err := trainer.Lookup("tensorflow"); err == nil {
		t.Error("Lookup() error = nil")
	}
	if diff := cmp.Diff([]string{"replay"}, trainer.Backends()); diff != "" {
		t.Errorf("Backends() mismatch (-want +got):\n%s", diff)
	}
}

func TestMetricsWithPrefix(t *testing.T) {
	m := trainer.Metrics{"accuracy": 1, "eval_loss": 0.2}
	want := trainer.Metrics{"eval_accuracy": 1, "eval_loss": 0.2}
	if diff := cmp.Diff(want, m.WithPrefix("eval")); diff != "" {
		t.Errorf("WithPrefix() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"eval_accuracy", "eval_loss"}, want.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}
