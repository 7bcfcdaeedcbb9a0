/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package trainer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"chainguard.dev/textclassify/classify/dataset"
	"github.com/chainguard-dev/clog"
)

func init() {
	Register("replay", Replay{})
}

// Replay is a Backend that scores splits from model outputs dumped by an
// earlier framework run. It cannot train.
//
// For a split scored under prefix p it reads <InputDir>/<p>_predictions.json:
//
//	{"predictions": [[-1.2, 0.7], [0.3, -0.4]]}
type Replay struct{}

// PredictionsFile returns the dump path for prefix under dir.
func PredictionsFile(dir, prefix string) string {
	return filepath.Join(dir, prefix+"_predictions.json")
}

// Tokenizer implements Backend. Dumped outputs need no tokenization.
func (Replay) Tokenizer(context.Context, TokenizerSpec) (dataset.Tokenizer, error) {
	return nil, nil
}

// NewTrainer implements Backend.
func (Replay) NewTrainer(ctx context.Context, opts Options) (Trainer, error) {
	dir := opts.Args.InputDir
	if dir == "" {
		dir = opts.Args.OutputDir
	}
	if dir == "" {
		return nil, errors.New("replay backend needs an input or output directory")
	}
	clog.FromContext(ctx).With("dir", dir).Info("Replaying dumped model outputs")
	return &replayTrainer{opts: opts, dir: dir}, nil
}

type replayTrainer struct {
	opts Options
	dir  string
}

type dump struct {
	Predictions [][]float64 `json:"predictions"`
}

func (r *replayTrainer) load(prefix string, want int) ([][]float64, error) {
	path := PredictionsFile(r.dir, prefix)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dumped predictions: %w", err)
	}
	var d dump
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if len(d.Predictions) != want {
		return nil, fmt.Errorf("%s has %d rows, dataset has %d", path, len(d.Predictions), want)
	}
	return d.Predictions, nil
}

// Train implements Trainer
func (r *replayTrainer) Train(context.Context, string) (*TrainOutput, error) {
	return nil, fmt.Errorf("replay: train: %w", ErrNotSupported)
}

// Evaluate implements Trainer
func (r *replayTrainer) Evaluate(ctx context.Context, ds *dataset.Dataset) (Metrics, error) {
	if ds == nil {
		ds = r.opts.EvalDataset
	}
	if ds == nil {
		return nil, errors.New("no evaluation dataset")
	}
	out, err := r.Predict(ctx, ds, "eval")
	if err != nil {
		return nil, err
	}
	return out.Metrics, nil
}

// Predict implements Trainer
func (r *replayTrainer) Predict(ctx context.Context, ds *dataset.Dataset, prefix string) (*PredictionOutput, error) {
	preds, err := r.load(prefix, ds.Len())
	if err != nil {
		return nil, err
	}

	out := &PredictionOutput{
		Predictions: preds,
		LabelIDs:    ds.LabelIDs(),
		Metrics:     Metrics{},
	}
	if out.LabelIDs != nil && r.opts.ComputeMetrics != nil {
		m, err := r.opts.ComputeMetrics(EvalPrediction{Predictions: preds, LabelIDs: out.LabelIDs})
		if err != nil {
			return nil, fmt.Errorf("computing %s metrics: %w", prefix, err)
		}
		out.Metrics = m
	}
	out.Metrics = out.Metrics.WithPrefix(prefix)
	clog.FromContext(ctx).With("split", prefix).With("rows", len(preds)).Info("Replayed predictions")
	return out, nil
}

// SaveModel implements Trainer. Replay has no model to save.
func (r *replayTrainer) SaveModel(context.Context) error { return nil }

// SaveState implements Trainer. Replay has no state to save.
func (r *replayTrainer) SaveState(context.Context) error { return nil }

// IsWorldProcessZero implements Trainer. Replay runs on a single node, where
// local rank 0 (or -1 outside a distributed launch) is also world rank 0.
func (r *replayTrainer) IsWorldProcessZero() bool {
	return r.opts.Args.LocalRank <= 0
}
