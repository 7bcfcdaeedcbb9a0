/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package trainer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"chainguard.dev/textclassify/classify/dataset"
	"chainguard.dev/textclassify/classify/labels"
)

// ErrNotSupported is returned by backends for operations they cannot perform.
var ErrNotSupported = errors.New("operation not supported by trainer backend")

// Metrics maps metric names to values.
type Metrics map[string]float64

// WithPrefix returns a copy of m with every key prefixed by prefix + "_".
// Keys already carrying the prefix are left unchanged.
func (m Metrics) WithPrefix(prefix string) Metrics {
	out := make(Metrics, len(m))
	for k, v := range m {
		if len(k) > len(prefix) && k[:len(prefix)+1] == prefix+"_" {
			out[k] = v
			continue
		}
		out[prefix+"_"+k] = v
	}
	return out
}

// Keys returns the metric names in sorted order.
func (m Metrics) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EvalPrediction is what the metrics callback receives: one row of raw
// model outputs and one row of gold label values per example.
type EvalPrediction struct {
	Predictions [][]float64
	LabelIDs    [][]float64
}

// MetricsFunc turns raw predictions into scalar metrics.
type MetricsFunc func(EvalPrediction) (Metrics, error)

// TrainOutput is the result of a training run.
type TrainOutput struct {
	GlobalStep   int
	TrainingLoss float64
	Metrics      Metrics
}

// PredictionOutput is the result of a prediction run. LabelIDs is nil when
// the split carried no labels.
type PredictionOutput struct {
	Predictions [][]float64
	LabelIDs    [][]float64
	Metrics     Metrics
}

// Trainer is the capability supplied by the external training framework.
type Trainer interface {
	// Train trains on the configured training split, resuming from the
	// given checkpoint directory when non-empty.
	Train(ctx context.Context, resumeFrom string) (*TrainOutput, error)
	// Evaluate scores ds and returns metrics prefixed with "eval_".
	Evaluate(ctx context.Context, ds *dataset.Dataset) (Metrics, error)
	// Predict returns raw outputs for ds; metrics are prefixed with prefix.
	Predict(ctx context.Context, ds *dataset.Dataset, prefix string) (*PredictionOutput, error)
	// SaveModel persists the model and tokenizer to the output directory.
	SaveModel(ctx context.Context) error
	// SaveState persists trainer state alongside the model.
	SaveState(ctx context.Context) error
	// IsWorldProcessZero reports whether this process is the coordinating
	// process of the run.
	IsWorldProcessZero() bool
}

// ModelSpec identifies the pretrained model and its classification head.
type ModelSpec struct {
	NameOrPath   string
	ConfigName   string
	Revision     string
	CacheDir     string
	UseAuthToken bool
	Problem      labels.ProblemType
	NumLabels    int
	ID2Label     map[int]string
	Label2ID     map[string]int
	// FinetuningTask is recorded in the model config.
	FinetuningTask string
}

// TokenizerSpec identifies the pretrained tokenizer.
type TokenizerSpec struct {
	NameOrPath   string
	Revision     string
	CacheDir     string
	DoLowerCase  bool
	UseFast      bool
	UseAuthToken bool
}

// Args are the training hyperparameters forwarded to the framework.
type Args struct {
	OutputDir   string
	Seed        int
	FP16        bool
	LocalRank   int
	RunName     string
	ReportTo    string
	Environment map[string]string
	// InputDir is where a backend reads framework artifacts from.
	// Defaults to OutputDir.
	InputDir string
}

// Options configures a Trainer.
type Options struct {
	Model          ModelSpec
	Args           Args
	TrainDataset   *dataset.Dataset
	EvalDataset    *dataset.Dataset
	Collator       dataset.Collator
	Tokenizer      dataset.Tokenizer
	ComputeMetrics MetricsFunc
}

// Backend constructs tokenizers and trainers for one framework.
type Backend interface {
	// Tokenizer loads the tokenizer. A nil Tokenizer means the backend
	// consumes raw text and tokenizes internally.
	Tokenizer(ctx context.Context, spec TokenizerSpec) (dataset.Tokenizer, error)
	// NewTrainer constructs a trainer.
	NewTrainer(ctx context.Context, opts Options) (Trainer, error)
}

var (
	backendsMu sync.RWMutex
	backends   = map[string]Backend{}
)

// Register makes a backend available under name.
func Register(name string, b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = b
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown trainer backend %q", name)
	}
	return b, nil
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
