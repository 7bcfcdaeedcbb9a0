/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"chainguard.dev/textclassify/classify/evals"
	"chainguard.dev/textclassify/classify/trainer"
	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
)

// File names written under the output directory.
const (
	AllResultsFile = "all_results.json"
	PrometheusFile = "metrics.prom"
)

// ResultsFile returns the per-split results file name.
func ResultsFile(split string) string {
	return split + "_results.json"
}

// Reporter logs, saves and exports split metrics.
type Reporter struct {
	// Dir is the output directory.
	Dir string
	// IsCoordinator guards every file write. A nil predicate always writes.
	IsCoordinator func() bool

	// Recorder and Telemetry are optional.
	Recorder  *evals.Recorder
	Telemetry *Telemetry
	// Gatherer is exported by WritePrometheus.
	Gatherer prometheus.Gatherer
}

func (r *Reporter) coordinator() bool {
	return r.IsCoordinator == nil || r.IsCoordinator()
}

// Report logs and saves the metrics of split, and records them as
// Prometheus and OpenTelemetry series. examples is the number of examples
// scored.
func (r *Reporter) Report(ctx context.Context, split string, m trainer.Metrics, examples int) ([]string, error) {
	r.LogMetrics(ctx, split, m)
	if r.Recorder != nil {
		r.Recorder.Record(split, m, examples)
	}
	if r.Telemetry != nil {
		r.Telemetry.RecordSplit(ctx, split, examples)
	}
	return r.SaveMetrics(ctx, split, m)
}

// LogMetrics logs every metric of split in name order.
func (r *Reporter) LogMetrics(ctx context.Context, split string, m trainer.Metrics) {
	log := clog.FromContext(ctx)
	log.Infof("***** %s metrics *****", split)
	for _, k := range m.Keys() {
		log.Infof("  %s = %v", k, m[k])
	}
}

// SaveMetrics writes <split>_results.json and merges m into
// all_results.json. It returns the paths written.
func (r *Reporter) SaveMetrics(ctx context.Context, split string, m trainer.Metrics) ([]string, error) {
	if !r.coordinator() {
		return nil, nil
	}

	path := filepath.Join(r.Dir, ResultsFile(split))
	if err := writeJSON(path, m); err != nil {
		return nil, err
	}

	allPath := filepath.Join(r.Dir, AllResultsFile)
	all, err := readMetrics(allPath)
	if err != nil {
		return nil, err
	}
	for k, v := range m {
		all[k] = v
	}
	if err := writeJSON(allPath, all); err != nil {
		return nil, err
	}

	clog.FromContext(ctx).With("split", split).Debugf("Saved metrics to %s", path)
	return []string{path, allPath}, nil
}

// WritePrometheus exports the Gatherer in text format to metrics.prom.
func (r *Reporter) WritePrometheus(ctx context.Context) (string, error) {
	if r.Gatherer == nil || !r.coordinator() {
		return "", nil
	}
	path := filepath.Join(r.Dir, PrometheusFile)
	if err := prometheus.WriteToTextfile(path, r.Gatherer); err != nil {
		return "", fmt.Errorf("writing %s: %w", PrometheusFile, err)
	}
	clog.FromContext(ctx).Infof("Exported metrics to %s", path)
	return path, nil
}

func readMetrics(path string) (trainer.Metrics, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return trainer.Metrics{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	m := trainer.Metrics{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return m, nil
}

func writeJSON(path string, m trainer.Metrics) error {
	b, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
