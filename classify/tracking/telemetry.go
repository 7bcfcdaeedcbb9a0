/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracking

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope of Telemetry.
const MeterName = "chainguard.dev/textclassify"

// Telemetry provides OpenTelemetry counters for scoring passes. Counters
// that fail to initialize degrade to no-ops.
type Telemetry struct {
	passes   metric.Int64Counter
	examples metric.Int64Counter
	base     []attribute.KeyValue
}

// NewTelemetry creates the counters on mp, or the global provider when mp
// is nil.
func NewTelemetry(mp metric.MeterProvider, cfg *Config) *Telemetry {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(MeterName, metric.WithInstrumentationVersion("1.0.0"))

	passes, err := meter.Int64Counter("textclassify.split.passes",
		metric.WithDescription("The number of scoring passes over a split"),
		metric.WithUnit("{passes}"))
	if err != nil {
		slog.Warn("Failed to create passes counter, metrics will be disabled", "error", err)
		passes = noop.Int64Counter{}
	}

	examples, err := meter.Int64Counter("textclassify.split.examples",
		metric.WithDescription("The number of examples scored"),
		metric.WithUnit("{examples}"))
	if err != nil {
		slog.Warn("Failed to create examples counter, metrics will be disabled", "error", err)
		examples = noop.Int64Counter{}
	}

	t := &Telemetry{passes: passes, examples: examples}
	if cfg != nil {
		t.base = []attribute.KeyValue{
			attribute.String("project", cfg.Project),
			attribute.String("run_group", cfg.RunGroup),
		}
	}
	return t
}

// RecordSplit counts one pass over split with n examples.
func (t *Telemetry) RecordSplit(ctx context.Context, split string, n int, attrs ...attribute.KeyValue) {
	all := make([]attribute.KeyValue, 0, len(t.base)+len(attrs)+1)
	all = append(all, t.base...)
	all = append(all, attribute.String("split", split))
	all = append(all, attrs...)

	t.passes.Add(ctx, 1, metric.WithAttributes(all...))
	t.examples.Add(ctx, int64(n), metric.WithAttributes(all...))
}
