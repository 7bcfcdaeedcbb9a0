/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package tracking records the metrics of a run.

Experiment-tracking settings are read from the environment once, into a
Config, and passed explicitly to whatever needs them:

	cfg, err := tracking.LoadConfig(ctx, runName)
	args.Environment = cfg.Environment()

A Reporter logs each split's metrics, saves them as <split>_results.json
and all_results.json, updates the Prometheus recorder and OpenTelemetry
counters, and finally exports the Prometheus registry to metrics.prom. File
writes only happen on the coordinating process.
*/
package tracking
