/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements finetune, which trains, evaluates and predicts
// with a text classifier and writes metrics and prediction reports.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chainguard.dev/textclassify/classify/artifacts"
	"chainguard.dev/textclassify/classify/pipeline"
	"chainguard.dev/textclassify/classify/tracking"
	"chainguard.dev/textclassify/classify/trainer"
	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		clog.FatalContextf(ctx, "finetune: %v", err)
	}
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	args := pipeline.DefaultArguments()
	var configPath, envFile string

	cmd := &cobra.Command{
		Use:   "finetune",
		Short: "Fine-tune and evaluate a text classifier",
		Long: `Fine-tune and evaluate a pretrained text classifier on judgement data.

Reads train/val/test CSV splits with "text" and "label" columns and a
labels.json registry, then trains, evaluates and predicts as requested.
Metrics are saved as <split>_results.json, all_results.json and
metrics.prom; predictions go to predictions.txt and prediction_report.txt.

Tracking settings are read from WANDB_PROJECT, WANDB_MODE,
WANDB_RUN_GROUP and WANDB_RUN_ID, optionally seeded from --env-file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := args
			if configPath != "" {
				var err error
				if a, err = pipeline.LoadArguments(configPath, cmd.Flags()); err != nil {
					return err
				}
			}
			ctx := withLogger(cmd.Context(), logOut, a.Training.LocalRank)
			if envFile != "" {
				// Variables already set in the environment win.
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("loading env file: %w", err)
				}
			}
			return run(ctx, a)
		},
	}

	fs := cmd.Flags()
	args.AddFlags(fs)
	fs.StringVar(&configPath, "config", "", "YAML file of arguments; flags take precedence")
	fs.StringVar(&envFile, "env-file", "", "dotenv file of tracking variables; the process environment takes precedence")
	cmd.Flags().SortFlags = false
	return cmd
}

// withLogger installs a text logger at INFO on the coordinating process
// and WARN on the others.
func withLogger(ctx context.Context, w io.Writer, localRank int) context.Context {
	level := slog.LevelInfo
	if localRank > 0 {
		level = slog.LevelWarn
	}
	logger := clog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return clog.WithLogger(ctx, logger)
}

func run(ctx context.Context, a *pipeline.Arguments) error {
	if err := a.Validate(); err != nil {
		return err
	}

	trackCfg, err := tracking.LoadConfig(ctx, a.Training.RunName)
	if err != nil {
		return err
	}

	backend, err := trainer.Lookup(a.Training.Backend)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(trainer.Backends(), ", "))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	p := &pipeline.Pipeline{
		Args:     a,
		Backend:  backend,
		Tracking: trackCfg,
		Metrics:  reg,
	}
	if a.Training.UploadTo != "" {
		up, err := artifacts.NewUploader(ctx, a.Training.UploadTo)
		if err != nil {
			return err
		}
		defer up.Close()
		p.Uploader = up
	}

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	clog.InfoContextf(ctx, "Run %s (%s) finished, wrote %d files to %s", a.Training.RunName, trackCfg.RunID, len(res.Files), a.Training.OutputDir)
	return nil
}
