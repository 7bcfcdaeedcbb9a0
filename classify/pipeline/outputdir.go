/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"chainguard.dev/textclassify/classify/trainer"
	"github.com/chainguard-dev/clog"
)

// ErrOutputDirNotEmpty is returned when training would write into a
// non-empty output directory that holds no checkpoint to resume from.
var ErrOutputDirNotEmpty = errors.New("output directory already exists and is not empty")

// checkOutputDir applies the output directory guard and returns the
// checkpoint to resume from, if any.
func checkOutputDir(ctx context.Context, t *TrainingArguments) (string, error) {
	if !t.DoTrain || t.OverwriteOutputDir {
		return "", nil
	}
	entries, err := os.ReadDir(t.OutputDir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("reading output directory: %w", err)
	}

	last, err := trainer.LastCheckpoint(t.OutputDir)
	if err != nil {
		return "", err
	}
	if last == "" {
		if len(entries) > 0 {
			return "", fmt.Errorf("%w: %s (use --overwrite-output-dir to train from scratch)", ErrOutputDirNotEmpty, t.OutputDir)
		}
		return "", nil
	}
	clog.FromContext(ctx).Infof("Checkpoint detected, resuming training at %s. To avoid this behavior, change --output-dir or add --overwrite-output-dir to train from scratch.", last)
	return last, nil
}
