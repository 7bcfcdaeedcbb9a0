/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package trainer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// CheckpointPrefix names the checkpoint directories a framework writes
// into the output directory.
const CheckpointPrefix = "checkpoint"

var checkpointRE = regexp.MustCompile(`^` + CheckpointPrefix + `-(\d+)$`)

// LastCheckpoint returns the checkpoint-N directory under dir with the
// highest N, or "" when there is none.
func LastCheckpoint(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", dir, err)
	}

	best, bestStep := "", -1
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := checkpointRE.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		step, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if step > bestStep {
			best, bestStep = e.Name(), step
		}
	}
	if best == "" {
		return "", nil
	}
	return filepath.Join(dir, best), nil
}
