/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package trainer_test

import (
	"os"
	"path/filepath"
	"testing"

	"chainguard.dev/textclassify/classify/trainer"
	"github.com/stretchr/testify/require"
)

func TestLastCheckpoint(t *testing.T) {
	dir := t.TempDir()

	got, err := trainer.LastCheckpoint(dir)
	require.NoError(t, err)
	if got != "" {
		t.Errorf("LastCheckpoint(empty) = %q, want empty", got)
	}

	for _, name := range []string{"checkpoint-500", "checkpoint-1500", "checkpoint-900", "checkpoint-x", "runs"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checkpoint-9999"), nil, 0o600))

	got, err = trainer.LastCheckpoint(dir)
	require.NoError(t, err)
	if want := filepath.Join(dir, "checkpoint-1500"); got != want {
		t.Errorf("LastCheckpoint() = %q, want %q", got, want)
	}

	if _, err := trainer.LastCheckpoint(filepath.Join(dir, "nope")); err == nil {
		t.Error("LastCheckpoint(missing) error = nil")
	}
}
