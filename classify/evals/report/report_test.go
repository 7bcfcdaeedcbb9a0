/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report_test

import (
	"strings"
	"testing"

	"chainguard.dev/textclassify/classify/evals/report"
	"chainguard.dev/textclassify/classify/labels"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func encoder(t *testing.T, problem labels.ProblemType, names ...string) labels.Encoder {
	t.Helper()
	var reg *labels.Registry
	if len(names) > 0 {
		var err error
		reg, err = labels.NewRegistry(names...)
		require.NoError(t, err)
	}
	enc, err := labels.NewEncoder(problem, reg)
	require.NoError(t, err)
	return enc
}

func TestWritePredictions(t *testing.T) {
	tests := []struct {
		name    string
		enc     labels.Encoder
		targets []labels.Target
		want    string
	}{{
		name:    "single label",
		enc:     encoder(t, labels.SingleLabel, "approval", "dismissal"),
		targets: []labels.Target{{ID: 1}, {ID: 0}},
		want:    "index\tprediction\n0\tdismissal\n1\tapproval\n",
	}, {
		name:    "multi label",
		enc:     encoder(t, labels.MultiLabel, "civil", "penal", "public"),
		targets: []labels.Target{{Hot: []int{1, 0, 1}}, {Hot: []int{0, 0, 0}}},
		want:    "index\tprediction\n0\t[\"civil\",\"public\"]\n1\t[]\n",
	}, {
		name:    "regression",
		enc:     encoder(t, labels.Regression),
		targets: []labels.Target{{Value: 0.25}},
		want:    "index\tprediction\n0\t0.25\n",
	}, {
		name: "empty",
		enc:  encoder(t, labels.SingleLabel, "a"),
		want: "index\tprediction\n",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			require.NoError(t, report.WritePredictions(&sb, tt.enc, tt.targets))
			if diff := cmp.Diff(tt.want, sb.String()); diff != "" {
				t.Errorf("WritePredictions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWritePredictionsUnknownID(t *testing.T) {
	var sb strings.Builder
	err := report.WritePredictions(&sb, encoder(t, labels.SingleLabel, "a"), []labels.Target{{ID: 4}})
	if err == nil {
		t.Fatal("WritePredictions() error = nil, want error")
	}
}

// cells returns the trimmed cells of markdown table lines whose first cell
// is name.
func cells(text, name string) [][]string {
	var out [][]string
	for _, line := range strings.Split(text, "\n") {
		parts := strings.Split(line, "|")
		if len(parts) < 3 {
			continue
		}
		row := make([]string, 0, len(parts)-2)
		for _, p := range parts[1 : len(parts)-1] {
			row = append(row, strings.TrimSpace(p))
		}
		if row[0] == name {
			out = append(out, row)
		}
	}
	return out
}

func TestWriteReportMultiLabelAllCorrect(t *testing.T) {
	gold := [][]float64{{1, 0}, {0, 1}, {1, 1}}
	scores := [][]float64{{3, -3}, {-3, 3}, {3, 3}}

	var sb strings.Builder
	require.NoError(t, report.WriteReport(&sb, labels.MultiLabel, []string{"civil", "penal"}, gold, scores, 0))
	got := sb.String()

	wantPrefix := "Multilabel Confusion Matrix\n" + strings.Repeat("=", 75) + "\n\nreading help:\nTN FP\nFN TP\n\ncivil\n"
	if !strings.HasPrefix(got, wantPrefix) {
		t.Errorf("report prefix = %q, want %q", got[:min(len(got), len(wantPrefix))], wantPrefix)
	}

	negatives := cells(got, "gold 0")
	positives := cells(got, "gold 1")
	if len(negatives) != 2 || len(positives) != 2 {
		t.Fatalf("got %d/%d matrix rows, want 2/2:\n%s", len(negatives), len(positives), got)
	}
	for i := range negatives {
		if fp := negatives[i][2]; fp != "0" {
			t.Errorf("matrix %d: FP = %s, want 0", i, fp)
		}
		if fn := positives[i][1]; fn != "0" {
			t.Errorf("matrix %d: FN = %s, want 0", i, fn)
		}
	}

	idx := strings.Index(got, "\n\n\n\nClassification Report\n"+strings.Repeat("=", 75)+"\n\n")
	if idx < 0 {
		t.Fatalf("classification report heading missing:\n%s", got)
	}
	for _, row := range []string{"micro avg", "macro avg", "weighted avg", "samples avg"} {
		r := cells(got[idx:], row)
		if len(r) != 1 {
			t.Fatalf("row %q missing:\n%s", row, got)
		}
		if diff := cmp.Diff([]string{row, "1.00", "1.00", "1.00", "4"}, r[0]); diff != "" {
			t.Errorf("row %q mismatch (-want +got):\n%s", row, diff)
		}
	}
}

func TestWriteReportSingleLabel(t *testing.T) {
	gold := [][]float64{{0}, {0}, {1}, {2}}
	scores := [][]float64{{2, 1, 0}, {0, 2, 1}, {0, 2, 1}, {0, 1, 2}}
	names := []string{"approval", "dismissal", "partial"}

	var sb strings.Builder
	require.NoError(t, report.WriteReport(&sb, labels.SingleLabel, names, gold, scores, 0))
	got := sb.String()

	if !strings.HasPrefix(got, "Singlelabel Confusion Matrix\n") {
		t.Errorf("report does not start with the single-label title:\n%s", got)
	}

	rows := cells(got, "approval")
	if len(rows) != 2 {
		t.Fatalf("got %d approval rows, want matrix and report rows:\n%s", len(rows), got)
	}
	if diff := cmp.Diff([]string{"approval", "1", "1", "0"}, rows[0]); diff != "" {
		t.Errorf("confusion row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"approval", "1.00", "0.50", "0.67", "2"}, rows[1]); diff != "" {
		t.Errorf("report row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"accuracy", "", "", "0.75", "4"}}, cells(got, "accuracy")); diff != "" {
		t.Errorf("accuracy row mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReportRegression(t *testing.T) {
	var sb strings.Builder
	if err := report.WriteReport(&sb, labels.Regression, nil, [][]float64{{1}}, [][]float64{{1}}, 0); err == nil {
		t.Error("WriteReport(regression) error = nil, want error")
	}
}
