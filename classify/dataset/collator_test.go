/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package dataset_test

import (
	"testing"

	"chainguard.dev/textclassify/classify/dataset"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSelectCollator(t *testing.T) {
	tests := []struct {
		name           string
		padToMaxLength bool
		fp16           bool
		want           dataset.Collator
	}{{
		name:           "already padded",
		padToMaxLength: true,
		fp16:           true,
		want:           dataset.DefaultCollator{},
	}, {
		name: "mixed precision",
		fp16: true,
		want: dataset.PaddingCollator{PadToMultipleOf: 8},
	}, {
		name: "dynamic",
		want: dataset.PaddingCollator{},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dataset.SelectCollator(tt.padToMaxLength, tt.fp16)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SelectCollator() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPaddingCollator(t *testing.T) {
	examples := []dataset.Encoded{
		{InputIDs: []int{5, 6, 7}, Label: []float64{1}},
		{InputIDs: []int{8}, AttentionMask: []int{1}, Label: []float64{0}},
	}

	b, err := dataset.PaddingCollator{PadTokenID: 1, PadToMultipleOf: 4}.Collate(examples)
	require.NoError(t, err)

	if diff := cmp.Diff([][]int{{5, 6, 7, 1}, {8, 1, 1, 1}}, b.InputIDs); diff != "" {
		t.Errorf("InputIDs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int{{1, 1, 1, 0}, {1, 0, 0, 0}}, b.AttentionMask); diff != "" {
		t.Errorf("AttentionMask mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]float64{{1}, {0}}, b.Labels); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultCollatorRejectsRagged(t *testing.T) {
	examples := []dataset.Encoded{{InputIDs: []int{1, 2}}, {InputIDs: []int{1}}}
	if _, err := (dataset.DefaultCollator{}).Collate(examples); err == nil {
		t.Error("Collate() error = nil, want ragged error")
	}
}
