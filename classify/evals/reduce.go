/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"fmt"

	"chainguard.dev/textclassify/classify/labels"
)

// Argmax returns the index of the largest score in each row. Ties go to
// the lowest index.
func Argmax(scores [][]float64) []int {
	out := make([]int, len(scores))
	for i, row := range scores {
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		out[i] = best
	}
	return out
}

// Threshold marks each score strictly greater than threshold as positive.
func Threshold(scores [][]float64, threshold float64) [][]bool {
	out := make([][]bool, len(scores))
	for i, row := range scores {
		out[i] = make([]bool, len(row))
		for j, v := range row {
			out[i][j] = v > threshold
		}
	}
	return out
}

// GoldBools marks each gold value equal to 1 as positive.
func GoldBools(labelIDs [][]float64) [][]bool {
	out := make([][]bool, len(labelIDs))
	for i, row := range labelIDs {
		out[i] = make([]bool, len(row))
		for j, v := range row {
			out[i][j] = v == 1
		}
	}
	return out
}

// GoldIDs returns the single-label gold id of each row.
func GoldIDs(labelIDs [][]float64) ([]int, error) {
	out := make([]int, len(labelIDs))
	for i, row := range labelIDs {
		if len(row) != 1 {
			return nil, fmt.Errorf("row %d has %d gold values, want 1", i, len(row))
		}
		out[i] = int(row[0])
	}
	return out, nil
}

// Targets reduces raw outputs to label targets for decoding.
func Targets(problem labels.ProblemType, threshold float64, scores [][]float64) []labels.Target {
	out := make([]labels.Target, len(scores))
	switch problem {
	case labels.SingleLabel:
		for i, id := range Argmax(scores) {
			out[i] = labels.Target{ID: id}
		}
	case labels.MultiLabel:
		for i, row := range Threshold(scores, threshold) {
			out[i] = labels.Target{Hot: hotVector(row)}
		}
	case labels.Regression:
		for i, row := range scores {
			if len(row) > 0 {
				out[i] = labels.Target{Value: row[0]}
			}
		}
	}
	return out
}

func hotVector(row []bool) []int {
	hot := make([]int, len(row))
	for j, set := range row {
		if set {
			hot[j] = 1
		}
	}
	return hot
}
