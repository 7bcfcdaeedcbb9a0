/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import "fmt"

// ConfusionMatrix returns the k x k matrix whose entry [i][j] counts
// examples with gold class i predicted as class j.
func ConfusionMatrix(gold, pred []int, k int) ([][]int, error) {
	if err := sameLength(len(gold), len(pred)); err != nil {
		return nil, err
	}
	m := make([][]int, k)
	for i := range m {
		m[i] = make([]int, k)
	}
	for i := range gold {
		g, p := gold[i], pred[i]
		if g < 0 || g >= k || p < 0 || p >= k {
			return nil, fmt.Errorf("row %d: class pair (%d, %d) outside [0, %d)", i, g, p, k)
		}
		m[g][p]++
	}
	return m, nil
}

// BinaryMatrix is a one-vs-rest confusion matrix laid out as
// [[TN FP] [FN TP]].
type BinaryMatrix [2][2]int

func (b BinaryMatrix) TN() int { return b[0][0] }
func (b BinaryMatrix) FP() int { return b[0][1] }
func (b BinaryMatrix) FN() int { return b[1][0] }
func (b BinaryMatrix) TP() int { return b[1][1] }

// MultilabelConfusionMatrix returns one BinaryMatrix per label column.
func MultilabelConfusionMatrix(gold, pred [][]bool) ([]BinaryMatrix, error) {
	if err := sameShape(gold, pred); err != nil {
		return nil, err
	}
	out := make([]BinaryMatrix, len(gold[0]))
	for i := range gold {
		for j := range gold[i] {
			out[j][b2i(gold[i][j])][b2i(pred[i][j])]++
		}
	}
	return out, nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
