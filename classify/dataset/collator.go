/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package dataset

import "fmt"

// Batch is a collated group of examples with rectangular inputs.
type Batch struct {
	InputIDs      [][]int
	AttentionMask [][]int
	TokenTypeIDs  [][]int
	Labels        [][]float64
}

// Collator batches encoded examples into fixed-shape inputs.
type Collator interface {
	Collate(examples []Encoded) (*Batch, error)
}

// SelectCollator picks the collator for the padding configuration:
// examples already padded to max length are stacked as-is; otherwise they
// are padded per batch, to a multiple of 8 under mixed precision.
func SelectCollator(padToMaxLength, fp16 bool) Collator {
	switch {
	case padToMaxLength:
		return DefaultCollator{}
	case fp16:
		return PaddingCollator{PadToMultipleOf: 8}
	default:
		return PaddingCollator{}
	}
}

// DefaultCollator stacks examples that already share a length.
type DefaultCollator struct{}

// Collate implements Collator
func (DefaultCollator) Collate(examples []Encoded) (*Batch, error) {
	b := &Batch{}
	for i, ex := range examples {
		if i > 0 && len(ex.InputIDs) != len(examples[0].InputIDs) {
			return nil, fmt.Errorf("example %d has length %d, want %d; enable dynamic padding", i, len(ex.InputIDs), len(examples[0].InputIDs))
		}
		appendExample(b, ex, ex.InputIDs, ex.AttentionMask, ex.TokenTypeIDs)
	}
	return b, nil
}

// PaddingCollator pads every example to the longest one in the batch,
// rounded up to PadToMultipleOf when set.
type PaddingCollator struct {
	PadTokenID      int
	PadToMultipleOf int
}

// Collate implements Collator
func (c PaddingCollator) Collate(examples []Encoded) (*Batch, error) {
	width := 0
	for _, ex := range examples {
		width = max(width, len(ex.InputIDs))
	}
	if m := c.PadToMultipleOf; m > 0 && width%m != 0 {
		width += m - width%m
	}

	b := &Batch{}
	for _, ex := range examples {
		mask := ex.AttentionMask
		if mask == nil {
			mask = ones(len(ex.InputIDs))
		}
		var types []int
		if ex.TokenTypeIDs != nil {
			types = pad(ex.TokenTypeIDs, width, 0)
		}
		appendExample(b, ex, pad(ex.InputIDs, width, c.PadTokenID), pad(mask, width, 0), types)
	}
	return b, nil
}

func appendExample(b *Batch, ex Encoded, ids, mask, types []int) {
	b.InputIDs = append(b.InputIDs, ids)
	b.AttentionMask = append(b.AttentionMask, mask)
	if types != nil {
		b.TokenTypeIDs = append(b.TokenTypeIDs, types)
	}
	if ex.Label != nil {
		b.Labels = append(b.Labels, ex.Label)
	}
}

func pad(s []int, width, v int) []int {
	out := make([]int, width)
	copy(out, s)
	for i := len(s); i < width; i++ {
		out[i] = v
	}
	return out
}

func ones(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
