/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package dataset reads the judgement CSV splits and turns rows into
// encoded examples: tokenized inputs from an external Tokenizer plus the
// label target from a labels.Encoder. It also picks the collator that
// batches encoded examples for the trainer.
//
// Preprocessed splits can be kept in an on-disk Cache between runs.
package dataset
