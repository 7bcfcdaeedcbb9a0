/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package trainer defines the boundary to the external training framework.

A Trainer is an opaque capability: given encoded datasets, a collator and a
metrics callback it produces a trained model, evaluation metrics and raw
predictions. This module never implements optimization, gradient
computation, tokenization or distributed coordination itself.

Backends are looked up by name:

	backend, err := trainer.Lookup("replay")
	tok, err := backend.Tokenizer(ctx, spec)
	tr, err := backend.NewTrainer(ctx, opts)

The replay backend ships with this module. It scores evaluation and
prediction splits from model outputs dumped by a previous framework run,
which is enough to recompute metrics and regenerate reports. It is a
single-node backend: its coordinating process is the one with local rank
0, or -1 outside a distributed launch.
*/
package trainer
