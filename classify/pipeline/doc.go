/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package pipeline runs one fine-tune/evaluate/predict pass.

The run is sequential:

 1. guard the output directory, picking up the latest checkpoint when
    training into a directory that already has one,
 2. load the CSV splits and the label registry,
 3. encode labels and tokenize through the trainer backend,
 4. train, evaluate and predict as requested, logging and saving the
    metrics of each split,
 5. write the prediction reports and export metrics,
 6. optionally upload every file written to a gs:// location.

Arguments come from flags, optionally layered over a YAML file; see
LoadArguments.
*/
package pipeline
