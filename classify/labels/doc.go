/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package labels maps between textual labels and the numeric targets a
sequence classification model is trained against.

# Registry

A Registry is the fixed, finite label vocabulary loaded once from a
labels.json side-file:

	{
	  "id2label": {"0": "approval", "1": "dismissal"},
	  "label2id": {"approval": "0", "dismissal": "1"}
	}

Ids are coerced to integers and must form the contiguous range 0..n-1.
The registry order is the order in which label2id lists its names.

# Encoders

NewEncoder returns the Encoder for a ProblemType:

  - SingleLabel: a label cell holds one name, encoded as its id.
  - MultiLabel: a label cell holds a list of names, encoded as a multi-hot
    vector in registry order. Lists are JSON arrays; printable list
    literals such as ['a', 'b'] are accepted for existing exports.
  - Regression: a label cell holds a number.

Unknown label names are always an error; they are never silently dropped.
*/
package labels
