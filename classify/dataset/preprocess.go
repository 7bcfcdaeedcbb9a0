/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package dataset

import (
	"context"
	"fmt"

	"chainguard.dev/textclassify/classify/labels"
	"github.com/chainguard-dev/clog"
)

// Padding is the tokenizer padding strategy.
type Padding int

const (
	// PadDynamic defers padding to the collator, per batch.
	PadDynamic Padding = iota
	// PadMaxLength pads every sequence to the maximum sequence length.
	PadMaxLength
)

func (p Padding) String() string {
	if p == PadMaxLength {
		return "max_length"
	}
	return "dynamic"
}

// PaddingFor returns the padding strategy for the pad-to-max-length flag.
func PaddingFor(padToMaxLength bool) Padding {
	if padToMaxLength {
		return PadMaxLength
	}
	return PadDynamic
}

// TokenizeOptions are passed to the tokenizer with every batch.
type TokenizeOptions struct {
	Padding    Padding
	MaxLength  int
	Truncation bool
}

// Encoding is a tokenized batch, one row per input text.
type Encoding struct {
	InputIDs      [][]int
	AttentionMask [][]int
	TokenTypeIDs  [][]int
}

// Tokenizer is supplied by the external framework.
type Tokenizer interface {
	Tokenize(ctx context.Context, texts []string, opts TokenizeOptions) (*Encoding, error)
}

// Encoded is one preprocessed example.
type Encoded struct {
	// Text is kept for backends that tokenize internally.
	Text          string
	InputIDs      []int
	AttentionMask []int
	TokenTypeIDs  []int
	Target        labels.Target
	// Label is the numeric target handed to the trainer; nil when the
	// row had no label.
	Label []float64
}

// Dataset is a preprocessed split.
type Dataset struct {
	Split    Split
	Examples []Encoded
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Examples)
}

// LabelIDs returns the numeric targets of every example, or nil when any
// example is unlabeled.
func (d *Dataset) LabelIDs() [][]float64 {
	if d.Len() == 0 {
		return nil
	}
	out := make([][]float64, len(d.Examples))
	for i, ex := range d.Examples {
		if ex.Label == nil {
			return nil
		}
		out[i] = ex.Label
	}
	return out
}

// DefaultBatchSize is the number of rows tokenized per call.
const DefaultBatchSize = 1000

// Preprocessor converts raw rows into encoded examples.
type Preprocessor struct {
	// Tokenizer may be nil when the backend tokenizes internally.
	Tokenizer    Tokenizer
	Encoder      labels.Encoder
	Padding      Padding
	MaxSeqLength int
	BatchSize    int

	// Cache, when set, short-circuits splits already processed under the
	// same Fingerprint.
	Cache       *Cache
	Fingerprint string
	// Refresh ignores cached entries and rewrites them.
	Refresh bool
}

// Process encodes every record of raw. Label errors are fatal and carry
// the CSV line of the offending row.
func (p *Preprocessor) Process(ctx context.Context, raw *Raw) (*Dataset, error) {
	if p.Cache == nil {
		return p.process(ctx, raw)
	}

	log := clog.FromContext(ctx).With("split", raw.Split)
	key, err := CacheKey(raw, p.Fingerprint)
	if err != nil {
		return nil, err
	}
	if !p.Refresh {
		ds, ok, err := p.Cache.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			log.Infof("Loaded %d preprocessed examples from cache", ds.Len())
			return ds, nil
		}
	}

	ds, err := p.process(ctx, raw)
	if err != nil {
		return nil, err
	}
	if err := p.Cache.Put(ctx, key, ds); err != nil {
		return nil, err
	}
	log.Debugf("Cached %d preprocessed examples", ds.Len())
	return ds, nil
}

func (p *Preprocessor) process(ctx context.Context, raw *Raw) (*Dataset, error) {
	batch := p.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	ds := &Dataset{Split: raw.Split, Examples: make([]Encoded, 0, raw.Len())}
	for start := 0; start < raw.Len(); start += batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+batch, raw.Len())
		encoded, err := p.processBatch(ctx, raw.Split, start, raw.Records[start:end])
		if err != nil {
			return nil, err
		}
		ds.Examples = append(ds.Examples, encoded...)
	}
	return ds, nil
}

func (p *Preprocessor) processBatch(ctx context.Context, split Split, offset int, recs []Record) ([]Encoded, error) {
	out := make([]Encoded, len(recs))
	texts := make([]string, len(recs))
	for i, rec := range recs {
		texts[i] = rec.Text
		out[i].Text = rec.Text
	}

	if p.Tokenizer != nil {
		enc, err := p.Tokenizer.Tokenize(ctx, texts, TokenizeOptions{
			Padding:    p.Padding,
			MaxLength:  p.MaxSeqLength,
			Truncation: true,
		})
		if err != nil {
			return nil, fmt.Errorf("tokenizing %s rows %d-%d: %w", split, offset, offset+len(recs)-1, err)
		}
		if len(enc.InputIDs) != len(recs) {
			return nil, fmt.Errorf("tokenizer returned %d rows for %d texts", len(enc.InputIDs), len(recs))
		}
		for i := range out {
			out[i].InputIDs = enc.InputIDs[i]
			if i < len(enc.AttentionMask) {
				out[i].AttentionMask = enc.AttentionMask[i]
			}
			if i < len(enc.TokenTypeIDs) {
				out[i].TokenTypeIDs = enc.TokenTypeIDs[i]
			}
		}
	}

	if p.Encoder == nil {
		return out, nil
	}
	for i, rec := range recs {
		if !rec.HasLabel {
			continue
		}
		target, err := p.Encoder.Encode(rec.Label)
		if err != nil {
			// +2: one for the header, one for 1-based lines.
			return nil, fmt.Errorf("%s line %d: %w", split, offset+i+2, err)
		}
		out[i].Target = target
		out[i].Label = p.Encoder.Floats(target)
	}
	return out, nil
}
