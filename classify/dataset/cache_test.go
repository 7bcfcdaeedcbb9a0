/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package dataset_test

import (
	"context"
	"testing"

	"chainguard.dev/textclassify/classify/dataset"
	"chainguard.dev/textclassify/classify/labels"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	raw := &dataset.Raw{Split: dataset.Train, Columns: []string{"text", "label"}, Records: []dataset.Record{
		{Text: "a bb", Label: "approval", HasLabel: true},
	}}
	edited := &dataset.Raw{Split: dataset.Train, Columns: []string{"text", "label"}, Records: []dataset.Record{
		{Text: "a bb", Label: "dismissal", HasLabel: true},
	}}

	base, err := dataset.CacheKey(raw, "fp")
	require.NoError(t, err)
	again, err := dataset.CacheKey(raw, "fp")
	require.NoError(t, err)
	if base != again {
		t.Errorf("CacheKey is not deterministic: %q vs %q", base, again)
	}

	for name, tc := range map[string]struct {
		raw         *dataset.Raw
		fingerprint string
	}{
		"fingerprint": {raw: raw, fingerprint: "other"},
		"rows":        {raw: edited, fingerprint: "fp"},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := dataset.CacheKey(tc.raw, tc.fingerprint)
			require.NoError(t, err)
			if got == base {
				t.Errorf("CacheKey did not change: %q", got)
			}
		})
	}
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, err := dataset.OpenMemoryCache(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	want := &dataset.Dataset{Split: dataset.Test, Examples: []dataset.Encoded{{
		Text:          "a bb",
		InputIDs:      []int{1, 2},
		AttentionMask: []int{1, 1},
		Target:        labels.Target{Hot: []int{0, 1}},
		Label:         []float64{0, 1},
	}, {
		Text:     "ccc",
		InputIDs: []int{3},
	}}}

	if _, ok, err := cache.Get(ctx, "test:missing"); err != nil || ok {
		t.Fatalf("Get(missing) = %t, %v; want miss", ok, err)
	}
	require.NoError(t, cache.Put(ctx, "test:k", want))

	got, ok, err := cache.Get(ctx, "test:k")
	require.NoError(t, err)
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestPreprocessUsesCache(t *testing.T) {
	ctx := context.Background()
	cache, err := dataset.OpenCache(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	reg, err := labels.NewRegistry("dismissal", "approval")
	require.NoError(t, err)
	enc, err := labels.NewEncoder(labels.SingleLabel, reg)
	require.NoError(t, err)

	raw := &dataset.Raw{Split: dataset.Validation, Records: []dataset.Record{
		{Text: "a bb", Label: "approval", HasLabel: true},
		{Text: "ccc", Label: "dismissal", HasLabel: true},
	}}

	tok := &wordTokenizer{}
	p := &dataset.Preprocessor{
		Tokenizer:    tok,
		Encoder:      enc,
		MaxSeqLength: 16,
		Cache:        cache,
		Fingerprint:  "single",
	}

	first, err := p.Process(ctx, raw)
	require.NoError(t, err)
	second, err := p.Process(ctx, raw)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached Process() mismatch (-want +got):\n%s", diff)
	}
	if got := len(tok.calls); got != 1 {
		t.Errorf("tokenizer calls = %d, want 1 (second pass served from cache)", got)
	}

	p.Refresh = true
	_, err = p.Process(ctx, raw)
	require.NoError(t, err)
	if got := len(tok.calls); got != 2 {
		t.Errorf("tokenizer calls = %d, want 2 after refresh", got)
	}

	p.Refresh = false
	p.Fingerprint = "other"
	_, err = p.Process(ctx, raw)
	require.NoError(t, err)
	if got := len(tok.calls); got != 3 {
		t.Errorf("tokenizer calls = %d, want 3 after fingerprint change", got)
	}
}
