/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package labels_test

import (
	"errors"
	"testing"

	"chainguard.dev/textclassify/classify/labels"
	"github.com/google/go-cmp/cmp"
)

func TestParseLabelList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{{
		name: "json array",
		in:   `["civil law", "penal law"]`,
		want: []string{"civil law", "penal law"},
	}, {
		name: "json empty",
		in:   `[]`,
		want: []string{},
	}, {
		name: "list literal",
		in:   `['civil law', 'penal law']`,
		want: []string{"civil law", "penal law"},
	}, {
		name: "list literal mixed quotes",
		in:   ` ['it\'s', "b"] `,
		want: []string{"it's", "b"},
	}, {
		name: "list literal trailing comma",
		in:   `['a',]`,
		want: []string{"a"},
	}, {
		name: "list literal empty with spaces",
		in:   `[  ]`,
		want: []string{},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := labels.ParseLabelList(tt.in)
			if err != nil {
				t.Fatalf("ParseLabelList() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseLabelList() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLabelListMalformed(t *testing.T) {
	for _, in := range []string{
		``,
		`civil law`,
		`['a' 'b']`,
		`['a`,
		`[a, b]`,
		`[1, 2]`,
		`[,]`,
	} {
		t.Run(in, func(t *testing.T) {
			_, err := labels.ParseLabelList(in)
			if !errors.Is(err, labels.ErrMalformedLabelList) {
				t.Errorf("ParseLabelList(%q) error = %v, want ErrMalformedLabelList", in, err)
			}
		})
	}
}

func TestFormatLabelListRoundTrip(t *testing.T) {
	for _, names := range [][]string{nil, {}, {"a"}, {"a", `quote "b"`}} {
		s := labels.FormatLabelList(names)
		got, err := labels.ParseLabelList(s)
		if err != nil {
			t.Fatalf("ParseLabelList(%q) error = %v", s, err)
		}
		want := names
		if want == nil {
			want = []string{}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip of %q mismatch (-want +got):\n%s", s, diff)
		}
	}
}
