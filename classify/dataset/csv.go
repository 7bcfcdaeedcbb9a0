/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// Split names a dataset split.
type Split string

const (
	Train      Split = "train"
	Validation Split = "validation"
	Test       Split = "test"
)

const (
	textColumn  = "text"
	labelColumn = "label"
)

// Record is one CSV row.
type Record struct {
	Text string
	// Label is the raw label cell. Only meaningful when HasLabel is set.
	Label    string
	HasLabel bool
}

// Raw is a split as read from disk.
type Raw struct {
	Split   Split
	Columns []string
	Records []Record
}

// Len returns the number of records.
func (r *Raw) Len() int {
	return len(r.Records)
}

// HasLabels reports whether the split has a label column.
func (r *Raw) HasLabels() bool {
	for _, c := range r.Columns {
		if c == labelColumn {
			return true
		}
	}
	return false
}

// Select returns the first n records. A nil cap or one larger than the
// split keeps everything.
func (r *Raw) Select(n *int) *Raw {
	if n == nil || *n >= len(r.Records) {
		return r
	}
	limit := max(*n, 0)
	return &Raw{
		Split:   r.Split,
		Columns: r.Columns,
		Records: r.Records[:limit],
	}
}

// ReadCSV reads a split. The header must contain a "text" column; a
// "label" column is optional. Other columns are ignored.
func ReadCSV(r io.Reader, split Split) (*Raw, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s split is empty", split)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", split, err)
	}

	textIdx, labelIdx := -1, -1
	for i, col := range header {
		switch col {
		case textColumn:
			textIdx = i
		case labelColumn:
			labelIdx = i
		}
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("%s split has no %q column", split, textColumn)
	}

	raw := &Raw{Split: split, Columns: header}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", split, err)
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("%s line %d: got %d fields, header has %d", split, line, len(row), len(header))
		}
		rec := Record{Text: row[textIdx]}
		if labelIdx >= 0 {
			rec.Label, rec.HasLabel = row[labelIdx], true
		}
		raw.Records = append(raw.Records, rec)
	}
	return raw, nil
}

// LoadCSV reads a split from path.
func LoadCSV(path string, split Split) (*Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s split: %w", split, err)
	}
	defer f.Close()
	return ReadCSV(f, split)
}

// LoadSplits reads every split in files concurrently.
func LoadSplits(ctx context.Context, files map[Split]string) (map[Split]*Raw, error) {
	var (
		mu  sync.Mutex
		out = make(map[Split]*Raw, len(files))
	)

	g, ctx := errgroup.WithContext(ctx)
	for split, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := LoadCSV(path, split)
			if err != nil {
				return err
			}
			clog.FromContext(ctx).With("split", split).With("path", path).Infof("Loaded %d rows", raw.Len())

			mu.Lock()
			out[split] = raw
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
