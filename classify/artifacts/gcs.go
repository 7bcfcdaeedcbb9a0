/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package artifacts

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// gcsStore is a Store backed by a GCS bucket.
type gcsStore struct {
	client *storage.Client
	bkt    *storage.BucketHandle
}

func newGCSStore(ctx context.Context, bucket string) (*gcsStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &gcsStore{client: client, bkt: client.Bucket(bucket)}, nil
}

func (g *gcsStore) Put(ctx context.Context, object string, body io.ReadSeeker) error {
	w := g.bkt.Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing: %w", err)
	}
	return nil
}
