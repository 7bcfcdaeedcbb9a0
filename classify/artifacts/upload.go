/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package artifacts

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// maxParallel bounds concurrent object uploads.
const maxParallel = 4

// URL schemes accepted by ParseURL.
const (
	SchemeGCS = "gs"
	SchemeS3  = "s3"
)

// Location is a parsed gs://bucket/prefix or s3://bucket/prefix URL.
type Location struct {
	Scheme string
	Bucket string
	Prefix string
}

// ParseURL parses a gs:// or s3:// URL. The prefix has no leading or
// trailing slash and may be empty.
func ParseURL(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parsing upload URL: %w", err)
	}
	if u.Scheme != SchemeGCS && u.Scheme != SchemeS3 {
		return Location{}, fmt.Errorf("upload URL %q must use the gs or s3 scheme", raw)
	}
	if u.Host == "" {
		return Location{}, fmt.Errorf("upload URL %q has no bucket", raw)
	}
	return Location{Scheme: u.Scheme, Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
}

// Object returns the object name of a file uploaded under l.
func (l Location) Object(name string) string {
	if l.Prefix == "" {
		return name
	}
	return path.Join(l.Prefix, name)
}

func (l Location) String() string {
	return l.Scheme + "://" + path.Join(l.Bucket, l.Prefix)
}

// Store writes objects into one bucket. body is seekable and sized, so
// stores can set the content length and retry.
type Store interface {
	Put(ctx context.Context, object string, body io.ReadSeeker) error
}

// Uploader copies local files to a Location.
type Uploader struct {
	loc    Location
	store  Store
	closer io.Closer
}

// NewUploader creates an uploader for a gs:// or s3:// URL using the
// default credential chain of the provider.
func NewUploader(ctx context.Context, rawURL string) (*Uploader, error) {
	loc, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	switch loc.Scheme {
	case SchemeS3:
		store, err := newS3Store(ctx, loc.Bucket)
		if err != nil {
			return nil, err
		}
		return &Uploader{loc: loc, store: store}, nil
	default:
		store, err := newGCSStore(ctx, loc.Bucket)
		if err != nil {
			return nil, err
		}
		return &Uploader{loc: loc, store: store, closer: store.client}, nil
	}
}

// NewUploaderWithStore creates an uploader that writes through store.
func NewUploaderWithStore(loc Location, store Store) *Uploader {
	return &Uploader{loc: loc, store: store}
}

// Close releases the storage client.
func (u *Uploader) Close() error {
	if u.closer == nil {
		return nil
	}
	return u.closer.Close()
}

// Upload copies each file to the location under its base name.
func (u *Uploader) Upload(ctx context.Context, files ...string) error {
	log := clog.FromContext(ctx).With("destination", u.loc.String())

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallel)
	for _, f := range files {
		eg.Go(func() error {
			return u.uploadFile(ctx, f)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	log.Infof("Uploaded %d artifacts", len(files))
	return nil
}

func (u *Uploader) uploadFile(ctx context.Context, file string) error {
	src, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer src.Close()

	object := u.loc.Object(filepath.Base(file))
	if err := u.store.Put(ctx, object, src); err != nil {
		return fmt.Errorf("uploading %s: %w", object, err)
	}
	clog.FromContext(ctx).With("object", object).Debug("Uploaded artifact")
	return nil
}
