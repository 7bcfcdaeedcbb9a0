/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// cacheVersion is bumped whenever the encoded layout of Encoded changes.
const cacheVersion = 1

// Cache stores preprocessed splits keyed by their inputs, so reruns over
// the same CSV files skip tokenization.
type Cache struct {
	db *badger.DB
}

// OpenCache opens (or creates) an on-disk cache under dir.
func OpenCache(ctx context.Context, dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("dataset cache directory is required")
	}
	return openCache(ctx, badger.DefaultOptions(dir))
}

// OpenMemoryCache opens a cache that lives only as long as the process.
func OpenMemoryCache(ctx context.Context) (*Cache, error) {
	return openCache(ctx, badger.DefaultOptions("").WithInMemory(true))
}

func openCache(ctx context.Context, opts badger.Options) (*Cache, error) {
	db, err := badger.Open(opts.WithLogger(badgerLogger{ctx: ctx}))
	if err != nil {
		return nil, fmt.Errorf("opening dataset cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close flushes and closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// cacheEntry is the stored form of a Dataset.
type cacheEntry struct {
	Version  int       `msgpack:"v"`
	Split    Split     `msgpack:"split"`
	Examples []Encoded `msgpack:"examples"`
}

// Get returns the dataset stored under key. The second result is false on
// a miss, including entries written by an older layout.
func (c *Cache) Get(ctx context.Context, key string) (*Dataset, bool, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading dataset cache: %w", err)
	}

	var entry cacheEntry
	if err := msgpack.Unmarshal(val, &entry); err != nil {
		clog.FromContext(ctx).With("key", key).Warnf("Ignoring corrupt dataset cache entry: %v", err)
		return nil, false, nil
	}
	if entry.Version != cacheVersion {
		return nil, false, nil
	}
	return &Dataset{Split: entry.Split, Examples: entry.Examples}, true, nil
}

// Put stores ds under key, replacing any previous entry.
func (c *Cache) Put(_ context.Context, key string, ds *Dataset) error {
	val, err := msgpack.Marshal(cacheEntry{
		Version:  cacheVersion,
		Split:    ds.Split,
		Examples: ds.Examples,
	})
	if err != nil {
		return fmt.Errorf("encoding %s for the dataset cache: %w", ds.Split, err)
	}
	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	}); err != nil {
		return fmt.Errorf("writing dataset cache: %w", err)
	}
	return nil
}

// CacheKey derives the cache key of raw preprocessed under the settings
// summarized by fingerprint. Any change to the rows or the fingerprint
// yields a new key.
func CacheKey(raw *Raw, fingerprint string) (string, error) {
	b, err := msgpack.Marshal(struct {
		Version     int
		Fingerprint string
		Split       Split
		Columns     []string
		Records     []Record
	}{cacheVersion, fingerprint, raw.Split, raw.Columns, raw.Records})
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", raw.Split, err)
	}
	sum := sha256.Sum256(b)
	return string(raw.Split) + ":" + hex.EncodeToString(sum[:]), nil
}

// badgerLogger drops badger's chatter below warnings.
type badgerLogger struct {
	ctx context.Context
}

func (l badgerLogger) Errorf(f string, v ...any) {
	clog.ErrorContextf(l.ctx, "[badger] "+f, v...)
}

func (l badgerLogger) Warningf(f string, v ...any) {
	clog.WarnContextf(l.ctx, "[badger] "+f, v...)
}

func (badgerLogger) Infof(string, ...any)  {}
func (badgerLogger) Debugf(string, ...any) {}
