// Package kvcache is the on-disk tier of the three-tier cache-miss
// resolver (spec §4.4 tier 2): a bbolt database with one named bucket
// per named sub-db (w2t, c2t, l2t, t2w, t2c, forward), fronted by a
// bounded in-process LRU so repeated misses against the same key don't
// pay a transaction round trip twice.
package kvcache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/humancognome/textpbm/internal/errs"
)

// Bucket names correspond to spec §4.4's named sub-dbs.
const (
	BucketWordToToken    = "w2t"
	BucketCharToToken    = "c2t"
	BucketLabelToToken   = "l2t"
	BucketTokenToWord    = "t2w"
	BucketTokenToCharCat = "t2c"
	BucketForward        = "forward"
)

var allBuckets = []string{
	BucketWordToToken, BucketCharToToken, BucketLabelToToken,
	BucketTokenToWord, BucketTokenToCharCat, BucketForward,
}

// defaultLRUSize is used when OpenWithLRUSize's caller passes <= 0.
const defaultLRUSize = 4096

// Store wraps a bbolt file plus one bounded LRU front-cache per bucket.
type Store struct {
	db     *bolt.DB
	fronts map[string]*lru.Cache[string, string]
}

// Open opens (creating if absent) a bbolt database at path and ensures
// every named sub-db bucket exists, using the default front-cache size.
func Open(path string) (*Store, error) {
	return OpenWithLRUSize(path, defaultLRUSize)
}

// OpenWithLRUSize is Open with an explicit per-bucket LRU front-cache
// capacity, as configured by internal/config's lru_size setting.
func OpenWithLRUSize(path string, lruSize int) (*Store, error) {
	if lruSize <= 0 {
		lruSize = defaultLRUSize
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open kv cache: %v", errs.ErrStorage, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init kv cache buckets: %v", errs.ErrStorage, err)
	}

	fronts := make(map[string]*lru.Cache[string, string], len(allBuckets))
	for _, name := range allBuckets {
		c, err := lru.New[string, string](lruSize)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: init lru front for %s: %v", errs.ErrStorage, name, err)
		}
		fronts[name] = c
	}

	return &Store{db: db, fronts: fronts}, nil
}

// Close releases the underlying bbolt file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get looks up key in bucket, consulting the LRU front-cache first.
func (s *Store) Get(bucket, key string) (string, bool, error) {
	front, ok := s.fronts[bucket]
	if !ok {
		return "", false, fmt.Errorf("%w: unknown kv bucket %q", errs.ErrStorage, bucket)
	}
	if v, hit := front.Get(key); hit {
		return v, true, nil
	}

	var value string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		v := b.Get([]byte(key))
		if v != nil {
			found = true
			value = string(v)
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: read %s/%s: %v", errs.ErrStorage, bucket, key, err)
	}
	if found {
		front.Add(key, value)
	}
	return value, found, nil
}

// GetOK is Get with storage errors folded into a miss, for callers that
// treat the KV tier as best-effort (spec §4.4: "KV errors are
// recoverable — drop the cache write, log, serve from cold storage").
func (s *Store) GetOK(bucket, key string) (string, bool) {
	v, found, err := s.Get(bucket, key)
	if err != nil {
		return "", false
	}
	return v, found
}

// Put writes key/value into bucket and refreshes the front-cache entry.
func (s *Store) Put(bucket, key, value string) error {
	front, ok := s.fronts[bucket]
	if !ok {
		return fmt.Errorf("%w: unknown kv bucket %q", errs.ErrStorage, bucket)
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		return b.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("%w: write %s/%s: %v", errs.ErrStorage, bucket, key, err)
	}
	front.Add(key, value)
	return nil
}
