package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	dbFileMode = 0600
	dbDirMode  = 0755
)

var bucketName = []byte("subfinder")

// Bolt is an on-disk cache. Each value is stored behind an 8 byte big endian
// unix-nanosecond expiration stamp; expired entries are dropped on read.
type Bolt struct {
	db  *bolt.DB
	ttl time.Duration
	log *logrus.Logger
	now func() time.Time
}

// OpenBolt opens or creates the cache file at path.
func OpenBolt(path string, ttl time.Duration, logger *logrus.Logger) (*Bolt, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(path), dbDirMode); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	db, err := bolt.Open(path, dbFileMode, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}
	return &Bolt{db: db, ttl: ttl, log: logger, now: time.Now}, nil
}

func (b *Bolt) Get(key string) ([]byte, bool) {
	var (
		value   []byte
		found   bool
		expired bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(key))
		if len(raw) < 8 {
			return nil
		}
		exp := time.Unix(0, int64(binary.BigEndian.Uint64(raw[:8])))
		if b.now().After(exp) {
			expired = true
			return nil
		}
		// raw is only valid inside the transaction.
		value = make([]byte, len(raw)-8)
		copy(value, raw[8:])
		found = true
		return nil
	})
	if err != nil {
		b.log.WithError(err).WithField("key", key).Warn("Cache read failed")
		return nil, false
	}
	if expired {
		b.Delete(key)
		return nil, false
	}
	return value, found
}

func (b *Bolt) Set(key string, value []byte) {
	raw := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(raw[:8], uint64(b.now().Add(b.ttl).UnixNano()))
	copy(raw[8:], value)
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), raw)
	})
	if err != nil {
		b.log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

func (b *Bolt) Delete(key string) {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
	if err != nil {
		b.log.WithError(err).WithField("key", key).Warn("Cache delete failed")
	}
}

// Clear drops every entry.
func (b *Bolt) Clear() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketName)
		return err
	})
}

// Prune removes expired entries and returns how many were removed.
func (b *Bolt) Prune() (int, error) {
	removed := 0
	now := b.now()
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if len(v) < 8 || now.After(time.Unix(0, int64(binary.BigEndian.Uint64(v[:8])))) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Len returns the number of stored entries, expired ones included.
func (b *Bolt) Len() int {
	n := 0
	_ = b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
