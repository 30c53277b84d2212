package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	recordBucket     = "records"
	expiryValueBytes = 8
)

var errBucketMissing = errors.New("record bucket missing")

// boltStore keeps record keys with an expiry timestamp in a BoltDB file.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	recordTTL       time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(recordBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		recordTTL:       opts.RecordTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SeenRecord reports whether key was marked and has not expired.
// Expired entries are removed on the way.
func (b *boltStore) SeenRecord(key string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var live bool
	err := b.update(func(bucket *bolt.Bucket) error {
		k := []byte(key)
		value := bucket.Get(k)
		if value == nil {
			return nil
		}
		if live = isLive(value, now); !live {
			return bucket.Delete(k)
		}
		return nil
	})
	return live, err
}

// MarkRecord stores key with an expiry of now plus the record TTL.
func (b *boltStore) MarkRecord(key string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.update(func(bucket *bolt.Bucket) error {
		return bucket.Put([]byte(key), encodeExpiry(now.Add(b.recordTTL)))
	})
}

// update runs fn against the record bucket in a read-write transaction.
func (b *boltStore) update(fn func(*bolt.Bucket) error) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return errBucketMissing
		}
		return fn(bucket)
	})
}

// maybeCleanupExpired sweeps expired keys at most once per cleanup interval.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.update(func(bucket *bolt.Bucket) error {
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; {
			if !isLive(v, now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
				// Next after Delete skips an item; reseek to the successor.
				k, v = cursor.Seek(k)
				continue
			}
			k, v = cursor.Next()
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func encodeExpiry(at time.Time) []byte {
	buf := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(buf, uint64(at.Unix()))
	return buf
}

// isLive reports whether value holds an expiry later than now. Malformed
// values count as expired.
func isLive(value []byte, now time.Time) bool {
	if len(value) != expiryValueBytes {
		return false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	return unix > 0 && time.Unix(unix, 0).After(now)
}
