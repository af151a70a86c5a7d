package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	productBucket = "products"
	// record layout: first-seen unix seconds, then expiry unix seconds, big endian.
	recordBytes   = 16
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	productTTL      time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

type productRecord struct {
	firstSeen time.Time
	expiry    time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (*boltStore, error) {
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
		_, err := tx.CreateBucketIfNotExists([]byte(productBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	store := &boltStore{
		db:              db,
		productTTL:      opts.ProductTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SeenProduct reports whether code was marked and has not expired. Expired entries are
// dropped on lookup.
func (b *boltStore) SeenProduct(code string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var seen bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := productsBucket(tx)
		if err != nil {
			return err
		}
		key := []byte(code)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}
		rec, ok := decodeRecord(value)
		if !ok || !rec.expiry.After(now) {
			return bucket.Delete(key)
		}
		seen = true
		return nil
	})
	return seen, err
}

// MarkProduct records code as seen until the product TTL elapses.
func (b *boltStore) MarkProduct(code string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := productsBucket(tx)
		if err != nil {
			return err
		}
		key := []byte(code)
		rec := productRecord{firstSeen: now}
		if prev, ok := decodeRecord(bucket.Get(key)); ok && prev.expiry.After(now) {
			rec.firstSeen = prev.firstSeen
		}
		rec.expiry = now.Add(b.productTTL)
		return bucket.Put(key, encodeRecord(rec))
	})
}

// ForgetProduct removes code; unknown codes are ignored.
func (b *boltStore) ForgetProduct(code string) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := productsBucket(tx)
		if err != nil {
			return err
		}
		return bucket.Delete([]byte(code))
	})
}

// KnownProducts returns the unexpired product codes in key order.
func (b *boltStore) KnownProducts() ([]string, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	var codes []string
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := productsBucket(tx)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(k, v []byte) error {
			if rec, ok := decodeRecord(v); ok && rec.expiry.After(now) {
				codes = append(codes, string(k))
			}
			return nil
		})
	})
	return codes, err
}

// maybeCleanupExpired removes expired product codes on a fixed cadence.
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

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := productsBucket(tx)
		if err != nil {
			return err
		}
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			rec, ok := decodeRecord(v)
			if !ok || !rec.expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func productsBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(productBucket))
	if bucket == nil {
		return nil, fmt.Errorf("product bucket missing")
	}
	return bucket, nil
}

func encodeRecord(rec productRecord) []byte {
	buf := make([]byte, recordBytes)
	binary.BigEndian.PutUint64(buf[:8], uint64(rec.firstSeen.Unix()))
	binary.BigEndian.PutUint64(buf[8:], uint64(rec.expiry.Unix()))
	return buf
}

func decodeRecord(value []byte) (productRecord, bool) {
	if len(value) != recordBytes {
		return productRecord{}, false
	}
	first := int64(binary.BigEndian.Uint64(value[:8]))
	expiry := int64(binary.BigEndian.Uint64(value[8:]))
	if first <= 0 || expiry <= 0 {
		return productRecord{}, false
	}
	return productRecord{firstSeen: time.Unix(first, 0), expiry: time.Unix(expiry, 0)}, true
}
