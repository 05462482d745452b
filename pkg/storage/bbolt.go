package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// openTimeout bounds how long Open waits for another process holding the
// database file lock.
const openTimeout = 2 * time.Second

// BboltBackend stores buckets in a single bbolt file.
type BboltBackend struct {
	db *bolt.DB
}

// NewBboltBackend opens or creates a bbolt database at dbPath, creating the
// parent directory when needed.
func NewBboltBackend(dbPath string) (*BboltBackend, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open suite database %s: %w", dbPath, err)
	}
	return &BboltBackend{db: db}, nil
}

// bucket resolves name inside tx or reports ErrBucketNotFound.
func bucket(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, name)
	}
	return b, nil
}

func (b *BboltBackend) CreateBucket(name []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(name)
		return err
	})
}

func (b *BboltBackend) DeleteBucket(name []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		return nil
	})
}

func (b *BboltBackend) BucketExists(name []byte) (bool, error) {
	var exists bool
	err := b.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(name) != nil
		return nil
	})
	return exists, err
}

func (b *BboltBackend) Put(name, key, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := bucket(tx, name)
		if err != nil {
			return err
		}
		return bkt.Put(key, value)
	})
}

// Get copies the value out; bbolt memory is only valid inside the transaction.
func (b *BboltBackend) Get(name, key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt, err := bucket(tx, name)
		if err != nil {
			return err
		}
		if v := bkt.Get(key); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

func (b *BboltBackend) Delete(name, key []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := bucket(tx, name)
		if err != nil {
			return err
		}
		return bkt.Delete(key)
	})
}

// ForEach walks the bucket in key order inside one read transaction.
func (b *BboltBackend) ForEach(name []byte, fn func(k, v []byte) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		bkt, err := bucket(tx, name)
		if err != nil {
			return err
		}
		return bkt.ForEach(func(k, v []byte) error {
			return fn(append([]byte(nil), k...), append([]byte(nil), v...))
		})
	})
}

func (b *BboltBackend) Close() error {
	return b.db.Close()
}
