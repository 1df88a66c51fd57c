// Package boltstore is a storage.Engine backend over go.etcd.io/bbolt,
// a single-file B-tree store — the idiomatic Go counterpart to the
// original's redb engine (spec §4.8).
package boltstore

import (
	"fmt"
	"sync/atomic"

	bolt "go.etcd.io/bbolt"

	"github.com/standardbeagle/tigercache/internal/storage"
)

var (
	dataBucket  = []byte("data")
	pagesBucket = []byte("pages")
)

// Engine wraps a single bbolt.DB file holding a data bucket and a pages
// bucket.
type Engine struct {
	db   *bolt.DB
	path string

	reads, writes uint64
}

// New opens the bbolt file at cfg.Path, creating it if it does not
// exist; cfg.CreateIfMissing is not consulted.
func New(cfg storage.Config) (*Engine, error) {
	opts := &bolt.Options{NoSync: !cfg.SyncWrites}
	db, err := bolt.Open(cfg.Path, 0o600, opts)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", cfg.Path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(dataBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(pagesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("boltstore: init buckets: %w", err)
	}

	return &Engine{db: db, path: cfg.Path}, nil
}

func init() {
	storage.Register("bolt", func(cfg storage.Config) (storage.Engine, error) { return New(cfg) })
}

func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	var out []byte
	err := e.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(dataBucket).Get(key)
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	atomic.AddUint64(&e.reads, 1)
	return out, out != nil, err
}

func (e *Engine) Put(key, value []byte) error {
	err := e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(dataBucket).Put(key, value)
	})
	atomic.AddUint64(&e.writes, 1)
	return err
}

func (e *Engine) Delete(key []byte) error {
	err := e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(dataBucket).Delete(key)
	})
	atomic.AddUint64(&e.writes, 1)
	return err
}

func (e *Engine) Exists(key []byte) (bool, error) {
	var exists bool
	err := e.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(dataBucket).Get(key) != nil
		return nil
	})
	return exists, err
}

// BeginTransaction opens a read-write bbolt transaction directly; bbolt
// already serialises writers, so the wrapper need not buffer changes
// itself the way memstore's does.
func (e *Engine) BeginTransaction() (storage.Transaction, error) {
	tx, err := e.db.Begin(true)
	if err != nil {
		return nil, err
	}
	return &transaction{tx: tx, bucket: tx.Bucket(dataBucket)}, nil
}

func (e *Engine) GetPage(id storage.PageID) (storage.Page, bool, error) {
	var page storage.Page
	var found bool
	err := e.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(pagesBucket).Get(pageKey(id))
		if v == nil {
			return nil
		}
		found = true
		page = storage.NewPage(id, append([]byte(nil), v...))
		return nil
	})
	return page, found, err
}

func (e *Engine) PutPage(p storage.Page) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pagesBucket).Put(pageKey(p.ID), p.Data)
	})
}

func (e *Engine) Flush() error { return e.db.Sync() }
func (e *Engine) Close() error { return e.db.Close() }

func (e *Engine) Stats() (storage.Stats, error) {
	var keyCount, totalSize, pageCount int
	err := e.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(dataBucket)
		if err := b.ForEach(func(k, v []byte) error {
			keyCount++
			totalSize += len(v)
			return nil
		}); err != nil {
			return err
		}
		pb := tx.Bucket(pagesBucket)
		return pb.ForEach(func(k, v []byte) error {
			pageCount++
			return nil
		})
	})
	return storage.Stats{
		KeyCount:       keyCount,
		TotalValueSize: totalSize,
		PageCount:      pageCount,
		ReadCount:      atomic.LoadUint64(&e.reads),
		WriteCount:     atomic.LoadUint64(&e.writes),
	}, err
}

func (e *Engine) Type() string { return "bolt" }

func pageKey(id storage.PageID) []byte {
	key := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		key[i] = byte(id)
		id >>= 8
	}
	return key
}

type transaction struct {
	tx     *bolt.Tx
	bucket *bolt.Bucket
}

func (t *transaction) Get(key []byte) ([]byte, bool, error) {
	v := t.bucket.Get(key)
	if v == nil {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (t *transaction) Put(key, value []byte) error {
	return t.bucket.Put(key, value)
}

func (t *transaction) Delete(key []byte) error {
	return t.bucket.Delete(key)
}

func (t *transaction) Exists(key []byte) (bool, error) {
	return t.bucket.Get(key) != nil, nil
}

func (t *transaction) Commit() error { return t.tx.Commit() }
func (t *transaction) Abort() error  { return t.tx.Rollback() }
