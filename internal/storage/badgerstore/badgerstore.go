// Package badgerstore is a storage.Engine backend over
// github.com/dgraph-io/badger/v4, an LSM-tree store — the idiomatic Go
// counterpart to the original's sled/rocksdb-flavoured engines
// (spec §4.8).
package badgerstore

import (
	"errors"
	"fmt"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/standardbeagle/tigercache/internal/storage"
)

var pagePrefix = []byte("page:")

// Engine wraps a single badger.DB; pages are stored under a key prefix
// rather than a separate keyspace since badger exposes one flat space.
type Engine struct {
	db *badger.DB

	reads, writes uint64
}

// New opens the badger store rooted at cfg.Path.
func New(cfg storage.Config) (*Engine, error) {
	opts := badger.DefaultOptions(cfg.Path)
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(nil)
	if cfg.UseCompression {
		opts = opts.WithCompression(1) // snappy
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open %s: %w", cfg.Path, err)
	}
	return &Engine{db: db}, nil
}

func init() {
	storage.Register("badger", func(cfg storage.Config) (storage.Engine, error) { return New(cfg) })
}

func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	var out []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	atomic.AddUint64(&e.reads, 1)
	return out, out != nil, err
}

func (e *Engine) Put(key, value []byte) error {
	err := e.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	atomic.AddUint64(&e.writes, 1)
	return err
}

func (e *Engine) Delete(key []byte) error {
	err := e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	atomic.AddUint64(&e.writes, 1)
	return err
}

func (e *Engine) Exists(key []byte) (bool, error) {
	var exists bool
	err := e.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

func (e *Engine) BeginTransaction() (storage.Transaction, error) {
	return &transaction{txn: e.db.NewTransaction(true)}, nil
}

func (e *Engine) GetPage(id storage.PageID) (storage.Page, bool, error) {
	data, ok, err := e.Get(pageKey(id))
	if !ok || err != nil {
		return storage.Page{}, ok, err
	}
	return storage.NewPage(id, data), true, nil
}

func (e *Engine) PutPage(p storage.Page) error {
	return e.Put(pageKey(p.ID), p.Data)
}

func (e *Engine) Flush() error { return e.db.Sync() }
func (e *Engine) Close() error { return e.db.Close() }

func (e *Engine) Stats() (storage.Stats, error) {
	var keyCount, totalSize, pageCount int
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			keyCount++
			totalSize += int(item.ValueSize())
			if len(item.Key()) >= len(pagePrefix) && string(item.Key()[:len(pagePrefix)]) == string(pagePrefix) {
				pageCount++
			}
		}
		return nil
	})
	return storage.Stats{
		KeyCount:       keyCount,
		TotalValueSize: totalSize,
		PageCount:      pageCount,
		ReadCount:      atomic.LoadUint64(&e.reads),
		WriteCount:     atomic.LoadUint64(&e.writes),
	}, err
}

func (e *Engine) Type() string { return "badger" }

func pageKey(id storage.PageID) []byte {
	key := make([]byte, len(pagePrefix)+8)
	copy(key, pagePrefix)
	for i := 7; i >= 0; i-- {
		key[len(pagePrefix)+i] = byte(id)
		id >>= 8
	}
	return key
}

// transaction wraps a badger.Txn, which already provides read-your-writes
// isolation and optimistic-concurrency commit semantics.
type transaction struct {
	txn *badger.Txn
}

func (t *transaction) Get(key []byte) ([]byte, bool, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	v, err := item.ValueCopy(nil)
	return v, true, err
}

func (t *transaction) Put(key, value []byte) error {
	return t.txn.Set(key, value)
}

func (t *transaction) Delete(key []byte) error {
	return t.txn.Delete(key)
}

func (t *transaction) Exists(key []byte) (bool, error) {
	_, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (t *transaction) Commit() error {
	return t.txn.Commit()
}

func (t *transaction) Abort() error {
	t.txn.Discard()
	return nil
}
