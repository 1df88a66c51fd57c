// Package memstore is the always-available in-memory storage.Engine
// backend, used for tests and as the zero-configuration default
// (spec §4.8).
package memstore

import (
	"sync"

	"github.com/standardbeagle/tigercache/internal/storage"
)

// Engine keeps all keys, values, and pages in plain Go maps behind a
// single mutex; Flush and Close are no-ops since there is nothing to
// persist.
type Engine struct {
	mu    sync.RWMutex
	data  map[string][]byte
	pages map[storage.PageID]storage.Page

	reads, writes uint64
}

// New returns an empty Engine. cfg is accepted for interface symmetry
// with the other backends but otherwise unused.
func New(cfg storage.Config) (*Engine, error) {
	return &Engine{
		data:  make(map[string][]byte),
		pages: make(map[storage.PageID]storage.Page),
	}, nil
}

func init() {
	storage.Register("memory", func(cfg storage.Config) (storage.Engine, error) { return New(cfg) })
}

func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reads++
	v, ok := e.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (e *Engine) Put(key, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writes++
	v := make([]byte, len(value))
	copy(v, value)
	e.data[string(key)] = v
	return nil
}

func (e *Engine) Delete(key []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writes++
	delete(e.data, string(key))
	return nil
}

func (e *Engine) Exists(key []byte) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.data[string(key)]
	return ok, nil
}

func (e *Engine) BeginTransaction() (storage.Transaction, error) {
	return newTransaction(e), nil
}

func (e *Engine) GetPage(id storage.PageID) (storage.Page, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.pages[id]
	return p, ok, nil
}

func (e *Engine) PutPage(p storage.Page) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pages[p.ID] = p
	return nil
}

func (e *Engine) Flush() error { return nil }
func (e *Engine) Close() error { return nil }

func (e *Engine) Stats() (storage.Stats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	totalSize := 0
	for _, v := range e.data {
		totalSize += len(v)
	}
	dirty := 0
	for _, p := range e.pages {
		if p.IsDirty() {
			dirty++
		}
	}
	return storage.Stats{
		KeyCount:       len(e.data),
		TotalValueSize: totalSize,
		PageCount:      len(e.pages),
		DirtyPageCount: dirty,
		CacheHitRate:   1.0,
		ReadCount:      e.reads,
		WriteCount:     e.writes,
	}, nil
}

func (e *Engine) Type() string { return "memory" }

// transaction buffers writes in a change set, applying them to the
// engine only on Commit; reads fall through to the engine unless the
// key has a pending local change (read-your-writes).
type transaction struct {
	engine  *Engine
	changes map[string][]byte
	deleted map[string]bool
}

func newTransaction(e *Engine) *transaction {
	return &transaction{
		engine:  e,
		changes: make(map[string][]byte),
		deleted: make(map[string]bool),
	}
}

func (tx *transaction) Get(key []byte) ([]byte, bool, error) {
	k := string(key)
	if tx.deleted[k] {
		return nil, false, nil
	}
	if v, ok := tx.changes[k]; ok {
		out := make([]byte, len(v))
		copy(out, v)
		return out, true, nil
	}
	return tx.engine.Get(key)
}

func (tx *transaction) Put(key, value []byte) error {
	k := string(key)
	v := make([]byte, len(value))
	copy(v, value)
	tx.changes[k] = v
	delete(tx.deleted, k)
	return nil
}

func (tx *transaction) Delete(key []byte) error {
	k := string(key)
	delete(tx.changes, k)
	tx.deleted[k] = true
	return nil
}

func (tx *transaction) Exists(key []byte) (bool, error) {
	k := string(key)
	if tx.deleted[k] {
		return false, nil
	}
	if _, ok := tx.changes[k]; ok {
		return true, nil
	}
	return tx.engine.Exists(key)
}

func (tx *transaction) Commit() error {
	for k, v := range tx.changes {
		if err := tx.engine.Put([]byte(k), v); err != nil {
			return err
		}
	}
	for k := range tx.deleted {
		if err := tx.engine.Delete([]byte(k)); err != nil {
			return err
		}
	}
	return nil
}

func (tx *transaction) Abort() error {
	tx.changes = nil
	tx.deleted = nil
	return nil
}
