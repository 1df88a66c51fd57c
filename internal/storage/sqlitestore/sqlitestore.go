// Package sqlitestore is a storage.Engine backend over modernc.org/sqlite
// (pure-Go, no cgo) via database/sql — the idiomatic Go counterpart to
// the original's sqlite_engine.rs (spec §4.8).
package sqlitestore

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/standardbeagle/tigercache/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (key BLOB PRIMARY KEY, value BLOB NOT NULL);
CREATE TABLE IF NOT EXISTS pages (id INTEGER PRIMARY KEY, data BLOB NOT NULL);
`

// Engine wraps a single *sql.DB talking to one SQLite file via two
// tables, kv for document/metadata entries and pages for page-oriented
// storage.
type Engine struct {
	db *sql.DB

	reads, writes uint64
}

// New opens (and migrates) the SQLite file at cfg.Path.
func New(cfg storage.Config) (*Engine, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serialises writers anyway

	if !cfg.SyncWrites {
		if _, err := db.Exec(`PRAGMA synchronous = OFF`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlitestore: pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitestore: migrate: %w", err)
	}
	return &Engine{db: db}, nil
}

func init() {
	storage.Register("sqlite", func(cfg storage.Config) (storage.Engine, error) { return New(cfg) })
}

func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	var v []byte
	err := e.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	atomic.AddUint64(&e.reads, 1)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	return v, err == nil, err
}

func (e *Engine) Put(key, value []byte) error {
	_, err := e.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	atomic.AddUint64(&e.writes, 1)
	return err
}

func (e *Engine) Delete(key []byte) error {
	_, err := e.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	atomic.AddUint64(&e.writes, 1)
	return err
}

func (e *Engine) Exists(key []byte) (bool, error) {
	var one int
	err := e.db.QueryRow(`SELECT 1 FROM kv WHERE key = ?`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (e *Engine) BeginTransaction() (storage.Transaction, error) {
	tx, err := e.db.Begin()
	if err != nil {
		return nil, err
	}
	return &transaction{tx: tx}, nil
}

func (e *Engine) GetPage(id storage.PageID) (storage.Page, bool, error) {
	var data []byte
	err := e.db.QueryRow(`SELECT data FROM pages WHERE id = ?`, int64(id)).Scan(&data)
	if err == sql.ErrNoRows {
		return storage.Page{}, false, nil
	}
	if err != nil {
		return storage.Page{}, false, err
	}
	return storage.NewPage(id, data), true, nil
}

func (e *Engine) PutPage(p storage.Page) error {
	_, err := e.db.Exec(`INSERT INTO pages (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data`, int64(p.ID), p.Data)
	return err
}

func (e *Engine) Flush() error { return nil } // SQLite commits synchronously per statement
func (e *Engine) Close() error { return e.db.Close() }

func (e *Engine) Stats() (storage.Stats, error) {
	var keyCount, totalSize, pageCount int
	if err := e.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM kv`).
		Scan(&keyCount, &totalSize); err != nil {
		return storage.Stats{}, err
	}
	if err := e.db.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&pageCount); err != nil {
		return storage.Stats{}, err
	}
	return storage.Stats{
		KeyCount:       keyCount,
		TotalValueSize: totalSize,
		PageCount:      pageCount,
		ReadCount:      atomic.LoadUint64(&e.reads),
		WriteCount:     atomic.LoadUint64(&e.writes),
	}, nil
}

func (e *Engine) Type() string { return "sqlite" }

type transaction struct {
	tx *sql.Tx
}

func (t *transaction) Get(key []byte) ([]byte, bool, error) {
	var v []byte
	err := t.tx.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	return v, err == nil, err
}

func (t *transaction) Put(key, value []byte) error {
	_, err := t.tx.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (t *transaction) Delete(key []byte) error {
	_, err := t.tx.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (t *transaction) Exists(key []byte) (bool, error) {
	var one int
	err := t.tx.QueryRow(`SELECT 1 FROM kv WHERE key = ?`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (t *transaction) Commit() error { return t.tx.Commit() }
func (t *transaction) Abort() error  { return t.tx.Rollback() }
