// Package tigercache is an embedded, typo-tolerant full-text search
// library: a trigram-based tokeniser and index, a fuzzy ranker, a
// multi-tier cache hierarchy with a memory-pressure monitor, and a
// pluggable key/value storage abstraction.
package tigercache

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/tigercache/internal/cache"
	"github.com/standardbeagle/tigercache/internal/doc"
	"github.com/standardbeagle/tigercache/internal/index"
	"github.com/standardbeagle/tigercache/internal/memory"
	"github.com/standardbeagle/tigercache/internal/rank"
	"github.com/standardbeagle/tigercache/internal/storage"

	_ "github.com/standardbeagle/tigercache/internal/storage/badgerstore"
	_ "github.com/standardbeagle/tigercache/internal/storage/boltstore"
	_ "github.com/standardbeagle/tigercache/internal/storage/memstore"
	_ "github.com/standardbeagle/tigercache/internal/storage/sqlitestore"
)

// TigerCache is the facade (spec §4.9): it owns the index, storage
// engine, memory manager, and cache hierarchy, and implements the
// public lifecycle/ingest/search/persistence operations.
type TigerCache struct {
	mu sync.RWMutex

	index   *index.Index
	caches  *cache.Hierarchy
	memMgr  *memory.Manager
	storage storage.Engine

	config Config
	path   string

	closed  bool
	tainted bool

	evictOnce sync.Once
	evictStop chan struct{}
	evictWG   sync.WaitGroup
}

// New returns an empty TigerCache backed by an in-memory store, per
// DefaultConfig.
func New() (*TigerCache, error) {
	return WithConfig(DefaultConfig())
}

// WithConfig returns an empty TigerCache configured per cfg.
func WithConfig(cfg Config) (*TigerCache, error) {
	eng, err := storage.Open(storageTypeOrDefault(cfg), storage.Config{
		Path:            cfg.StoragePath,
		PageSize:        cfg.PageSize,
		CreateIfMissing: cfg.CreateIfMissing,
		UseCompression:  cfg.UseCompression,
		SyncWrites:      cfg.SyncWrites,
		CollectMetrics:  cfg.CollectMetrics,
	})
	if err != nil {
		return nil, newErr(KindConfiguration, "with_config", err)
	}

	tc := &TigerCache{
		index:     index.New(),
		caches:    cache.New(cache.Budget{Total: cfg.CacheSize}),
		memMgr:    memory.New(cfg.MaxMemory),
		storage:   eng,
		config:    cfg,
		evictStop: make(chan struct{}),
	}
	tc.index.SetIndexedFields(cfg.IndexedFields)

	if cfg.EnableBackgroundOps {
		tc.memMgr.Start()
		tc.evictWG.Add(1)
		go tc.runEvictionConsumer()
	}
	return tc, nil
}

// runEvictionConsumer drains memMgr's event stream and, on
// EvictionRequired, frees the requested byte count proportionally
// across the cache tiers (spec §4.7: "Consumers (C6) react to
// EvictionRequired by dropping least-recent entries proportionally
// across their caches until the required byte count is freed").
func (tc *TigerCache) runEvictionConsumer() {
	defer tc.evictWG.Done()
	for {
		select {
		case <-tc.evictStop:
			return
		case ev, ok := <-tc.memMgr.Events():
			if !ok {
				return
			}
			if ev.Kind == memory.EvictionRequired && ev.BytesToFree > 0 {
				tc.caches.EvictProportional(int(ev.BytesToFree))
			}
		}
	}
}

func storageTypeOrDefault(cfg Config) string {
	if cfg.StorageType == "" {
		return "memory"
	}
	return cfg.StorageType
}

// Open opens (or creates) a TigerCache rooted at path using
// DefaultConfig.
func Open(path string) (*TigerCache, error) {
	return OpenWithConfig(path, DefaultConfig())
}

// OpenWithConfig opens (or creates) a TigerCache rooted at path. It
// first tries path as a legacy single-file JSON snapshot (spec §4.9
// "open tries a legacy JSON snapshot first"); if that file does not
// exist or does not parse as one (e.g. path is actually a storage
// backend's own file or directory), path is instead handed to the
// configured storage backend and the index is restored from its
// `index_metadata` entry if present.
func OpenWithConfig(path string, cfg Config) (*TigerCache, error) {
	if snap, err := loadLegacySnapshot(path); err == nil {
		tc, err := WithConfig(cfg)
		if err != nil {
			return nil, err
		}
		tc.path = path
		tc.restoreSnapshot(snap)
		return tc, nil
	}

	cfg.StoragePath = path
	tc, err := WithConfig(cfg)
	if err != nil {
		return nil, err
	}
	tc.path = path

	data, ok, err := tc.storage.Get([]byte(indexMetadataKey))
	if err != nil {
		return nil, newErr(KindStorageCorrupted, "open", err)
	}
	if ok {
		snap, err := decodeSnapshot(data)
		if err != nil {
			return nil, newErr(KindSerialization, "open", err)
		}
		tc.restoreSnapshot(snap)
	}
	return tc, nil
}

func (tc *TigerCache) restoreSnapshot(snap snapshot) {
	tc.index.SetIndexedFields(snap.IndexedFields)
	tc.index.AddBatch(snap.Documents)
}

// SetIndexedFields replaces the set of fields considered for tokenising
// future Add calls.
func (tc *TigerCache) SetIndexedFields(names []string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.index.SetIndexedFields(names)
}

// Add indexes, persists, and caches d, replacing any prior version under
// the same id (spec §4.9 "Ingestion coordinates").
func (tc *TigerCache) Add(d Document) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.closed {
		return newErr(KindConfiguration, "add", errClosed)
	}
	return tc.addLocked(d)
}

func (tc *TigerCache) addLocked(d doc.Document) error {
	old, replaced := tc.index.Get(d.ID)
	tc.index.Add(d)

	if err := tc.storage.Put(docKey(d.ID), encodeDocument(d)); err != nil {
		tc.index.Remove(d.ID)
		tc.tainted = true
		return newErr(KindIO, "add", err)
	}

	tc.caches.PutDocument(d)
	tc.caches.InvalidateQueries()
	if replaced {
		tc.memMgr.Free(uint64(old.ApproxSize()))
	}
	tc.memMgr.Allocate(uint64(d.ApproxSize()))
	return nil
}

// AddBatch indexes, persists, and caches every document in docs.
// Token extraction is parallelised across documents via errgroup;
// index and storage writes remain serial so posting order and
// transaction ordering stay deterministic (spec §4.3 "add_batch").
func (tc *TigerCache) AddBatch(docs []Document) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.closed {
		return newErr(KindConfiguration, "add_batch", errClosed)
	}

	tokens := make([][]string, len(docs))
	var g errgroup.Group
	for i := range docs {
		i, d := i, docs[i]
		g.Go(func() error {
			tokens[i] = tc.index.ExtractTokens(d)
			return nil
		})
	}
	_ = g.Wait()

	tx, err := tc.storage.BeginTransaction()
	if err != nil {
		return newErr(KindTransaction, "add_batch", err)
	}

	for i, d := range docs {
		old, replaced := tc.index.Get(d.ID)
		tc.index.AddExtracted(d, tokens[i])
		if err := tx.Put(docKey(d.ID), encodeDocument(d)); err != nil {
			_ = tx.Abort()
			tc.tainted = true
			return newErr(KindIO, "add_batch", err)
		}
		tc.caches.PutDocument(d)
		if replaced {
			tc.memMgr.Free(uint64(old.ApproxSize()))
		}
		tc.memMgr.Allocate(uint64(d.ApproxSize()))
	}

	if err := tx.Commit(); err != nil {
		tc.tainted = true
		return newErr(KindTransaction, "add_batch", err)
	}

	tc.caches.InvalidateQueries()
	return nil
}

// Remove deletes doc_id from the index, storage, and caches.
func (tc *TigerCache) Remove(docID string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.closed {
		return newErr(KindConfiguration, "remove", errClosed)
	}

	existing, _ := tc.index.Get(docID)
	if err := tc.index.Remove(docID); err != nil {
		return newDocumentNotFoundError("remove", docID)
	}
	tc.memMgr.Free(uint64(existing.ApproxSize()))

	if err := tc.storage.Delete(docKey(docID)); err != nil {
		tc.tainted = true
		return newErr(KindIO, "remove", err)
	}

	tc.caches.InvalidateDocument(docID)
	tc.caches.InvalidateQueries()
	return nil
}

// Get returns the document for docID, preferring the document cache.
func (tc *TigerCache) Get(docID string) (Document, error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	if d, ok := tc.caches.GetDocument(docID); ok {
		return d, nil
	}
	d, ok := tc.index.Get(docID)
	if !ok {
		return Document{}, newDocumentNotFoundError("get", docID)
	}
	return d, nil
}

// Count returns the number of documents currently indexed.
func (tc *TigerCache) Count() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.index.Count()
}

// SearchResult is one ranked hit returned by Search.
type SearchResult struct {
	Document     Document
	Score        float64
	MatchedField []string
}

// Search canonicalises query (trimmed, not re-cased), consults the
// query cache, and on miss invokes the ranker, caching the result
// before returning it (spec §4.9 "Search coordinates").
func (tc *TigerCache) Search(query string, opts ...SearchOptions) ([]SearchResult, error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	o := SearchOptions{MaxDistance: tc.config.MaxDistance, ScoreThreshold: tc.config.ScoreThreshold, Limit: tc.config.MaxResults}
	if len(opts) > 0 {
		o = opts[0]
	}

	canonical := canonicaliseQuery(query)
	key := cache.QueryKey{
		Query:          canonical,
		MaxDistance:    o.MaxDistance,
		ScoreThreshold: o.ScoreThreshold,
		Limit:          o.Limit,
	}

	if cached, ok := tc.caches.GetQuery(key); ok {
		return tc.hydrate(cached), nil
	}

	results := rank.Search(tc.index, canonical, o.toRankOptions())
	tc.caches.PutQuery(key, results)
	return tc.hydrate(results), nil
}

func (tc *TigerCache) hydrate(results []rank.Result) []SearchResult {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		d, ok := tc.caches.GetDocument(r.DocID)
		if !ok {
			d, ok = tc.index.Get(r.DocID)
			if !ok {
				continue
			}
		}
		out = append(out, SearchResult{Document: d, Score: r.Score, MatchedField: r.MatchedField})
	}
	return out
}

// Commit writes a serialised snapshot of the index under the fixed key
// `index_metadata` and flushes the storage engine (spec §4.9
// "Persistence"). A no-op on an already-closed instance.
func (tc *TigerCache) Commit() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.closed {
		return nil
	}
	return tc.commitLocked()
}

func (tc *TigerCache) commitLocked() error {
	snap := tc.snapshotLocked()
	data, err := encodeSnapshot(snap)
	if err != nil {
		return newErr(KindSerialization, "commit", err)
	}
	if err := tc.storage.Put([]byte(indexMetadataKey), data); err != nil {
		return newErr(KindIO, "commit", err)
	}
	if err := tc.storage.Flush(); err != nil {
		return newErr(KindIO, "commit", err)
	}
	return nil
}

func (tc *TigerCache) snapshotLocked() snapshot {
	return snapshot{
		IndexedFields: tc.index.IndexedFields(),
		Documents:     tc.index.AllDocuments(),
	}
}

// SaveToFile writes a legacy single-file JSON snapshot of the whole
// index to path.
func (tc *TigerCache) SaveToFile(path string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	snap := tc.snapshotLocked()
	if err := saveLegacySnapshot(path, snap); err != nil {
		return newErr(KindIO, "save_to_file", err)
	}
	return nil
}

// Clear empties the index and every cache tier. The storage backend is
// left untouched: persisted `doc:<id>` entries remain, and the
// `index_metadata` snapshot keeps the pre-Clear index until the next
// Commit overwrites it.
func (tc *TigerCache) Clear() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.index.Clear()
	tc.caches.Clear()
	return nil
}

// Flush is a durability barrier over the storage engine.
func (tc *TigerCache) Flush() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if err := tc.storage.Flush(); err != nil {
		return newErr(KindIO, "flush", err)
	}
	return nil
}

// Close flushes and releases the storage engine and stops the memory
// manager's background sampler. A no-op on an already-closed instance
// (spec §7 "Committing or closing an already-closed instance is a
// no-op").
func (tc *TigerCache) Close() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.closed {
		return nil
	}
	tc.closed = true

	tc.memMgr.Stop()
	tc.evictOnce.Do(func() { close(tc.evictStop) })
	tc.evictWG.Wait()
	if err := tc.storage.Close(); err != nil {
		return newErr(KindIO, "close", err)
	}
	return nil
}

// Stats aggregates cache-hierarchy statistics for monitoring.
func (tc *TigerCache) Stats() cache.Stats {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.caches.Stats()
}

// MemoryStats returns the memory manager's most recent published
// snapshot.
func (tc *TigerCache) MemoryStats() memory.Stats {
	return tc.memMgr.Stats()
}

// StorageStats returns the storage engine's key/page/IO counters.
func (tc *TigerCache) StorageStats() (storage.Stats, error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	stats, err := tc.storage.Stats()
	if err != nil {
		return storage.Stats{}, newErr(KindIO, "storage_stats", err)
	}
	return stats, nil
}

var errClosed = fmt.Errorf("tigercache: instance is closed")
