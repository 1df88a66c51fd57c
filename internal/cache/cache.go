// Package cache implements the three-tier in-RAM cache hierarchy sitting
// atop internal/lru: a document cache, a posting cache split between
// token and trigram postings, and a query-result cache (spec §4.6).
package cache

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/tigercache/internal/doc"
	"github.com/standardbeagle/tigercache/internal/intern"
	"github.com/standardbeagle/tigercache/internal/lru"
	"github.com/standardbeagle/tigercache/internal/rank"
)

// Budget splits the total cache byte budget across the three tiers and
// the posting cache's token/trigram sub-split, per spec §4.6's table.
type Budget struct {
	Total int
}

const (
	documentShare       = 0.40
	postingShare        = 0.50
	queryShare          = 0.10
	postingTokenShare   = 0.8 // of postingShare
	postingTrigramShare = 0.2 // of postingShare
)

func (b Budget) documentBytes() int { return int(float64(b.Total) * documentShare) }
func (b Budget) tokenPostingBytes() int {
	return int(float64(b.Total) * postingShare * postingTokenShare)
}
func (b Budget) trigramPostingBytes() int {
	return int(float64(b.Total) * postingShare * postingTrigramShare)
}
func (b Budget) queryBytes() int { return int(float64(b.Total) * queryShare) }

// Hierarchy owns the document, posting, and query tiers and enforces
// the cross-tier invalidation rules from spec §4.6.
type Hierarchy struct {
	documents      *lru.Cache[string, doc.Document]
	tokenPostings  *lru.Cache[intern.ID, []string]
	trigramPosting *lru.Cache[intern.ID, []intern.ID]
	queries        *lru.Cache[uint64, []rank.Result]
}

// New builds a Hierarchy sized by budget.
func New(budget Budget) *Hierarchy {
	return &Hierarchy{
		documents:      lru.New[string, doc.Document](budget.documentBytes()),
		tokenPostings:  lru.New[intern.ID, []string](budget.tokenPostingBytes()),
		trigramPosting: lru.New[intern.ID, []intern.ID](budget.trigramPostingBytes()),
		queries:        lru.New[uint64, []rank.Result](budget.queryBytes()),
	}
}

// GetDocument returns the cached copy of docID, if present.
func (h *Hierarchy) GetDocument(docID string) (doc.Document, bool) {
	return h.documents.Get(docID)
}

// PutDocument stores a copy of d in the document cache.
func (h *Hierarchy) PutDocument(d doc.Document) {
	h.documents.Put(d.ID, d, d.ApproxSize())
}

// InvalidateDocument evicts docID from the document cache, as required
// whenever add or remove touches that id (spec §4.6).
func (h *Hierarchy) InvalidateDocument(docID string) {
	h.documents.Remove(docID)
}

// GetTokenPosting returns the cached inverted posting for tokID.
func (h *Hierarchy) GetTokenPosting(tokID intern.ID) ([]string, bool) {
	return h.tokenPostings.Get(tokID)
}

// PutTokenPosting stores posting for tokID.
func (h *Hierarchy) PutTokenPosting(tokID intern.ID, posting []string) {
	size := 8
	for _, id := range posting {
		size += len(id) + 8
	}
	h.tokenPostings.Put(tokID, posting, size)
}

// InvalidateTokenPosting evicts tokID's cached posting; called whenever
// that token's inverted list mutates.
func (h *Hierarchy) InvalidateTokenPosting(tokID intern.ID) {
	h.tokenPostings.Remove(tokID)
}

// GetTrigramPosting returns the cached trigram posting for trigID.
func (h *Hierarchy) GetTrigramPosting(trigID intern.ID) ([]intern.ID, bool) {
	return h.trigramPosting.Get(trigID)
}

// PutTrigramPosting stores posting for trigID.
func (h *Hierarchy) PutTrigramPosting(trigID intern.ID, posting []intern.ID) {
	h.trigramPosting.Put(trigID, posting, 8+len(posting)*4)
}

// InvalidateTrigramPosting evicts trigID's cached posting.
func (h *Hierarchy) InvalidateTrigramPosting(trigID intern.ID) {
	h.trigramPosting.Remove(trigID)
}

// QueryKey identifies a cached search result by query text and options.
type QueryKey struct {
	Query         string
	MaxDistance   int
	ScoreThreshold int // scaled ×1000, per spec §6
	Limit         int
}

// Hash returns a stable 64-bit digest of k suitable for use as the
// underlying LRU's map key; xxhash keeps this cheap on the query path.
func (k QueryKey) Hash() uint64 {
	var b strings.Builder
	b.WriteString(k.Query)
	b.WriteByte('\x00')
	b.WriteString(strconv.Itoa(k.MaxDistance))
	b.WriteByte('\x00')
	b.WriteString(strconv.Itoa(k.ScoreThreshold))
	b.WriteByte('\x00')
	b.WriteString(strconv.Itoa(k.Limit))
	return xxhash.Sum64String(b.String())
}

// GetQuery returns the cached result set for k, if present.
func (h *Hierarchy) GetQuery(k QueryKey) ([]rank.Result, bool) {
	return h.queries.Get(k.Hash())
}

// PutQuery stores results under k.
func (h *Hierarchy) PutQuery(k QueryKey, results []rank.Result) {
	size := 16
	for _, r := range results {
		size += len(r.DocID) + 16
	}
	h.queries.Put(k.Hash(), results, size)
}

// InvalidateQueries clears the query cache entirely. Spec §4.6 requires
// this on every add/remove, since any mutation can change any query's
// result set.
func (h *Hierarchy) InvalidateQueries() {
	h.queries.Clear()
}

// EvictProportional tries to free bytesToFree bytes total and returns the
// number of bytes actually freed, splitting the target across the document/token-posting/trigram-posting/query tiers
// in proportion to each tier's current occupancy, and evicting
// least-recently-used entries within each tier (spec §4.7: "Consumers
// react to EvictionRequired by dropping least-recent entries
// proportionally across their caches until the required byte count is
// freed"). A tier with nothing left to evict simply contributes less
// than its share; any shortfall is not redistributed, since the event
// recurs on the next sampling tick if pressure persists.
func (h *Hierarchy) EvictProportional(bytesToFree int) int {
	if bytesToFree <= 0 {
		return 0
	}

	total := h.documents.Size() + h.tokenPostings.Size() + h.trigramPosting.Size() + h.queries.Size()
	if total == 0 {
		return 0
	}

	share := func(tierSize int) int {
		n := int(float64(bytesToFree) * float64(tierSize) / float64(total))
		if n == 0 && tierSize > 0 {
			n = 1
		}
		return n
	}

	freed := 0
	freed += h.documents.EvictBytes(share(h.documents.Size()))
	freed += h.tokenPostings.EvictBytes(share(h.tokenPostings.Size()))
	freed += h.trigramPosting.EvictBytes(share(h.trigramPosting.Size()))
	freed += h.queries.EvictBytes(share(h.queries.Size()))
	return freed
}

// Clear empties every tier.
func (h *Hierarchy) Clear() {
	h.documents.Clear()
	h.tokenPostings.Clear()
	h.trigramPosting.Clear()
	h.queries.Clear()
}

// Stats summarises hit rates and occupancy across the three tiers, feeding
// the facade's stats() call.
type Stats struct {
	DocumentEntries int
	DocumentBytes   int
	DocumentHitRate float64

	PostingEntries int
	PostingBytes   int
	PostingHitRate float64

	QueryEntries int
	QueryBytes   int
	QueryHitRate float64
}

// Stats returns a snapshot across all tiers.
func (h *Hierarchy) Stats() Stats {
	return Stats{
		DocumentEntries: h.documents.Len(),
		DocumentBytes:   h.documents.Size(),
		DocumentHitRate: h.documents.HitRate(),

		PostingEntries: h.tokenPostings.Len() + h.trigramPosting.Len(),
		PostingBytes:   h.tokenPostings.Size() + h.trigramPosting.Size(),
		PostingHitRate: (h.tokenPostings.HitRate() + h.trigramPosting.HitRate()) / 2,

		QueryEntries: h.queries.Len(),
		QueryBytes:   h.queries.Size(),
		QueryHitRate: h.queries.HitRate(),
	}
}
