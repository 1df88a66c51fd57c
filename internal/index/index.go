// Package index implements the in-memory document store, inverted
// posting lists, and trigram postings that back search (spec §4.3).
package index

import (
	"sort"

	"github.com/standardbeagle/tigercache/internal/doc"
	"github.com/standardbeagle/tigercache/internal/intern"
	"github.com/standardbeagle/tigercache/internal/token"
)

// Index holds the documents, inverted index, and trigram index. It is
// not safe for concurrent mutation by multiple goroutines; the facade
// serialises writers with its own lock (spec §5).
type Index struct {
	interner *intern.Interner

	documents map[string]doc.Document // keyed by external doc id

	inverted map[intern.ID][]string    // token id -> doc ids (insertion order, dup-tolerant)
	trigram  map[intern.ID][]intern.ID // trigram id -> token ids (insertion order, dup-tolerant)

	indexedFields []string
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		interner:  intern.New(),
		documents: make(map[string]doc.Document),
		inverted:  make(map[intern.ID][]string),
		trigram:   make(map[intern.ID][]intern.ID),
	}
}

// SetIndexedFields replaces the set of indexed field names. Effective
// only for subsequent Add calls (spec §4.3).
func (ix *Index) SetIndexedFields(names []string) {
	cp := make([]string, len(names))
	copy(cp, names)
	ix.indexedFields = cp
}

// IndexedFields returns the currently configured field list.
func (ix *Index) IndexedFields() []string {
	return ix.indexedFields
}

// Add inserts or atomically replaces document d. A pre-existing document
// under the same id is removed first so postings never carry both
// versions (spec §4.3 "Idempotent replacement semantics").
func (ix *Index) Add(d doc.Document) {
	ix.AddExtracted(d, ix.ExtractTokens(d))
}

// AddExtracted is Add with token extraction already done by the caller
// (see ExtractTokens), so a caller that parallelised extraction across
// documents does not pay for it twice. The write itself is unconditional
// and unparallelised, preserving posting order determinism (spec §4.3
// "add_batch": "may perform token extraction in parallel but must apply
// writes ... serially").
func (ix *Index) AddExtracted(d doc.Document, tokens []string) {
	if _, exists := ix.documents[d.ID]; exists {
		ix.remove(d.ID)
	}
	ix.insert(d, tokens)
}

// AddBatch inserts or replaces every document in docs. Token extraction
// may be parallelised by the caller (see index.ExtractTokens/AddExtracted);
// writes to the shared structures here are always serial, preserving
// posting order determinism (spec §4.3 "add_batch").
func (ix *Index) AddBatch(docs []doc.Document) {
	for _, d := range docs {
		ix.Add(d)
	}
}

// ExtractTokens tokenises d's indexable text per the currently configured
// field set and returns the unique token strings. It performs no
// mutation, so callers (the facade's AddBatch) may run it concurrently
// across documents before serially applying Add/insert.
func (ix *Index) ExtractTokens(d doc.Document) []string {
	texts := d.TextFields(ix.indexedFields)
	seen := make(map[string]struct{})
	var out []string
	for _, text := range texts {
		for _, tok := range token.UniqueTokens(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

func (ix *Index) insert(d doc.Document, tokens []string) {
	for _, tok := range tokens {
		tokID := ix.interner.Intern(tok)
		ix.inverted[tokID] = append(ix.inverted[tokID], d.ID)

		for trigram := range token.Trigrams(tok) {
			trigID := ix.interner.Intern(trigram)
			ix.trigram[trigID] = append(ix.trigram[trigID], tokID)
		}
	}
	ix.documents[d.ID] = d
}

// ErrNotFound-style sentinel consumed by the facade to produce a typed
// DocumentNotFound error; kept internal so this package stays
// error-taxonomy agnostic.
type NotFoundError struct{ DocID string }

func (e *NotFoundError) Error() string { return "document not found: " + e.DocID }

// Remove deletes doc_id from the index. Inverted postings are filtered
// in place and dropped once empty; trigram postings are left untouched
// and never compacted: the stale token ids they still hold map to no
// documents, so they add nothing to a query's results (spec §4.3
// "remove").
func (ix *Index) Remove(docID string) error {
	if _, exists := ix.documents[docID]; !exists {
		return &NotFoundError{DocID: docID}
	}
	ix.remove(docID)
	return nil
}

func (ix *Index) remove(docID string) {
	for tokID, ids := range ix.inverted {
		filtered := ids[:0]
		for _, id := range ids {
			if id != docID {
				filtered = append(filtered, id)
			}
		}
		if len(filtered) == 0 {
			delete(ix.inverted, tokID)
		} else {
			ix.inverted[tokID] = filtered
		}
	}
	delete(ix.documents, docID)
}

// Get returns the document for docID, if present.
func (ix *Index) Get(docID string) (doc.Document, bool) {
	d, ok := ix.documents[docID]
	return d, ok
}

// Count returns the number of documents currently indexed.
func (ix *Index) Count() int {
	return len(ix.documents)
}

// CandidateTokens returns the set of indexed token strings sharing at
// least one trigram with any token of query (spec §4.3
// "candidate_tokens").
func (ix *Index) CandidateTokens(query string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, qtok := range token.Tokenise(query) {
		for trigram := range token.Trigrams(qtok) {
			trigID, ok := ix.interner.GetID(trigram)
			if !ok {
				continue
			}
			for _, tokID := range ix.trigram[trigID] {
				s, ok := ix.interner.Get(tokID)
				if !ok {
					continue
				}
				out[s] = struct{}{}
			}
		}
	}
	return out
}

// DocsForToken returns the (possibly duplicate-containing) doc id
// sequence stored for tok's inverted posting.
func (ix *Index) DocsForToken(tok string) []string {
	tokID, ok := ix.interner.GetID(tok)
	if !ok {
		return nil
	}
	return ix.inverted[tokID]
}

// Clear empties all maps and the interner (spec §4.3 "clear").
func (ix *Index) Clear() {
	ix.interner.Clear()
	ix.documents = make(map[string]doc.Document)
	ix.inverted = make(map[intern.ID][]string)
	ix.trigram = make(map[intern.ID][]intern.ID)
}

// AllDocuments returns every document in ascending id order, used by
// the facade's index snapshot for full-index persistence
// (commit/save_to_file).
func (ix *Index) AllDocuments() []doc.Document {
	out := make([]doc.Document, 0, len(ix.documents))
	for _, d := range ix.documents {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
