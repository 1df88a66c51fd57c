package tigercache

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"os"
	"strings"

	"github.com/standardbeagle/tigercache/internal/doc"
)

// indexMetadataKey is the fixed storage key Commit/OpenWithConfig use to
// snapshot the whole index inside the configured storage engine (spec
// §4.9 "Persistence").
const indexMetadataKey = "index_metadata"

// snapshot is the serialisable form of an Index: its field configuration
// plus every document, sufficient to rebuild both the document store and
// the inverted/trigram postings via AddBatch.
type snapshot struct {
	IndexedFields []string
	Documents     []doc.Document
}

// docKey returns the storage key under which a single document's content
// is persisted, independent of the whole-index snapshot.
func docKey(id string) []byte {
	return []byte("doc:" + id)
}

// encodeDocument serialises a single document for storage.Put. JSON
// keeps this consistent with the codec SaveToFile already uses (Commit's
// whole-index snapshot uses gob instead) and needs no schema beyond
// doc.Document's exported fields.
func encodeDocument(d doc.Document) []byte {
	data, err := json.Marshal(d)
	if err != nil {
		// doc.Document's field set (strings, float64, bool, slices, maps
		// of the same) is always JSON-marshalable; this would indicate a
		// new Value variant was added without updating this comment.
		panic("tigercache: document failed to encode: " + err.Error())
	}
	return data
}

// encodeSnapshot serialises the whole-index snapshot for the storage
// engine's `index_metadata` key. gob is used here (rather than JSON)
// since this payload is internal-only binary state, never hand-edited,
// and gob's self-describing encoding tolerates the nested Value sum type
// without per-variant marshal code.
func encodeSnapshot(s snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSnapshot(data []byte) (snapshot, error) {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return snapshot{}, err
	}
	return s, nil
}

// saveLegacySnapshot writes a single-file JSON snapshot, matching the
// format a bare OpenWithConfig(path) expects to find at a regular file
// path (spec §4.9 "open tries a legacy JSON snapshot first").
func saveLegacySnapshot(path string, s snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadLegacySnapshot(path string) (snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot{}, err
	}
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return snapshot{}, err
	}
	return s, nil
}

// canonicaliseQuery trims incidental whitespace so two requests that
// differ only there still hit the same query-cache entry; the ranker
// performs its own case/punctuation normalisation per query token.
func canonicaliseQuery(q string) string {
	return strings.TrimSpace(q)
}
