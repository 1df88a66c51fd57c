package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tigercache/internal/doc"
	"github.com/standardbeagle/tigercache/internal/index"
)

func sampleIndex() *index.Index {
	ix := index.New()
	ix.Add(doc.NewDocument("iphone-13").WithField("title", doc.NewText("Apple iPhone")))
	ix.Add(doc.NewDocument("galaxy-s21").WithField("title", doc.NewText("Samsung Galaxy")))
	return ix
}

// S1: exact and fuzzy top hits.
func TestSearchExactAndFuzzyTopHit(t *testing.T) {
	ix := sampleIndex()

	results := Search(ix, "Apple", DefaultOptions())
	require.NotEmpty(t, results)
	assert.Equal(t, "iphone-13", results[0].DocID)
	assert.Greater(t, results[0].Score, 0.0)

	results = Search(ix, "Samsnug", DefaultOptions())
	require.NotEmpty(t, results)
	assert.Equal(t, "galaxy-s21", results[0].DocID)
}

// S2: with max_distance 0, a two-edit misspelling returns nothing.
func TestSearchZeroDistanceExcludesFarMisspelling(t *testing.T) {
	ix := sampleIndex()
	opts := Options{MaxDistance: 0, ScoreThreshold: 0, Limit: 10}

	results := Search(ix, "Appple", opts)
	assert.Empty(t, results)
}

// S3: with max_distance 1, a one-edit misspelling returns the single match.
func TestSearchDistanceOneFindsSingleEdit(t *testing.T) {
	ix := sampleIndex()
	opts := Options{MaxDistance: 1, ScoreThreshold: 0, Limit: 1}

	results := Search(ix, "Aple", opts)
	require.Len(t, results, 1)
	assert.Equal(t, "iphone-13", results[0].DocID)
}

func TestSearchEmptyQueryReturnsEmpty(t *testing.T) {
	ix := sampleIndex()
	assert.Empty(t, Search(ix, "   ", DefaultOptions()))
}

func TestSearchRespectsLimit(t *testing.T) {
	ix := index.New()
	for _, id := range []string{"a", "b", "c"} {
		ix.Add(doc.NewDocument(id).WithField("title", doc.NewText("apple")))
	}
	opts := Options{MaxDistance: 2, ScoreThreshold: 0, Limit: 2}
	results := Search(ix, "apple", opts)
	assert.Len(t, results, 2)
}

func TestSearchDeterministicTieBreakByDocID(t *testing.T) {
	ix := index.New()
	ix.Add(doc.NewDocument("z").WithField("title", doc.NewText("apple")))
	ix.Add(doc.NewDocument("a").WithField("title", doc.NewText("apple")))

	results := Search(ix, "apple", DefaultOptions())
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].DocID)
	assert.Equal(t, "z", results[1].DocID)
}

func TestJaccardOverlap(t *testing.T) {
	a := map[string]struct{}{"$$a": {}, "$ap": {}}
	b := map[string]struct{}{"$$a": {}, "$ap": {}, "ple": {}}
	assert.InDelta(t, 2.0/3.0, jaccardOverlap(a, b), 0.0001)
	assert.Equal(t, 0.0, jaccardOverlap(nil, b))
}
