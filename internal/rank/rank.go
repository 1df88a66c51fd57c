// Package rank implements the candidate-generation and scoring pipeline
// that turns a query string into a ranked, truncated list of document
// ids (spec §4.4).
package rank

import (
	"sort"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/tigercache/internal/index"
	"github.com/standardbeagle/tigercache/internal/token"
)

// Tunables from spec §4.4's rationale: magic numbers the original does not
// derive, carried forward as named constants rather than re-justified.
const (
	overlapThreshold = 0.2
	exactMatchBoost  = 5.0
)

// Options mirrors the facade's SearchOptions with score_threshold already
// converted to a float (the ×1000 integer scaling is a cache-key concern,
// not a ranking one).
type Options struct {
	MaxDistance   int
	ScoreThreshold float64
	Limit         int
}

// DefaultOptions returns {max_distance:2, score_threshold:0, limit:100}
// per spec §4.4.
func DefaultOptions() Options {
	return Options{MaxDistance: 2, ScoreThreshold: 0, Limit: 100}
}

// Result is one ranked hit: a document id, its accumulated score, and the
// (possibly empty, by contract) set of matched field names.
type Result struct {
	DocID        string
	Score        float64
	MatchedField []string
}

// Search runs the spec §4.4 algorithm against ix for query under opts.
func Search(ix *index.Index, query string, opts Options) []Result {
	qtoks := token.Tokenise(query)
	if len(qtoks) == 0 {
		return nil
	}

	scores := make(map[string]float64)
	for _, q := range qtoks {
		qTrigrams := token.Trigrams(q)
		candidates := ix.CandidateTokens(q)

		for c := range candidates {
			cTrigrams := token.Trigrams(c)
			overlap := jaccardOverlap(qTrigrams, cTrigrams)
			d := edlib.LevenshteinDistance(q, c)

			if overlap < overlapThreshold || d > opts.MaxDistance+1 {
				continue
			}
			if d > opts.MaxDistance {
				continue
			}

			distanceScore := 1.0 / float64(d+1)
			combined := distanceScore * (1 + overlap)
			if d == 0 {
				combined *= exactMatchBoost
			}

			for _, docID := range ix.DocsForToken(c) {
				scores[docID] += combined
			}
		}
	}

	results := make([]Result, 0, len(scores))
	for docID, score := range scores {
		if score < opts.ScoreThreshold {
			continue
		}
		results = append(results, Result{DocID: docID, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	limit := opts.Limit
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// jaccardOverlap computes |a ∩ b| / max(|a|, |b|) for two trigram sets;
// 0 when either set is empty.
func jaccardOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	return float64(inter) / float64(denom)
}
