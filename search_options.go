package tigercache

import "github.com/standardbeagle/tigercache/internal/rank"

// SearchOptions configures a Search call. ScoreThreshold is carried as
// an integer scaled by x1000 (spec §6) rather than a float so the
// struct stays value-equatable and hashable for the query cache key.
type SearchOptions struct {
	MaxDistance    int
	ScoreThreshold int
	Limit          int
}

// DefaultSearchOptions returns {max_distance:2, score_threshold:0,
// limit:100} per spec §4.4.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{MaxDistance: 2, ScoreThreshold: 0, Limit: 100}
}

func (o SearchOptions) toRankOptions() rank.Options {
	return rank.Options{
		MaxDistance:    o.MaxDistance,
		ScoreThreshold: float64(o.ScoreThreshold) / 1000.0,
		Limit:          o.Limit,
	}
}
