package vector

import "sort"

// Entry is one corpus item handed to Rank: an opaque ID and its stored
// embedding. Entries are read-only for the duration of a ranking pass.
type Entry struct {
	ID     string
	Vector []float64
}

// Result is a single ranking hit.
type Result struct {
	ID    string
	Score float64
}

// Rank scores every corpus entry against the query by cosine similarity and
// returns the top k, ordered by descending similarity. Ties are broken by
// corpus order (earliest entry first) so results are deterministic. An empty
// corpus returns an empty slice; k larger than the corpus returns everything.
func Rank(query []float64, corpus []Entry, k int) []*Result {
	if k <= 0 || len(corpus) == 0 {
		return []*Result{}
	}
	scored := make([]*Result, len(corpus))
	for i, e := range corpus {
		scored[i] = &Result{ID: e.ID, Score: CosineSimilarity(query, e.Vector)}
	}
	// Stable sort keeps corpus order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
