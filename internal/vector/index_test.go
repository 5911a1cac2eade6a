package vector

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	if s := CosineSimilarity([]float64{1, 0}, []float64{1, 0}); math.Abs(s-1) > 1e-9 {
		t.Errorf("identical vectors: %v", s)
	}
	if s := CosineSimilarity([]float64{1, 0}, []float64{0, 1}); s != 0 {
		t.Errorf("orthogonal vectors: %v", s)
	}
	if s := CosineSimilarity([]float64{1, 0}, []float64{-1, 0}); math.Abs(s+1) > 1e-9 {
		t.Errorf("opposite vectors: %v", s)
	}
	// Unnormalized operands still use the full formula.
	if s := CosineSimilarity([]float64{3, 0}, []float64{7, 0}); math.Abs(s-1) > 1e-9 {
		t.Errorf("unnormalized: %v", s)
	}
}

func TestCosineSimilarity_Degenerate(t *testing.T) {
	if s := CosineSimilarity([]float64{0, 0}, []float64{1, 0}); s != 0 {
		t.Errorf("zero-norm operand: %v", s)
	}
	if s := CosineSimilarity([]float64{1, 0}, []float64{1, 0, 0}); s != 0 {
		t.Errorf("length mismatch: %v", s)
	}
	if s := CosineSimilarity(nil, nil); s != 0 {
		t.Errorf("empty: %v", s)
	}
}

func TestRank_EmptyCorpus(t *testing.T) {
	results := Rank([]float64{1, 0}, nil, 5)
	if len(results) != 0 {
		t.Errorf("empty corpus returned %d results", len(results))
	}
}

func TestRank_TopK(t *testing.T) {
	corpus := []Entry{
		{ID: "a", Vector: []float64{1, 0}},
		{ID: "b", Vector: []float64{0.9, 0.1}},
		{ID: "c", Vector: []float64{0, 1}},
	}
	results := Rank([]float64{1, 0}, corpus, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].ID != "a" || results[1].ID != "b" {
		t.Errorf("order: %s, %s", results[0].ID, results[1].ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not non-increasing at %d", i)
		}
	}
}

func TestRank_KLargerThanCorpus(t *testing.T) {
	corpus := []Entry{{ID: "only", Vector: []float64{1}}}
	results := Rank([]float64{1}, corpus, 10)
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestRank_TieBreakByInsertionOrder(t *testing.T) {
	// Two identical vectors: the earliest-inserted entry must win the tie.
	corpus := []Entry{
		{ID: "first", Vector: []float64{0.6, 0.8}},
		{ID: "second", Vector: []float64{0.6, 0.8}},
	}
	results := Rank([]float64{0.6, 0.8}, corpus, 2)
	if results[0].ID != "first" || results[1].ID != "second" {
		t.Errorf("tie order: %s, %s", results[0].ID, results[1].ID)
	}
}

func TestRank_ZeroNormEntriesScoreZero(t *testing.T) {
	corpus := []Entry{
		{ID: "zero", Vector: []float64{0, 0}},
		{ID: "hit", Vector: []float64{1, 0}},
	}
	results := Rank([]float64{1, 0}, corpus, 2)
	if results[0].ID != "hit" {
		t.Errorf("top = %s", results[0].ID)
	}
	if results[1].Score != 0 {
		t.Errorf("zero-norm score = %v", results[1].Score)
	}
}
