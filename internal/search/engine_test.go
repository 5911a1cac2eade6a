package search

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/config"
	"github.com/hyperjump/miru/internal/embedding"
	"github.com/hyperjump/miru/internal/models"
)

// fakeStore is an in-memory Storage covering only what the engine calls.
type fakeStore struct {
	images  []*models.ImageRecord
	snapErr error
}

func (f *fakeStore) InsertImage(_ context.Context, filename, description string, embedding []float64, imageURL string) (string, error) {
	id := fmt.Sprintf("img-%d", len(f.images))
	f.images = append(f.images, &models.ImageRecord{
		ID: id, Filename: filename, Description: description,
		Embedding: embedding, ImageURL: imageURL,
	})
	return id, nil
}

func (f *fakeStore) GetImage(_ context.Context, id string) (*models.ImageRecord, error) {
	for _, img := range f.images {
		if img.ID == id {
			return img, nil
		}
	}
	return nil, fmt.Errorf("image not found: %s", id)
}

func (f *fakeStore) ListImages(_ context.Context) ([]*models.ImageRecord, error) {
	return f.images, nil
}

func (f *fakeStore) CorpusSnapshot(_ context.Context) ([]*models.ImageRecord, error) {
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	return f.images, nil
}

func (f *fakeStore) DeleteImage(_ context.Context, _ string) error { return nil }
func (f *fakeStore) ClearImages(_ context.Context) error           { return nil }
func (f *fakeStore) CountImages(_ context.Context) (int64, error)  { return int64(len(f.images)), nil }
func (f *fakeStore) AddMessage(_ context.Context, _, _ string, _ map[string]interface{}) (*models.Message, error) {
	return nil, nil
}
func (f *fakeStore) ListMessages(_ context.Context) ([]*models.Message, error) { return nil, nil }
func (f *fakeStore) ClearMessages(_ context.Context) error                     { return nil }
func (f *fakeStore) Close() error                                              { return nil }

// fakeGen embeds with the local embedder and never rewrites.
type fakeGen struct {
	embedder  *embedding.LocalEmbedder
	optimized string
}

func (g *fakeGen) OptimizeQuery(_ context.Context, query string) string {
	if g.optimized != "" {
		return g.optimized
	}
	return query
}

func (g *fakeGen) Embed(ctx context.Context, text string) []float64 {
	v, _ := g.embedder.Embed(ctx, text)
	return v
}

func newTestEngine(t *testing.T, store *fakeStore) (*Engine, *fakeGen) {
	t.Helper()
	emb := embedding.NewLocalEmbedder(embedding.Dimensions, zap.NewNop())
	gen := &fakeGen{embedder: emb}
	cfg := &config.SearchConfig{DefaultLimit: 5, MaxLimit: 100}
	return NewEngine(store, gen, cfg, zap.NewNop()), gen
}

func seedImage(t *testing.T, store *fakeStore, gen *fakeGen, filename, description string) string {
	t.Helper()
	vec := gen.Embed(context.Background(), description)
	id, err := store.InsertImage(context.Background(), filename, description, vec, "")
	if err != nil {
		t.Fatalf("seed image: %v", err)
	}
	return id
}

func TestSearchEmptyCorpus(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeStore{})

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "sunset"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !resp.EmptyCorpus {
		t.Error("expected EmptyCorpus to be set")
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results, got %d", len(resp.Results))
	}
	if resp.Message == "" {
		t.Error("expected an explanatory message for the empty corpus")
	}
	if resp.TotalImages != 0 {
		t.Errorf("expected TotalImages 0, got %d", resp.TotalImages)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeStore{})
	if _, err := engine.Search(context.Background(), &models.SearchQuery{Query: ""}); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestSearchRanksRelevantImageFirst(t *testing.T) {
	store := &fakeStore{}
	engine, gen := newTestEngine(t, store)

	idA := seedImage(t, store, gen, "a.jpg", "red sunset beach")
	idB := seedImage(t, store, gen, "b.jpg", "blue mountain snow")

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "red sunset"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].ID != idA {
		t.Errorf("expected %s first, got %s", idA, resp.Results[0].ID)
	}
	if resp.Results[0].Similarity <= resp.Results[1].Similarity {
		t.Errorf("expected strictly higher similarity for the match: %f vs %f",
			resp.Results[0].Similarity, resp.Results[1].Similarity)
	}
	if resp.Results[1].ID != idB {
		t.Errorf("expected %s second, got %s", idB, resp.Results[1].ID)
	}
	if resp.EmptyCorpus {
		t.Error("EmptyCorpus must not be set for a populated corpus")
	}
}

func TestSearchRankAndMatchFields(t *testing.T) {
	store := &fakeStore{}
	engine, gen := newTestEngine(t, store)

	seedImage(t, store, gen, "a.jpg", "a dog running in a park")
	seedImage(t, store, gen, "b.jpg", "a cat sleeping on a couch")
	seedImage(t, store, gen, "c.jpg", "city skyline at night")

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "dog park"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for i, r := range resp.Results {
		if r.Rank != i+1 {
			t.Errorf("result %d: expected rank %d, got %d", i, i+1, r.Rank)
		}
		want := displayMatch(r.Similarity)
		if r.Match != want {
			t.Errorf("result %d: expected match %f, got %f", i, want, r.Match)
		}
		if r.Match < -100 || r.Match > 100 {
			t.Errorf("result %d: match %f out of range", i, r.Match)
		}
	}
	if resp.TotalImages != 3 {
		t.Errorf("expected TotalImages 3, got %d", resp.TotalImages)
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	store := &fakeStore{}
	engine, gen := newTestEngine(t, store)

	for i := 0; i < 8; i++ {
		seedImage(t, store, gen, fmt.Sprintf("img%d.jpg", i), fmt.Sprintf("photo number %d of a garden", i))
	}

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "garden", Limit: 3})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Errorf("expected 3 results, got %d", len(resp.Results))
	}
}

func TestSearchUsesOptimizedQuery(t *testing.T) {
	store := &fakeStore{}
	engine, gen := newTestEngine(t, store)
	seedImage(t, store, gen, "a.jpg", "a red sports car on a highway")
	gen.optimized = "red sports car vehicle highway road"

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "car"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.OriginalQuery != "car" {
		t.Errorf("expected original query preserved, got %q", resp.OriginalQuery)
	}
	if resp.OptimizedQuery != gen.optimized {
		t.Errorf("expected optimized query %q, got %q", gen.optimized, resp.OptimizedQuery)
	}
}

func TestSearchOptimizeDisabled(t *testing.T) {
	store := &fakeStore{}
	engine, gen := newTestEngine(t, store)
	seedImage(t, store, gen, "a.jpg", "a red sports car")
	gen.optimized = "should not be used"

	disabled := false
	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "car", Optimize: &disabled})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.OptimizedQuery != "car" {
		t.Errorf("expected rewrite skipped, got %q", resp.OptimizedQuery)
	}
}

func TestSearchSnapshotError(t *testing.T) {
	store := &fakeStore{snapErr: fmt.Errorf("disk on fire")}
	engine, _ := newTestEngine(t, store)

	_, err := engine.Search(context.Background(), &models.SearchQuery{Query: "anything"})
	if err == nil {
		t.Fatal("expected error when the snapshot fails")
	}
	if !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}
