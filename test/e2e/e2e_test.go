package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/miru/internal/config"
	"github.com/hyperjump/miru/internal/embedding"
	"github.com/hyperjump/miru/internal/genai"
	"github.com/hyperjump/miru/internal/ingest"
	"github.com/hyperjump/miru/internal/keyword"
	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/internal/search"
	"github.com/hyperjump/miru/internal/storage"
	"github.com/hyperjump/miru/internal/watcher"
)

const e2eSearchLimit = 30

// scriptedClient recovers the description embedded in the fixture bytes, so
// each uploaded image is indexed under exactly its corpus description.
type scriptedClient struct{}

func (scriptedClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", genai.ErrRateLimited
}

func (scriptedClient) DescribeImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	return DescriptionFromBytes(data), nil
}

func (scriptedClient) EmbedText(ctx context.Context, text string) ([]float64, error) {
	return nil, genai.ErrRateLimited
}

type pipeline struct {
	store    *storage.SQLiteStorage
	embedder *embedding.LocalEmbedder
	kwIndex  *keyword.BleveIndex
	engine   *search.Engine
	ingester *ingest.Ingester
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "db.sqlite"), embedding.Dimensions, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	embedder := embedding.NewLocalEmbedder(embedding.Dimensions, nil)
	t.Cleanup(func() { embedder.Close() })

	kwIndex, err := keyword.NewBleveIndex(filepath.Join(dir, "keywords.bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kwIndex.Close() })

	gateway := genai.NewGateway(scriptedClient{}, embedder, genai.Config{
		MaxAttempts:  2,
		RetryBackoff: time.Millisecond,
	}, nil)
	searchCfg := config.SearchConfig{DefaultLimit: 5, MaxLimit: 100}
	return &pipeline{
		store:    store,
		embedder: embedder,
		kwIndex:  kwIndex,
		engine:   search.NewEngine(store, gateway, &searchCfg, nil),
		ingester: ingest.NewIngester(store, gateway, kwIndex, ingest.Config{}, nil),
	}
}

func TestE2E_SearchReturnsCorrectResults(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	corpus := BuildCorpus()
	if corpus.TotalImages == 0 {
		t.Fatal("corpus has no images")
	}
	if corpus.TotalQueries == 0 {
		t.Fatal("corpus has no query test cases")
	}

	idByFilename := make(map[string]string, corpus.TotalImages)
	for _, img := range corpus.Images {
		rec, err := p.ingester.Ingest(ctx, &models.ImageInput{
			Filename: img.Filename,
			MimeType: "image/jpeg",
			Data:     ImageFixture(".jpg", img.Description),
		})
		if err != nil {
			t.Fatalf("ingest %q: %v", img.Filename, err)
		}
		idByFilename[img.Filename] = rec.ID
	}

	t.Logf("ingested %d images; running %d query test cases", corpus.TotalImages, corpus.TotalQueries)

	for _, tc := range corpus.TestCases {
		t.Run(tc.Description, func(t *testing.T) {
			resp, err := p.engine.Search(ctx, &models.SearchQuery{
				Query: tc.Query,
				Limit: e2eSearchLimit,
			})
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			expectedIDs := make([]string, 0, len(tc.ExpectedFilenames))
			for _, fn := range tc.ExpectedFilenames {
				expectedIDs = append(expectedIDs, idByFilename[fn])
			}
			resultIDs := resultIDsFromResponse(resp)
			if !containsAny(resultIDs, expectedIDs) {
				t.Errorf("query %q: expected at least one of %v in results, got %d results (ids: %v)",
					tc.Query, tc.ExpectedFilenames, len(resultIDs), resultIDs)
			}
		})
	}
}

func TestE2E_ExactDescriptionRanksFirst(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	corpus := BuildCorpus()
	idByFilename := make(map[string]string, corpus.TotalImages)
	for _, img := range corpus.Images {
		rec, err := p.ingester.Ingest(ctx, &models.ImageInput{
			Filename: img.Filename,
			MimeType: "image/jpeg",
			Data:     ImageFixture(".jpg", img.Description),
		})
		if err != nil {
			t.Fatalf("ingest %q: %v", img.Filename, err)
		}
		idByFilename[img.Filename] = rec.ID
	}

	// A query identical to a stored description embeds to the same vector,
	// so that image must come back at rank 1 with similarity ~1.0.
	target := corpus.Images[7]
	resp, err := p.engine.Search(ctx, &models.SearchQuery{Query: target.Description, Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected results, got none")
	}
	top := resp.Results[0]
	if top.ID != idByFilename[target.Filename] {
		t.Errorf("expected %s first, got %s (%q)", target.Filename, top.ID, top.Description)
	}
	if top.Similarity < 0.999 {
		t.Errorf("identical text should score ~1.0, got %f", top.Similarity)
	}
	if top.Rank != 1 {
		t.Errorf("expected rank 1, got %d", top.Rank)
	}
}

// TestE2E_WatchFolderIngest drops fixture files of every supported extension
// into a watched directory, syncs, and verifies the corpus is searchable.
func TestE2E_WatchFolderIngest(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	dropDir := filepath.Join(t.TempDir(), "drop")
	if err := os.MkdirAll(dropDir, 0755); err != nil {
		t.Fatal(err)
	}

	corpus := BuildCorpus()
	exts := SupportedImageExtensions
	nFiles := 0
	for i, img := range corpus.Images {
		if nFiles >= 20 {
			break
		}
		ext := exts[i%len(exts)]
		name := img.Filename[:len(img.Filename)-len(".jpg")] + ext
		path := filepath.Join(dropDir, name)
		if err := os.WriteFile(path, ImageFixture(ext, img.Description), 0644); err != nil {
			t.Fatalf("write fixture %s: %v", path, err)
		}
		nFiles++
	}

	w := watcher.NewWatcher([]string{dropDir}, exts, true, p.ingester, nil)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.SyncExisting(ctx)

	count, err := p.store.CountImages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != int64(nFiles) {
		t.Fatalf("expected %d images after sync, got %d", nFiles, count)
	}

	// The first corpus image is among the synced files; querying its exact
	// description must return it first.
	resp, err := p.engine.Search(ctx, &models.SearchQuery{
		Query: corpus.Images[0].Description,
		Limit: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Description != corpus.Images[0].Description {
		t.Errorf("expected %q first, got %q", corpus.Images[0].Description, resp.Results[0].Description)
	}
}

func resultIDsFromResponse(resp *models.SearchResponse) []string {
	ids := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ID)
	}
	return ids
}

func containsAny(got []string, expected []string) bool {
	set := make(map[string]bool)
	for _, id := range got {
		set[id] = true
	}
	for _, id := range expected {
		if set[id] {
			return true
		}
	}
	return false
}
