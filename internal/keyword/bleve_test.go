package keyword

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestBleveIndex_SearchFindsDescription(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	id := "img:abc123"
	doc := &Document{
		Filename:    "image_1700000000000.jpg",
		Description: "A golden retriever playing fetch on a sandy beach at sunset.",
	}
	if err := idx.Index(ctx, id, doc); err != nil {
		t.Fatalf("Index: %v", err)
	}

	results, err := idx.Search(ctx, "retriever", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected a hit for a word in the description")
	}
	if results[0].ID != id {
		t.Errorf("first result ID = %q, want %q", results[0].ID, id)
	}

	// Standard analyzer, so lowercase queries match capitalized words.
	results2, err := idx.Search(ctx, "sunset", 10)
	if err != nil {
		t.Fatalf("Search sunset: %v", err)
	}
	if len(results2) == 0 {
		t.Fatal("expected a hit for \"sunset\"")
	}
}

func TestBleveIndex_SearchFindsFilename(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	id := "img:xyz"
	doc := &Document{Filename: "vacation photos 2023.png", Description: "Some body text."}
	if err := idx.Index(ctx, id, doc); err != nil {
		t.Fatalf("Index: %v", err)
	}

	results, err := idx.Search(ctx, "vacation", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected a hit for a word in the filename")
	}
	if results[0].ID != id {
		t.Errorf("first result ID = %q, want %q", results[0].ID, id)
	}
}

func TestBleveIndex_ReopenKeepsDocuments(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "bleve")
	ctx := context.Background()

	idx1, err := NewBleveIndex(indexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	if err := idx1.Index(ctx, "img1", &Document{Filename: "a.jpg", Description: "uniqueword"}); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := idx1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx2, err := NewBleveIndex(indexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex (open existing): %v", err)
	}
	defer func() { _ = idx2.Close() }()

	results, err := idx2.Search(ctx, "uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected the indexed image to survive a reopen, got %d results", len(results))
	}
}

func TestBleveIndex_Delete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Index(ctx, "img1", &Document{Filename: "a.jpg", Description: "onlyinimg1"}); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := idx.Delete(ctx, "img1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	results, err := idx.Search(ctx, "onlyinimg1", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results after delete, got %d", len(results))
	}
}

func TestBleveIndex_DocCount(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	for i, d := range []string{"a dog", "a cat", "a bird"} {
		if err := idx.Index(ctx, filepath.Join("img", string(rune('a'+i))), &Document{Description: d}); err != nil {
			t.Fatalf("Index: %v", err)
		}
	}
	count, err := idx.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 documents, got %d", count)
	}
}

func TestNewBleveIndex_createsDir(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "sub", "bleve")

	idx, err := NewBleveIndex(indexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	_ = idx.Close()

	if _, err := os.Stat(indexPath); err != nil {
		t.Errorf("index path should exist: %v", err)
	}
}
