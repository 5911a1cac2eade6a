package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/keyword"
	"github.com/hyperjump/miru/internal/models"
)

type memStore struct {
	images    []*models.ImageRecord
	insertErr error
}

func (m *memStore) InsertImage(_ context.Context, filename, description string, embedding []float64, imageURL string) (string, error) {
	if m.insertErr != nil {
		return "", m.insertErr
	}
	id := fmt.Sprintf("img-%d", len(m.images))
	m.images = append(m.images, &models.ImageRecord{
		ID: id, Filename: filename, Description: description,
		Embedding: embedding, ImageURL: imageURL,
	})
	return id, nil
}

func (m *memStore) GetImage(_ context.Context, id string) (*models.ImageRecord, error) {
	for _, img := range m.images {
		if img.ID == id {
			return img, nil
		}
	}
	return nil, fmt.Errorf("image not found: %s", id)
}

func (m *memStore) ListImages(_ context.Context) ([]*models.ImageRecord, error)     { return m.images, nil }
func (m *memStore) CorpusSnapshot(_ context.Context) ([]*models.ImageRecord, error) { return m.images, nil }
func (m *memStore) DeleteImage(_ context.Context, id string) error {
	for i, img := range m.images {
		if img.ID == id {
			m.images = append(m.images[:i], m.images[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("image not found: %s", id)
}
func (m *memStore) ClearImages(_ context.Context) error          { return nil }
func (m *memStore) CountImages(_ context.Context) (int64, error) { return int64(len(m.images)), nil }
func (m *memStore) AddMessage(_ context.Context, _, _ string, _ map[string]interface{}) (*models.Message, error) {
	return nil, nil
}
func (m *memStore) ListMessages(_ context.Context) ([]*models.Message, error) { return nil, nil }
func (m *memStore) ClearMessages(_ context.Context) error                     { return nil }
func (m *memStore) Close() error                                              { return nil }

type fakeDescriber struct {
	description string
	embedding   []float64
}

func (f *fakeDescriber) DescribeImage(_ context.Context, _ string, _ []byte, _ string) string {
	return f.description
}
func (f *fakeDescriber) Embed(_ context.Context, _ string) []float64 { return f.embedding }

type memKeywordIndex struct {
	docs      map[string]*keyword.Document
	indexErr  error
	deleteErr error
}

func newMemKeywordIndex() *memKeywordIndex {
	return &memKeywordIndex{docs: make(map[string]*keyword.Document)}
}

func (m *memKeywordIndex) Index(_ context.Context, id string, doc *keyword.Document) error {
	if m.indexErr != nil {
		return m.indexErr
	}
	m.docs[id] = doc
	return nil
}
func (m *memKeywordIndex) Search(_ context.Context, _ string, _ int) ([]*keyword.Result, error) {
	return nil, nil
}
func (m *memKeywordIndex) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.docs, id)
	return nil
}
func (m *memKeywordIndex) DocCount() (uint64, error) { return uint64(len(m.docs)), nil }
func (m *memKeywordIndex) Close() error              { return nil }

func newTestIngester(store *memStore, kw keyword.Index) *Ingester {
	desc := &fakeDescriber{
		description: "A golden retriever playing on a beach at sunset.",
		embedding:   []float64{0.5, 0.5, 0.5, 0.5},
	}
	return NewIngester(store, desc, kw, Config{}, zap.NewNop())
}

func pngInput(filename string, size int) *models.ImageInput {
	return &models.ImageInput{
		Filename: filename,
		MimeType: "image/png",
		Data:     bytes.Repeat([]byte{0x89}, size),
	}
}

func TestIngestStoresImage(t *testing.T) {
	store := &memStore{}
	ing := newTestIngester(store, nil)

	rec, err := ing.Ingest(context.Background(), pngInput("photo.PNG", 128))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if rec.ID == "" {
		t.Error("expected a record ID")
	}
	if !strings.HasPrefix(rec.Filename, "image_") || !strings.HasSuffix(rec.Filename, ".png") {
		t.Errorf("expected generated filename with original extension, got %q", rec.Filename)
	}
	if rec.Description == "" {
		t.Error("expected a description")
	}
	if len(rec.Embedding) != 4 {
		t.Errorf("expected embedding stored, got %d elements", len(rec.Embedding))
	}
	if !strings.HasPrefix(rec.ImageURL, "data:image/png;base64,") {
		t.Errorf("expected inline data URL, got %q", rec.ImageURL)
	}
}

func TestIngestRejectsNonImage(t *testing.T) {
	ing := newTestIngester(&memStore{}, nil)

	_, err := ing.Ingest(context.Background(), &models.ImageInput{
		Filename: "notes.pdf",
		MimeType: "application/pdf",
		Data:     []byte("%PDF-1.4"),
	})
	if err == nil {
		t.Fatal("expected error for non-image upload")
	}
	if !strings.Contains(err.Error(), "only images") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIngestRejectsEmptyData(t *testing.T) {
	ing := newTestIngester(&memStore{}, nil)
	if _, err := ing.Ingest(context.Background(), pngInput("photo.png", 0)); err == nil {
		t.Error("expected error for empty upload")
	}
}

func TestIngestRejectsOversizedFile(t *testing.T) {
	store := &memStore{}
	desc := &fakeDescriber{description: "d", embedding: []float64{1}}
	ing := NewIngester(store, desc, nil, Config{MaxFileSizeBytes: 64}, zap.NewNop())

	_, err := ing.Ingest(context.Background(), pngInput("big.png", 65))
	if err == nil {
		t.Fatal("expected error for oversized upload")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("unexpected error: %v", err)
	}
	if len(store.images) != 0 {
		t.Error("oversized upload must not be stored")
	}
}

func TestIngestStorageErrorSurfaces(t *testing.T) {
	store := &memStore{insertErr: fmt.Errorf("database locked")}
	ing := newTestIngester(store, nil)

	_, err := ing.Ingest(context.Background(), pngInput("photo.png", 10))
	if err == nil {
		t.Fatal("expected storage error to surface")
	}
	if !strings.Contains(err.Error(), "database locked") {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestIngestIndexesKeywords(t *testing.T) {
	store := &memStore{}
	kw := newMemKeywordIndex()
	ing := newTestIngester(store, kw)

	rec, err := ing.Ingest(context.Background(), pngInput("photo.png", 10))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	doc, ok := kw.docs[rec.ID]
	if !ok {
		t.Fatal("expected a keyword document for the ingested image")
	}
	if doc.Description != rec.Description {
		t.Errorf("keyword doc description mismatch: %q vs %q", doc.Description, rec.Description)
	}
}

func TestIngestKeywordFailureIsNonFatal(t *testing.T) {
	store := &memStore{}
	kw := newMemKeywordIndex()
	kw.indexErr = fmt.Errorf("index corrupt")
	ing := newTestIngester(store, kw)

	if _, err := ing.Ingest(context.Background(), pngInput("photo.png", 10)); err != nil {
		t.Fatalf("keyword failure must not fail the upload: %v", err)
	}
	if len(store.images) != 1 {
		t.Error("image should still be stored")
	}
}

func TestRemoveDeletesEverywhere(t *testing.T) {
	store := &memStore{}
	kw := newMemKeywordIndex()
	ing := newTestIngester(store, kw)

	rec, err := ing.Ingest(context.Background(), pngInput("photo.png", 10))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := ing.Remove(context.Background(), rec.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(store.images) != 0 {
		t.Error("image should be deleted from storage")
	}
	if _, ok := kw.docs[rec.ID]; ok {
		t.Error("image should be deleted from the keyword index")
	}
}

func TestUniqueFilenameExtension(t *testing.T) {
	cases := []struct {
		original string
		wantExt  string
	}{
		{"photo.JPEG", ".jpeg"},
		{"no-extension", ".jpg"},
		{"archive.tar.gz", ".gz"},
	}
	for _, tc := range cases {
		got := uniqueFilename(tc.original)
		if !strings.HasSuffix(got, tc.wantExt) {
			t.Errorf("uniqueFilename(%q) = %q, want suffix %q", tc.original, got, tc.wantExt)
		}
	}
}
