// Package keyword provides full-text search over image descriptions.
package keyword

import "context"

// Document is what gets indexed for an image: its filename and the
// generated description.
type Document struct {
	Filename    string `json:"filename"`
	Description string `json:"description"`
}

// Result is a single keyword search hit.
type Result struct {
	ID    string
	Score float64
}

// Index defines keyword search operations over image descriptions.
// It complements similarity search; vector ranking never depends on it.
type Index interface {
	Index(ctx context.Context, id string, doc *Document) error
	Search(ctx context.Context, query string, limit int) ([]*Result, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}
