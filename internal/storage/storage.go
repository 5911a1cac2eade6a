// Package storage defines the persistence interface for images and chat messages.
package storage

import (
	"context"

	"github.com/hyperjump/miru/internal/models"
)

// Storage defines image and chat message persistence operations.
//
// Embeddings are validated strictly on the write path: InsertImage rejects
// vectors with the wrong dimension or non-finite elements, since persisting
// corrupt data is strictly worse than rejecting the write. Read paths log
// dimension mismatches and return the vector as-is.
type Storage interface {
	// Image operations
	InsertImage(ctx context.Context, filename, description string, embedding []float64, imageURL string) (string, error)
	GetImage(ctx context.Context, id string) (*models.ImageRecord, error)
	// ListImages returns images without embeddings, newest first.
	ListImages(ctx context.Context) ([]*models.ImageRecord, error)
	// CorpusSnapshot returns all images with embeddings in insertion order.
	// The order is load-bearing: similarity ties are broken earliest-first.
	CorpusSnapshot(ctx context.Context) ([]*models.ImageRecord, error)
	DeleteImage(ctx context.Context, id string) error
	ClearImages(ctx context.Context) error
	CountImages(ctx context.Context) (int64, error)

	// Chat message operations (single default conversation)
	AddMessage(ctx context.Context, role, content string, metadata map[string]interface{}) (*models.Message, error)
	ListMessages(ctx context.Context) ([]*models.Message, error)
	ClearMessages(ctx context.Context) error

	Close() error
}
