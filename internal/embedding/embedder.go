// Package embedding provides deterministic local text embeddings and caching.
package embedding

import "context"

// Dimensions is the embedding dimension used throughout the system.
const Dimensions = 768

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimensions() int
	Close() error
}
