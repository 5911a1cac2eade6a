// Package models defines core data structures for images, queries, search
// results, and chat messages.
package models

import "time"

// ImageRecord represents a stored image with its description and embedding.
// The embedding is computed once at upload time and is immutable afterwards.
type ImageRecord struct {
	ID          string    `json:"id" db:"id"`
	Filename    string    `json:"filename" db:"filename"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url"`
	Embedding   []float64 `json:"-" db:"-"`
	UploadedAt  time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// ImageInput is the input for ingesting an image.
type ImageInput struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}
