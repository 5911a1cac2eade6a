// Package ingest implements the image upload pipeline: validate, describe,
// embed, persist.
package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/keyword"
	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/internal/storage"
)

// Describer is the slice of the generation gateway the ingester needs.
// Both calls are total: they return usable values on any failure.
type Describer interface {
	DescribeImage(ctx context.Context, filename string, data []byte, mimeType string) string
	Embed(ctx context.Context, text string) []float64
}

// Config bounds what the ingester accepts.
type Config struct {
	// MaxFileSizeBytes rejects uploads larger than this. Zero means 4 MiB.
	MaxFileSizeBytes int64
}

const defaultMaxFileSize = 4 << 20

// Ingester runs uploads end to end. Description and embedding failures
// degrade to fallbacks; only validation and storage failures reach the
// caller as errors.
type Ingester struct {
	storage  storage.Storage
	desc     Describer
	keywords keyword.Index // optional
	cfg      Config
	logger   *zap.Logger
}

// NewIngester creates an upload pipeline. keywords may be nil.
func NewIngester(store storage.Storage, desc Describer, keywords keyword.Index, cfg Config, logger *zap.Logger) *Ingester {
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = defaultMaxFileSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{storage: store, desc: desc, keywords: keywords, cfg: cfg, logger: logger}
}

// Ingest validates and stores one uploaded image, returning the persisted
// record. The stored filename is unique per upload; the original name only
// contributes its extension.
func (ing *Ingester) Ingest(ctx context.Context, input *models.ImageInput) (*models.ImageRecord, error) {
	if err := ing.validate(input); err != nil {
		return nil, err
	}

	filename := uniqueFilename(input.Filename)
	description := ing.desc.DescribeImage(ctx, input.Filename, input.Data, input.MimeType)
	embedding := ing.desc.Embed(ctx, description)
	imageURL := dataURL(input.MimeType, input.Data)

	id, err := ing.storage.InsertImage(ctx, filename, description, embedding, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	if ing.keywords != nil {
		doc := &keyword.Document{Filename: filename, Description: description}
		if kerr := ing.keywords.Index(ctx, id, doc); kerr != nil {
			ing.logger.Warn("keyword indexing failed", zap.String("id", id), zap.Error(kerr))
		}
	}

	ing.logger.Info("image ingested",
		zap.String("id", id),
		zap.String("filename", filename),
		zap.Int("size_bytes", len(input.Data)))

	return ing.storage.GetImage(ctx, id)
}

// Remove deletes an image from storage and, when present, the keyword index.
func (ing *Ingester) Remove(ctx context.Context, id string) error {
	if err := ing.storage.DeleteImage(ctx, id); err != nil {
		return err
	}
	if ing.keywords != nil {
		if kerr := ing.keywords.Delete(ctx, id); kerr != nil {
			ing.logger.Warn("keyword delete failed", zap.String("id", id), zap.Error(kerr))
		}
	}
	return nil
}

func (ing *Ingester) validate(input *models.ImageInput) error {
	if input == nil || len(input.Data) == 0 {
		return fmt.Errorf("no image data provided")
	}
	if !strings.HasPrefix(input.MimeType, "image/") {
		return fmt.Errorf("unsupported file type %q: only images are accepted", input.MimeType)
	}
	if int64(len(input.Data)) > ing.cfg.MaxFileSizeBytes {
		return fmt.Errorf("file too large: %d bytes exceeds limit of %d", len(input.Data), ing.cfg.MaxFileSizeBytes)
	}
	return nil
}

// uniqueFilename builds a collision-free stored name from the upload time,
// keeping only the original extension.
func uniqueFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("image_%d%s", time.Now().UnixMilli(), ext)
}

// dataURL inlines the image bytes so records are self-contained.
func dataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
