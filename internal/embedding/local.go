package embedding

import (
	"context"

	"github.com/hyperjump/miru/pkg/utils"
	"go.uber.org/zap"
)

// LocalEmbedder maps text to a unit-length embedding without any external
// dependency. It is used as the primary encoder when no generative service is
// configured and as the fallback when the service fails. Identical text
// always yields an identical vector, across runs and restarts.
//
// Embed never returns an error: any internal failure is replaced by the
// constant fallback vector so a usable embedding is always available.
type LocalEmbedder struct {
	dimensions int
	pipeline   []featureExtractor
	logger     *zap.Logger
}

// NewLocalEmbedder creates a local embedder. dimensions <= 0 selects the
// default (768). The logger is optional.
func NewLocalEmbedder(dimensions int, logger *zap.Logger) *LocalEmbedder {
	if dimensions <= 0 {
		dimensions = Dimensions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalEmbedder{
		dimensions: dimensions,
		pipeline:   newPipeline(dimensions),
		logger:     logger,
	}
}

// Embed returns the embedding for text. The returned vector always has
// length Dimensions and unit L2 norm, except for input with no signal at all
// (empty text), which yields the zero vector.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) (out []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("local embedding failed, using fallback vector", zap.Any("panic", r))
			out, err = FallbackVector(e.dimensions), nil
		}
	}()
	stats := analyze(text)
	out = make([]float64, e.dimensions)
	offset := 0
	for _, ex := range e.pipeline {
		ex.extract(stats, out[offset:offset+ex.width()])
		offset += ex.width()
	}
	utils.NormalizeL2(out)
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *LocalEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op for LocalEmbedder.
func (e *LocalEmbedder) Close() error { return nil }
