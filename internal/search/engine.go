// Package search provides the query orchestrator: rewrite, embed, rank.
package search

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/config"
	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/internal/storage"
	"github.com/hyperjump/miru/internal/vector"
)

// Generator is the slice of the generation gateway the engine needs.
type Generator interface {
	OptimizeQuery(ctx context.Context, query string) string
	Embed(ctx context.Context, text string) []float64
}

// Engine runs end-to-end image search: optional query rewrite, embedding
// (with its built-in fallbacks), and in-process similarity ranking over a
// storage snapshot. Embedding and generation failures never surface as
// errors here; only storage failures do.
type Engine struct {
	storage storage.Storage
	gen     Generator
	config  *config.SearchConfig
	logger  *zap.Logger
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(store storage.Storage, gen Generator, cfg *config.SearchConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{storage: store, gen: gen, config: cfg, logger: logger}
}

// Search answers a query against the stored corpus. An empty corpus yields a
// defined non-error response (EmptyCorpus set), distinct from a search that
// found no matches.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if e.config != nil && query.Limit > e.config.MaxLimit && e.config.MaxLimit > 0 {
		query.Limit = e.config.MaxLimit
	}

	corpus, err := e.storage.CorpusSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("corpus snapshot failed: %w", err)
	}

	response := &models.SearchResponse{
		Results:        []*models.SearchResult{},
		OriginalQuery:  query.Query,
		OptimizedQuery: query.Query,
		TotalImages:    len(corpus),
	}
	if len(corpus) == 0 {
		response.EmptyCorpus = true
		response.Message = "No images found in database. Please upload some images first."
		response.QueryTime = time.Since(startTime).Milliseconds()
		return response, nil
	}

	optimized := query.Query
	if query.OptimizeEnabled() {
		optimized = e.gen.OptimizeQuery(ctx, query.Query)
	}
	response.OptimizedQuery = optimized
	if optimized != query.Query {
		e.logger.Debug("query optimized",
			zap.String("original", query.Query), zap.String("optimized", optimized))
	}

	queryEmbedding := e.gen.Embed(ctx, optimized)

	entries := make([]vector.Entry, len(corpus))
	byID := make(map[string]*models.ImageRecord, len(corpus))
	for i, img := range corpus {
		entries[i] = vector.Entry{ID: img.ID, Vector: img.Embedding}
		byID[img.ID] = img
	}

	for i, hit := range vector.Rank(queryEmbedding, entries, query.Limit) {
		img := byID[hit.ID]
		response.Results = append(response.Results, &models.SearchResult{
			ID:          img.ID,
			Filename:    img.Filename,
			Description: img.Description,
			ImageURL:    img.ImageURL,
			Similarity:  hit.Score,
			Match:       displayMatch(hit.Score),
			Rank:        i + 1,
		})
	}
	if len(response.Results) == 0 {
		response.Message = fmt.Sprintf("No similar images found for %q.", query.Query)
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}

// displayMatch converts a raw similarity into the percentage-style display
// value: similarity*100 rounded to one decimal place. The stored similarity
// itself stays unrounded.
func displayMatch(similarity float64) float64 {
	return math.Round(similarity*1000) / 10
}
