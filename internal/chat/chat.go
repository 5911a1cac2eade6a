// Package chat implements the conversational layer: messages are persisted
// in a single default conversation, and each user message drives an image
// search whose results are formatted into the assistant reply.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/internal/search"
	"github.com/hyperjump/miru/internal/storage"
)

// Response is the outcome of one chat turn.
type Response struct {
	Message       *models.Message        `json:"message"`
	SearchResults []*models.SearchResult `json:"search_results"`
}

// Service runs chat turns. The engine may be nil, in which case replies fall
// back to canned local responses and nothing is searched.
type Service struct {
	storage storage.Storage
	engine  *search.Engine
	logger  *zap.Logger
}

// NewService creates a chat service.
func NewService(store storage.Storage, engine *search.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{storage: store, engine: engine, logger: logger}
}

// Respond handles one user message: persist it, search the corpus, persist
// and return the formatted assistant reply. Search-layer degradation never
// fails the turn; storage errors do.
func (s *Service) Respond(ctx context.Context, message string) (*Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("message cannot be empty")
	}

	if _, err := s.storage.AddMessage(ctx, models.RoleUser, message, map[string]interface{}{
		"type": "message",
	}); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	content, results, metadata := s.answer(ctx, message)

	reply, err := s.storage.AddMessage(ctx, models.RoleAssistant, content, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to save reply: %w", err)
	}
	return &Response{Message: reply, SearchResults: results}, nil
}

func (s *Service) answer(ctx context.Context, message string) (string, []*models.SearchResult, map[string]interface{}) {
	if s.engine == nil {
		return LocalResponse(message), nil, map[string]interface{}{"type": "local_response"}
	}

	resp, err := s.engine.Search(ctx, &models.SearchQuery{Query: message})
	if err != nil {
		s.logger.Warn("chat search failed", zap.String("message", message), zap.Error(err))
		return "Sorry, I encountered an error while processing your request. Please try again.",
			nil, map[string]interface{}{"type": "error", "error": err.Error()}
	}

	metadata := map[string]interface{}{
		"type":           "search_response",
		"original_query": message,
		"results_count":  len(resp.Results),
		"total_images":   resp.TotalImages,
	}
	return formatSearchReply(message, resp), resp.Results, metadata
}

// formatSearchReply renders a search response as assistant prose. The three
// cases (empty corpus, hits, no hits) each get a distinct message.
func formatSearchReply(message string, resp *models.SearchResponse) string {
	if resp.EmptyCorpus {
		return fmt.Sprintf("I understand you're looking for: %q\n\n"+
			"But there are no images in the database yet. Please upload some images first!", message)
	}
	if len(resp.Results) == 0 {
		return fmt.Sprintf("No similar images found for %q.\n\nTry:\n"+
			"- Using different keywords\n"+
			"- Uploading more images to your collection\n"+
			"- Being more specific in your description", message)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d similar images for %q:\n\n", len(resp.Results), message)
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "%d. %s (%.1f%% match)\n", i+1, r.Filename, r.Match)
	}
	return b.String()
}
