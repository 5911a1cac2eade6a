package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/miru/internal/embedding"
	"go.uber.org/zap"
)

// Degraded text returned when generation fails. Downstream logic detects
// these markers and must not treat the text as real content.
const (
	DegradedUploadText = "I'm currently experiencing technical difficulties. Your image has been uploaded with a basic description."
	DegradedFinalText  = "I'm unable to process your request right now. Please try again later."
)

// Marker substrings identifying degraded text.
var degradedMarkers = []string{"technical difficulties", "unable to process"}

// IsDegraded reports whether s is one of the documented degradation values
// rather than genuine generated content.
func IsDegraded(s string) bool {
	for _, m := range degradedMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

const describeImagePrompt = `Generate a detailed description of this image.
Include:
- Objects and subjects in the image
- Colors and visual style
- Composition and setting
- Mood and atmosphere

The description will be used for image search. Respond only with the description, no additional text.`

// minDescriptionLength is the shortest service description accepted as real
// content; anything shorter degrades to the filename-based fallback.
const minDescriptionLength = 20

// Config holds gateway retry policy.
type Config struct {
	MaxAttempts  int           // attempts per call, default 2
	RetryBackoff time.Duration // fixed delay after a rate-limit signal, default 2s
	// UseServiceEmbeddings routes Embed through the service before the local
	// embedder. Off by default so stored vectors stay comparable over time.
	UseServiceEmbeddings bool
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 2
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 2 * time.Second
	}
	return c
}

// Gateway wraps a generative service Client with retry, backoff, and local
// fallbacks. client may be nil (no service configured): every capability
// then resolves directly to its fallback. The local embedder guarantees that
// Embed always yields a usable vector.
type Gateway struct {
	client Client
	local  embedding.Embedder
	cfg    Config
	logger *zap.Logger
}

// NewGateway creates a gateway. local must be non-nil; client may be nil.
func NewGateway(client Client, local embedding.Embedder, cfg Config, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{client: client, local: local, cfg: cfg.withDefaults(), logger: logger}
}

// GenerateText generates text for prompt. On exhausting retries (or with no
// client configured) it returns a degraded marker string, never an error.
func (g *Gateway) GenerateText(ctx context.Context, prompt string) string {
	if g.client == nil {
		return DegradedFinalText
	}
	text, err := callWithRetry(ctx, g, "generate_text", func() (string, error) {
		return g.client.GenerateText(ctx, prompt)
	})
	if err != nil {
		return DegradedUploadText
	}
	return text
}

// DescribeImage returns a description for the image. Service failures and
// unusable responses degrade to a generic non-empty description derived from
// the filename; an empty description is never returned since it would make
// the image unsearchable.
func (g *Gateway) DescribeImage(ctx context.Context, filename string, data []byte, mimeType string) string {
	if g.client != nil {
		desc, err := callWithRetry(ctx, g, "describe_image", func() (string, error) {
			return g.client.DescribeImage(ctx, data, mimeType)
		})
		if err == nil && !IsDegraded(desc) && len(desc) > minDescriptionLength {
			return desc
		}
		g.logger.Warn("image description degraded, using fallback",
			zap.String("filename", filename), zap.Error(err))
	}
	return FallbackDescription(filename)
}

// Embed returns an embedding for text. Service failures defer to the local
// embedder, and a local failure yields the constant fallback vector, so the
// result is always a usable vector of the configured dimension.
func (g *Gateway) Embed(ctx context.Context, text string) []float64 {
	if g.client != nil && g.cfg.UseServiceEmbeddings {
		vec, err := callWithRetryVec(ctx, g, func() ([]float64, error) {
			return g.client.EmbedText(ctx, text)
		})
		if err == nil && len(vec) == g.local.Dimensions() {
			return vec
		}
		g.logger.Warn("service embedding degraded, using local embedder", zap.Error(err))
	}
	vec, err := g.local.Embed(ctx, text)
	if err != nil || len(vec) != g.local.Dimensions() {
		g.logger.Warn("local embedding degraded, using fallback vector", zap.Error(err))
		return embedding.FallbackVector(g.local.Dimensions())
	}
	return vec
}

// OptimizeQuery rewrites a search query for better visual matching. The
// rewrite is kept only when it is marker-free and strictly longer than the
// original; otherwise the original query is returned verbatim.
func (g *Gateway) OptimizeQuery(ctx context.Context, query string) string {
	prompt := fmt.Sprintf(`Optimize this image search query for better visual search results: %q

Make it more descriptive while keeping the original meaning. Focus on visual elements, colors, composition, and objects.
Return only the optimized query, no additional text.`, query)

	optimized := strings.TrimSpace(g.GenerateText(ctx, prompt))
	if !IsDegraded(optimized) && len(optimized) > len(query) {
		return optimized
	}
	return query
}

func classify(err error) attemptOutcome {
	if err == nil {
		return outcomeOK
	}
	if errors.Is(err, ErrRateLimited) {
		return outcomeRateLimited
	}
	return outcomeTransient
}

// callWithRetry drives fn through the retry state machine and returns the
// first success, or the last error once the machine lands in Degraded.
func callWithRetry(ctx context.Context, g *Gateway, op string, fn func() (string, error)) (string, error) {
	a := newAttempt(g.cfg.MaxAttempts)
	var lastErr error
	for a.next() {
		if a.shouldBackoff() {
			if err := sleep(ctx, g.cfg.RetryBackoff); err != nil {
				return "", err
			}
		}
		result, err := fn()
		if a.observe(classify(err)) == stateSuccess {
			return result, nil
		}
		lastErr = err
		g.logger.Debug("generation attempt failed",
			zap.String("op", op), zap.Int("attempt", a.n), zap.Error(err))
	}
	return "", lastErr
}

func callWithRetryVec(ctx context.Context, g *Gateway, fn func() ([]float64, error)) ([]float64, error) {
	a := newAttempt(g.cfg.MaxAttempts)
	var lastErr error
	for a.next() {
		if a.shouldBackoff() {
			if err := sleep(ctx, g.cfg.RetryBackoff); err != nil {
				return nil, err
			}
		}
		result, err := fn()
		if a.observe(classify(err)) == stateSuccess {
			return result, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// sleep waits for d or until ctx is done. The backoff blocks only the
// calling request; there is no global lock.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
