// Package genai wraps the external generative service (text, vision,
// embedding) with bounded retry, backoff, and local fallbacks. The gateway's
// contract is total: no capability ever propagates a raw failure, every
// failure mode resolves to a documented degraded value.
package genai

import (
	"context"
	"errors"
)

// ErrRateLimited is returned by a Client when the service signals rate
// limiting. The gateway backs off for a fixed delay before the next attempt.
var ErrRateLimited = errors.New("generative service rate limited")

// Client is the raw transport to a generative service. Implementations
// return plain errors; resilience policy lives in the Gateway.
type Client interface {
	// GenerateText returns generated text for a prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// DescribeImage returns a textual description of the image bytes.
	DescribeImage(ctx context.Context, data []byte, mimeType string) (string, error)
	// EmbedText returns a service-side embedding for text.
	EmbedText(ctx context.Context, text string) ([]float64, error)
}
