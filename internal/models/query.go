package models

import "fmt"

// SearchQuery represents an image search request.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	// Optimize requests a generative rewrite of the query before embedding.
	// Defaults to true; the rewrite is only kept when it is marker-free and
	// strictly longer than the original.
	Optimize *bool `json:"optimize,omitempty"`
}

// Validate ensures the search query has valid fields and sets defaults.
// Returns an error if the query is empty; otherwise normalizes the limit.
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = 5
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// OptimizeEnabled reports whether query optimization was requested; defaults to true.
func (q *SearchQuery) OptimizeEnabled() bool {
	if q.Optimize != nil {
		return *q.Optimize
	}
	return true
}
