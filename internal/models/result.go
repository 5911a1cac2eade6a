package models

// SearchResult is a single search hit. Similarity is the raw cosine
// similarity; Match is the presentation value (similarity*100 rounded to one
// decimal place). Results are derived per query and never persisted.
type SearchResult struct {
	ID          string  `json:"id"`
	Filename    string  `json:"filename"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url,omitempty"`
	Similarity  float64 `json:"similarity"`
	Match       float64 `json:"match"`
	Rank        int     `json:"rank"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results        []*SearchResult `json:"results"`
	OriginalQuery  string          `json:"original_query"`
	OptimizedQuery string          `json:"optimized_query"`
	TotalImages    int             `json:"total_images"`
	// EmptyCorpus is set when no images have been uploaded yet. It is a
	// defined outcome distinct from "no matches found"; neither is an error.
	EmptyCorpus bool   `json:"empty_corpus,omitempty"`
	QueryTime   int64  `json:"query_time_ms"`
	Message     string `json:"message,omitempty"`
}
