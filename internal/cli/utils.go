// Package cli provides CLI utilities for Miru.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if response.EmptyCorpus {
		fmt.Fprintf(w, "\n%s\n", response.Message)
		return
	}
	fmt.Fprintf(w, "\nFound %d results in %dms (searched %d images)\n",
		len(response.Results), response.QueryTime, response.TotalImages)
	if response.OptimizedQuery != response.OriginalQuery {
		fmt.Fprintf(w, "Query optimized to: %q\n", response.OptimizedQuery)
	}
	fmt.Fprintln(w)
	if len(response.Results) == 0 && response.Message != "" {
		fmt.Fprintf(w, "%s\n", response.Message)
		return
	}
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
}

func writeOneResult(w io.Writer, result *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Match: %.1f%% (similarity %.4f)\n",
		result.Rank, result.Match, result.Similarity)
	fmt.Fprintf(w, "ID: %s\n", result.ID)
	fmt.Fprintf(w, "File: %s\n", result.Filename)
	fmt.Fprintf(w, "\n%s\n", utils.Truncate(result.Description, 200))
	fmt.Fprintln(w)
}

// PrintSearchResults prints search results to stdout in text format.
func PrintSearchResults(response *models.SearchResponse) {
	_ = WriteSearchResults(os.Stdout, response, OutputText)
}
