package embedding

import (
	"math"
	"strings"
	"unicode/utf16"

	"github.com/hyperjump/miru/pkg/utils"
)

// A featureExtractor fills a contiguous, disjoint range of embedding
// dimensions from the analyzed text. Extractors are registered in a fixed
// order; each one's range starts where the previous one ended, which keeps
// the slice layout explicit and testable in isolation.
type featureExtractor interface {
	// width returns the number of dimensions the extractor owns.
	width() int
	// extract writes values into out, which is exactly width() long.
	extract(t *textStats, out []float64)
}

// textStats is the shared analysis of one input text.
type textStats struct {
	raw     string
	lowered string
	tokens  []string
}

func analyze(text string) *textStats {
	lowered := strings.ToLower(text)
	var tokens []string
	for _, w := range strings.Fields(lowered) {
		if len(w) > 2 {
			tokens = append(tokens, w)
		}
	}
	return &textStats{raw: text, lowered: lowered, tokens: tokens}
}

// keywordGroup sets one dimension per keyword to a fixed group weight when
// the keyword occurs as a substring of the lowered text. Inclusion, not
// count: repeated occurrences do not change the weight.
type keywordGroup struct {
	keywords []string
	weight   float64
}

func (g *keywordGroup) width() int { return len(g.keywords) }

func (g *keywordGroup) extract(t *textStats, out []float64) {
	for i, kw := range g.keywords {
		if strings.Contains(t.lowered, kw) {
			out[i] = g.weight
		}
	}
}

// scalarStats contributes four scalar features: normalized token count,
// normalized character length, digit density, and a question flag.
type scalarStats struct{}

func (scalarStats) width() int { return 4 }

func (scalarStats) extract(t *textStats, out []float64) {
	out[0] = math.Min(float64(len(t.tokens))/50, 1)
	out[1] = math.Min(float64(len(t.raw))/500, 1)
	digits := 0
	for _, r := range t.lowered {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	out[2] = float64(digits) / 10
	if strings.Contains(t.lowered, "?") {
		out[3] = 0.3
	}
}

// hashTail fills the remaining dimensions with a pseudo-random but fully
// deterministic series seeded by a 32-bit rolling hash of the raw text.
type hashTail struct {
	n      int // number of dimensions owned
	offset int // absolute start index, part of the seed
}

func (h *hashTail) width() int { return h.n }

func (h *hashTail) extract(t *textStats, out []float64) {
	seed := rollingHash32(t.raw)
	for i := range out {
		v := math.Abs(math.Sin(float64(seed)+float64(h.offset+i)) * 0.3)
		out[i] = utils.Round6(v)
	}
}

// rollingHash32 computes h = h*31 + codeUnit over the UTF-16 code units of s,
// wrapping at signed 32 bits on every step. The exact overflow behavior is
// load-bearing: stored embeddings must remain comparable across runs.
func rollingHash32(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(u)
	}
	return h
}

// Keyword vocabulary. Each group occupies a contiguous slice of dimensions,
// one per keyword in list order, weighted per group.
var (
	colorTerms = []string{
		"red", "blue", "green", "yellow", "orange", "purple", "pink", "brown",
		"black", "white", "gray", "colorful", "bright", "dark", "vibrant", "pastel",
	}
	objectTerms = []string{
		"person", "people", "man", "woman", "child", "face", "animal", "dog",
		"cat", "bird", "tree", "car", "building", "house", "food", "water", "sky",
	}
	sceneTerms = []string{
		"landscape", "portrait", "urban", "city", "nature", "beach", "mountain",
		"forest", "indoor", "outdoor", "street", "park", "garden",
	}
	styleTerms = []string{
		"closeup", "wide", "angle", "macro", "abstract", "realistic", "artistic",
		"photograph", "painting", "digital", "vintage",
	}
	moodTerms = []string{
		"happy", "sad", "peaceful", "exciting", "calm", "dynamic", "serene",
		"dramatic", "romantic", "mysterious",
	}
)

// newPipeline builds the fixed extractor pipeline for the given total
// dimension: five keyword groups, the scalar stats, and a hash tail covering
// whatever dimensions remain.
func newPipeline(dimensions int) []featureExtractor {
	pipeline := []featureExtractor{
		&keywordGroup{keywords: colorTerms, weight: 0.8},
		&keywordGroup{keywords: objectTerms, weight: 0.7},
		&keywordGroup{keywords: sceneTerms, weight: 0.6},
		&keywordGroup{keywords: styleTerms, weight: 0.5},
		&keywordGroup{keywords: moodTerms, weight: 0.4},
		scalarStats{},
	}
	used := 0
	for _, ex := range pipeline {
		used += ex.width()
	}
	if used < dimensions {
		pipeline = append(pipeline, &hashTail{n: dimensions - used, offset: used})
	}
	return pipeline
}
