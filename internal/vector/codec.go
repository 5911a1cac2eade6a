// Package vector provides the embedding wire codec, similarity helpers, and
// top-K ranking over a corpus snapshot.
package vector

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Codec error taxonomy. ErrInvalidVector and dimension mismatches are fatal
// on the write path; decode failures are always fatal.
var (
	// ErrInvalidVector indicates a vector containing NaN or Inf elements.
	// Such vectors must never be persisted.
	ErrInvalidVector = errors.New("vector contains non-finite elements")
	// ErrMalformedWire indicates a stored vector string that cannot be parsed.
	ErrMalformedWire = errors.New("malformed vector wire format")
)

// DimensionError reports a vector whose length differs from the expected
// dimension. Fatal on the write path, a soft warning on the read path.
type DimensionError struct {
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: got %d, expected %d", e.Got, e.Want)
}

// Encode serializes a vector to the storage wire format: a bracketed
// comma-separated decimal list, e.g. "[0.1,0.2,0.3]". Returns
// ErrInvalidVector if any element is NaN or Inf.
func Encode(v []float64) (string, error) {
	var b strings.Builder
	b.Grow(len(v)*10 + 2)
	b.WriteByte('[')
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", fmt.Errorf("%w: element %d is %v", ErrInvalidVector, i, x)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
	}
	b.WriteByte(']')
	return b.String(), nil
}

// Decode parses the bracketed comma-separated wire format back into a vector.
// Returns ErrMalformedWire on unparsable tokens.
func Decode(s string) ([]float64, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return nil, fmt.Errorf("%w: missing brackets", ErrMalformedWire)
	}
	inner := trimmed[1 : len(trimmed)-1]
	if strings.TrimSpace(inner) == "" {
		return []float64{}, nil
	}
	tokens := strings.Split(inner, ",")
	out := make([]float64, len(tokens))
	for i, tok := range tokens {
		x, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d %q", ErrMalformedWire, i, tok)
		}
		out[i] = x
	}
	return out, nil
}

// Validate checks the vector length against the expected dimension and
// returns a *DimensionError on mismatch. Write-path callers must treat the
// error as fatal; read-path callers log it and proceed with the vector as-is.
func Validate(v []float64, expectedDim int) error {
	if len(v) == expectedDim {
		return nil
	}
	return &DimensionError{Got: len(v), Want: expectedDim}
}
