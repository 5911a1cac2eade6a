// Package fileid derives a stable key from a file path for drop-folder
// bookkeeping.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "img:"

// ImageKey returns a stable key for the given absolute path. The same path
// always yields the same key, so a re-synced file maps back to the image it
// already produced.
func ImageKey(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}
