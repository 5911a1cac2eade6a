// Package e2e provides end-to-end tests; this file builds minimal image payloads.
package e2e

import (
	"bytes"
	"strings"
)

// SupportedImageExtensions is the list of extensions used in E2E file-based
// tests. Each maps to a real image MIME type via mime.TypeByExtension.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Format magic bytes. The pipeline keys MIME handling on the extension, but
// prefixing real signatures keeps the fixtures honest for tools that sniff.
var imageMagic = map[string][]byte{
	".jpg":  {0xFF, 0xD8, 0xFF, 0xE0},
	".jpeg": {0xFF, 0xD8, 0xFF, 0xE0},
	".png":  {0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'},
	".gif":  []byte("GIF89a"),
	".webp": []byte("RIFF0000WEBP"),
}

// ImageFixture builds image bytes for the given extension that carry the
// description after the format signature, separated by a newline. The
// scripted vision client recovers the description with DescriptionFromBytes.
func ImageFixture(ext, description string) []byte {
	magic, ok := imageMagic[ext]
	if !ok {
		magic = imageMagic[".jpg"]
	}
	var buf bytes.Buffer
	buf.Write(magic)
	buf.WriteByte('\n')
	buf.WriteString(description)
	return buf.Bytes()
}

// DescriptionFromBytes recovers the description embedded by ImageFixture.
// Bytes without a separator are returned whole.
func DescriptionFromBytes(data []byte) string {
	s := string(data)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
