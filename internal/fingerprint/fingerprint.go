// Package fingerprint derives deterministic content hashes and normalized
// filename keys used to address cached classifications and corrections.
package fingerprint

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// MaxHashedChars bounds how much content contributes to a hash so hashing
// cost does not grow with document size.
const MaxHashedChars = 10000

const djb2Seed int32 = 5381

// DigitPlaceholder replaces every run of digits in a normalized filename.
const DigitPlaceholder = "#"

var (
	extensionPattern  = regexp.MustCompile(`\.[^.\s]+$`)
	separatorPattern  = regexp.MustCompile(`[_\-.]`)
	digitRunPattern   = regexp.MustCompile(`[0-9]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ContentFingerprint pairs a content hash with the normalized filename of the
// file it was computed from.
type ContentFingerprint struct {
	Hash               string `json:"hash"`
	NormalizedFilename string `json:"normalized_filename"`
}

// Compute builds a ContentFingerprint for content and fileName.
func Compute(content, fileName string) ContentFingerprint {
	return ContentFingerprint{
		Hash:               Hash(content),
		NormalizedFilename: NormalizeFilename(fileName),
	}
}

// Hash returns an 8-digit hex djb2 hash of the first MaxHashedChars characters
// of the trimmed, lowercased content. Collisions are possible; consumers rely
// on invalidation rather than uniqueness.
func Hash(content string) string {
	trimmed := strings.TrimSpace(content)

	h := djb2Seed
	n := 0
	for _, r := range trimmed {
		if n == MaxHashedChars {
			break
		}
		// int32 arithmetic wraps, which keeps the accumulator at 32 bits.
		h = h*33 + int32(unicode.ToLower(r))
		n++
	}

	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return fmt.Sprintf("%08x", abs)
}

// NormalizeFilename lowercases name, strips its extension, turns separators
// into spaces and masks digit runs. It is idempotent.
func NormalizeFilename(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = extensionPattern.ReplaceAllString(s, "")
	s = separatorPattern.ReplaceAllString(s, " ")
	s = digitRunPattern.ReplaceAllString(s, DigitPlaceholder)
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
