package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"github.com/conorfennell/iyek/internal/domain"
)

// Normalize renders a word as "id|native|transliteration|translation" after
// trimming whitespace, lowercasing the Latin fields and normalizing line endings.
func Normalize(w domain.Word) string {
	normalizePart := func(part string) string {
		p := strings.ReplaceAll(part, "\r\n", "\n")
		return strings.TrimSpace(p)
	}

	return strings.Join([]string{
		strconv.Itoa(w.ID),
		normalizePart(w.Native),
		strings.ToLower(normalizePart(w.Transliteration)),
		strings.ToLower(normalizePart(w.Translation)),
	}, "|")
}

// Hash returns the SHA-256 of an ordered vocabulary as a hex string. Reordering
// words changes the hash because lesson cursors index into the order.
func Hash(words []domain.Word) string {
	lines := make([]string, len(words))
	for i, w := range words {
		lines[i] = Normalize(w)
	}
	hashBytes := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return fmt.Sprintf("%x", hashBytes)
}
