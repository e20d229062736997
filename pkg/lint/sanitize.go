package lint

import (
	"strings"

	"github.com/mindloom/insightserver/content"
)

// Sanitize strips empty entries and generation artifacts out of a document
// in place, so a malformed batch can still be served after filtering.
// Returns the number of entries removed.
func Sanitize(doc *content.Document) int {
	removed := 0
	for category, entries := range doc.Categories {
		kept := entries[:0]
		for _, entry := range entries {
			if strings.TrimSpace(entry) == "" {
				removed++
				continue
			}
			if _, ok := looksLikeArtifact(entry); ok {
				removed++
				continue
			}
			kept = append(kept, entry)
		}
		doc.Categories[category] = kept
	}
	return removed
}
