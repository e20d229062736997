package lint

import (
	"strconv"
	"strings"
)

// artifactPrefixes are openings of meta commentary that generation
// processes leak into content arrays, as observed in the archived corpora.
var artifactPrefixes = []string{
	"here are",
	"here is",
	"here's",
	"below are",
	"below is",
	"i've generated",
	"i have generated",
	"i've created",
	"as requested",
	"as an ai",
	"note:",
	"note that",
	"sure,",
	"certainly",
	"of course",
	"these are",
	"this batch",
	"the following",
	"let me know",
}

var artifactSubstrings = []string{
	"batch of",
	"generation process",
	"remaining entries",
	"word count",
	"character count",
	"per your request",
	"```",
}

// looksLikeArtifact reports whether an entry reads like leftover meta
// commentary from the generation process rather than content.
func looksLikeArtifact(entry string) (string, bool) {
	trimmed := strings.TrimSpace(entry)
	lower := strings.ToLower(trimmed)

	for _, prefix := range artifactPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return "starts with meta commentary " + strconv.Quote(prefix), true
		}
	}
	for _, substring := range artifactSubstrings {
		if strings.Contains(lower, substring) {
			return "contains meta commentary " + strconv.Quote(substring), true
		}
	}
	// editorial asides wrapped entirely in brackets
	if len(trimmed) > 1 {
		if (trimmed[0] == '[' && trimmed[len(trimmed)-1] == ']') ||
			(trimmed[0] == '(' && trimmed[len(trimmed)-1] == ')') {
			return "entry is a bracketed aside", true
		}
	}
	return "", false
}
