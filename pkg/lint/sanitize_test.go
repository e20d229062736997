package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mindloom/insightserver/content"
)

func TestSanitize(t *testing.T) {
	doc := fullDocument(9)
	doc.Categories[content.CategoryInsight] = []string{
		"Here are 15 insights for number 9 as requested:",
		"Completion is not the same as ending.",
		"",
		"What you release makes room for what comes next.",
	}
	doc.Categories[content.CategoryReflection] = []string{
		"What are you still carrying that finished months ago?",
		"(Note: remaining entries follow the same theme)",
	}

	removed := Sanitize(doc)

	assert.Equal(t, 3, removed)
	assert.Equal(t, []string{
		"Completion is not the same as ending.",
		"What you release makes room for what comes next.",
	}, doc.Entries(content.CategoryInsight))
	assert.Len(t, doc.Entries(content.CategoryReflection), 1)
}

func TestSanitizeCleanDocument(t *testing.T) {
	doc := fullDocument(3)
	assert.Equal(t, 0, Sanitize(doc))
	for _, category := range content.Categories {
		assert.Len(t, doc.Entries(category), 2)
	}
}
