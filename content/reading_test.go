package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickDailyDeterministic(t *testing.T) {
	entries := []string{"one", "two", "three", "four", "five"}

	first, ok := PickDaily(entries, 3, "2025-04-12", CategoryInsight)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := PickDaily(entries, 3, "2025-04-12", CategoryInsight)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
	assert.Contains(t, entries, first)
}

func TestPickDailyVariesByInput(t *testing.T) {
	entries := make([]string, 100)
	for i := range entries {
		entries[i] = string(rune('a' + i%26))
	}

	for _, date := range []string{"2025-04-12", "2025-04-13", "2025-04-14", "2025-04-15"} {
		_, ok := PickDaily(entries, 3, date, CategoryInsight)
		require.True(t, ok)
	}
	// a different category on the same day must be able to pick differently
	a, _ := PickDaily(entries, 3, "2025-04-12", CategoryInsight)
	b, _ := PickDaily(entries, 3, "2025-04-12", CategoryShadow)
	c, _ := PickDaily(entries, 7, "2025-04-12", CategoryInsight)
	assert.False(t, a == b && b == c, "picks should not collapse onto one entry")
}

func TestPickDailyEmpty(t *testing.T) {
	_, ok := PickDaily(nil, 3, "2025-04-12", CategoryInsight)
	assert.False(t, ok)
}
