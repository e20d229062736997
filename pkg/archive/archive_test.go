package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/mindloom/insightserver/content"
	"github.com/mindloom/insightserver/pkg/archive/mock"
	"github.com/mindloom/insightserver/requests"
)

func NewTestArchive(ctx context.Context, l *zap.Logger, url, varDir string) *Archive {
	h, err := NewHistory(l, HistoryWithHistoryLimit(2), HistoryWithHistoryDir(varDir))
	if err != nil {
		panic(err)
	}
	a := New(l, url, h)
	go a.Start(ctx) //nolint:errcheck
	time.Sleep(100 * time.Millisecond)
	return a
}

func assertArchiveIsEmpty(t *testing.T, a *Archive, empty bool) {
	t.Helper()
	if empty {
		if len(a.Index()) > 0 {
			t.Fatal("index should have been empty, but is not")
		}
	} else {
		if len(a.Index()) == 0 {
			t.Fatal("index is empty, but should have been not")
		}
	}
}

func TestLoad404(t *testing.T) {
	var (
		l                  = zaptest.NewLogger(t)
		mockServer, varDir = mock.GetMockData(t)
		url                = mockServer.URL + "/archive-no-have"
		a                  = NewTestArchive(t.Context(), l, url, varDir)
	)

	response := a.Update(t.Context())
	if response.Success {
		t.Fatal("can not get an archive, if the server responds with a 404")
	}
}

func TestLoadBrokenArchive(t *testing.T) {
	var (
		l                  = zaptest.NewLogger(t)
		mockServer, varDir = mock.GetMockData(t)
		url                = mockServer.URL + "/archive-broken-json.json"
		a                  = NewTestArchive(t.Context(), l, url, varDir)
	)

	response := a.Update(t.Context())
	if response.Success {
		t.Fatal("how could we load a broken json")
	}
}

func TestLoadArchive(t *testing.T) {
	var (
		l                  = zaptest.NewLogger(t)
		mockServer, varDir = mock.GetMockData(t)
		url                = mockServer.URL + "/archive-ok.json"
		a                  = NewTestArchive(t.Context(), l, url, varDir)
	)
	assertArchiveIsEmpty(t, a, false)

	response := a.Update(t.Context())
	assertArchiveIsEmpty(t, a, false)

	if !response.Success {
		t.Fatal("could not load valid archive")
	}
	assert.Equal(t, 2, response.Stats.NumberOfDocuments)
	assert.Equal(t, 2*12*3, response.Stats.NumberOfEntries)
	if response.Stats.ArchiveRuntime < 0.05 {
		t.Fatal("the server was too fast")
	}
}

func TestLoadNumberMismatch(t *testing.T) {
	var (
		l                  = zaptest.NewLogger(t)
		mockServer, varDir = mock.GetMockData(t)
		url                = mockServer.URL + "/archive-number-mismatch.json"
		a                  = NewTestArchive(t.Context(), l, url, varDir)
	)

	response := a.Update(t.Context())
	require.False(t, response.Success, "the corpus key disagrees with the document, this update should have failed")
	assert.Contains(t, response.ErrorMessage, "does not match")
}

func TestDocumentHygiene(t *testing.T) {
	l := zaptest.NewLogger(t)

	mockServer, varDir := mock.GetMockData(t)
	url := mockServer.URL + "/archive-three-numbers.json"
	a := NewTestArchive(t.Context(), l, url, varDir)

	response := a.Update(t.Context())
	require.True(t, response.Success, "those three numbers should be fine")
	require.Len(t, a.Index(), 3)

	a.url = mockServer.URL + "/archive-ok.json"
	response = a.Update(t.Context())
	require.True(t, response.Success, "it is called archive ok")

	assert.Lenf(t, a.Index(), 2, "index hygiene failed")
}

func TestArtifactFiltering(t *testing.T) {
	a := getTestArchive(t, "/archive-artifacts.json")

	doc, ok := a.GetDocument(mock.MakeDocumentRequest(9))
	require.True(t, ok, "number 9 should have loaded")

	// the meta commentary and the empty entry must be gone
	assert.Len(t, doc.Entries(content.CategoryInsight), 2)
	assert.Len(t, doc.Entries(content.CategoryReflection), 2)
	for _, entry := range doc.Entries(content.CategoryInsight) {
		assert.NotContains(t, entry, "as requested")
	}
}

func TestArtifactFilteringStats(t *testing.T) {
	var (
		l                  = zaptest.NewLogger(t)
		mockServer, varDir = mock.GetMockData(t)
		url                = mockServer.URL + "/archive-artifacts.json"
		a                  = NewTestArchive(t.Context(), l, url, varDir)
	)

	response := a.Update(t.Context())
	require.True(t, response.Success)
	assert.Equal(t, 3, response.Stats.EntriesFiltered)
}

func TestRestoreFromHistory(t *testing.T) {
	l := zaptest.NewLogger(t)
	mockServer, varDir := mock.GetMockData(t)

	a := NewTestArchive(t.Context(), l, mockServer.URL+"/archive-ok.json", varDir)
	response := a.Update(t.Context())
	require.True(t, response.Success)

	// a fresh archive against a dead url must come up from the snapshot
	restored := NewTestArchive(t.Context(), l, mockServer.URL+"/archive-no-have", varDir)
	assert.True(t, restored.Loaded(), "expected restore from history")
	assertArchiveIsEmpty(t, restored, false)
}

func getTestArchive(t *testing.T, path string) *Archive {
	t.Helper()
	l := zaptest.NewLogger(t)

	mockServer, varDir := mock.GetMockData(t)
	url := mockServer.URL + path
	a := NewTestArchive(t.Context(), l, url, varDir)
	response := a.Update(t.Context())

	require.True(t, response.Success, "test archive should load")

	return a
}

func TestGetEntries(t *testing.T) {
	a := getTestArchive(t, "/archive-ok.json")

	entries := a.GetEntries(mock.MakeEntriesRequest())
	require.Len(t, entries, 2)
	assert.Len(t, entries[content.CategoryInsight], 3)
	assert.Len(t, entries[content.CategoryChallenge], 3)
}

func TestGetEntriesLimit(t *testing.T) {
	a := getTestArchive(t, "/archive-ok.json")

	req := mock.MakeEntriesRequest()
	req.Limit = 1
	entries := a.GetEntries(req)
	assert.Len(t, entries[content.CategoryInsight], 1)
}

func TestGetEntriesUnknownNumber(t *testing.T) {
	a := getTestArchive(t, "/archive-ok.json")

	entries := a.GetEntries(&requests.Entries{Number: 8})
	assert.Empty(t, entries)
}

func TestGetDaily(t *testing.T) {
	a := getTestArchive(t, "/archive-ok.json")

	req := mock.MakeValidDailyRequest()
	first, err := a.GetDaily(req)
	require.NoError(t, err)
	assert.Equal(t, content.StatusOk, first.Status)
	assert.Equal(t, "creative expression", first.Theme)
	assert.Len(t, first.Entries, len(content.Categories))

	// same number, same date, same reading
	second, err := a.GetDaily(req)
	require.NoError(t, err)
	assert.Equal(t, first.Entries, second.Entries)
}

func TestGetDailyUnknownNumber(t *testing.T) {
	a := getTestArchive(t, "/archive-ok.json")

	reading, err := a.GetDaily(&requests.Daily{Number: 4, Date: "2025-04-12"})
	require.NoError(t, err)
	assert.Equal(t, content.StatusNotFound, reading.Status)
	assert.Empty(t, reading.Entries)
}

func TestGetDailyInvalidRequest(t *testing.T) {
	a := getTestArchive(t, "/archive-ok.json")

	_, err := a.GetDaily(nil)
	require.Error(t, err)

	_, err = a.GetDaily(&requests.Daily{Number: 3, Date: "12.04.2025"})
	require.Error(t, err)
}

func TestGetNumbers(t *testing.T) {
	a := getTestArchive(t, "/archive-three-numbers.json")

	numbers := a.GetNumbers()
	require.Len(t, numbers.Numbers, 3)
	assert.Equal(t, 1, numbers.Numbers[0].Number)
	assert.Equal(t, 3, numbers.Numbers[1].Number)
	assert.Equal(t, 7, numbers.Numbers[2].Number)
	assert.Equal(t, 2, numbers.Numbers[0].Entries)
}

func BenchmarkLoadArchive(b *testing.B) {
	var (
		l                  = zaptest.NewLogger(b)
		mockServer, varDir = mock.GetMockData(b)
		url                = mockServer.URL + "/archive-ok.json"
		a                  = NewTestArchive(b.Context(), l, url, varDir)
	)

	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		response := a.Update(b.Context())
		if len(a.Index()) == 0 {
			b.Fatal("index is empty, but should have been not")
		}

		if !response.Success {
			b.Fatal("could not load valid archive")
		}
	}
}
