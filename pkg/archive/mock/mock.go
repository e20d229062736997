package mock

import (
	"net/http"
	"net/http/httptest"
	"path"
	"runtime"
	"testing"
	"time"

	"github.com/mindloom/insightserver/requests"
)

// GetMockData mock archive server to run an archive against
func GetMockData(tb testing.TB) (*httptest.Server, string) {
	tb.Helper()
	_, filename, _, _ := runtime.Caller(0)
	mockDir := path.Dir(filename)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(time.Millisecond * 50)
		mockFilename := path.Join(mockDir, req.URL.Path[1:])
		http.ServeFile(w, req, mockFilename)
	}))

	return server, tb.TempDir()
}

// MakeEntriesRequest a request to get some entries
func MakeEntriesRequest() *requests.Entries {
	return &requests.Entries{
		Number:     3,
		Categories: []string{"insight", "challenge"},
	}
}

// MakeValidDailyRequest a daily reading request with a pinned date
func MakeValidDailyRequest() *requests.Daily {
	return &requests.Daily{
		Number: 3,
		Date:   "2025-04-12",
	}
}

// MakeDocumentRequest a mock document request
func MakeDocumentRequest(number int) *requests.Document {
	return &requests.Document{
		Number: number,
	}
}
