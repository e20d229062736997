package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mindloom/insightserver/content"
	"github.com/mindloom/insightserver/pkg/metrics"
	"github.com/mindloom/insightserver/requests"
	"github.com/mindloom/insightserver/responses"
)

// Archive in-memory index of the insight corpus, number keyed
type (
	Archive struct {
		l                         *zap.Logger
		url                       string
		poll                      bool
		pollInterval              time.Duration
		onLoaded                  func()
		loaded                    *atomic.Bool
		filtered                  *atomic.Int64
		history                   *History
		httpClient                *http.Client
		documentUpdateChannel     chan *ArchiveDocument
		documentUpdateDoneChannel chan error
		updateInProgressChannel   chan chan updateResponse
		index                     map[int]*content.Document
		indexLock                 sync.RWMutex
		jsonBuffer                *bytes.Buffer
		jsonBufferLock            sync.RWMutex
	}
	Option func(*Archive)

	// ArchiveDocument one document update traveling through the update channel
	ArchiveDocument struct {
		Number   int
		Document *content.Document
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, url string, history *History, opts ...Option) *Archive {
	inst := &Archive{
		l:                         l.Named("archive"),
		url:                       url,
		poll:                      false,
		loaded:                    &atomic.Bool{},
		filtered:                  &atomic.Int64{},
		pollInterval:              time.Minute,
		history:                   history,
		httpClient:                http.DefaultClient,
		index:                     map[int]*content.Document{},
		documentUpdateChannel:     make(chan *ArchiveDocument),
		documentUpdateDoneChannel: make(chan error),
		updateInProgressChannel:   make(chan chan updateResponse),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithHTTPClient(v *http.Client) Option {
	return func(o *Archive) {
		o.httpClient = v
	}
}

func WithPoll(v bool) Option {
	return func(o *Archive) {
		o.poll = v
	}
}

func WithPollInterval(v time.Duration) Option {
	return func(o *Archive) {
		o.pollInterval = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (a *Archive) Loaded() bool {
	return a.loaded.Load()
}

func (a *Archive) Index() map[int]*content.Document {
	a.indexLock.RLock()
	defer a.indexLock.RUnlock()
	return a.index
}

func (a *Archive) SetIndex(v map[int]*content.Document) {
	a.indexLock.Lock()
	defer a.indexLock.Unlock()
	a.index = v
}

func (a *Archive) JSONBufferBytes() []byte {
	a.jsonBufferLock.RLock()
	defer a.jsonBufferLock.RUnlock()
	if a.jsonBuffer == nil {
		return nil
	}
	return a.jsonBuffer.Bytes()
}

func (a *Archive) SetJSONBuffer(v *bytes.Buffer) {
	a.jsonBufferLock.Lock()
	defer a.jsonBufferLock.Unlock()
	a.jsonBuffer = v
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (a *Archive) OnLoaded(fn func()) {
	a.onLoaded = fn
}

// GetDocument looks up the whole content batch of one number
func (a *Archive) GetDocument(req *requests.Document) (*content.Document, bool) {
	doc, ok := a.Index()[req.Number]
	if !ok {
		metrics.InvalidDocumentRequests.WithLabelValues().Inc()
	}
	return doc, ok
}

// GetEntries collects entries of one number, narrowed to the requested
// categories, capped per category when a limit is given
func (a *Archive) GetEntries(req *requests.Entries) map[content.Category][]string {
	result := map[content.Category][]string{}
	doc, ok := a.Index()[req.Number]
	if !ok {
		metrics.InvalidDocumentRequests.WithLabelValues().Inc()
		return result
	}
	for _, category := range content.ParseCategories(req.Categories) {
		entries := doc.Entries(category)
		if req.Limit > 0 && len(entries) > req.Limit {
			entries = entries[:req.Limit]
		}
		result[category] = entries
	}
	return result
}

// GetDaily resolves the daily reading for a number: one deterministic pick
// per requested category, stable across consumers for a given date.
func (a *Archive) GetDaily(req *requests.Daily) (*content.Reading, error) {
	if err := a.validateDailyRequest(req); err != nil {
		return nil, errors.Wrap(err, "archive.GetDaily invalid request")
	}

	date := req.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	reading := content.NewReading()
	reading.Number = req.Number
	reading.Date = date

	doc, ok := a.Index()[req.Number]
	if !ok {
		a.l.Info("daily reading for unknown number", zap.Int("number", req.Number))
		metrics.InvalidDocumentRequests.WithLabelValues().Inc()
		reading.Status = content.StatusNotFound
		return reading, nil
	}

	reading.Status = content.StatusOk
	reading.Theme = doc.Info.Theme
	for _, category := range content.ParseCategories(req.Categories) {
		if entry, ok := content.PickDaily(doc.Entries(category), req.Number, date, category); ok {
			reading.Entries[category] = entry
		}
	}
	return reading, nil
}

// GetNumbers lists the numbers held by the archive, sorted, with sizes
func (a *Archive) GetNumbers() *responses.Numbers {
	index := a.Index()
	numbers := make([]int, 0, len(index))
	for number := range index {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	response := &responses.Numbers{
		Numbers: make([]responses.NumberInfo, 0, len(numbers)),
	}
	for _, number := range numbers {
		doc := index[number]
		response.Numbers = append(response.Numbers, responses.NumberInfo{
			Number:  number,
			Entries: doc.NumEntries(),
			Theme:   doc.Info.Theme,
			Date:    doc.Info.Date,
		})
	}
	return response
}

// WriteArchiveBytes writes the whole corpus to the provided writer. It
// serves from the in-memory buffer, falling back to storage only when empty.
// The result is wrapped as service response, e.g: {"reply": <corpus>}
func (a *Archive) WriteArchiveBytes(ctx context.Context, w io.Writer) error {
	data := a.JSONBufferBytes()

	if len(data) == 0 {
		// cold start or not yet loaded
		var buf bytes.Buffer
		if err := a.history.GetCurrent(ctx, &buf); err != nil {
			return fmt.Errorf("failed to read archive from storage: %w", err)
		}
		data = buf.Bytes()
	}

	if _, err := w.Write([]byte(`{"reply":`)); err != nil {
		return fmt.Errorf("failed to write archive JSON prefix: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write archive JSON data: %w", err)
	}
	if _, err := w.Write([]byte(`}`)); err != nil {
		return fmt.Errorf("failed to write archive JSON suffix: %w", err)
	}
	return nil
}

func (a *Archive) Update(ctx context.Context) (updateResponse *responses.Update) {
	floatSeconds := func(nanoSeconds int64) float64 {
		return float64(nanoSeconds) / float64(1000000000)
	}

	a.l.Info("Update triggered")

	start := time.Now()
	archiveRuntime, err := a.tryUpdate()
	updateResponse = &responses.Update{}
	updateResponse.Stats.ArchiveRuntime = floatSeconds(archiveRuntime)

	if err != nil {
		updateResponse.Success = false
		updateResponse.Stats.NumberOfDocuments = -1
		updateResponse.Stats.NumberOfEntries = -1

		if !errors.Is(err, ErrUpdateRejected) {
			updateResponse.ErrorMessage = err.Error()
			a.l.Error("Failed to update archive", zap.Error(err))

			restoreErr := a.tryToRestoreCurrent(ctx)
			if restoreErr != nil {
				a.l.Error("Failed to restore preceding archive version", zap.Error(restoreErr))
			} else {
				a.l.Info("Successfully restored current archive from local history")
			}
		}
	} else {
		updateResponse.Success = true
		// persist the currently loaded one
		historyErr := a.history.Add(context.WithoutCancel(ctx), a.JSONBufferBytes())
		if historyErr != nil {
			a.l.Error("Could not persist current archive in history", zap.Error(historyErr))
			metrics.HistoryPersistFailedCounter.WithLabelValues().Inc()
		} else {
			a.l.Info("Successfully persisted current archive to history")
		}
		// add some stats
		for _, doc := range a.Index() {
			updateResponse.Stats.NumberOfDocuments++
			updateResponse.Stats.NumberOfEntries += doc.NumEntries()
		}
		updateResponse.Stats.EntriesFiltered = int(a.filtered.Load())
	}
	updateResponse.Stats.OwnRuntime = floatSeconds(time.Since(start).Nanoseconds()) - updateResponse.Stats.ArchiveRuntime
	return updateResponse
}

func (a *Archive) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	l := a.l.Named("start")

	up := make(chan bool, 1)
	g.Go(func() error {
		l.Debug("starting update routine")
		up <- true
		return a.UpdateRoutine(gCtx)
	})
	l.Debug("waiting for UpdateRoutine")
	<-up

	g.Go(func() error {
		l.Debug("starting document update routine")
		up <- true
		return a.DocumentUpdateRoutine(gCtx)
	})
	l.Debug("waiting for DocumentUpdateRoutine")
	<-up

	l.Debug("trying to restore previous archive")
	if err := a.tryToRestoreCurrent(ctx); errors.Is(err, os.ErrNotExist) {
		l.Info("previous archive content file does not exist")
	} else if err != nil {
		l.Warn("could not restore previous archive content", zap.Error(err))
	} else {
		l.Info("restored previous archive")
	}

	if a.poll {
		g.Go(func() error {
			l.Debug("starting poll routine")
			return a.PollRoutine(gCtx)
		})
	}

	if !a.Loaded() {
		l.Debug("trying to update initial state")
		if resp := a.Update(ctx); !resp.Success {
			l.Error("failed to update initial state",
				zap.String("error", resp.ErrorMessage),
				zap.Int("num_documents", resp.Stats.NumberOfDocuments),
				zap.Int("num_entries", resp.Stats.NumberOfEntries),
				zap.Float64("own_runtime", resp.Stats.OwnRuntime),
				zap.Float64("archive_runtime", resp.Stats.ArchiveRuntime),
			)
		}
	}

	return g.Wait()
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (a *Archive) validateDailyRequest(req *requests.Daily) error {
	if req == nil {
		return errors.New("request must not be nil")
	}
	if req.Number == 0 {
		return errors.New("request number must not be empty")
	}
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			return errors.Errorf("request date %q must be formatted YYYY-MM-DD", req.Date)
		}
	}
	return nil
}
