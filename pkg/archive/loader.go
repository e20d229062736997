package archive

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mindloom/insightserver/content"
	"github.com/mindloom/insightserver/pkg/lint"
	"github.com/mindloom/insightserver/pkg/metrics"
)

var (
	json              = jsoniter.ConfigCompatibleWithStandardLibrary
	ErrUpdateRejected = errors.New("update rejected: queue full")
)

type updateResponse struct {
	archiveRuntime int64
	err            error
}

func (a *Archive) PollRoutine(ctx context.Context) error {
	l := a.l.Named("routine.poll")
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case <-ticker.C:
			chanResponse := make(chan updateResponse)
			a.updateInProgressChannel <- chanResponse
			response := <-chanResponse
			if response.err == nil {
				l.Info("update success")
			} else {
				l.Error("update failed", zap.Error(response.err))
			}
		}
	}
}

func (a *Archive) UpdateRoutine(ctx context.Context) error {
	l := a.l.Named("routine.update")
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case resChan := <-a.updateInProgressChannel:
			start := time.Now()
			l := l.With(zap.String("run_id", uuid.New().String()))

			l.Info("update started")

			archiveRuntime, err := a.update(context.WithoutCancel(ctx))
			if err != nil {
				l.Error("update failed", zap.Error(err))
				metrics.UpdatesFailedCounter.WithLabelValues().Inc()
			} else {
				if !a.Loaded() {
					a.loaded.Store(true)
					l.Info("initial update success")
					if a.onLoaded != nil {
						a.onLoaded()
					}
				} else {
					l.Info("update success")
				}
				metrics.UpdatesCompletedCounter.WithLabelValues().Inc()
			}

			resChan <- updateResponse{
				archiveRuntime: archiveRuntime,
				err:            err,
			}

			metrics.UpdateDuration.WithLabelValues().Observe(time.Since(start).Seconds())
		}
	}
}

func (a *Archive) DocumentUpdateRoutine(ctx context.Context) error {
	l := a.l.Named("routine.documentUpdate")
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case newDocument := <-a.documentUpdateChannel:
			l.Debug("received a new document", zap.Int("number", newDocument.Number))

			err := a._updateDocument(newDocument.Number, newDocument.Document)
			if err != nil {
				l.Debug("update failed", zap.Error(err))
			}
			a.documentUpdateDoneChannel <- err
		}
	}
}

func (a *Archive) updateDocument(number int, doc *content.Document) error {
	a.l.Debug("trying to push document into update channel", zap.Int("number", number))
	a.documentUpdateChannel <- &ArchiveDocument{
		Number:   number,
		Document: doc,
	}
	a.l.Debug("waiting for done signal")
	return <-a.documentUpdateDoneChannel
}

// do not call directly, but only through channel
func (a *Archive) _updateDocument(number int, doc *content.Document) error {
	if number < 1 || number > 9 {
		return errors.Errorf("number %d out of range 1..9", number)
	}

	// copy old datastructure to prevent concurrent map access
	// collect the other documents in the index
	newIndex := map[int]*content.Document{}
	for n, d := range a.Index() {
		if n != number {
			newIndex[n] = d
		}
	}

	newIndex[number] = doc
	a.SetIndex(newIndex)

	return nil
}

// lintDocument runs the data-quality checks a consumer of this corpus has
// to apply: findings are exported as metrics, artifact and empty entries
// are filtered out before the document is served.
func (a *Archive) lintDocument(number int, doc *content.Document) {
	report := lint.Document(doc)
	for _, finding := range report.Findings {
		metrics.LintFindingsCounter.WithLabelValues(finding.Check, string(finding.Severity)).Inc()
	}
	if report.HasErrors() {
		a.l.Warn("document has data-quality errors",
			zap.Int("number", number),
			zap.Int("findings", len(report.Findings)),
		)
	}
	if removed := lint.Sanitize(doc); removed > 0 {
		a.l.Warn("filtered malformed entries from document",
			zap.Int("number", number),
			zap.Int("removed", removed),
		)
		metrics.EntriesFilteredCounter.WithLabelValues().Add(float64(removed))
		a.filtered.Add(int64(removed))
	}
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	response, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("bad HTTP response: %q", response.Status)
	}
	return io.ReadAll(response.Body)
}

func (a *Archive) update(ctx context.Context) (archiveRuntime int64, err error) {
	startTimeArchive := time.Now().UnixNano()
	jsonBytes, err := get(ctx, a.httpClient, a.url)
	archiveRuntime = time.Now().UnixNano() - startTimeArchive
	if err != nil {
		// we have no json to load - the archive server did not reply
		a.l.Debug("failed to load json", zap.Error(err))
		return archiveRuntime, err
	}
	a.l.Debug("loading json", zap.String("url", a.url), zap.Int("length", len(jsonBytes)))

	documents, warnings, err := content.DecodeArchive(jsonBytes)
	if err != nil {
		return archiveRuntime, err
	}
	a.logDecodeWarnings(warnings)

	if err := a.loadDocuments(documents); err != nil {
		return archiveRuntime, err
	}
	a.SetJSONBuffer(bytes.NewBuffer(jsonBytes))
	return archiveRuntime, nil
}

// limit resources and allow only one update request at once
func (a *Archive) tryUpdate() (int64, error) {
	c := make(chan updateResponse)
	select {
	case a.updateInProgressChannel <- c:
		a.l.Info("update request added to queue")
		response := <-c
		return response.archiveRuntime, response.err
	default:
		a.l.Info("update request ignored, queue is full")
		return 0, ErrUpdateRejected
	}
}

func (a *Archive) tryToRestoreCurrent(ctx context.Context) error {
	var buf bytes.Buffer
	if err := a.history.GetCurrent(ctx, &buf); err != nil {
		return err
	}
	return a.loadJSONBytes(buf.Bytes())
}

func (a *Archive) loadJSONBytes(jsonBytes []byte) error {
	documents, warnings, err := content.DecodeArchive(jsonBytes)
	if err != nil {
		a.l.Debug("could not parse json", zap.Int("length", len(jsonBytes)))
		return err
	}
	a.logDecodeWarnings(warnings)

	if err := a.loadDocuments(documents); err != nil {
		return err
	}
	a.SetJSONBuffer(bytes.NewBuffer(jsonBytes))
	a.loaded.Store(true)
	return nil
}

func (a *Archive) loadDocuments(newDocuments map[int]*content.Document) error {
	a.filtered.Store(0)

	numbers := make([]int, 0, len(newDocuments))
	for number := range newDocuments {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	for _, number := range numbers {
		doc := newDocuments[number]
		a.l.Debug("loading document", zap.Int("number", number))
		a.lintDocument(number, doc)
		if err := a.updateDocument(number, doc); err != nil {
			a.l.Debug("failed to load", zap.Int("number", number), zap.Error(err))
			return err
		}
	}

	// we need to throw away orphaned documents
	for number := range a.Index() {
		if _, ok := newDocuments[number]; !ok {
			a.l.Info("removing orphaned document", zap.Int("number", number))
			newIndex := map[int]*content.Document{}
			for n, d := range a.Index() {
				if n != number {
					newIndex[n] = d
				}
			}
			a.SetIndex(newIndex)
		}
	}
	return nil
}

func (a *Archive) logDecodeWarnings(warnings []content.Warning) {
	for _, warning := range warnings {
		a.l.Warn("tolerated decode irregularity",
			zap.String("key", warning.Key),
			zap.String("reason", warning.Reason),
		)
	}
}
