package handler

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/mindloom/insightserver/pkg/archive"
	"github.com/mindloom/insightserver/pkg/metrics"
	"github.com/mindloom/insightserver/requests"
	"github.com/mindloom/insightserver/responses"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// handleRequest executes a routed request against the archive and observes
// its outcome. Shared by the http and socket fronts.
func handleRequest(ctx context.Context, l *zap.Logger, a *archive.Archive, route Route, jsonBytes []byte, source string) ([]byte, error) {
	start := time.Now()

	reply, err := executeRequest(ctx, l, a, route, jsonBytes, source)
	result := "success"
	if err != nil {
		result = "error"
	}

	metrics.ServiceRequestCounter.WithLabelValues(string(route), result, source).Inc()
	metrics.ServiceRequestDuration.WithLabelValues(string(route), result, source).Observe(time.Since(start).Seconds())

	return reply, err
}

func executeRequest(ctx context.Context, l *zap.Logger, a *archive.Archive, route Route, jsonBytes []byte, source string) (replyBytes []byte, err error) {
	var (
		reply             interface{}
		apiErr            error
		jsonErr           error
		processIfJSONIsOk = func(err error, processingFunc func()) {
			if err != nil {
				jsonErr = err
				return
			}
			processingFunc()
		}
	)
	metrics.ContentRequestCounter.WithLabelValues(source).Inc()

	// handle and process
	switch route {
	// case RouteGetArchive: handled prior to handleRequest being called,
	// since the resulting bytes are streamed into the writer directly
	case RouteGetDocument:
		documentRequest := &requests.Document{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, &documentRequest), func() {
			doc, ok := a.GetDocument(documentRequest)
			if !ok {
				reply = responses.NewErrorf(5, "unknown number %d", documentRequest.Number)
				return
			}
			reply = doc
		})
	case RouteGetEntries:
		entriesRequest := &requests.Entries{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, &entriesRequest), func() {
			reply = a.GetEntries(entriesRequest)
		})
	case RouteGetDaily:
		dailyRequest := &requests.Daily{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, &dailyRequest), func() {
			reply, apiErr = a.GetDaily(dailyRequest)
		})
	case RouteGetNumbers:
		numbersRequest := &requests.Numbers{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, &numbersRequest), func() {
			reply = a.GetNumbers()
		})
	case RouteUpdate:
		updateRequest := &requests.Update{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, &updateRequest), func() {
			reply = a.Update(ctx)
		})
	default:
		reply = responses.NewErrorf(1, "unknown handler: %s", string(route))
	}

	// error handling
	if jsonErr != nil {
		l.Error("could not read incoming json", zap.Error(jsonErr))
		reply = responses.NewErrorf(2, "could not read incoming json %s", jsonErr.Error())
	} else if apiErr != nil {
		l.Error("an API error occurred", zap.Error(apiErr))
		reply = responses.NewErrorf(3, "internal error %s", apiErr.Error())
	}

	return encodeReply(l, reply)
}

// encodeReply takes an interface and encodes it as JSON
// it returns the resulting JSON and a marshalling error
func encodeReply(l *zap.Logger, reply interface{}) (bytes []byte, err error) {
	bytes, err = json.Marshal(map[string]interface{}{
		"reply": reply,
	})
	if err != nil {
		l.Error("could not encode reply", zap.Error(err))
	}
	return
}
