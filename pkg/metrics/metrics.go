package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "insightserver"

	metricLabelHandler  = "handler"
	metricLabelStatus   = "status"
	metricLabelSource   = "source"
	metricLabelRemote   = "remote"
	metricLabelCheck    = "check"
	metricLabelSeverity = "severity"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// InvalidDocumentRequests counts requests for numbers that are not in the archive
	InvalidDocumentRequests = newCounterVec(
		"invalid_document_request_count",
		"Counts the number of requests for unknown archive numbers",
	)
	// ServiceRequestCounter count the number of requests for each service function
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each handler",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
	// ServiceRequestDuration observe the duration of requests for each service function
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to unmarshal requests, execute a service function and marshal its responses",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
	// UpdatesCompletedCounter count the number of completed updates
	UpdatesCompletedCounter = newCounterVec(
		"updates_completed_count",
		"Number of updates that were successfully completed",
	)
	// UpdatesFailedCounter count the number of updates that had an error
	UpdatesFailedCounter = newCounterVec(
		"updates_failed_count",
		"Number of updates that failed due to an error",
	)
	// UpdateDuration observe the duration of each archive.update() call
	UpdateDuration = newSummaryVec(
		"update_duration_seconds",
		"Duration in seconds for each successful archive.update() call",
	)
	// ContentRequestCounter count the total number of content requests
	ContentRequestCounter = newCounterVec(
		"content_request_count",
		"Number of requests for content",
		metricLabelSource,
	)
	// NumSocketsGauge keep track of the total number of open sockets
	NumSocketsGauge = newGaugeVec(
		"num_sockets_total",
		"Total number of currently open socket connections",
		metricLabelRemote,
	)
	// HistoryPersistFailedCounter count the number of failed attempts to persist the archive history
	HistoryPersistFailedCounter = newCounterVec(
		"history_persist_failed_count",
		"Number of failures to store the archive history",
	)
	// LintFindingsCounter count data-quality findings per check and severity during loads
	LintFindingsCounter = newCounterVec(
		"lint_findings_count",
		"Number of data-quality findings observed while loading the archive",
		metricLabelCheck, metricLabelSeverity,
	)
	// EntriesFilteredCounter count entries dropped by sanitation during loads
	EntriesFilteredCounter = newCounterVec(
		"entries_filtered_count",
		"Number of entries removed from loaded documents by sanitation",
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
