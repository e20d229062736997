package lint

import (
	"fmt"
	"strings"

	"github.com/mindloom/insightserver/content"
)

// Severity of a finding. Errors make a document malformed, warnings are
// data-quality smells a consumer can live with.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Check names for the fixed data-quality checks.
const (
	CheckNumberRange        = "number-range"
	CheckNumberMismatch     = "number-mismatch"
	CheckEmptyEntry         = "empty-entry"
	CheckUnknownCategory    = "unknown-category"
	CheckMissingCategory    = "missing-category"
	CheckBatchSize          = "batch-size"
	CheckGenerationArtifact = "generation-artifact"
	CheckGenerationInfo     = "generation-info"
	CheckDecode             = "decode"
)

// Finding one data-quality issue in one document.
type Finding struct {
	Check    string           `json:"check"`
	Severity Severity         `json:"severity"`
	Category content.Category `json:"category,omitempty"`
	Index    int              `json:"index"`
	Message  string           `json:"message"`
}

func (f Finding) String() string {
	location := ""
	if f.Category != "" {
		location = fmt.Sprintf(" %s[%d]", f.Category, f.Index)
	}
	return fmt.Sprintf("%s [%s]%s: %s", f.Severity, f.Check, location, f.Message)
}

// Report all findings for one document.
type Report struct {
	Source   string    `json:"source,omitempty"`
	Number   int       `json:"number"`
	Findings []Finding `json:"findings"`
}

// HasErrors reports whether any finding is error severity.
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r *Report) add(f Finding) {
	r.Findings = append(r.Findings, f)
}

type (
	Option func(*options)

	options struct {
		source         string
		filenameNumber int
		hasFilename    bool
		warnings       []content.Warning
	}
)

// WithSource attaches the originating filename to the report and, when the
// filename encodes a number, enables the number-mismatch check.
func WithSource(v string) Option {
	return func(o *options) {
		o.source = v
		if number, ok := content.NumberFromFilename(v); ok {
			o.filenameNumber = number
			o.hasFilename = true
		}
	}
}

// WithDecodeWarnings folds the decoder's tolerated irregularities into the
// report as warning findings.
func WithDecodeWarnings(v []content.Warning) Option {
	return func(o *options) {
		o.warnings = v
	}
}

// Document runs all fixed checks against one document.
func Document(doc *content.Document, opts ...Option) *Report {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	report := &Report{
		Source: o.source,
		Number: doc.Number,
	}

	for _, warning := range o.warnings {
		report.add(Finding{
			Check:    CheckDecode,
			Severity: SeverityWarning,
			Message:  warning.String(),
		})
	}

	checkNumber(doc, &o, report)
	checkGenerationInfo(doc, report)
	checkCategories(doc, report)
	checkBatchSize(doc, report)

	return report
}

func checkNumber(doc *content.Document, o *options, report *Report) {
	if doc.Number < 1 || doc.Number > 9 {
		report.add(Finding{
			Check:    CheckNumberRange,
			Severity: SeverityError,
			Message:  fmt.Sprintf("number %d out of range 1..9", doc.Number),
		})
	}
	if o.hasFilename && o.filenameNumber != doc.Number {
		report.add(Finding{
			Check:    CheckNumberMismatch,
			Severity: SeverityError,
			Message:  fmt.Sprintf("filename encodes number %d, document says %d", o.filenameNumber, doc.Number),
		})
	}
}

func checkGenerationInfo(doc *content.Document, report *Report) {
	if strings.TrimSpace(doc.Info.Date) == "" {
		report.add(Finding{
			Check:    CheckGenerationInfo,
			Severity: SeverityWarning,
			Message:  "generation_info has no date",
		})
	}
}

func checkCategories(doc *content.Document, report *Report) {
	for _, category := range content.Categories {
		entries := doc.Entries(category)
		if len(entries) == 0 {
			report.add(Finding{
				Check:    CheckMissingCategory,
				Severity: SeverityWarning,
				Category: category,
				Message:  "category is missing or empty",
			})
			continue
		}
		for i, entry := range entries {
			if strings.TrimSpace(entry) == "" {
				report.add(Finding{
					Check:    CheckEmptyEntry,
					Severity: SeverityError,
					Category: category,
					Index:    i,
					Message:  "empty entry",
				})
				continue
			}
			if reason, ok := looksLikeArtifact(entry); ok {
				report.add(Finding{
					Check:    CheckGenerationArtifact,
					Severity: SeverityError,
					Category: category,
					Index:    i,
					Message:  reason,
				})
			}
		}
	}
	for key := range doc.Extras {
		report.add(Finding{
			Check:    CheckUnknownCategory,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("unknown top level key %q", key),
		})
	}
}

func checkBatchSize(doc *content.Document, report *Report) {
	if doc.Info.BatchSize <= 0 {
		return
	}
	for _, entries := range doc.Categories {
		if len(entries) == doc.Info.BatchSize {
			return
		}
	}
	report.add(Finding{
		Check:    CheckBatchSize,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("batch_size %d does not match any category count", doc.Info.BatchSize),
	})
}
