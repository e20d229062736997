package lint

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/mindloom/insightserver/content"
)

// File lints a single archive file: raw JSON or markdown with an embedded
// JSON document. The returned error means the file could not be read or
// holds no document at all - data-quality issues end up in the report.
func File(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read archive file")
	}
	jsonBytes, err := content.ExtractJSON(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	doc, warnings, err := content.DecodeDocument(jsonBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	report := Document(doc,
		WithSource(filepath.Base(path)),
		WithDecodeWarnings(warnings),
	)
	report.Source = path
	return report, nil
}

// Files lints many archive files, collecting per-file hard failures into a
// single multi error while still returning the reports that were produced.
func Files(paths []string) ([]*Report, error) {
	var (
		reports []*Report
		errs    error
	)
	for _, path := range paths {
		report, err := File(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, errs
}
