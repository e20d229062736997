package content

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

var (
	fenceRE    = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	filenameRE = regexp.MustCompile(`_Number_(\d+)`)
)

// ExtractJSON pulls the embedded JSON document out of an archive file. The
// corpora are stored either as raw JSON or as markdown with the document
// inside a code fence, sometimes surrounded by prose.
func ExtractJSON(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty file")
	}
	if trimmed[0] == '{' {
		return trimmed, nil
	}
	if match := fenceRE.FindSubmatch(trimmed); match != nil {
		return match[1], nil
	}
	// last resort: take everything between the outermost braces
	start := bytes.IndexByte(trimmed, '{')
	end := bytes.LastIndexByte(trimmed, '}')
	if start >= 0 && end > start {
		return trimmed[start : end+1], nil
	}
	return nil, errors.New("no JSON document found")
}

// NumberFromFilename extracts the numerology number encoded in an archive
// filename following the `..._Number_<n>` convention. Returns false when
// the filename does not follow it.
func NumberFromFilename(name string) (int, bool) {
	match := filenameRE.FindStringSubmatch(name)
	if match == nil {
		return 0, false
	}
	number, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return number, true
}
