package content

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Warning records an irregularity the decoder tolerated instead of
// failing on. The archived corpora come out of an uncontrolled generation
// process, so decoding must survive missing keys, stray values and
// unreliable metadata.
type Warning struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return w.Key + ": " + w.Reason
}

// DecodeDocument decodes a single archive document. It only fails when the
// payload is not a JSON object at all - everything else degrades into
// warnings: a missing category becomes an empty one, non-string entries are
// skipped, a missing or mangled number stays 0 for the linter to flag.
func DecodeDocument(data []byte) (*Document, []Warning, error) {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, errors.Wrap(err, "document is not a JSON object")
	}

	var (
		doc      = NewDocument(0)
		warnings []Warning
	)

	if numberRaw, ok := raw["number"]; ok {
		number, warning := decodeNumber(numberRaw)
		doc.Number = number
		if warning != nil {
			warnings = append(warnings, *warning)
		}
	} else {
		warnings = append(warnings, Warning{Key: "number", Reason: "missing"})
	}
	delete(raw, "number")

	if infoRaw, ok := raw["generation_info"]; ok {
		if err := json.Unmarshal(infoRaw, &doc.Info); err != nil {
			warnings = append(warnings, Warning{Key: "generation_info", Reason: "malformed: " + err.Error()})
		}
	} else {
		warnings = append(warnings, Warning{Key: "generation_info", Reason: "missing"})
	}
	delete(raw, "generation_info")

	for _, category := range Categories {
		entriesRaw, ok := raw[string(category)]
		if !ok {
			continue
		}
		delete(raw, string(category))
		entries, categoryWarnings := decodeEntries(category, entriesRaw)
		warnings = append(warnings, categoryWarnings...)
		if entries != nil {
			doc.Categories[category] = entries
		}
	}

	// whatever is left over is unknown to us - keep it for the linter
	for key, value := range raw {
		doc.Extras[key] = value
	}

	return doc, warnings, nil
}

// DecodeArchive decodes a whole corpus: number keyed documents. Document
// decoding is defensive, but the index itself must be unambiguous - a non
// numeric key or a key/number mismatch is an error.
func DecodeArchive(data []byte) (map[int]*Document, []Warning, error) {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, errors.Wrap(err, "archive is not a JSON object")
	}

	var (
		documents = make(map[int]*Document, len(raw))
		warnings  []Warning
	)
	for key, docRaw := range raw {
		number, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, warnings, errors.Errorf("archive key %q is not a number", key)
		}
		doc, docWarnings, err := DecodeDocument(docRaw)
		if err != nil {
			return nil, warnings, errors.Wrapf(err, "document %q", key)
		}
		for _, w := range docWarnings {
			warnings = append(warnings, Warning{Key: key + "." + w.Key, Reason: w.Reason})
		}
		switch {
		case doc.Number == 0:
			// adopt the corpus key when the document itself is silent
			doc.Number = number
		case doc.Number != number:
			return nil, warnings, errors.Errorf("archive key %q does not match document number %d", key, doc.Number)
		}
		if _, ok := documents[number]; ok {
			return nil, warnings, errors.Errorf("duplicate number %d in archive (key %q)", number, key)
		}
		documents[number] = doc
	}
	return documents, warnings, nil
}

func decodeNumber(raw jsoniter.RawMessage) (int, *Warning) {
	var number int
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, nil
	}
	// some corpora quote the number
	var numberString string
	if err := json.Unmarshal(raw, &numberString); err == nil {
		if number, err := strconv.Atoi(strings.TrimSpace(numberString)); err == nil {
			return number, &Warning{Key: "number", Reason: "quoted as string"}
		}
	}
	return 0, &Warning{Key: "number", Reason: "not an integer: " + string(raw)}
}

func decodeEntries(category Category, raw jsoniter.RawMessage) ([]string, []Warning) {
	var elements []jsoniter.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, []Warning{{Key: string(category), Reason: "not an array"}}
	}
	var (
		entries  = make([]string, 0, len(elements))
		warnings []Warning
	)
	for i, element := range elements {
		var entry string
		if err := json.Unmarshal(element, &entry); err != nil {
			warnings = append(warnings, Warning{
				Key:    string(category),
				Reason: fmt.Sprintf("entry %d is not a string", i),
			})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, warnings
}
