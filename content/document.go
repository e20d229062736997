package content

import (
	jsoniter "github.com/json-iterator/go"
)

// GenerationInfo metadata block describing when/how a content batch was
// produced. BatchSize is advisory only - the archived corpora carry
// inconsistent values, so nothing may rely on it for allocation or
// iteration.
type GenerationInfo struct {
	Date        string `json:"date"`
	TimeContext string `json:"time_context"`
	Theme       string `json:"theme"`
	BatchSize   int    `json:"batch_size"`
}

// Document one numerology number's content batch across the twelve
// fixed categories.
type Document struct {
	Number     int
	Info       GenerationInfo
	Categories map[Category][]string
	// Extras holds top-level keys the decoder did not recognize, kept
	// raw so a linter can report on them without losing data.
	Extras map[string]jsoniter.RawMessage
}

// NewDocument constructor
func NewDocument(number int) *Document {
	return &Document{
		Number:     number,
		Categories: map[Category][]string{},
		Extras:     map[string]jsoniter.RawMessage{},
	}
}

// Entries returns the entries of a single category, nil if absent.
func (d *Document) Entries(c Category) []string {
	return d.Categories[c]
}

// NumEntries total number of entries across all categories.
func (d *Document) NumEntries() int {
	total := 0
	for _, entries := range d.Categories {
		total += len(entries)
	}
	return total
}

// UnmarshalJSON decodes a document defensively, dropping the warnings.
// Use DecodeDocument when the warnings matter.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, _, err := DecodeDocument(data)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

// MarshalJSON reproduces the archive wire shape: number and
// generation_info next to the flattened category arrays.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Categories)+len(d.Extras)+2)
	out["number"] = d.Number
	out["generation_info"] = d.Info
	for category, entries := range d.Categories {
		out[string(category)] = entries
	}
	for key, value := range d.Extras {
		out[key] = value
	}
	return json.Marshal(out)
}
