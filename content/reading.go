package content

import (
	"hash/fnv"
)

// Reading resolved daily content for one number: a single entry per
// requested category, stable for a given (number, date) pair.
type Reading struct {
	Status  Status              `json:"status"`
	Number  int                 `json:"number"`
	Date    string              `json:"date"`
	Theme   string              `json:"theme"`
	Entries map[Category]string `json:"entries"`
}

// NewReading constructor
func NewReading() *Reading {
	return &Reading{
		Entries: make(map[Category]string),
	}
}

// PickDaily deterministically selects one entry from entries for the given
// number, date and category. Every consumer asking on the same day gets
// the same pick, without any server side state.
func PickDaily(entries []string, number int, date string, c Category) (string, bool) {
	if len(entries) == 0 {
		return "", false
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(date))
	_, _ = h.Write([]byte{'|', byte('0' + number%10), '|'})
	_, _ = h.Write([]byte(c))
	return entries[h.Sum64()%uint64(len(entries))], true
}
