package requests

// Document - request a whole archive document by numerology number
type Document struct {
	Number int `json:"number"`
}

// Entries - request the entries of one number, optionally narrowed down to
// some categories and capped per category
type Entries struct {
	Number     int      `json:"number"`
	Categories []string `json:"categories,omitempty"`
	// Limit caps the entries returned per category, 0 means all
	Limit int `json:"limit,omitempty"`
}

// Daily - request the daily reading for a number. Date is an ISO date
// (YYYY-MM-DD); when empty the server uses its current UTC date.
type Daily struct {
	Number     int      `json:"number"`
	Date       string   `json:"date,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Numbers - list the numbers held by the archive
type Numbers struct{}

// Update - request an update
type Update struct{}

// Archive - request the raw archive dump
type Archive struct{}
