package responses

// Stats - size and runtime figures of an update
type Stats struct {
	NumberOfDocuments int `json:"numberOfDocuments"`
	NumberOfEntries   int `json:"numberOfEntries"`
	EntriesFiltered   int `json:"entriesFiltered"`
	// seconds
	ArchiveRuntime float64 `json:"archiveRuntime"`
	// seconds
	OwnRuntime float64 `json:"ownRuntime"`
}

// Update - information about an update
type Update struct {
	// did it work or not
	Success bool `json:"success"`
	// this is for humans
	ErrorMessage string `json:"errorMessage"`
	Stats        Stats  `json:"stats"`
}

// Numbers - the numbers held by the archive with per number entry totals
type Numbers struct {
	Numbers []NumberInfo `json:"numbers"`
}

// NumberInfo - one archived number and its size
type NumberInfo struct {
	Number  int    `json:"number"`
	Entries int    `json:"entries"`
	Theme   string `json:"theme,omitempty"`
	Date    string `json:"date,omitempty"`
}
