package content

// Status status type for Reading responses
type Status int

const (
	// StatusOk we found content
	StatusOk Status = 200
	// StatusNotFound we did not find content
	StatusNotFound Status = 404
)
