package handler

// Route type
type Route string

const (
	// RouteGetDocument get one number's whole content batch
	RouteGetDocument Route = "getDocument"
	// RouteGetEntries get entries per category, many at once, to keep it fast
	RouteGetEntries Route = "getEntries"
	// RouteGetDaily get the daily reading for a number
	RouteGetDaily Route = "getDaily"
	// RouteGetNumbers list archived numbers
	RouteGetNumbers Route = "getNumbers"
	// RouteUpdate update archive
	RouteUpdate Route = "update"
	// RouteGetArchive get the whole archive
	RouteGetArchive Route = "getArchive"
)
