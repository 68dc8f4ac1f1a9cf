package journal

// Request is the journal row for one applied request.
type Request struct {
	ID      string
	Seq     int64
	Base    string
	State   string
	OpCount int
	// Error is the failure message, empty for completed requests.
	Error string
}

// Operation is the journal row for one committed operation.
type Operation struct {
	RequestID string
	Index     int
	Seq       int64
	Kind      string
	Detail    string
	Solutions int
	Deleted   int
	Inserted  int
	Skipped   int
	DeltaHash string
}
