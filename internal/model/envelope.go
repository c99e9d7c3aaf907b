package model

// ExtractionOptions are the caller-controlled extraction flags.
// They are fixed per request and immutable once built.
type ExtractionOptions struct {
	ExtractFuelInfo  bool
	ExtractLineItems bool
}

// DefaultOptions enables all optional extraction sections.
func DefaultOptions() ExtractionOptions {
	return ExtractionOptions{ExtractFuelInfo: true, ExtractLineItems: true}
}

// FileInfo describes the uploaded file as it was received.
type FileInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Format   string `json:"format"`
}

// ErrorDetail is the machine-readable error object carried by an
// error envelope.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ResponseEnvelope is the wire shape returned by every extraction call,
// success or failure.
type ResponseEnvelope struct {
	Status         string           `json:"status"` // "success" or "error"
	Data           *FinancialRecord `json:"data"`
	Error          *ErrorDetail     `json:"error"`
	ProcessingTime float64          `json:"processing_time"` // seconds
	FileInfo       FileInfo         `json:"file_info"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)
