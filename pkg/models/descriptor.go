package models

// DescriptorRequest asks for the descriptor of one image. URL is interpreted
// by the configured storage backend: an http(s) URL, a blob path or a file path.
type DescriptorRequest struct {
	URL string `json:"url" binding:"required"`
}

// DescriptorResponse carries a computed descriptor and its provenance
type DescriptorResponse struct {
	ID                string    `json:"id"`
	ImageRef          string    `json:"image_ref"`
	Timestamp         string    `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	Length            int       `json:"length"`
	Descriptor        []float64 `json:"descriptor"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
