package client

// UploadResponse mirrors the server's successful upload payload.
type UploadResponse struct {
	Key          string `json:"key"`
	PublicURL    string `json:"public_url"`
	OriginalName string `json:"original_name"`
	SizeBytes    int64  `json:"size_bytes"`
	MimeType     string `json:"mime_type"`
}

// APIError is the server's JSON error body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}
