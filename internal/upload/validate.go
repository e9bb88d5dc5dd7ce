package upload

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pixvault/pixvault/internal/apperror"
)

// DefaultMaxSizeBytes is the upload size cap applied when no explicit limit
// is configured.
const DefaultMaxSizeBytes = 5 * 1024 * 1024

// allowedMimeTypes is the whitelist of image types accepted for upload.
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Validator checks upload requests against policy. It is pure: no I/O, no
// side effects, and it runs before any key is generated or backend touched.
type Validator struct {
	maxSizeBytes int64
}

func NewValidator(maxSizeBytes int64) *Validator {
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxSizeBytes
	}
	return &Validator{maxSizeBytes: maxSizeBytes}
}

func (v *Validator) MaxSizeBytes() int64 {
	return v.maxSizeBytes
}

func (v *Validator) Validate(req *Request) error {
	if req == nil || strings.TrimSpace(req.OwnerID) == "" {
		return apperror.New(apperror.ErrBadRequest.Code, "Owner ID is required", http.StatusBadRequest)
	}

	if !allowedMimeTypes[strings.ToLower(req.MimeType)] {
		return apperror.ErrInvalidFileType
	}

	if req.SizeBytes <= 0 {
		return apperror.New(apperror.ErrBadRequest.Code, "The uploaded file is empty", http.StatusBadRequest)
	}

	if req.SizeBytes > v.maxSizeBytes {
		return apperror.New(
			apperror.ErrFileTooLarge.Code,
			fmt.Sprintf("File is too large. The maximum allowed size is %s.", formatSize(v.maxSizeBytes)),
			http.StatusRequestEntityTooLarge,
		)
	}

	return nil
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case bytes >= mb && bytes%mb == 0:
		return fmt.Sprintf("%dMB", bytes/mb)
	case bytes >= kb && bytes%kb == 0:
		return fmt.Sprintf("%dKB", bytes/kb)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
