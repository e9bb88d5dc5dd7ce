package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pixvault/pixvault/internal/apperror"
	"github.com/pixvault/pixvault/internal/logger"
	"github.com/pixvault/pixvault/internal/upload"
)

// multipartOverhead leaves room for the multipart envelope on top of the
// policy size limit so a maximally sized file still parses.
const multipartOverhead = 1 << 20

type Handlers struct {
	service       *upload.Service
	rateLimiter   *RedisRateLimiter
	maxUploadSize int64
}

// UploadAsset accepts a multipart upload. The owner identity arrives in
// X-Owner-ID, placed there by the upstream gateway after authentication;
// this service only requires that it be present.
func (h *Handlers) UploadAsset(w http.ResponseWriter, r *http.Request) {
	ownerID := strings.TrimSpace(r.Header.Get("X-Owner-ID"))
	if ownerID == "" {
		apperror.WriteJSON(w, r, apperror.New(apperror.ErrBadRequest.Code, "X-Owner-ID header is required", http.StatusBadRequest))
		return
	}

	ctx := logger.WithOwnerID(r.Context(), ownerID)
	r = r.WithContext(ctx)

	if h.rateLimiter != nil && !h.rateLimiter.Allow(ctx, "upload:"+ownerID) {
		apperror.WriteJSON(w, r, apperror.ErrRateLimited)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			apperror.WriteJSON(w, r, apperror.ErrFileTooLarge)
			return
		}
		apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrBadRequest))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apperror.WriteJSON(w, r, apperror.New(apperror.ErrBadRequest.Code, "A file form field is required", http.StatusBadRequest))
		return
	}
	defer file.Close()

	mimeType, err := resolveMimeType(file, header)
	if err != nil {
		apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrBadRequest))
		return
	}

	result, err := h.service.Upload(ctx, &upload.Request{
		OwnerID:          ownerID,
		OriginalFilename: header.Filename,
		MimeType:         mimeType,
		SizeBytes:        header.Size,
		Content:          file,
	})
	if err != nil {
		apperror.WriteJSON(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result)
}

// DeleteAsset retires a superseded asset. It is idempotent: deleting a key
// that is already gone still responds 204.
func (h *Handlers) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		apperror.WriteJSON(w, r, apperror.New(apperror.ErrBadRequest.Code, "An asset key is required", http.StatusBadRequest))
		return
	}

	if err := h.service.DeleteAsset(r.Context(), key); err != nil {
		apperror.WriteJSON(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// resolveMimeType prefers the declared part content type and falls back to
// sniffing the first bytes when the client declared nothing useful.
func resolveMimeType(file multipart.File, header *multipart.FileHeader) (string, error) {
	declared := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return strings.ToLower(http.DetectContentType(buf[:n])), nil
}
