package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{Code: "test", Message: "something happened", StatusCode: 500}
	if err.Error() != "something happened" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWrap_PreservesInternal(t *testing.T) {
	internal := errors.New("disk full")
	wrapped := Wrap(internal, ErrStorage)

	if wrapped.Code != ErrStorage.Code {
		t.Errorf("Code = %q, want %q", wrapped.Code, ErrStorage.Code)
	}
	if !errors.Is(wrapped, internal) {
		t.Error("wrapped error must unwrap to the internal error")
	}
	if wrapped.Message != ErrStorage.Message {
		t.Errorf("Message = %q, must stay the safe sentinel message", wrapped.Message)
	}
}

func TestIs(t *testing.T) {
	wrapped := Wrap(errors.New("underlying"), ErrTimeout)
	doubleWrapped := fmt.Errorf("upload: %w", wrapped)

	if !Is(doubleWrapped, ErrTimeout) {
		t.Error("Is() must match through wrapping")
	}
	if Is(doubleWrapped, ErrStorage) {
		t.Error("Is() must not match a different kind")
	}
	if Is(errors.New("plain"), ErrTimeout) {
		t.Error("Is() must not match plain errors")
	}
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrInvalidFileType, true},
		{New(ErrFileTooLarge.Code, "File is too large. The maximum allowed size is 5MB.", 413), true},
		{ErrStorage, false},
		{ErrTimeout, false},
		{ErrPermission, false},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := IsValidation(tt.err); got != tt.want {
			t.Errorf("IsValidation(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidFileType, http.StatusBadRequest},
		{ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{ErrTimeout, http.StatusGatewayTimeout},
		{ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestSafeMessage_NeverLeaksInternal(t *testing.T) {
	wrapped := Wrap(errors.New("AccessDenied: key=AKIA123 host=10.0.0.5"), ErrPermission)

	msg := SafeMessage(wrapped)
	if strings.Contains(msg, "AKIA123") || strings.Contains(msg, "10.0.0.5") {
		t.Errorf("SafeMessage() leaked internal detail: %q", msg)
	}
	if msg != ErrPermission.Message {
		t.Errorf("SafeMessage() = %q, want %q", msg, ErrPermission.Message)
	}

	if got := SafeMessage(errors.New("raw backend text")); got != ErrInternal.Message {
		t.Errorf("SafeMessage(plain) = %q, want generic message", got)
	}
}

func TestWriteJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/assets", nil)
	rec := httptest.NewRecorder()

	WriteJSON(rec, req, Wrap(errors.New("stack detail"), ErrStorage))

	if rec.Code != ErrStorage.StatusCode {
		t.Errorf("status = %d, want %d", rec.Code, ErrStorage.StatusCode)
	}
	body := rec.Body.String()
	if !strings.Contains(body, ErrStorage.Code) {
		t.Errorf("body %q missing code", body)
	}
	if strings.Contains(body, "stack detail") {
		t.Errorf("body %q leaks internal error", body)
	}
}
