// Package respond writes JSON bodies and maps domain errors to status codes
// for the HTTP handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/auth"
	"github.com/MrJamesThe3rd/invoicetracker/internal/extract"
	"github.com/MrJamesThe3rd/invoicetracker/internal/functions"
	"github.com/MrJamesThe3rd/invoicetracker/internal/importer"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/notify"
	"github.com/MrJamesThe3rd/invoicetracker/internal/supplier"
	"github.com/MrJamesThe3rd/invoicetracker/internal/user"
)

type errorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Message writes a JSON error body with the given status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// Error maps err to a status code. Unknown errors become 500 and their text
// is only logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Message(w, status, "internal error")

		return
	}

	Message(w, status, err.Error())
}

// Status returns the HTTP status code for a domain error.
func Status(err error) int {
	var (
		remote   *functions.RemoteError
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, access.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, invoice.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, supplier.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, invoice.ErrInvalidTransition),
		errors.Is(err, user.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, invoice.ErrInvalidInput),
		errors.Is(err, user.ErrInvalidInput),
		errors.Is(err, supplier.ErrInvalidInput),
		errors.Is(err, notify.ErrInvalidInput),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, importer.ErrNoHeader),
		errors.Is(err, extract.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, extract.ErrNoResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, extract.ErrNotConfigured),
		errors.Is(err, functions.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &remote):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

// Decode reads a JSON request body into v, writing a 400 on failure.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Message(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}

	return true
}

// ParseUpload caps the request body at maxBytes and parses it as a
// multipart form, writing 413 when the body is too large and 400 on any
// other parse failure.
func ParseUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	err := r.ParseMultipartForm(maxBytes)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		Message(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
		return false
	}

	Message(w, http.StatusBadRequest, "failed to parse form: "+err.Error())

	return false
}

// Session returns the caller's session, or the zero session when the request
// is anonymous. Services reject the zero session with ErrUnauthenticated.
func Session(r *http.Request) access.Session {
	sess, _ := access.SessionFromContext(r.Context())
	return sess
}
