package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/okimc/toolperks/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// bufferPool reduces allocations during JSON encoding
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent; nothing to do but log.
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// mapServiceError maps domain errors to HTTP status codes and user-facing
// messages.
func mapServiceError(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequestSummary
	case errors.Is(err, domain.ErrDataNotLoaded):
		return http.StatusConflict, ErrMsgDataNotLoadedHTTP
	case errors.Is(err, domain.ErrInsufficientRolls):
		return http.StatusBadRequest, ErrMsgNoRollsHTTP
	case errors.Is(err, domain.ErrNoPerksAvailable):
		return http.StatusBadRequest, ErrMsgNoPerksHTTP
	case errors.Is(err, domain.ErrPerkNotFound):
		return http.StatusNotFound, ErrMsgPerkNotFoundHTTP
	case errors.Is(err, domain.ErrMaxLevel):
		return http.StatusBadRequest, ErrMsgMaxLevelHTTP
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// respondServiceError logs the error and writes the mapped response.
func respondServiceError(w http.ResponseWriter, err error) {
	status, msg := mapServiceError(err)
	respondError(w, status, msg)
}
