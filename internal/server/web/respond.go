// Package web exposes the HTTP surface of the server: JSON endpoints for
// projects, reviews and comments, multipart uploads, and the SSE change feed.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/askelund/proofdeck/internal/common"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, errorBody{Error: msg})
}

// errorStatus maps sentinel errors to HTTP status codes. Anything unknown is
// an internal error; its message is still surfaced verbatim in the body.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorEmptyName),
		errors.Is(err, common.ErrorEmptyComment),
		errors.Is(err, common.ErrorBadStatus),
		errors.Is(err, common.ErrorNoFile):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorMessage(w, errorStatus(err), err.Error())
}

// writeNotFoundAs rewrites a not-found error with a resource-specific message
// ("project not found") and delegates everything else to writeError.
func writeNotFoundAs(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, common.ErrorNotFound) {
		writeErrorMessage(w, http.StatusNotFound, msg)
		return
	}
	writeError(w, err)
}
