package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/askelund/proofdeck/internal/common"
	"github.com/askelund/proofdeck/internal/logging"
	"github.com/askelund/proofdeck/internal/server/auth"
	sc "github.com/askelund/proofdeck/internal/server/config"
)

// statusRecorder captures the status code written by a handler for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs one line per request: method, path, status, duration.
func withLogging(logger logging.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		logger.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start).String())
	}
}

// requireOwner gates the creator surface. In key mode a valid bearer token is
// required; in none mode everything passes through, matching the ungated
// legacy behavior.
func requireOwner(cfg *sc.Config, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.AccessMode != sc.AccessModeKey {
			next(w, r)
			return
		}

		header := r.Header.Get(common.OwnerTokenHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, common.ErrorUnauthorized)
			return
		}

		if err := auth.ValidateOwnerToken(token, []byte(cfg.SecretKey)); err != nil {
			writeError(w, err)
			return
		}

		next(w, r)
	}
}
