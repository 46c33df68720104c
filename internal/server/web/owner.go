package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/askelund/proofdeck/internal/common"
	"github.com/askelund/proofdeck/internal/logging"
	"github.com/askelund/proofdeck/internal/server/auth"
	sc "github.com/askelund/proofdeck/internal/server/config"
)

// OwnerHandler exchanges the server secret for an owner-session token. The
// creator surface then presents the token as a bearer credential instead of
// shipping the long-lived secret with every request.
type OwnerHandler struct {
	config *sc.Config
	logger logging.Logger
}

func NewOwnerHandler(cfg *sc.Config, logger logging.Logger) *OwnerHandler {
	return &OwnerHandler{config: cfg, logger: logger.With("module", "web_owner")}
}

// Token handles POST /api/owner/token
func (h *OwnerHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req ownerTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.config.SecretKey)) != 1 {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	token, err := auth.GenerateOwnerToken([]byte(h.config.SecretKey), h.config.OwnerTokenValidityDuration)
	if err != nil {
		writeError(w, common.ErrorInternal)
		return
	}

	writeJSON(w, http.StatusOK, ownerTokenResponse{Token: token})
}
