package web

import (
	"encoding/json"
	"net/http"

	"github.com/askelund/proofdeck/internal/common"
	"github.com/askelund/proofdeck/internal/logging"
	"github.com/askelund/proofdeck/internal/server/services"
)

const reviewNotFoundMsg = "review not found"

type ReviewHandler struct {
	reviews  *services.ReviewService
	comments *services.CommentService
	logger   logging.Logger
}

func NewReviewHandler(rs *services.ReviewService, cs *services.CommentService, logger logging.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: rs, comments: cs, logger: logger.With("module", "web_reviews")}
}

// Upload handles POST /api/reviews — the standalone single-file flow with no
// owning project.
func (h *ReviewHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, common.ErrorNoFile)
		return
	}
	defer file.Close()

	rev, err := h.reviews.Upload(r.Context(), "", "",
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toReviewDTO(rev))
}

// Get handles GET /api/reviews/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	rev, err := h.reviews.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeNotFoundAs(w, err, reviewNotFoundMsg)
		return
	}

	writeJSON(w, http.StatusOK, toReviewDTO(rev))
}

// UpdateStatus handles PATCH /api/reviews/{id}/status. The response body is
// the resulting row; clients render their status pill from it.
func (h *ReviewHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	rev, err := h.reviews.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeNotFoundAs(w, err, reviewNotFoundMsg)
		return
	}

	writeJSON(w, http.StatusOK, toReviewDTO(rev))
}

// Share handles GET /api/reviews/{id}/share?k=
func (h *ReviewHandler) Share(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	key := r.URL.Query().Get(common.AccessKeyParam)

	link, err := h.reviews.ShareLink(r.Context(), id, key)
	if err != nil {
		writeNotFoundAs(w, err, reviewNotFoundMsg)
		return
	}

	writeJSON(w, http.StatusOK, shareLinkResponse{URL: link})
}

// Delete handles DELETE /api/reviews/{id}?k=
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	key := r.URL.Query().Get(common.AccessKeyParam)

	if err := h.reviews.Delete(r.Context(), id, key); err != nil {
		writeNotFoundAs(w, err, reviewNotFoundMsg)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
