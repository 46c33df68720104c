package web

import (
	"encoding/json"
	"net/http"

	"github.com/askelund/proofdeck/internal/logging"
	"github.com/askelund/proofdeck/internal/server/services"
)

type CommentHandler struct {
	comments *services.CommentService
	logger   logging.Logger
}

func NewCommentHandler(cs *services.CommentService, logger logging.Logger) *CommentHandler {
	return &CommentHandler{comments: cs, logger: logger.With("module", "web_comments")}
}

// List handles GET /api/reviews/{id}/comments, oldest first.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.comments.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]commentDTO, 0, len(list))
	for _, c := range list {
		out = append(out, toCommentDTO(c))
	}

	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /api/reviews/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	c, err := h.comments.Add(r.Context(), r.PathValue("id"), req.X, req.Y, req.Text)
	if err != nil {
		writeNotFoundAs(w, err, reviewNotFoundMsg)
		return
	}

	writeJSON(w, http.StatusCreated, toCommentDTO(c))
}
