package web

import (
	"encoding/json"
	"net/http"

	"github.com/askelund/proofdeck/internal/common"
	"github.com/askelund/proofdeck/internal/logging"
	"github.com/askelund/proofdeck/internal/server/services"
)

const projectNotFoundMsg = "project not found"

type ProjectHandler struct {
	projects *services.ProjectService
	reviews  *services.ReviewService
	logger   logging.Logger
}

func NewProjectHandler(ps *services.ProjectService, rs *services.ReviewService, logger logging.Logger) *ProjectHandler {
	return &ProjectHandler{projects: ps, reviews: rs, logger: logger.With("module", "web_projects")}
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	p, err := h.projects.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectDTO(p, nil))
}

// List handles GET /api/projects. Each project carries its review aggregate
// so the list page renders indicators without per-project round trips.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.projects.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]projectDTO, 0, len(list))
	for _, p := range list {
		out = append(out, toProjectDTO(p, h.projects.Stats(r.Context(), p.ID)))
	}

	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/projects/{id}?k=
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	key := r.URL.Query().Get(common.AccessKeyParam)

	p, err := h.projects.Get(r.Context(), id, key)
	if err != nil {
		writeNotFoundAs(w, err, projectNotFoundMsg)
		return
	}

	writeJSON(w, http.StatusOK, toProjectDTO(p, h.projects.Stats(r.Context(), p.ID)))
}

// Stats handles GET /api/projects/{id}/stats
func (h *ProjectHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.projects.Stats(r.Context(), r.PathValue("id")))
}

// Share handles GET /api/projects/{id}/share?k=
func (h *ProjectHandler) Share(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	key := r.URL.Query().Get(common.AccessKeyParam)

	link, err := h.projects.ShareLink(r.Context(), id, key)
	if err != nil {
		writeNotFoundAs(w, err, projectNotFoundMsg)
		return
	}

	writeJSON(w, http.StatusOK, shareLinkResponse{URL: link})
}

// Delete handles DELETE /api/projects/{id}?k=
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	key := r.URL.Query().Get(common.AccessKeyParam)

	if err := h.projects.Delete(r.Context(), id, key); err != nil {
		writeNotFoundAs(w, err, projectNotFoundMsg)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListReviews handles GET /api/projects/{id}/reviews?k=
func (h *ProjectHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	key := r.URL.Query().Get(common.AccessKeyParam)

	list, err := h.reviews.ListByProject(r.Context(), id, key)
	if err != nil {
		writeNotFoundAs(w, err, projectNotFoundMsg)
		return
	}

	out := make([]reviewDTO, 0, len(list))
	for _, rev := range list {
		out = append(out, toReviewDTO(rev))
	}

	writeJSON(w, http.StatusOK, out)
}

// Upload handles POST /api/projects/{id}/reviews?k= (multipart, field "file")
func (h *ProjectHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	key := r.URL.Query().Get(common.AccessKeyParam)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, common.ErrorNoFile)
		return
	}
	defer file.Close()

	rev, err := h.reviews.Upload(r.Context(), id, key,
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeNotFoundAs(w, err, projectNotFoundMsg)
		return
	}

	writeJSON(w, http.StatusCreated, toReviewDTO(rev))
}
