package web

import (
	"time"

	"github.com/askelund/proofdeck/internal/server/models"
)

// Wire representations. The access key rides along on project payloads: the
// creator surface needs it to build share links, and a gated read already
// proved possession of it.

type projectDTO struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	AccessKey string               `json:"access_key"`
	CreatedAt time.Time            `json:"created_at"`
	Stats     *models.ProjectStats `json:"stats,omitempty"`
}

type reviewDTO struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id,omitempty"`
	FileURL   string    `json:"file_url"`
	FileType  string    `json:"file_type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type commentDTO struct {
	ID        string    `json:"id"`
	ReviewID  string    `json:"review_id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type createProjectRequest struct {
	Name string `json:"name"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type createCommentRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

type shareLinkResponse struct {
	URL string `json:"url"`
}

type ownerTokenRequest struct {
	Secret string `json:"secret"`
}

type ownerTokenResponse struct {
	Token string `json:"token"`
}

func toProjectDTO(p *models.Project, stats *models.ProjectStats) projectDTO {
	return projectDTO{ID: p.ID, Name: p.Name, AccessKey: p.AccessKey, CreatedAt: p.CreatedAt, Stats: stats}
}

func toReviewDTO(r *models.Review) reviewDTO {
	return reviewDTO{ID: r.ID, ProjectID: r.ProjectID, FileURL: r.FileURL,
		FileType: r.FileType, Status: r.Status, CreatedAt: r.CreatedAt}
}

func toCommentDTO(c *models.Comment) commentDTO {
	return commentDTO{ID: c.ID, ReviewID: c.ReviewID, X: c.X, Y: c.Y, Text: c.Text, CreatedAt: c.CreatedAt}
}
