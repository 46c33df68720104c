// Package api is the typed HTTP client for the proofdeck backend, plus the
// SSE watcher feeding page reloads.
package api

import "time"

// Stats is the derived review aggregate of one project.
type Stats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Waiting  int `json:"waiting"`
}

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AccessKey string    `json:"access_key"`
	CreatedAt time.Time `json:"created_at"`
	Stats     *Stats    `json:"stats,omitempty"`
}

type Review struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id,omitempty"`
	FileURL   string    `json:"file_url"`
	FileType  string    `json:"file_type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	ReviewID  string    `json:"review_id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Event mirrors the server's change-feed payload.
type Event struct {
	Collection string            `json:"collection"`
	Op         string            `json:"op"`
	RecordID   string            `json:"record_id"`
	Fields     map[string]string `json:"fields,omitempty"`
}
