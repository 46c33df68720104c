// Package models defines server-side data models persisted in the database.
package models

import "time"

// Project is a named collection of files awaiting client review.
type Project struct {
	ID string
	// Name is the creator-supplied project title.
	Name string
	// AccessKey is the capability token gating client-link access to the
	// project and its files. Whoever holds the link holds the rights.
	AccessKey string
	CreatedAt time.Time
}

// ProjectStats is the derived, non-persisted aggregate over a project's
// reviews. Waiting is every non-approved review; there is no distinct
// rejected terminal state.
type ProjectStats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Waiting  int `json:"waiting"`
}
