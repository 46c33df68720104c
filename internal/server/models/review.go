package models

import "time"

// Review is one uploaded file plus its approval status and comment thread.
type Review struct {
	ID string
	// ProjectID is empty for single-file flows (standalone upload page).
	ProjectID string
	// FileURL is the publicly retrievable URL of the stored object.
	FileURL string
	// FileType is the coarse classification: image, video, pdf or file.
	FileType string
	// Status is needs_changes or approved.
	Status string
	// StoragePath is the object-storage key, kept so a later delete can
	// free the stored object.
	StoragePath string
	CreatedAt   time.Time
}
