// Package common contains shared constants and sentinel errors used across
// proofdeck components.
package common

// AccessKeyParam is the URL query parameter carrying a project capability key.
// Every link generated from a gated page propagates it forward.
const AccessKeyParam = "k"

// OwnerTokenHeaderName is the HTTP header carrying the owner-session token
// on creator-surface requests (project list, project creation).
const OwnerTokenHeaderName = "Authorization"

// Collection names used by the change feed and its subscribers.
const (
	CollectionProjects = "projects"
	CollectionReviews  = "reviews"
	CollectionComments = "comments"
)

// Review statuses. A review starts in StatusNeedsChanges and toggles between
// the two on explicit user action only.
const (
	StatusNeedsChanges = "needs_changes"
	StatusApproved     = "approved"
)

// Coarse file type classification derived from the declared media type.
const (
	FileTypeImage = "image"
	FileTypeVideo = "video"
	FileTypePDF   = "pdf"
	FileTypeOther = "file"
)
