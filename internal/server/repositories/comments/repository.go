// Package comments provides PostgreSQL-backed persistence for positional
// comments (pins) anchored to reviews.
package comments

import (
	"context"

	"github.com/askelund/proofdeck/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	SelectByReview(ctx context.Context, reviewID string) ([]*models.Comment, error)
	DeleteByReview(ctx context.Context, reviewID string) error
	DeleteByProjectReviews(ctx context.Context, projectID string) error
}
