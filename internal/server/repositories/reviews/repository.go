// Package reviews provides PostgreSQL-backed persistence for review records:
// one row per uploaded file, carrying its approval status and storage path.
package reviews

import (
	"context"

	"github.com/askelund/proofdeck/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, review *models.Review) (*models.Review, error)
	SelectByProject(ctx context.Context, projectID string) ([]*models.Review, error)
	SelectStatusesByProject(ctx context.Context, projectID string) ([]string, error)
	SelectStoragePathsByProject(ctx context.Context, projectID string) ([]string, error)
	GetByID(ctx context.Context, id string) (*models.Review, error)
	UpdateStatus(ctx context.Context, id string, status string) (*models.Review, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
}
