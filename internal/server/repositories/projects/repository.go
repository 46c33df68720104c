// Package projects provides PostgreSQL-backed persistence for project
// records and their capability-key lookups.
package projects

import (
	"context"

	"github.com/askelund/proofdeck/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, project *models.Project) (*models.Project, error)
	SelectAll(ctx context.Context) ([]*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	GetByIDAndKey(ctx context.Context, id string, accessKey string) (*models.Project, error)
	DeleteByID(ctx context.Context, id string) error
}
