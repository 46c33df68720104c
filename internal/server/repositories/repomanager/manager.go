package repomanager

import (
	"context"
	"database/sql"

	"github.com/askelund/proofdeck/internal/dbx"
	"github.com/askelund/proofdeck/internal/server/repositories/comments"
	"github.com/askelund/proofdeck/internal/server/repositories/projects"
	"github.com/askelund/proofdeck/internal/server/repositories/reviews"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Projects(db dbx.DBTX) projects.Repository
	Reviews(db dbx.DBTX) reviews.Repository
	Comments(db dbx.DBTX) comments.Repository
}
