package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/askelund/proofdeck/internal/common"
	"github.com/askelund/proofdeck/internal/dbx"
	"github.com/askelund/proofdeck/internal/server/models"
)

// PostgresRepository implements project storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, project *models.Project) (*models.Project, error) {

	query :=
		`INSERT INTO projects (id, name, access_key)
		 VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		project.ID, project.Name, project.AccessKey).Scan(&project.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

// SelectAll returns every project, newest first.
func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.Project, error) {
	query :=
		`SELECT id, name, access_key, created_at FROM projects
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	defer rows.Close()

	var result []*models.Project
	for rows.Next() {
		var item models.Project
		if err := rows.Scan(&item.ID, &item.Name, &item.AccessKey, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query :=
		`SELECT id, name, access_key, created_at FROM projects
		 WHERE id = $1
		 `

	project := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&project.ID, &project.Name, &project.AccessKey, &project.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

// GetByIDAndKey performs the combined (id AND access_key) lookup used by the
// gated project view. Any mismatch fails closed as ErrorNotFound; callers
// never learn whether the id or the key was wrong.
func (r *PostgresRepository) GetByIDAndKey(ctx context.Context, id string, accessKey string) (*models.Project, error) {
	query :=
		`SELECT id, name, access_key, created_at FROM projects
		 WHERE id = $1 AND access_key = $2
		 `

	project := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id, accessKey).
		Scan(&project.ID, &project.Name, &project.AccessKey, &project.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
