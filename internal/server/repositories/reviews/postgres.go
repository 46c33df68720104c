package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/askelund/proofdeck/internal/common"
	"github.com/askelund/proofdeck/internal/dbx"
	"github.com/askelund/proofdeck/internal/server/models"
)

// PostgresRepository implements review storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert creates a review row. ProjectID may be empty for single-file flows;
// it is stored as NULL in that case.
func (r *PostgresRepository) Insert(ctx context.Context, review *models.Review) (*models.Review, error) {

	query :=
		`INSERT INTO reviews (id, project_id, file_url, file_type, status, storage_path)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		review.ID, nullIfEmpty(review.ProjectID), review.FileURL,
		review.FileType, review.Status, review.StoragePath).Scan(&review.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return review, nil
}

// SelectByProject returns a project's reviews, newest first.
func (r *PostgresRepository) SelectByProject(ctx context.Context, projectID string) ([]*models.Review, error) {
	query :=
		`SELECT id, project_id, file_url, file_type, status, storage_path, created_at FROM reviews
		 WHERE project_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select reviews: %w", err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

// SelectStatusesByProject fetches only the status column, which is all the
// aggregate view needs.
func (r *PostgresRepository) SelectStatusesByProject(ctx context.Context, projectID string) ([]string, error) {
	query := `SELECT status FROM reviews WHERE project_id = $1`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select statuses: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SelectStoragePathsByProject returns the storage keys of every review in the
// project, so a cascading delete can free the stored objects afterwards.
func (r *PostgresRepository) SelectStoragePathsByProject(ctx context.Context, projectID string) ([]string, error) {
	query := `SELECT storage_path FROM reviews WHERE project_id = $1`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select storage paths: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	query :=
		`SELECT id, project_id, file_url, file_type, status, storage_path, created_at FROM reviews
		 WHERE id = $1
		 `

	review := &models.Review{}
	var projectID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&review.ID, &projectID, &review.FileURL, &review.FileType,
			&review.Status, &review.StoragePath, &review.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	review.ProjectID = projectID.String
	return review, nil
}

// UpdateStatus persists a status transition and returns the resulting row,
// so callers can update their local view from the write itself rather than
// a subsequent re-fetch.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status string) (*models.Review, error) {
	query :=
		`UPDATE reviews SET status = $2
		 WHERE id = $1
		 RETURNING id, project_id, file_url, file_type, status, storage_path, created_at
		 `

	review := &models.Review{}
	var projectID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id, status).
		Scan(&review.ID, &projectID, &review.FileURL, &review.FileType,
			&review.Status, &review.StoragePath, &review.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	review.ProjectID = projectID.String
	return review, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM reviews WHERE id = $1`

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

func (r *PostgresRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := `DELETE FROM reviews WHERE project_id = $1`

	if _, err := r.db.ExecContext(ctx, query, projectID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func scanReviews(rows *sql.Rows) ([]*models.Review, error) {
	var result []*models.Review
	for rows.Next() {
		var item models.Review
		var projectID sql.NullString
		if err := rows.Scan(
			&item.ID, &projectID, &item.FileURL, &item.FileType,
			&item.Status, &item.StoragePath, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.ProjectID = projectID.String
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
