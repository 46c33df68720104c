package comments

import (
	"context"
	"fmt"

	"github.com/askelund/proofdeck/internal/dbx"
	"github.com/askelund/proofdeck/internal/server/models"
)

// PostgresRepository implements comment storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, comment *models.Comment) (*models.Comment, error) {

	query :=
		`INSERT INTO comments (id, review_id, x, y, text)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		comment.ID, comment.ReviewID, comment.X, comment.Y, comment.Text).
		Scan(&comment.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return comment, nil
}

// SelectByReview returns a review's comments, oldest first, so pins render
// in the order they were left.
func (r *PostgresRepository) SelectByReview(ctx context.Context, reviewID string) ([]*models.Comment, error) {
	query :=
		`SELECT id, review_id, x, y, text, created_at FROM comments
		 WHERE review_id = $1
		 ORDER BY created_at ASC
		 `

	rows, err := r.db.QueryContext(ctx, query, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to select comments: %w", err)
	}
	defer rows.Close()

	var result []*models.Comment
	for rows.Next() {
		var item models.Comment
		if err := rows.Scan(
			&item.ID, &item.ReviewID, &item.X, &item.Y, &item.Text, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByReview(ctx context.Context, reviewID string) error {
	query := `DELETE FROM comments WHERE review_id = $1`

	if _, err := r.db.ExecContext(ctx, query, reviewID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteByProjectReviews removes every comment belonging to any review in
// the project. Used by the cascading project delete.
func (r *PostgresRepository) DeleteByProjectReviews(ctx context.Context, projectID string) error {
	query :=
		`DELETE FROM comments
		 WHERE review_id IN (SELECT id FROM reviews WHERE project_id = $1)
		 `

	if _, err := r.db.ExecContext(ctx, query, projectID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
