package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/askelund/proofdeck/internal/common"
	"github.com/askelund/proofdeck/internal/logging"
	"github.com/askelund/proofdeck/internal/server/feed"
	"github.com/askelund/proofdeck/internal/server/models"
	"github.com/askelund/proofdeck/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CommentService manages positional comments pinned to reviews.
type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hub         *feed.Hub
	logger      logging.Logger
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, hub *feed.Hub, logger logging.Logger) *CommentService {
	return &CommentService{
		db:          db,
		repomanager: m,
		hub:         hub,
		logger:      logger.With("module", "comments"),
	}
}

// Add validates and persists one pin. The text is trimmed and must be
// non-empty; the review must exist; x and y are clamped into [0,1] before
// the insert so out-of-range clicks never store an out-of-range fraction.
func (s *CommentService) Add(ctx context.Context, reviewID string, x, y float64, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.ErrorEmptyComment
	}

	if _, err := s.repomanager.Reviews(s.db).GetByID(ctx, reviewID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error getting review: %w", err)
	}

	comment := &models.Comment{
		ID:       uuid.NewString(),
		ReviewID: reviewID,
		X:        common.Clamp01(x),
		Y:        common.Clamp01(y),
		Text:     text,
	}

	repo := s.repomanager.Comments(s.db)
	c, err := repo.Insert(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("error creating comment: %w", err)
	}

	s.hub.Publish(ctx, feed.Event{Collection: common.CollectionComments, Op: feed.OpInsert, RecordID: c.ID,
		Fields: map[string]string{"review_id": c.ReviewID}})

	return c, nil
}

// List returns the review's comments, oldest first, so the thread reads in
// the order it was written.
func (s *CommentService) List(ctx context.Context, reviewID string) ([]*models.Comment, error) {
	repo := s.repomanager.Comments(s.db)
	list, err := repo.SelectByReview(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	return list, nil
}
