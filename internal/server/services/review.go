package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/askelund/proofdeck/internal/common"
	"github.com/askelund/proofdeck/internal/dbx"
	"github.com/askelund/proofdeck/internal/logging"
	sc "github.com/askelund/proofdeck/internal/server/config"
	"github.com/askelund/proofdeck/internal/server/feed"
	"github.com/askelund/proofdeck/internal/server/models"
	"github.com/askelund/proofdeck/internal/server/repositories/repomanager"
	"github.com/askelund/proofdeck/internal/server/storage"
	"github.com/google/uuid"
)

// ReviewService owns the upload pipeline and the review lifecycle: store the
// bytes, mint the row, toggle approval, and tear everything down on delete.
type ReviewService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	hub         *feed.Hub
	store       storage.ObjectStore
	logger      logging.Logger
}

func NewReviewService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config,
	hub *feed.Hub, store storage.ObjectStore, logger logging.Logger) *ReviewService {
	return &ReviewService{
		db:          db,
		repomanager: m,
		config:      cfg,
		hub:         hub,
		store:       store,
		logger:      logger.With("module", "reviews"),
	}
}

// storageKeyFor builds a collision-resistant object key preserving the
// original extension, defaulting to .bin when the name has none.
func storageKeyFor(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".bin"
	}
	return uuid.NewString() + ext
}

// Upload stores the file and creates its review row, initially needs_changes.
// With a non-empty projectID the project gate is checked first. The pipeline
// is: put object (write-once key), resolve public URL, insert row. If the
// insert fails the stored object is freed on a best-effort basis.
func (s *ReviewService) Upload(ctx context.Context, projectID string, accessKey string,
	filename string, mediaType string, body io.Reader) (*models.Review, error) {

	if body == nil {
		return nil, common.ErrorNoFile
	}

	if projectID != "" {
		if err := s.checkProjectGate(ctx, projectID, accessKey); err != nil {
			return nil, err
		}
	}

	key := storageKeyFor(filename)

	if err := s.store.Put(ctx, key, body, mediaType); err != nil {
		return nil, fmt.Errorf("error storing file: %w", err)
	}

	review := &models.Review{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		FileURL:     s.store.PublicURL(key),
		FileType:    common.GuessFileType(mediaType),
		Status:      common.StatusNeedsChanges,
		StoragePath: key,
	}

	repo := s.repomanager.Reviews(s.db)
	r, err := repo.Insert(ctx, review)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn(ctx, "error freeing orphaned object", "key", key, "error", delErr.Error())
		}
		return nil, fmt.Errorf("error creating review: %w", err)
	}

	s.hub.Publish(ctx, feed.Event{Collection: common.CollectionReviews, Op: feed.OpInsert, RecordID: r.ID,
		Fields: map[string]string{"project_id": r.ProjectID}})

	return r, nil
}

// ListByProject returns the project's reviews, newest first, behind the
// project gate.
func (s *ReviewService) ListByProject(ctx context.Context, projectID string, accessKey string) ([]*models.Review, error) {
	if err := s.checkProjectGate(ctx, projectID, accessKey); err != nil {
		return nil, err
	}

	repo := s.repomanager.Reviews(s.db)
	list, err := repo.SelectByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error listing reviews: %w", err)
	}
	return list, nil
}

// Get fetches one review by id. The review id itself is the capability for
// link-based reads, so there is no additional gate here.
func (s *ReviewService) Get(ctx context.Context, id string) (*models.Review, error) {
	repo := s.repomanager.Reviews(s.db)
	r, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error getting review: %w", err)
	}
	return r, nil
}

// UpdateStatus sets the review's status to one of the two known states and
// returns the resulting row so callers can render from the authoritative
// value. Anything outside the two states yields ErrorBadStatus with no write.
func (s *ReviewService) UpdateStatus(ctx context.Context, id string, status string) (*models.Review, error) {
	if status != common.StatusNeedsChanges && status != common.StatusApproved {
		return nil, common.ErrorBadStatus
	}

	repo := s.repomanager.Reviews(s.db)
	r, err := repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating review status: %w", err)
	}

	s.hub.Publish(ctx, feed.Event{Collection: common.CollectionReviews, Op: feed.OpUpdate, RecordID: r.ID,
		Fields: map[string]string{"project_id": r.ProjectID}})

	return r, nil
}

// ShareLink returns the canonical client link for a review, with the owning
// project's key propagated when one is supplied.
func (s *ReviewService) ShareLink(ctx context.Context, id string, accessKey string) (string, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("id", r.ID)
	if accessKey != "" {
		q.Set(common.AccessKeyParam, accessKey)
	}

	return strings.TrimRight(s.config.PublicBaseURL, "/") + "/review?" + q.Encode(), nil
}

// Delete removes the review, its comments and its stored object. A review
// owned by a project is gated on the project's key; a standalone review is
// deletable by whoever holds its id. Rows go transactionally, the object
// afterwards on a best-effort basis.
func (s *ReviewService) Delete(ctx context.Context, id string, accessKey string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if r.ProjectID != "" {
		if err := s.checkProjectGate(ctx, r.ProjectID, accessKey); err != nil {
			return err
		}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Comments(tx).DeleteByReview(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Reviews(tx).DeleteByID(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("error deleting review: %w", err)
	}

	if r.StoragePath != "" {
		if err := s.store.Delete(ctx, r.StoragePath); err != nil {
			s.logger.Warn(ctx, "error deleting stored object", "key", r.StoragePath, "error", err.Error())
		}
	}

	s.hub.Publish(ctx, feed.Event{Collection: common.CollectionReviews, Op: feed.OpDelete, RecordID: id,
		Fields: map[string]string{"project_id": r.ProjectID}})

	return nil
}

// checkProjectGate verifies the project exists and, in key mode, that the
// supplied key matches. Mismatches fail closed as ErrorNotFound.
func (s *ReviewService) checkProjectGate(ctx context.Context, projectID string, accessKey string) error {
	repo := s.repomanager.Projects(s.db)

	var err error
	if s.config.AccessMode == sc.AccessModeKey {
		_, err = repo.GetByIDAndKey(ctx, projectID, accessKey)
	} else {
		_, err = repo.GetByID(ctx, projectID)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error getting project: %w", err)
	}
	return nil
}
