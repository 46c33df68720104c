// Package services contains server-side business logic. This file implements
// ProjectService, which handles project creation, listing, capability-gated
// reads, derived review stats, share links, and the cascading delete.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
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

// accessKeySize is the number of random bytes behind a project access key;
// the hex key itself is twice as long.
const accessKeySize = 16

// ProjectService provides project-level operations:
// - Create: mint a project with a fresh capability key
// - List: all projects, newest first
// - Get: capability-gated single-project fetch
// - Stats: derived review aggregate, degrading to zeros on error
// - ShareLink: canonical client link for a project
// - Delete: key-verified cascade over comments, reviews, rows and objects
type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	hub         *feed.Hub
	store       storage.ObjectStore
	logger      logging.Logger
}

// NewProjectService constructs a ProjectService using repositories, the change
// feed hub, the object store and server config.
func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config,
	hub *feed.Hub, store storage.ObjectStore, logger logging.Logger) *ProjectService {
	return &ProjectService{
		db:          db,
		repomanager: m,
		config:      cfg,
		hub:         hub,
		store:       store,
		logger:      logger.With("module", "projects"),
	}
}

// Create inserts a new project with a generated id and access key. The name
// is trimmed; a blank name yields ErrorEmptyName without a row.
func (s *ProjectService) Create(ctx context.Context, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrorEmptyName
	}

	key, err := common.MakeRandHexString(accessKeySize)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Projects(s.db)
	p, err := repo.Insert(ctx, &models.Project{ID: uuid.NewString(), Name: name, AccessKey: key})
	if err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}

	s.hub.Publish(ctx, feed.Event{Collection: common.CollectionProjects, Op: feed.OpInsert, RecordID: p.ID})

	return p, nil
}

// List returns all projects, newest first.
func (s *ProjectService) List(ctx context.Context) ([]*models.Project, error) {
	repo := s.repomanager.Projects(s.db)
	list, err := repo.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing projects: %w", err)
	}
	return list, nil
}

// Get fetches one project. In key mode both the id and the access key must
// match; any mismatch fails closed as ErrorNotFound so the response never
// reveals whether the id alone exists.
func (s *ProjectService) Get(ctx context.Context, id string, accessKey string) (*models.Project, error) {
	repo := s.repomanager.Projects(s.db)

	if s.config.AccessMode == sc.AccessModeKey {
		p, err := repo.GetByIDAndKey(ctx, id, accessKey)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrorNotFound
			}
			return nil, fmt.Errorf("error getting project: %w", err)
		}
		return p, nil
	}

	p, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error getting project: %w", err)
	}
	return p, nil
}

// Stats aggregates the project's reviews into {total, approved, waiting}.
// Waiting is every non-approved review. Errors degrade to all-zero stats so
// a list page never fails over a single broken aggregate.
func (s *ProjectService) Stats(ctx context.Context, projectID string) *models.ProjectStats {
	repo := s.repomanager.Reviews(s.db)

	statuses, err := repo.SelectStatusesByProject(ctx, projectID)
	if err != nil {
		s.logger.Warn(ctx, "error loading review statuses, degrading stats to zero", "project_id", projectID, "error", err.Error())
		return &models.ProjectStats{}
	}

	stats := &models.ProjectStats{Total: len(statuses)}
	for _, st := range statuses {
		if st == common.StatusApproved {
			stats.Approved++
		}
	}
	stats.Waiting = stats.Total - stats.Approved

	return stats
}

// ShareLink returns the canonical client link for the project, built from the
// configured public base URL. The key is propagated so the link is a working
// capability on its own.
func (s *ProjectService) ShareLink(ctx context.Context, id string, accessKey string) (string, error) {
	p, err := s.Get(ctx, id, accessKey)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("pid", p.ID)
	if s.config.AccessMode == sc.AccessModeKey {
		q.Set(common.AccessKeyParam, p.AccessKey)
	}

	return strings.TrimRight(s.config.PublicBaseURL, "/") + "/project?" + q.Encode(), nil
}

// Delete removes the project and everything under it: comments, reviews,
// rows and stored objects. The key gate applies first; the row deletes run in
// one transaction; object cleanup runs after commit and only logs failures,
// since the rows are already gone.
func (s *ProjectService) Delete(ctx context.Context, id string, accessKey string) error {
	if _, err := s.Get(ctx, id, accessKey); err != nil {
		return err
	}

	// Paths are snapshotted inside the transaction so an upload committing
	// concurrently cannot lose its object key before the row delete.
	var paths []string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		paths, err = s.repomanager.Reviews(tx).SelectStoragePathsByProject(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repomanager.Comments(tx).DeleteByProjectReviews(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.Reviews(tx).DeleteByProject(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Projects(tx).DeleteByID(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("error deleting project: %w", err)
	}

	for _, key := range paths {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn(ctx, "error deleting stored object", "key", key, "error", err.Error())
		}
	}

	s.hub.Publish(ctx, feed.Event{Collection: common.CollectionProjects, Op: feed.OpDelete, RecordID: id})
	s.hub.Publish(ctx, feed.Event{Collection: common.CollectionReviews, Op: feed.OpDelete, RecordID: id,
		Fields: map[string]string{"project_id": id}})

	return nil
}
