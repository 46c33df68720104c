package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/askelund/proofdeck/internal/logging"
	sc "github.com/askelund/proofdeck/internal/server/config"
	"github.com/askelund/proofdeck/internal/server/feed"
	"github.com/askelund/proofdeck/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address  string
	config   *sc.Config
	logger   logging.Logger
	projects *ProjectHandler
	reviews  *ReviewHandler
	comments *CommentHandler
	events   *EventsHandler
	owner    *OwnerHandler
}

func NewServer(cfg *sc.Config, logger logging.Logger, ps *services.ProjectService,
	rs *services.ReviewService, cs *services.CommentService, hub *feed.Hub) *Server {
	l := logger.With("module", "http_server")
	return &Server{
		address:  cfg.EndpointAddrHTTP,
		config:   cfg,
		logger:   l,
		projects: NewProjectHandler(ps, rs, logger),
		reviews:  NewReviewHandler(rs, cs, logger),
		comments: NewCommentHandler(cs, logger),
		events:   NewEventsHandler(hub, logger),
		owner:    NewOwnerHandler(cfg, logger),
	}
}

// Routes builds the full route table.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	log := func(h http.HandlerFunc) http.HandlerFunc { return withLogging(s.logger, h) }
	own := func(h http.HandlerFunc) http.HandlerFunc { return requireOwner(s.config, h) }

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /api/owner/token", log(s.owner.Token))

	// Creator surface, owner-gated in key mode.
	mux.HandleFunc("POST /api/projects", log(own(s.projects.Create)))
	mux.HandleFunc("GET /api/projects", log(own(s.projects.List)))

	// Capability-link surface: the key (or review id) is the credential.
	mux.HandleFunc("GET /api/projects/{id}", log(s.projects.Get))
	mux.HandleFunc("GET /api/projects/{id}/stats", log(s.projects.Stats))
	mux.HandleFunc("GET /api/projects/{id}/share", log(s.projects.Share))
	mux.HandleFunc("DELETE /api/projects/{id}", log(s.projects.Delete))
	mux.HandleFunc("GET /api/projects/{id}/reviews", log(s.projects.ListReviews))
	mux.HandleFunc("POST /api/projects/{id}/reviews", log(s.projects.Upload))

	mux.HandleFunc("POST /api/reviews", log(s.reviews.Upload))
	mux.HandleFunc("GET /api/reviews/{id}", log(s.reviews.Get))
	mux.HandleFunc("PATCH /api/reviews/{id}/status", log(s.reviews.UpdateStatus))
	mux.HandleFunc("GET /api/reviews/{id}/share", log(s.reviews.Share))
	mux.HandleFunc("DELETE /api/reviews/{id}", log(s.reviews.Delete))

	mux.HandleFunc("GET /api/reviews/{id}/comments", log(s.comments.List))
	mux.HandleFunc("POST /api/reviews/{id}/comments", log(s.comments.Create))

	mux.HandleFunc("GET /api/events", s.events.Stream)

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "error shutting down HTTP server", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
