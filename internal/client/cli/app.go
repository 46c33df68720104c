// Package cli wires the terminal client: it owns the REPL, dispatches
// commands to the page layer, and holds the API client session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/askelund/proofdeck/internal/client/api"
	"github.com/askelund/proofdeck/internal/client/config"
	"github.com/askelund/proofdeck/internal/client/pages"
)

type App struct {
	config *config.Config
	api    *api.Client
	out    io.Writer

	authenticated bool
}

func NewApp(c *config.Config) (*App, error) {
	if c.ServerEndpointAddr == "" {
		return nil, errors.New("server endpoint address is required")
	}

	return &App{
		config: c,
		api:    api.NewClient(c.ServerEndpointAddr, &http.Client{Timeout: c.RequestTimeout}),
		out:    os.Stdout,
	}, nil
}

// ensureOwner authenticates lazily so capability-link commands work without
// any secret configured.
func (app *App) ensureOwner(ctx context.Context) error {
	if app.authenticated {
		return nil
	}
	if app.config.OwnerSecret == "" {
		return errors.New("owner secret is not configured (use -s)")
	}
	if err := app.api.Authenticate(ctx, app.config.OwnerSecret); err != nil {
		return err
	}
	app.authenticated = true
	return nil
}

// List shows all projects with their aggregate indicators.
func (app *App) List(ctx context.Context) error {
	if err := app.ensureOwner(ctx); err != nil {
		return err
	}
	page := pages.NewProjectListPage(app.api, app.out)
	if err := page.Load(ctx); err != nil {
		return err
	}
	page.Render()
	return nil
}

// Create adds a new project and prints its share link.
func (app *App) Create(ctx context.Context, name string) error {
	if err := app.ensureOwner(ctx); err != nil {
		return err
	}
	page := pages.NewProjectListPage(app.api, app.out)
	proj, err := page.Create(ctx, name)
	if err != nil {
		return err
	}

	link, err := app.api.ProjectShareLink(ctx, proj.ID, proj.AccessKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "created %s  id=%s\nshare: %s\n", proj.Name, proj.ID, link)
	return nil
}

// Open renders one project through its capability link.
func (app *App) Open(ctx context.Context, projectID string, accessKey string) error {
	page := pages.NewProjectPage(app.api, app.out, projectID, accessKey)
	if err := page.Load(ctx); err != nil {
		return err
	}
	page.Render()
	return nil
}

// Upload sends a local file into a project.
func (app *App) Upload(ctx context.Context, projectID string, accessKey string, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	page := pages.NewProjectPage(app.api, app.out, projectID, accessKey)
	if err := page.Load(ctx); err != nil {
		return err
	}

	rev, err := page.Upload(ctx, filepath.Base(path), guessContentType(path), f)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "uploaded as review %s\n", rev.ID)
	page.Render()
	return nil
}

// Send is the standalone single-file flow.
func (app *App) Send(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	page := pages.NewUploadPage(app.api, app.out, "")
	_, err = page.Upload(ctx, filepath.Base(path), guessContentType(path), f)
	return err
}

// Review renders one review with its pins and thread.
func (app *App) Review(ctx context.Context, reviewID string, accessKey string) error {
	page := pages.NewReviewPage(app.api, app.out, reviewID, accessKey)
	if err := page.Load(ctx); err != nil {
		return err
	}
	page.Render()
	fmt.Fprintf(app.out, "back: %s\n", page.BackLink())
	return nil
}

// SetStatus toggles a review's approval state and prints the resulting pill.
func (app *App) SetStatus(ctx context.Context, reviewID string, status string) error {
	page := pages.NewReviewPage(app.api, app.out, reviewID, "")
	if err := page.Load(ctx); err != nil {
		return err
	}
	if err := page.SetStatus(ctx, status); err != nil {
		return err
	}
	page.Render()
	return nil
}

// Comment pins a note onto a review at the given viewport position.
func (app *App) Comment(ctx context.Context, reviewID string, x, y int, text string) error {
	page := pages.NewReviewPage(app.api, app.out, reviewID, "")
	if err := page.Load(ctx); err != nil {
		return err
	}
	if err := page.AddCommentAt(ctx, x, y, text); err != nil {
		return err
	}
	page.Render()
	return nil
}

// Watch follows a project and re-renders it on every change until interrupted.
func (app *App) Watch(ctx context.Context, projectID string, accessKey string) error {
	page := pages.NewProjectPage(app.api, app.out, projectID, accessKey)
	if err := page.Load(ctx); err != nil {
		return err
	}
	page.Render()
	return page.Watch(ctx)
}

// WatchList follows the project list and re-renders it on every change.
func (app *App) WatchList(ctx context.Context) error {
	if err := app.ensureOwner(ctx); err != nil {
		return err
	}
	page := pages.NewProjectListPage(app.api, app.out)
	if err := page.Load(ctx); err != nil {
		return err
	}
	page.Render()
	return page.Watch(ctx)
}

// WatchReview follows one review: status flips and new pins from other
// viewers show up as they happen.
func (app *App) WatchReview(ctx context.Context, reviewID string, accessKey string) error {
	page := pages.NewReviewPage(app.api, app.out, reviewID, accessKey)
	if err := page.Load(ctx); err != nil {
		return err
	}
	page.Render()
	return page.Watch(ctx)
}

// Delete removes a project and everything under it.
func (app *App) Delete(ctx context.Context, projectID string, accessKey string) error {
	if err := app.api.DeleteProject(ctx, projectID, accessKey); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "deleted")
	return nil
}

func guessContentType(path string) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		return "application/octet-stream"
	}
	// strip parameters like "; charset=utf-8"
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

func parseCoord(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad coordinate %q", s)
	}
	return v, nil
}

func (app *App) Run() {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, app, scanner)
}
