package pages

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/askelund/proofdeck/internal/client/api"
	"github.com/askelund/proofdeck/internal/common"
)

// ProjectPage is the gated client view of one project: its file list, the
// share link, uploads into the project, and the cascade delete.
type ProjectPage struct {
	api       *api.Client
	out       io.Writer
	projectID string
	accessKey string

	mu      sync.Mutex
	project *api.Project
	reviews []*api.Review
}

func NewProjectPage(c *api.Client, out io.Writer, projectID string, accessKey string) *ProjectPage {
	return &ProjectPage{api: c, out: out, projectID: projectID, accessKey: accessKey}
}

// Load fetches the project through the capability gate and its reviews. A
// wrong or missing key surfaces as a not-found error; the page never shows
// partial state.
func (p *ProjectPage) Load(ctx context.Context) error {
	proj, err := p.api.GetProject(ctx, p.projectID, p.accessKey)
	if err != nil {
		return err
	}

	reviews, err := p.api.ListReviews(ctx, p.projectID, p.accessKey)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.project = proj
	p.reviews = reviews
	p.mu.Unlock()
	return nil
}

func (p *ProjectPage) Render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.project == nil {
		fmt.Fprintln(p.out, "(not loaded)")
		return
	}

	fmt.Fprintf(p.out, "PROJECT %s  [%s]\n", p.project.Name, indicator(p.project.Stats))
	if len(p.reviews) == 0 {
		fmt.Fprintln(p.out, "  (no files yet)")
		return
	}
	for _, r := range p.reviews {
		fmt.Fprintf(p.out, "  %s  (%s)  %s  id=%s\n",
			fileNameFromURL(r.FileURL), r.FileType, statusPill(r.Status), r.ID)
	}
}

// Upload sends one file into the project and reloads the list.
func (p *ProjectPage) Upload(ctx context.Context, filename string, contentType string, data io.Reader) (*api.Review, error) {
	rev, err := p.api.Upload(ctx, p.projectID, p.accessKey, filename, contentType, data)
	if err != nil {
		return nil, err
	}
	if err := p.Load(ctx); err != nil {
		return nil, err
	}
	return rev, nil
}

// ShareLink returns the canonical client link for this project.
func (p *ProjectPage) ShareLink(ctx context.Context) (string, error) {
	return p.api.ProjectShareLink(ctx, p.projectID, p.accessKey)
}

// Delete removes the project and everything under it.
func (p *ProjectPage) Delete(ctx context.Context) error {
	return p.api.DeleteProject(ctx, p.projectID, p.accessKey)
}

// Watch reloads and re-renders on every review change in this project.
func (p *ProjectPage) Watch(ctx context.Context) error {
	filter := api.WatchFilter{Collection: common.CollectionReviews, Field: "project_id", Value: p.projectID}
	return p.api.Watch(ctx, filter, func(api.Event) {
		if err := p.Load(ctx); err != nil {
			return
		}
		p.Render()
	})
}
