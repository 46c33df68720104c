package pages

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/askelund/proofdeck/internal/client/api"
	"github.com/askelund/proofdeck/internal/common"
)

// ProjectListPage is the creator's dashboard: all projects, newest first,
// each with its aggregate indicator.
type ProjectListPage struct {
	api *api.Client
	out io.Writer

	mu       sync.Mutex
	projects []*api.Project
}

func NewProjectListPage(c *api.Client, out io.Writer) *ProjectListPage {
	return &ProjectListPage{api: c, out: out}
}

// Load replaces the page state with a fresh fetch.
func (p *ProjectListPage) Load(ctx context.Context) error {
	list, err := p.api.ListProjects(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.projects = list
	p.mu.Unlock()
	return nil
}

// Render writes the full page. Rendering is a pure function of state, so two
// renders after the same reload are identical.
func (p *ProjectListPage) Render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, "PROJECTS")
	if len(p.projects) == 0 {
		fmt.Fprintln(p.out, "  (no projects yet)")
		return
	}
	for _, proj := range p.projects {
		fmt.Fprintf(p.out, "  %s  [%s]  id=%s\n", proj.Name, indicator(proj.Stats), proj.ID)
	}
}

// Create adds a project and reloads so the new row shows with its indicator.
func (p *ProjectListPage) Create(ctx context.Context, name string) (*api.Project, error) {
	proj, err := p.api.CreateProject(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := p.Load(ctx); err != nil {
		return nil, err
	}
	return proj, nil
}

// Watch reloads and re-renders the page on every project change until ctx is
// cancelled.
func (p *ProjectListPage) Watch(ctx context.Context) error {
	return p.api.Watch(ctx, api.WatchFilter{Collection: common.CollectionProjects}, func(api.Event) {
		if err := p.Load(ctx); err != nil {
			return
		}
		p.Render()
	})
}
