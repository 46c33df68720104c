package pages

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/askelund/proofdeck/internal/client/api"
	"github.com/askelund/proofdeck/internal/common"
)

// tooltipTTL is how long a pin tooltip stays up after it is shown. Showing
// another pin's tooltip replaces it wholly; it is never persisted.
const tooltipTTL = 1600 * time.Millisecond

// Pin is one comment rendered at its pixel position in the current viewport.
type Pin struct {
	Index int
	X     int
	Y     int
	Text  string
}

// ReviewPage is the annotation view of a single file: the asset, its pins,
// the comment thread and the approval pill.
type ReviewPage struct {
	api       *api.Client
	out       io.Writer
	reviewID  string
	accessKey string

	mu       sync.Mutex
	review   *api.Review
	comments []*api.Comment
	box      Box
	status   string

	tooltipText  string
	tooltipUntil time.Time
}

func NewReviewPage(c *api.Client, out io.Writer, reviewID string, accessKey string) *ReviewPage {
	return &ReviewPage{api: c, out: out, reviewID: reviewID, accessKey: accessKey, box: Box{W: 80, H: 24}}
}

// SetViewport records the rendered bounding box. Pins recompute from their
// stored fractions on the next render; nothing else changes.
func (p *ReviewPage) SetViewport(w, h int) {
	p.mu.Lock()
	p.box = Box{W: w, H: h}
	p.mu.Unlock()
}

// Load replaces the page state with a fresh fetch of the review and its
// comments. The status pill always reflects the fetched row.
func (p *ReviewPage) Load(ctx context.Context) error {
	rev, err := p.api.GetReview(ctx, p.reviewID)
	if err != nil {
		return err
	}

	comments, err := p.api.ListComments(ctx, p.reviewID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.review = rev
	p.comments = comments
	p.status = rev.Status
	p.mu.Unlock()
	return nil
}

// Pins returns the comments at their pixel positions in the current box.
func (p *ReviewPage) Pins() []Pin {
	p.mu.Lock()
	defer p.mu.Unlock()

	pins := make([]Pin, 0, len(p.comments))
	for i, c := range p.comments {
		x, y := pinAt(c.X, c.Y, p.box)
		pins = append(pins, Pin{Index: i, X: x, Y: y, Text: c.Text})
	}
	return pins
}

// AddCommentAt converts a click position into normalized fractions and
// persists the comment, then reloads the thread.
func (p *ReviewPage) AddCommentAt(ctx context.Context, px, py int, text string) error {
	p.mu.Lock()
	x, y := fracAt(px, py, p.box)
	p.mu.Unlock()

	if _, err := p.api.AddComment(ctx, p.reviewID, x, y, text); err != nil {
		return err
	}
	return p.Load(ctx)
}

// SetStatus toggles the approval state. The pill is set from the row the
// server returns, not from the requested value, so a rejected write cannot
// leave a stale pill.
func (p *ReviewPage) SetStatus(ctx context.Context, status string) error {
	rev, err := p.api.UpdateReviewStatus(ctx, p.reviewID, status)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.review = rev
	p.status = rev.Status
	p.mu.Unlock()
	return nil
}

// ShowTooltip raises the tooltip for pin i, replacing any active one.
func (p *ReviewPage) ShowTooltip(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.comments) {
		return
	}
	p.tooltipText = p.comments[i].Text
	p.tooltipUntil = nowFn().Add(tooltipTTL)
}

// Tooltip returns the active tooltip text, or "" once it has expired.
func (p *ReviewPage) Tooltip() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if nowFn().Before(p.tooltipUntil) {
		return p.tooltipText
	}
	return ""
}

// BackLink points to the owning project (key propagated) when there is one,
// and to the project list otherwise.
func (p *ReviewPage) BackLink() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.review == nil || p.review.ProjectID == "" {
		return "/"
	}
	link := "/project?pid=" + p.review.ProjectID
	if p.accessKey != "" {
		link += "&" + common.AccessKeyParam + "=" + p.accessKey
	}
	return link
}

func (p *ReviewPage) Render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.review == nil {
		fmt.Fprintln(p.out, "(not loaded)")
		return
	}

	fmt.Fprintf(p.out, "REVIEW %s  (%s)  %s\n",
		fileNameFromURL(p.review.FileURL), p.review.FileType, statusPill(p.status))

	for i, c := range p.comments {
		x, y := pinAt(c.X, c.Y, p.box)
		fmt.Fprintf(p.out, "  pin %d @ (%d,%d): %s\n", i+1, x, y, c.Text)
	}

	if nowFn().Before(p.tooltipUntil) {
		fmt.Fprintf(p.out, "  tooltip: %s\n", p.tooltipText)
	}
}

// Watch reloads and re-renders on changes to this review or its comments
// until ctx is cancelled. Both streams share one reload path, so duplicate
// or out-of-order events converge on the same output.
func (p *ReviewPage) Watch(ctx context.Context) error {
	reload := func(api.Event) {
		if err := p.Load(ctx); err != nil {
			return
		}
		p.Render()
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- p.api.Watch(ctx, api.WatchFilter{
			Collection: common.CollectionComments, Field: "review_id", Value: p.reviewID,
		}, reload)
	}()
	go func() {
		errCh <- p.api.Watch(ctx, api.WatchFilter{
			Collection: common.CollectionReviews, Field: "id", Value: p.reviewID,
		}, reload)
	}()

	return <-errCh
}
