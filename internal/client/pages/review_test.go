package pages

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/askelund/proofdeck/internal/client/api"
	"github.com/askelund/proofdeck/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves a mutable review plus comments for page tests.
type fakeBackend struct {
	mu       sync.Mutex
	review   api.Review
	comments []api.Comment
	streams  []string
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/reviews/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.review)
	})
	mux.HandleFunc("GET /api/reviews/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.comments)
	})
	mux.HandleFunc("POST /api/reviews/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			X    float64 `json:"x"`
			Y    float64 `json:"y"`
			Text string  `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		b.mu.Lock()
		c := api.Comment{ID: "c-new", ReviewID: b.review.ID, X: req.X, Y: req.Y, Text: req.Text}
		b.comments = append(b.comments, c)
		b.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(c)
	})
	mux.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		q := r.URL.Query()
		b.mu.Lock()
		b.streams = append(b.streams, q.Get("collection")+"/"+q.Get("field")+"="+q.Get("value"))
		b.mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		e := api.Event{Collection: q.Get("collection"), Op: "update", RecordID: q.Get("value")}
		data, err := json.Marshal(e)
		require.NoError(t, err)
		fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
		flusher.Flush()

		// Keep the stream open so the watcher does not reconnect mid-test.
		<-r.Context().Done()
	})
	mux.HandleFunc("PATCH /api/reviews/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		b.mu.Lock()
		b.review.Status = req.Status
		out := b.review
		b.mu.Unlock()

		_ = json.NewEncoder(w).Encode(out)
	})

	return mux
}

func newReviewPageEnv(t *testing.T) (*fakeBackend, *ReviewPage, *bytes.Buffer) {
	t.Helper()
	backend := &fakeBackend{
		review: api.Review{ID: "r1", FileURL: "http://files.local/uploads/shot.png",
			FileType: common.FileTypeImage, Status: common.StatusNeedsChanges},
		comments: []api.Comment{
			{ID: "c1", ReviewID: "r1", X: 0.25, Y: 0.5, Text: "crop tighter"},
		},
	}
	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	page := NewReviewPage(api.NewClient(srv.URL, nil), &buf, "r1", "")
	return backend, page, &buf
}

func TestReviewPage_PinsScaleWithViewport(t *testing.T) {
	_, page, _ := newReviewPageEnv(t)
	require.NoError(t, page.Load(context.Background()))

	page.SetViewport(200, 100)
	pins := page.Pins()
	require.Len(t, pins, 1)
	assert.Equal(t, 50, pins[0].X)
	assert.Equal(t, 50, pins[0].Y)

	page.SetViewport(400, 200)
	pins = page.Pins()
	assert.Equal(t, 100, pins[0].X)
	assert.Equal(t, 100, pins[0].Y)
}

func TestReviewPage_AddCommentAtConvertsAndClamps(t *testing.T) {
	backend, page, _ := newReviewPageEnv(t)
	require.NoError(t, page.Load(context.Background()))
	page.SetViewport(100, 100)

	require.NoError(t, page.AddCommentAt(context.Background(), -10, 170, "out of frame"))

	backend.mu.Lock()
	added := backend.comments[len(backend.comments)-1]
	backend.mu.Unlock()
	assert.Equal(t, 0.0, added.X)
	assert.Equal(t, 1.0, added.Y)

	// the reload picked the new comment up
	assert.Len(t, page.Pins(), 2)
}

func TestReviewPage_StatusPillFollowsReturnedRow(t *testing.T) {
	_, page, _ := newReviewPageEnv(t)
	require.NoError(t, page.Load(context.Background()))

	require.NoError(t, page.SetStatus(context.Background(), common.StatusApproved))

	var buf bytes.Buffer
	page.out = &buf
	page.Render()
	assert.Contains(t, buf.String(), "[approved]")
}

func TestReviewPage_TooltipExpires(t *testing.T) {
	_, page, _ := newReviewPageEnv(t)
	require.NoError(t, page.Load(context.Background()))

	base := time.Now()
	nowFn = func() time.Time { return base }
	t.Cleanup(func() { nowFn = time.Now })

	page.ShowTooltip(0)
	assert.Equal(t, "crop tighter", page.Tooltip())

	nowFn = func() time.Time { return base.Add(tooltipTTL - time.Millisecond) }
	assert.Equal(t, "crop tighter", page.Tooltip())

	nowFn = func() time.Time { return base.Add(tooltipTTL + time.Millisecond) }
	assert.Equal(t, "", page.Tooltip(), "the tooltip must vanish after its TTL")
}

func TestReviewPage_ReloadIsIdempotent(t *testing.T) {
	_, page, _ := newReviewPageEnv(t)

	require.NoError(t, page.Load(context.Background()))
	var first bytes.Buffer
	page.out = &first
	page.Render()

	// A duplicate of the same change event triggers another full reload;
	// the rendered output must not change.
	require.NoError(t, page.Load(context.Background()))
	var second bytes.Buffer
	page.out = &second
	page.Render()

	assert.Equal(t, first.String(), second.String())
}

// syncBuffer guards concurrent renders from the watch goroutines.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestReviewPage_WatchReloadsFromBothStreams(t *testing.T) {
	backend := &fakeBackend{
		review: api.Review{ID: "r1", FileURL: "http://files.local/uploads/shot.png",
			FileType: common.FileTypeImage, Status: common.StatusNeedsChanges},
	}
	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)

	out := &syncBuffer{}
	page := NewReviewPage(api.NewClient(srv.URL, nil), out, "r1", "")
	require.NoError(t, page.Load(context.Background()))

	// A second viewer approves the file and pins a comment; the watcher's
	// first events arrive after these changes are in place.
	backend.mu.Lock()
	backend.review.Status = common.StatusApproved
	backend.comments = append(backend.comments,
		api.Comment{ID: "c1", ReviewID: "r1", X: 0.5, Y: 0.5, Text: "looks great"})
	backend.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- page.Watch(ctx) }()

	require.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, "[approved]") && strings.Contains(s, "looks great")
	}, 3*time.Second, 20*time.Millisecond, "the watched page must converge on the other viewer's changes")

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop on cancellation")
	}

	backend.mu.Lock()
	streams := append([]string(nil), backend.streams...)
	backend.mu.Unlock()
	assert.Contains(t, streams, "comments/review_id=r1")
	assert.Contains(t, streams, "reviews/id=r1")
}

func TestReviewPage_BackLink(t *testing.T) {
	backend, page, _ := newReviewPageEnv(t)

	// standalone: back to the list
	require.NoError(t, page.Load(context.Background()))
	assert.Equal(t, "/", page.BackLink())

	// project-owned: back to the project with the key propagated
	backend.mu.Lock()
	backend.review.ProjectID = "p1"
	backend.mu.Unlock()

	page.accessKey = "abc"
	require.NoError(t, page.Load(context.Background()))
	assert.Equal(t, "/project?pid=p1&k=abc", page.BackLink())
}
