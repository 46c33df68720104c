package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, conns *atomic.Int32, events []Event) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/events", r.URL.Path)
		conns.Add(1)

		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		for _, e := range events {
			data, err := json.Marshal(e)
			require.NoError(t, err)
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
		// Returning closes the stream, forcing the client to reconnect.
	}))
}

func TestWatch_DeliversEventsAndReconnects(t *testing.T) {
	var conns atomic.Int32
	srv := sseServer(t, &conns, []Event{
		{Collection: "reviews", Op: "insert", RecordID: "r1", Fields: map[string]string{"project_id": "p1"}},
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Event, 16)
	done := make(chan error, 1)

	c := NewClient(srv.URL, nil)
	go func() {
		done <- c.Watch(ctx, WatchFilter{Collection: "reviews", Field: "project_id", Value: "p1"}, func(e Event) {
			got <- e
		})
	}()

	select {
	case e := <-got:
		assert.Equal(t, "r1", e.RecordID)
		assert.Equal(t, "p1", e.Fields["project_id"])
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for first event")
	}

	// The server closes each stream after one event; the watcher must come
	// back for more.
	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reconnect delivery")
	}
	assert.GreaterOrEqual(t, conns.Load(), int32(2))

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop on cancellation")
	}
}

func TestWatch_OutlivesRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		// Hold the stream open well past the per-request timeout before the
		// first event shows up.
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, "event: change\ndata: {\"collection\":\"reviews\",\"op\":\"update\",\"record_id\":\"r1\"}\n\n")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Event, 1)
	c := NewClient(srv.URL, &http.Client{Timeout: 50 * time.Millisecond})
	go func() {
		_ = c.Watch(ctx, WatchFilter{Collection: "reviews"}, func(e Event) {
			select {
			case got <- e:
			default:
			}
		})
	}()

	select {
	case e := <-got:
		assert.Equal(t, "r1", e.RecordID)
	case <-time.After(3 * time.Second):
		t.Fatal("the watch stream must not be cut off by the per-request timeout")
	}
}

func TestWatch_SendsFilterQuery(t *testing.T) {
	seen := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case seen <- r.URL.RawQuery:
		default:
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewClient(srv.URL, nil)
	go func() {
		_ = c.Watch(ctx, WatchFilter{Collection: "comments", Field: "review_id", Value: "r9"}, func(Event) {})
	}()

	select {
	case q := <-seen:
		assert.Contains(t, q, "collection=comments")
		assert.Contains(t, q, "field=review_id")
		assert.Contains(t, q, "value=r9")
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watch request")
	}
	cancel()
}
