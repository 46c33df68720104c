package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// WatchFilter scopes a watch stream to one collection, optionally narrowed to
// records whose field equals value ("id" matches the record id).
type WatchFilter struct {
	Collection string
	Field      string
	Value      string
}

const (
	reconnectBase = 500 * time.Millisecond
	reconnectCap  = 5 * time.Second
)

// Watch streams change events matching the filter to fn until ctx is
// cancelled. Dropped connections reconnect with Fibonacci backoff; the
// consumer reloads fully on every event, so missing events during a gap only
// delays the next reload.
func (c *Client) Watch(ctx context.Context, filter WatchFilter, fn func(Event)) error {
	q := url.Values{}
	q.Set("collection", filter.Collection)
	if filter.Field != "" {
		q.Set("field", filter.Field)
		q.Set("value", filter.Value)
	}
	endpoint := c.baseURL + "/api/events?" + q.Encode()

	b := retry.WithCappedDuration(reconnectCap, retry.NewFibonacci(reconnectBase))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := c.stream(ctx, endpoint, fn); err != nil {
			return retry.RetryableError(err)
		}
		// Server closed the stream cleanly; reconnect anyway.
		return retry.RetryableError(errors.New("stream closed"))
	})

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// stream opens one SSE connection and pushes decoded events to fn until the
// connection drops or ctx is cancelled.
func (c *Client) stream(ctx context.Context, endpoint string, fn func(Event)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("watch stream: %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var e Event
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			continue
		}
		fn(e)
	}

	return scanner.Err()
}
