package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/askelund/proofdeck/internal/common"
	"github.com/askelund/proofdeck/internal/logging"
	"github.com/askelund/proofdeck/internal/server/feed"
)

type EventsHandler struct {
	hub    *feed.Hub
	logger logging.Logger
}

func NewEventsHandler(hub *feed.Hub, logger logging.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger.With("module", "web_events")}
}

func validCollection(c string) bool {
	return c == common.CollectionProjects || c == common.CollectionReviews || c == common.CollectionComments
}

// Stream handles GET /api/events?collection=&field=&value= as an SSE stream.
// The subscription lives exactly as long as the request: closing the
// connection cancels the request context, which tears the subscription down.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := feed.Filter{
		Collection: q.Get("collection"),
		Field:      q.Get("field"),
		Value:      q.Get("value"),
	}
	if !validCollection(filter.Collection) {
		writeErrorMessage(w, http.StatusBadRequest, "unknown collection")
		return
	}
	if filter.Field != "" && filter.Value == "" {
		writeErrorMessage(w, http.StatusBadRequest, "filter field without value")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorMessage(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Register before opening the stream so an event published right after
	// the client sees the headers cannot be missed.
	sub := h.hub.Subscribe(r.Context(), filter)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for e := range sub.C {
		data, err := json.Marshal(e)
		if err != nil {
			h.logger.Error(r.Context(), "error marshalling event", "error", err.Error())
			continue
		}
		fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
		flusher.Flush()
	}
}
