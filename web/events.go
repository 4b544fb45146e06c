package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JamesCliffordSpratt/macros-sub001/cache"
)

// sseClient is a connected event-stream consumer. It doubles as a renderer
// handle for the refresh coordinator: a redraw serializes fresh totals into
// the client's buffer, and a disconnected client reports unmounted so the
// next refresh pass drops it.
type sseClient struct {
	ids    []string
	events chan []byte
	done   <-chan struct{}
}

func (c *sseClient) Mounted() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func (c *sseClient) BoundIdentifiers() []string { return c.ids }

func (c *sseClient) Redraw(ctx context.Context, result cache.Result) error {
	payload, err := json.Marshal(NewTotalsResponse(result))
	if err != nil {
		return err
	}
	select {
	case c.events <- payload:
	default:
		// Client buffer full, skip
	}
	return nil
}

// handleSSE handles Server-Sent Events connections for real-time updates.
//
// Query parameters:
//   - ids: Semicolon-separated ledger identifiers to stream totals for.
//     Without ids the client receives empty results as refresh pings.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client := &sseClient{
		ids:    queryIdentifiers(r),
		events: make(chan []byte, 10),
		done:   r.Context().Done(),
	}
	s.coordinator.Bind(client)

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	// Push the current state so the client never starts blank.
	if result, err := s.coordinator.Results(r.Context(), client.ids); err == nil {
		_ = client.Redraw(r.Context(), result)
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case payload := <-client.events:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
