package broadcast

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Stream serves events as text/event-stream. A ?page= query parameter limits
// the stream to events of that page.
type Stream struct {
	hub       *Hub
	keepAlive time.Duration
}

// NewStream creates a Stream over hub that writes a comment line every
// keepAlive to hold idle connections open.
func NewStream(hub *Hub, keepAlive time.Duration) *Stream {
	return &Stream{hub: hub, keepAlive: keepAlive}
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Session and logging middleware wrap w; the controller unwraps them.
	rc := http.NewResponseController(w)
	page := r.URL.Query().Get("page")

	events, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "retry: 3000\n\n")
	if err := rc.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			_ = rc.Flush()
		case e, ok := <-events:
			if !ok {
				return
			}
			if page != "" && e.Page != "" && e.Page != page {
				continue
			}
			payload, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, payload)
			_ = rc.Flush()
		}
	}
}
