package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agilebiz/agileai/internal/notify"
)

// handleEvents streams hook and state lifecycle events as Server-Sent
// Events. Each event is an `event:` line naming the type and a `data:`
// line with the JSON payload. A comment heartbeat keeps intermediaries
// from closing idle connections.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "internal", "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Tell the client we are live before the first event arrives.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	events := s.bus.Subscribe()
	defer s.bus.Unsubscribe(events)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()

		case evt := <-events:
			if err := writeSSE(w, evt); err != nil {
				s.logger.Debug("dropping event stream client", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, evt notify.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
	return err
}
