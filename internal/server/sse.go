package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var errStreamingUnsupported = errors.New("response writer cannot stream events")

// SSEWriter writes numbered Server-Sent Events. After the first failed write
// every later event is dropped and the same error is returned.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
	err     error
}

// NewSSEWriter commits the event-stream headers
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher, nextID: 1}, nil
}

// WriteEvent sends data as JSON under the given event name
func (s *SSEWriter) WriteEvent(event string, data any) error {
	if s.err != nil {
		return s.err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event, err)
	}

	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		s.err = err
		return err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

// WriteError sends an "error" event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

// WriteComplete sends the closing "complete" event
func (s *SSEWriter) WriteComplete(data any) {
	s.WriteEvent("complete", data) //nolint:errcheck
}
