package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const keepAliveInterval = 25 * time.Second

type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan task.Event, error)
}

// Server streams task events as Server-Sent Events. It writes to the
// ResponseWriter directly and must not sit behind the JSON response
// middleware.
type Server struct {
	subscriber Subscriber
}

func NewServer(subscriber Subscriber) *Server {
	return &Server{subscriber: subscriber}
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(rw)

	events, err := s.subscriber.Subscribe(ctx)
	if err != nil {
		http.Error(rw, "failed to subscribe", http.StatusInternalServerError)
		slog.ErrorContext(ctx, "failed to subscribe to task events", "error", err)
		return
	}

	// Filter by event type if specified.
	typeFilter := make(map[task.EventType]struct{})
	for _, et := range r.URL.Query()["type"] {
		typeFilter[task.EventType(et)] = struct{}{}
	}

	rw.Header().Set("Content-Type", "text/event-stream")
	rw.Header().Set("Cache-Control", "no-cache")
	rw.Header().Set("Connection", "keep-alive")
	rw.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(rw, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		slog.WarnContext(ctx, "event stream does not support flushing", "error", err)
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(rw, ": keep-alive\n\n"); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if len(typeFilter) > 0 {
				if _, match := typeFilter[ev.Type]; !match {
					continue
				}
			}
			if err := writeEvent(rw, ev); err != nil {
				slog.DebugContext(ctx, "event stream closed", "error", err)
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(rw http.ResponseWriter, ev task.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal event: %w", err))
	}
	_, err = fmt.Fprintf(rw, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, data)
	return err
}
