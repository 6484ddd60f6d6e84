package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"zolta-live/internal/domain"
	"zolta-live/pkg/logger"
)

func sseHandler(t *testing.T, frames []string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		flusher := w.(http.Flusher)
		for _, frame := range frames {
			fmt.Fprint(w, frame)
			flusher.Flush()
		}
	})
}

func collectEvents(t *testing.T, stream domain.Stream, n int) []domain.StreamEvent {
	t.Helper()
	var events []domain.StreamEvent
	timeout := time.After(2 * time.Second)
	for len(events) < n {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(events), n)
		}
	}
	return events
}

func TestDialParsesEventFrames(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		"event: hello\ndata: {}\n\n",
		": keep-alive comment\n",
		"event: ping\ndata: {}\n\n",
		"event: update\ndata: {}\n\n",
	}))
	defer server.Close()

	dialer := NewSSEDialer(server.URL, logger.NewNop())
	stream, err := dialer.Dial(context.Background(), "1")
	require.NoError(t, err)
	defer stream.Close()

	events := collectEvents(t, stream, 3)
	require.Equal(t, domain.StreamHello, events[0].Kind)
	require.Equal(t, domain.StreamPing, events[1].Kind)
	require.Equal(t, domain.StreamUpdate, events[2].Kind)
}

func TestStreamChannelClosesWhenServerHangsUp(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{"event: hello\ndata: {}\n\n"}))
	defer server.Close()

	dialer := NewSSEDialer(server.URL, logger.NewNop())
	stream, err := dialer.Dial(context.Background(), "1")
	require.NoError(t, err)
	defer stream.Close()

	collectEvents(t, stream, 1)

	select {
	case _, ok := <-stream.Events():
		require.False(t, ok, "event channel must close after disconnect")
	case <-time.After(2 * time.Second):
		t.Fatal("event channel did not close after disconnect")
	}
}

func TestDialRejectsNonStreamResponses(t *testing.T) {
	cases := []struct {
		name    string
		handler http.Handler
	}{
		{"not found", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})},
		{"wrong content type", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			dialer := NewSSEDialer(server.URL, logger.NewNop())
			_, err := dialer.Dial(context.Background(), "1")
			require.ErrorIs(t, err, domain.ErrStreamUnavailable)
		})
	}
}

func TestDialUnreachableServer(t *testing.T) {
	dialer := NewSSEDialer("http://127.0.0.1:1", logger.NewNop())
	_, err := dialer.Dial(context.Background(), "1")
	require.ErrorIs(t, err, domain.ErrStreamUnavailable)
}
