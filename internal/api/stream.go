package api

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"zolta-live/internal/domain"
	"zolta-live/pkg/logger"
)

// SSEDialer opens the server-push event stream for one auction. The wire
// format is text/event-stream; frames are "event:"/"data:" lines terminated
// by a blank line, comment lines start with a colon.
type SSEDialer struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

func NewSSEDialer(baseURL string, log logger.Logger) *SSEDialer {
	return &SSEDialer{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No client timeout here: the stream is long-lived by design.
		httpClient: &http.Client{},
		log:        log,
	}
}

func (d *SSEDialer) Dial(ctx context.Context, auctionID string) (domain.Stream, error) {
	url := d.baseURL + fmt.Sprintf("/api/auction/%s/stream", auctionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStreamUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", domain.ErrStreamUnavailable, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: content type %q", domain.ErrStreamUnavailable, ct)
	}

	s := &sseStream{
		body:   resp.Body,
		events: make(chan domain.StreamEvent, 8),
		log:    d.log,
	}
	go s.readLoop()

	return s, nil
}

type sseStream struct {
	body   io.ReadCloser
	events chan domain.StreamEvent
	log    logger.Logger
}

func (s *sseStream) Events() <-chan domain.StreamEvent {
	return s.events
}

func (s *sseStream) Close() error {
	return s.body.Close()
}

// readLoop parses frames until the connection dies, then closes the event
// channel so the consumer can fall back to polling.
func (s *sseStream) readLoop() {
	defer close(s.events)

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 4096), 1<<16)

	var kind, data string
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if kind != "" {
				s.events <- domain.StreamEvent{Kind: domain.StreamEventKind(kind), Data: data}
			}
			kind, data = "", ""
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive line
		case strings.HasPrefix(line, "event:"):
			kind = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}

	if err := scanner.Err(); err != nil {
		s.log.Debug("Event stream closed", "error", err)
	}
}
