package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"

	"zolta-live/internal/domain"
	"zolta-live/pkg/logger"
)

// Channel delivers snapshots to the sink with the lowest latency the
// environment allows: an immediate baseline fetch, then a push stream whose
// update events trigger fresh fetches, with fixed-interval polling as the
// fallback and an independent slow status poll as a safety net against
// proxies that silently kill long-lived connections.
//
// Every fetch failure is swallowed here; the next stream event or poll tick
// is the retry. Results are funneled through one loop goroutine so the sink
// sees snapshots in receipt order.
type Channel struct {
	auctionID string
	source    domain.SnapshotSource
	dialer    domain.StreamDialer
	sink      domain.SnapshotSink
	clock     clockwork.Clock
	log       logger.Logger

	pollInterval   time.Duration
	safetyInterval time.Duration

	results chan result
	refresh chan struct{}

	pollingMu sync.Mutex
	polling   bool
}

type result struct {
	snapshot *domain.AuctionSnapshot
	status   *domain.StatusSnapshot
}

type Options struct {
	PollInterval   time.Duration
	SafetyInterval time.Duration
	Clock          clockwork.Clock
}

func NewChannel(
	auctionID string,
	source domain.SnapshotSource,
	dialer domain.StreamDialer,
	sink domain.SnapshotSink,
	opts Options,
	log logger.Logger,
) *Channel {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	if opts.SafetyInterval <= 0 {
		opts.SafetyInterval = 30 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	return &Channel{
		auctionID:      auctionID,
		source:         source,
		dialer:         dialer,
		sink:           sink,
		clock:          opts.Clock,
		log:            log,
		pollInterval:   opts.PollInterval,
		safetyInterval: opts.SafetyInterval,
		results:        make(chan result, 16),
		refresh:        make(chan struct{}, 1),
	}
}

// RequestRefresh asks for one out-of-band snapshot fetch, e.g. right after
// an accepted bid. Coalesces when a refresh is already pending.
func (c *Channel) RequestRefresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled. All timers and the stream connection
// are torn down on return; nothing outlives the mounted view.
func (c *Channel) Run(ctx context.Context) error {
	// Baseline fetch so first paint never waits on the stream handshake.
	go c.fetchState(ctx)

	// Safety net: a coarse status poll keeps running even while the
	// stream looks healthy.
	safety := cron.New()
	if _, err := safety.AddFunc(fmt.Sprintf("@every %s", c.safetyInterval), func() {
		c.fetchStatus(ctx)
	}); err != nil {
		return err
	}
	safety.Start()
	defer safety.Stop()

	go c.consumeStream(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-c.results:
			if r.snapshot != nil {
				c.sink.ApplySnapshot(r.snapshot)
			}
			if r.status != nil {
				c.sink.ApplyStatus(r.status)
			}
		case <-c.refresh:
			go c.fetchState(ctx)
		}
	}
}

func (c *Channel) fetchState(ctx context.Context) {
	snapshot, err := c.source.FetchState(ctx, c.auctionID)
	if err != nil {
		c.log.Debug("State fetch failed", "auction_id", c.auctionID, "error", err)
		return
	}
	c.deliver(ctx, result{snapshot: snapshot})
}

func (c *Channel) fetchStatus(ctx context.Context) {
	status, err := c.source.FetchStatus(ctx, c.auctionID)
	if err != nil {
		c.log.Debug("Status fetch failed", "auction_id", c.auctionID, "error", err)
		return
	}
	c.deliver(ctx, result{status: status})
}

func (c *Channel) deliver(ctx context.Context, r result) {
	select {
	case c.results <- r:
	case <-ctx.Done():
	}
}

// consumeStream reads push events until the stream dies, then activates the
// polling fallback. Only update events matter; hello and ping are liveness
// chatter.
func (c *Channel) consumeStream(ctx context.Context) {
	stream, err := c.dialer.Dial(ctx, c.auctionID)
	if err != nil {
		c.log.Warn("Event stream unavailable, falling back to polling",
			"auction_id", c.auctionID, "error", err)
		c.startPolling(ctx)
		return
	}
	defer stream.Close()

	c.log.Info("Event stream connected", "auction_id", c.auctionID)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-stream.Events():
			if !ok {
				c.log.Warn("Event stream closed, falling back to polling",
					"auction_id", c.auctionID)
				c.startPolling(ctx)
				return
			}
			switch ev.Kind {
			case domain.StreamUpdate:
				// The event is payload-less; it only announces that a
				// fresh snapshot is worth fetching.
				go c.fetchState(ctx)
			case domain.StreamHello, domain.StreamPing:
				c.log.Debug("Stream liveness event", "kind", ev.Kind)
			default:
				c.log.Debug("Ignoring unknown stream event", "kind", ev.Kind)
			}
		}
	}
}

// startPolling is idempotent: repeated stream failures never stack a second
// polling loop on top of the first.
func (c *Channel) startPolling(ctx context.Context) {
	c.pollingMu.Lock()
	if c.polling {
		c.pollingMu.Unlock()
		return
	}
	c.polling = true
	c.pollingMu.Unlock()

	go func() {
		ticker := c.clock.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				c.fetchState(ctx)
			}
		}
	}()
}
