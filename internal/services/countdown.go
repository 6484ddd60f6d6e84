package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"zolta-live/internal/domain"
	"zolta-live/pkg/logger"
)

// Remaining breaks the duration until target down into whole display units.
// A target at or before now yields the terminal breakdown.
func Remaining(target, now time.Time) domain.Breakdown {
	diff := target.Sub(now)
	if diff <= 0 {
		return domain.Breakdown{Ended: true}
	}

	return domain.Breakdown{
		Days:    int(diff / (24 * time.Hour)),
		Hours:   int(diff % (24 * time.Hour) / time.Hour),
		Minutes: int(diff % time.Hour / time.Minute),
		Seconds: int(diff % time.Minute / time.Second),
	}
}

// CountdownPresenter renders the time remaining once per second. It is
// deliberately independent of the sync controller: it derives everything
// from the target instant and the clock.
type CountdownPresenter struct {
	view  domain.AuctionView
	clock clockwork.Clock
	log   logger.Logger
}

func NewCountdownPresenter(view domain.AuctionView, clock clockwork.Clock, log logger.Logger) *CountdownPresenter {
	return &CountdownPresenter{
		view:  view,
		clock: clock,
		log:   log,
	}
}

// Run ticks until the countdown reaches its terminal state or ctx is
// cancelled. The terminal breakdown is rendered exactly once.
func (p *CountdownPresenter) Run(ctx context.Context, target time.Time) {
	ticker := p.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		b := Remaining(target, p.clock.Now())
		p.view.SetCountdown(b)
		if b.Ended {
			p.log.Debug("Countdown reached zero")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
	}
}
