package services

import (
	"sync"

	"github.com/shopspring/decimal"

	"zolta-live/internal/domain"
	"zolta-live/pkg/logger"
)

// NoticeAuctionEnded replaces the bid form when the auction reaches its
// terminal state.
const NoticeAuctionEnded = "Deze veiling is afgelopen."

// viewState mirrors what is currently on screen. Owned by exactly one
// SyncController per mounted view; discarded with it.
type viewState struct {
	price       decimal.Decimal
	hasPrice    bool
	bidCount    int
	hasCount    bool
	bids        []domain.BidRecord
	hasBids     bool
	endedShown  bool
	winnerShown bool
}

// SyncController reconciles incoming snapshots against the displayed state
// and drives the view with the minimal set of updates. Identical values
// produce no view calls at all, so redundant poll ticks cannot retrigger
// the price pulse. Displayed price and bid count never regress below the
// last applied values while snapshots keep arriving out of order.
type SyncController struct {
	view         domain.AuctionView
	minIncrement decimal.Decimal
	log          logger.Logger

	mu    sync.Mutex
	state viewState
}

func NewSyncController(view domain.AuctionView, minIncrement decimal.Decimal, log logger.Logger) *SyncController {
	if minIncrement.LessThanOrEqual(decimal.Zero) {
		minIncrement = decimal.NewFromInt(1)
	}
	return &SyncController{
		view:         view,
		minIncrement: minIncrement,
		log:          log,
	}
}

func (c *SyncController) ApplySnapshot(snapshot *domain.AuctionSnapshot) {
	if snapshot == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.applyPrice(snapshot.CurrentPrice)
	c.applyCount(snapshot.BidCount)
	if snapshot.HasBids {
		c.applyBids(snapshot.Bids)
	}
	c.applyTerminal(snapshot.Status, snapshot.WinnerName, snapshot.WinnerAmount, snapshot.NotifyWinner)
}

// ApplyStatus maps a coarse snapshot onto the same reconciliation path. It
// never touches the bid list and carries no winner information, so it can
// close the form but never raises the overlay.
func (c *SyncController) ApplyStatus(status *domain.StatusSnapshot) {
	if status == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.applyPrice(status.CurrentPrice)
	c.applyCount(status.BidCount)
	c.applyTerminal(status.Status, "", decimal.Zero, false)
}

// ApplyAcceptedBid is the optimistic update after a committed bid: the
// returned price goes straight to the display ahead of the next snapshot.
func (c *SyncController) ApplyAcceptedBid(newPrice decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.applyPrice(newPrice)
}

func (c *SyncController) applyPrice(price decimal.Decimal) {
	switch {
	case !c.state.hasPrice:
		// First paint: no pulse, nothing changed from the user's view.
		c.view.SetPrice(price)
		c.view.SetMinimumBid(price.Add(c.minIncrement))
		c.state.price = price
		c.state.hasPrice = true
	case price.GreaterThan(c.state.price):
		c.view.SetPrice(price)
		c.view.PulsePrice()
		c.view.SetMinimumBid(price.Add(c.minIncrement))
		c.state.price = price
	default:
		// Equal or stale value from an out-of-order fetch; displayed
		// price is monotonic while the view is mounted.
	}
}

func (c *SyncController) applyCount(count int) {
	if c.state.hasCount && count <= c.state.bidCount {
		return
	}
	c.view.SetBidCount(count)
	c.state.bidCount = count
	c.state.hasCount = true
}

func (c *SyncController) applyBids(bids []domain.BidRecord) {
	if c.state.hasBids && domain.BidRecordsEqual(c.state.bids, bids) {
		return
	}

	if len(bids) == 0 {
		c.view.ShowNoBids()
	} else {
		// Server order, index 0 is the leader; no client-side sorting.
		c.view.RenderBids(bids)
	}
	c.state.bids = bids
	c.state.hasBids = true
}

func (c *SyncController) applyTerminal(status domain.AuctionStatus, winnerName string, winnerAmount decimal.Decimal, notifyWinner bool) {
	if status != domain.AuctionEnded {
		return
	}

	if !c.state.endedShown {
		c.state.endedShown = true
		c.view.DisableBidding(NoticeAuctionEnded)
		c.log.Info("Auction ended, bid form closed")
	}

	if winnerName != "" && notifyWinner && !c.state.winnerShown {
		c.state.winnerShown = true
		c.view.ShowWinnerOverlay(winnerName, winnerAmount)
		c.log.Info("Winner overlay shown", "winner", winnerName)
	}
}
