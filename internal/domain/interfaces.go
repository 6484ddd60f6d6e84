package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot interfaces
type SnapshotSource interface {
	FetchState(ctx context.Context, auctionID string) (*AuctionSnapshot, error)
	FetchStatus(ctx context.Context, auctionID string) (*StatusSnapshot, error)
}

// SnapshotSink receives snapshots in receipt order. The transport channel
// is the only caller; it serializes delivery.
type SnapshotSink interface {
	ApplySnapshot(snapshot *AuctionSnapshot)
	ApplyStatus(status *StatusSnapshot)
}

type SnapshotRefresher interface {
	RequestRefresh()
}

// Bid interfaces
type BidSender interface {
	PlaceBid(ctx context.Context, auctionID string, req *BidRequest) (*BidResult, error)
}

// Stream interfaces
type StreamDialer interface {
	Dial(ctx context.Context, auctionID string) (Stream, error)
}

type Stream interface {
	// Events is closed when the stream dies, whatever the cause.
	Events() <-chan StreamEvent
	Close() error
}

// ConsentStore remembers an accepted-terms decision across page loads.
type ConsentStore interface {
	Accepted(now time.Time) bool
	Record(now time.Time) error
}

// AuctionView is the rendering surface for one mounted auction view. The
// sync controller drives it with the minimal set of updates per snapshot;
// implementations own presentation concerns (pulse animation, overlay
// auto-dismiss, message expiry).
type AuctionView interface {
	SetPrice(price decimal.Decimal)
	PulsePrice()
	SetMinimumBid(min decimal.Decimal)
	SetBidCount(count int)
	RenderBids(bids []BidRecord)
	ShowNoBids()
	SetCountdown(remaining Breakdown)
	DisableBidding(notice string)
	ShowWinnerOverlay(name string, amount decimal.Decimal)
	ShowMessage(level MessageLevel, text string)
	SetSubmitEnabled(enabled bool)
}
