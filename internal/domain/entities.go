package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuctionStatus int

const (
	AuctionUpcoming AuctionStatus = iota
	AuctionActive
	AuctionEnded
	AuctionInactive
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionUpcoming:
		return "upcoming"
	case AuctionActive:
		return "active"
	case AuctionEnded:
		return "ended"
	case AuctionInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

func ParseAuctionStatus(s string) (AuctionStatus, bool) {
	switch s {
	case "upcoming":
		return AuctionUpcoming, true
	case "active":
		return AuctionActive, true
	case "ended":
		return AuctionEnded, true
	case "inactive":
		return AuctionInactive, true
	default:
		return AuctionInactive, false
	}
}

// BidRecord is one entry of the recent-bids window. Immutable once it
// appears in a snapshot.
type BidRecord struct {
	Name      string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// AuctionSnapshot is the server's complete point-in-time view of one
// auction's public state. Bids are server-ordered, highest first; index 0
// is the current leader. HasBids distinguishes a snapshot that carries an
// (possibly empty) bid list from a coarse one that carries none.
type AuctionSnapshot struct {
	Status       AuctionStatus
	CurrentPrice decimal.Decimal
	BidCount     int
	WinnerName   string
	WinnerAmount decimal.Decimal
	NotifyWinner bool
	Bids         []BidRecord
	HasBids      bool
}

// StatusSnapshot is the coarse view served by the cheaper status endpoint.
// It carries no bid list and no winner information.
type StatusSnapshot struct {
	Status        AuctionStatus
	CurrentPrice  decimal.Decimal
	BidCount      int
	HighestBidder string
	EndDate       time.Time
}

func (s *AuctionSnapshot) Equal(other *AuctionSnapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Status != other.Status ||
		!s.CurrentPrice.Equal(other.CurrentPrice) ||
		s.BidCount != other.BidCount ||
		s.WinnerName != other.WinnerName ||
		!s.WinnerAmount.Equal(other.WinnerAmount) ||
		s.NotifyWinner != other.NotifyWinner ||
		s.HasBids != other.HasBids {
		return false
	}
	return BidRecordsEqual(s.Bids, other.Bids)
}

func BidRecordsEqual(a, b []BidRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name ||
			!a[i].Amount.Equal(b[i].Amount) ||
			!a[i].CreatedAt.Equal(b[i].CreatedAt) {
			return false
		}
	}
	return true
}

// BidRequest is the user's bid intent as captured from the form.
type BidRequest struct {
	Name          string
	Email         string
	Amount        decimal.Decimal
	TermsAccepted bool
}

// BidResult is the server's structured verdict on a bid intent. Success
// with VerificationRequired means the bid is provisional and no price was
// committed; Success with a NewPrice means the bid is on the books.
type BidResult struct {
	Success              bool
	Message              string
	Error                string
	VerificationRequired bool
	NewPrice             decimal.Decimal
	BidID                string
}

type StreamEventKind string

const (
	StreamHello  StreamEventKind = "hello"
	StreamPing   StreamEventKind = "ping"
	StreamUpdate StreamEventKind = "update"
)

// StreamEvent is one frame off the server-push channel. Only update events
// carry meaning for the client; hello and ping are liveness chatter.
type StreamEvent struct {
	Kind StreamEventKind
	Data string
}

type MessageLevel string

const (
	MessageSuccess MessageLevel = "success"
	MessageError   MessageLevel = "error"
	MessageInfo    MessageLevel = "info"
)

// Breakdown is a rendered time-remaining value. All units are floor-divided
// from the remaining duration and never negative.
type Breakdown struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
	Ended   bool
}
