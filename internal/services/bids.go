package services

import (
	"context"

	"github.com/jonboulle/clockwork"

	"zolta-live/internal/domain"
	"zolta-live/pkg/logger"
)

// User-facing messages, matching the site's locale.
const (
	MsgTermsRequired = "Je moet de algemene voorwaarden accepteren."
	MsgSubmitFailed  = "Er ging iets mis. Probeer het opnieuw."
)

// BidSubmitter sends bid intents and feeds confirmed results back into the
// view without waiting for the next snapshot. All validation beyond the
// consent gate is server-side; rejections come back as messages, never as
// surprises to the rest of the view.
type BidSubmitter struct {
	sender    domain.BidSender
	consent   domain.ConsentStore
	sync      *SyncController
	refresher domain.SnapshotRefresher
	view      domain.AuctionView
	clock     clockwork.Clock
	log       logger.Logger
}

func NewBidSubmitter(
	sender domain.BidSender,
	consent domain.ConsentStore,
	sync *SyncController,
	refresher domain.SnapshotRefresher,
	view domain.AuctionView,
	clock clockwork.Clock,
	log logger.Logger,
) *BidSubmitter {
	return &BidSubmitter{
		sender:    sender,
		consent:   consent,
		sync:      sync,
		refresher: refresher,
		view:      view,
		clock:     clock,
		log:       log,
	}
}

func (s *BidSubmitter) Submit(ctx context.Context, auctionID string, req *domain.BidRequest) error {
	// Consent gate: without accepted terms the server is never contacted.
	// A recorded acceptance within its validity window lets a returning
	// user through even when the checkbox state was lost.
	if !req.TermsAccepted && !s.consent.Accepted(s.clock.Now()) {
		s.view.ShowMessage(domain.MessageError, MsgTermsRequired)
		return domain.ErrConsentRequired
	}
	if req.TermsAccepted {
		if err := s.consent.Record(s.clock.Now()); err != nil {
			// Bid still goes through; the user just re-checks next time.
			s.log.Warn("Failed to record terms acceptance", "error", err)
		}
	}

	s.view.SetSubmitEnabled(false)
	defer s.view.SetSubmitEnabled(true)

	s.log.Info("Placing bid", "auction_id", auctionID, "amount", req.Amount)

	result, err := s.sender.PlaceBid(ctx, auctionID, req)
	if err != nil {
		s.log.Warn("Bid submission failed", "auction_id", auctionID, "error", err)
		s.view.ShowMessage(domain.MessageError, MsgSubmitFailed)
		return err
	}

	if !result.Success {
		// Server verdict, surfaced verbatim. Displayed state untouched.
		s.view.ShowMessage(domain.MessageError, result.Error)
		return nil
	}

	s.view.ShowMessage(domain.MessageSuccess, result.Message)

	if result.VerificationRequired {
		// Provisional bid awaiting out-of-band confirmation; nothing is
		// committed server-side yet.
		s.log.Info("Bid pending verification", "auction_id", auctionID)
		return nil
	}

	s.sync.ApplyAcceptedBid(result.NewPrice)
	s.refresher.RequestRefresh()
	s.log.Info("Bid accepted", "auction_id", auctionID, "new_price", result.NewPrice)

	return nil
}
