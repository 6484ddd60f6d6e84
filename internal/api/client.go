package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"zolta-live/internal/domain"
	"zolta-live/pkg/logger"
)

// Client talks to the auction API. Fetch errors carry no business meaning;
// callers treat every failure as a transport failure and retry on their own
// schedule.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type stateResponse struct {
	Status            *string          `json:"status"`
	CurrentPrice      *decimal.Decimal `json:"current_price"`
	BidCount          *int             `json:"bid_count"`
	HighestBidderName string           `json:"highest_bidder_name"`
	HighestBidAmount  decimal.Decimal  `json:"highest_bid_amount"`
	NotifyWinner      bool             `json:"notify_winner"`
	Bids              []bidPayload     `json:"bids"`
}

type bidPayload struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

type statusResponse struct {
	Status        *string          `json:"status"`
	CurrentPrice  *decimal.Decimal `json:"current_price"`
	BidCount      *int             `json:"bid_count"`
	HighestBidder string           `json:"highest_bidder"`
	EndDate       time.Time        `json:"end_date"`
}

type bidRequestPayload struct {
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Amount        decimal.Decimal `json:"amount"`
	TermsAccepted bool            `json:"terms_accepted,omitempty"`
}

type bidResponsePayload struct {
	Success              bool             `json:"success"`
	Message              string           `json:"message"`
	Error                string           `json:"error"`
	VerificationRequired bool             `json:"verification_required"`
	NewPrice             *decimal.Decimal `json:"new_price"`
	BidID                json.Number      `json:"bid_id"`
}

func (c *Client) FetchState(ctx context.Context, auctionID string) (*domain.AuctionSnapshot, error) {
	var payload stateResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/api/auction/%s/state", auctionID), &payload); err != nil {
		return nil, err
	}

	if payload.Status == nil || payload.CurrentPrice == nil || payload.BidCount == nil {
		return nil, domain.ErrMalformedSnapshot
	}
	status, ok := domain.ParseAuctionStatus(*payload.Status)
	if !ok {
		return nil, domain.ErrMalformedSnapshot
	}
	if *payload.BidCount < 0 {
		return nil, domain.ErrMalformedSnapshot
	}

	snapshot := &domain.AuctionSnapshot{
		Status:       status,
		CurrentPrice: *payload.CurrentPrice,
		BidCount:     *payload.BidCount,
		WinnerName:   payload.HighestBidderName,
		WinnerAmount: payload.HighestBidAmount,
		NotifyWinner: payload.NotifyWinner,
		HasBids:      payload.Bids != nil,
	}
	for _, b := range payload.Bids {
		snapshot.Bids = append(snapshot.Bids, domain.BidRecord{
			Name:      b.Name,
			Amount:    b.Amount,
			CreatedAt: b.CreatedAt,
		})
	}

	return snapshot, nil
}

func (c *Client) FetchStatus(ctx context.Context, auctionID string) (*domain.StatusSnapshot, error) {
	var payload statusResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/api/auction/%s/status", auctionID), &payload); err != nil {
		return nil, err
	}

	if payload.Status == nil || payload.CurrentPrice == nil || payload.BidCount == nil {
		return nil, domain.ErrMalformedSnapshot
	}
	status, ok := domain.ParseAuctionStatus(*payload.Status)
	if !ok {
		return nil, domain.ErrMalformedSnapshot
	}
	if *payload.BidCount < 0 {
		return nil, domain.ErrMalformedSnapshot
	}

	return &domain.StatusSnapshot{
		Status:        status,
		CurrentPrice:  *payload.CurrentPrice,
		BidCount:      *payload.BidCount,
		HighestBidder: payload.HighestBidder,
		EndDate:       payload.EndDate,
	}, nil
}

// PlaceBid sends a bid intent. A structured rejection (success=false with an
// error message) is returned as a BidResult, not as an error; only transport
// trouble and undecodable bodies produce an error.
func (c *Client) PlaceBid(ctx context.Context, auctionID string, req *domain.BidRequest) (*domain.BidResult, error) {
	body, err := json.Marshal(bidRequestPayload{
		Name:          req.Name,
		Email:         req.Email,
		Amount:        req.Amount,
		TermsAccepted: req.TermsAccepted,
	})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + fmt.Sprintf("/api/auction/%s/bid", auctionID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload bidResponsePayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		c.log.Warn("Undecodable bid response", "auction_id", auctionID, "status", resp.StatusCode, "error", err)
		return nil, fmt.Errorf("decode bid response: %w", err)
	}

	if !payload.Success && payload.Error == "" {
		// Not the contract shape; a gateway error page would land here.
		return nil, domain.ErrMalformedSnapshot
	}

	result := &domain.BidResult{
		Success:              payload.Success,
		Message:              payload.Message,
		Error:                payload.Error,
		VerificationRequired: payload.VerificationRequired,
		BidID:                payload.BidID.String(),
	}
	if payload.NewPrice != nil {
		result.NewPrice = *payload.NewPrice
	}

	return result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedSnapshot, err)
	}

	return nil
}
