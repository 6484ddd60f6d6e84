package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"zolta-live/internal/domain"
	"zolta-live/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 2*time.Second, logger.NewNop())
}

func TestFetchStateDecodesFullSnapshot(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auction/7/state", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ended",
			"current_price": 150.00,
			"bid_count": 3,
			"highest_bidder_name": "Pieter",
			"highest_bid_amount": 150.00,
			"notify_winner": true,
			"bids": [
				{"name": "Pieter", "amount": 150.00, "created_at": "2025-06-01T12:00:00Z"},
				{"name": "Anna", "amount": 140.00, "created_at": "2025-06-01T11:00:00Z"}
			]
		}`))
	}))

	snapshot, err := client.FetchState(context.Background(), "7")
	require.NoError(t, err)

	require.Equal(t, domain.AuctionEnded, snapshot.Status)
	require.True(t, snapshot.CurrentPrice.Equal(decimal.RequireFromString("150.00")))
	require.Equal(t, 3, snapshot.BidCount)
	require.Equal(t, "Pieter", snapshot.WinnerName)
	require.True(t, snapshot.NotifyWinner)
	require.True(t, snapshot.HasBids)
	require.Len(t, snapshot.Bids, 2)
	require.Equal(t, "Pieter", snapshot.Bids[0].Name, "index 0 is the leader")
}

func TestFetchStateEmptyBidListKeepsHasBids(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"active","current_price":50,"bid_count":0,"notify_winner":false,"bids":[]}`))
	}))

	snapshot, err := client.FetchState(context.Background(), "1")
	require.NoError(t, err)
	require.True(t, snapshot.HasBids)
	require.Empty(t, snapshot.Bids)
}

func TestFetchStateRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no price", `{"status":"active","bid_count":0}`},
		{"no status", `{"current_price":50,"bid_count":0}`},
		{"unknown status", `{"status":"paused","current_price":50,"bid_count":0}`},
		{"negative count", `{"status":"active","current_price":50,"bid_count":-1}`},
		{"not json", `<html>502 Bad Gateway</html>`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tc.body))
			}))

			_, err := client.FetchState(context.Background(), "1")
			require.Error(t, err)
		})
	}
}

func TestFetchStateNonSuccessStatusIsError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.FetchState(context.Background(), "1")
	require.Error(t, err)
}

func TestFetchStatusDecodesCoarseSnapshot(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auction/1/status", r.URL.Path)
		w.Write([]byte(`{
			"current_price": 75.50,
			"highest_bidder": "Anna",
			"bid_count": 2,
			"status": "active",
			"end_date": "2025-06-02T18:00:00Z"
		}`))
	}))

	status, err := client.FetchStatus(context.Background(), "1")
	require.NoError(t, err)

	require.Equal(t, domain.AuctionActive, status.Status)
	require.True(t, status.CurrentPrice.Equal(decimal.RequireFromString("75.50")))
	require.Equal(t, 2, status.BidCount)
	require.Equal(t, "Anna", status.HighestBidder)
	require.Equal(t, time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC), status.EndDate.UTC())
}

func TestPlaceBidDecodesAcceptance(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auction/1/bid", r.URL.Path)
		w.Write([]byte(`{"success":true,"message":"Bid placed successfully!","new_price":150.00,"bid_id":12}`))
	}))

	result, err := client.PlaceBid(context.Background(), "1", &domain.BidRequest{
		Name:   "Anna",
		Email:  "anna@example.com",
		Amount: decimal.RequireFromString("150.00"),
	})
	require.NoError(t, err)

	require.True(t, result.Success)
	require.True(t, result.NewPrice.Equal(decimal.RequireFromString("150.00")))
	require.Equal(t, "12", result.BidID)
	require.False(t, result.VerificationRequired)
}

func TestPlaceBidBusinessRejectionIsNotAnError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"Minimum bid is €55.00"}`))
	}))

	result, err := client.PlaceBid(context.Background(), "1", &domain.BidRequest{
		Name:   "Anna",
		Email:  "anna@example.com",
		Amount: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	require.False(t, result.Success)
	require.Equal(t, "Minimum bid is €55.00", result.Error)
}

func TestPlaceBidGatewayErrorPageIsTransportFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{}`))
	}))

	_, err := client.PlaceBid(context.Background(), "1", &domain.BidRequest{
		Name:   "Anna",
		Email:  "anna@example.com",
		Amount: decimal.NewFromInt(60),
	})
	require.Error(t, err)
}

func TestPlaceBidVerificationRequired(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success":true,"message":"Check je e-mail.","verification_required":true}`))
	}))

	result, err := client.PlaceBid(context.Background(), "1", &domain.BidRequest{
		Name:   "Anna",
		Email:  "anna@example.com",
		Amount: decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	require.True(t, result.Success)
	require.True(t, result.VerificationRequired)
	require.True(t, result.NewPrice.IsZero())
}
