package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"zolta-live/internal/domain"
	"zolta-live/pkg/logger"
)

type fakeSender struct {
	calls  int
	result *domain.BidResult
	err    error
}

func (f *fakeSender) PlaceBid(_ context.Context, _ string, _ *domain.BidRequest) (*domain.BidResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeConsent struct {
	accepted bool
	recorded int
}

func (f *fakeConsent) Accepted(_ time.Time) bool { return f.accepted }
func (f *fakeConsent) Record(_ time.Time) error {
	f.recorded++
	return nil
}

type fakeRefresher struct {
	calls int
}

func (f *fakeRefresher) RequestRefresh() { f.calls++ }

func newSubmitterFixture(sender *fakeSender, consent *fakeConsent) (*BidSubmitter, *recordingView, *SyncController, *fakeRefresher) {
	view := &recordingView{}
	controller := NewSyncController(view, decimal.NewFromInt(1), logger.NewNop())
	refresher := &fakeRefresher{}
	submitter := NewBidSubmitter(sender, consent, controller, refresher, view,
		clockwork.NewFakeClock(), logger.NewNop())
	return submitter, view, controller, refresher
}

func bidRequest(amount string, terms bool) *domain.BidRequest {
	return &domain.BidRequest{
		Name:          "Anna",
		Email:         "anna@example.com",
		Amount:        decimal.RequireFromString(amount),
		TermsAccepted: terms,
	}
}

func TestSubmitConsentGateBlocksBeforeNetwork(t *testing.T) {
	sender := &fakeSender{}
	submitter, view, _, refresher := newSubmitterFixture(sender, &fakeConsent{accepted: false})

	err := submitter.Submit(context.Background(), "1", bidRequest("60", false))

	require.ErrorIs(t, err, domain.ErrConsentRequired)
	require.Zero(t, sender.calls, "server must never be contacted")
	require.Contains(t, view.Calls(), "msg:error:"+MsgTermsRequired)
	require.Zero(t, refresher.calls)
}

func TestSubmitRememberedConsentPassesGate(t *testing.T) {
	sender := &fakeSender{result: &domain.BidResult{
		Success:  true,
		Message:  "Bid placed successfully!",
		NewPrice: decimal.RequireFromString("60.00"),
	}}
	submitter, _, _, _ := newSubmitterFixture(sender, &fakeConsent{accepted: true})

	err := submitter.Submit(context.Background(), "1", bidRequest("60", false))

	require.NoError(t, err)
	require.Equal(t, 1, sender.calls)
}

func TestSubmitRecordsFreshConsent(t *testing.T) {
	sender := &fakeSender{result: &domain.BidResult{
		Success:  true,
		Message:  "Bid placed successfully!",
		NewPrice: decimal.RequireFromString("60.00"),
	}}
	consent := &fakeConsent{}
	submitter, _, _, _ := newSubmitterFixture(sender, consent)

	require.NoError(t, submitter.Submit(context.Background(), "1", bidRequest("60", true)))
	require.Equal(t, 1, consent.recorded)
}

func TestSubmitAcceptedBidUpdatesPriceAndRefreshes(t *testing.T) {
	sender := &fakeSender{result: &domain.BidResult{
		Success:  true,
		Message:  "Bid placed successfully!",
		NewPrice: decimal.RequireFromString("150.00"),
	}}
	submitter, view, _, refresher := newSubmitterFixture(sender, &fakeConsent{accepted: true})

	require.NoError(t, submitter.Submit(context.Background(), "1", bidRequest("150", false)))

	calls := view.Calls()
	require.Contains(t, calls, "msg:success:Bid placed successfully!")
	require.Contains(t, calls, "price:150.00")
	require.Contains(t, calls, "min:151.00")
	require.Equal(t, 1, refresher.calls)
}

func TestSubmitVerificationRequiredLeavesStateUnchanged(t *testing.T) {
	sender := &fakeSender{result: &domain.BidResult{
		Success:              true,
		Message:              "Check je e-mail om je bod te bevestigen.",
		VerificationRequired: true,
	}}
	submitter, view, _, refresher := newSubmitterFixture(sender, &fakeConsent{accepted: true})

	require.NoError(t, submitter.Submit(context.Background(), "1", bidRequest("60", false)))

	require.Zero(t, view.Count("price:"), "provisional bid must not touch the price")
	require.Zero(t, view.Count("count:"))
	require.Zero(t, refresher.calls)
	require.Contains(t, view.Calls(), "msg:success:Check je e-mail om je bod te bevestigen.")
}

func TestSubmitBusinessRejectionShownVerbatim(t *testing.T) {
	sender := &fakeSender{result: &domain.BidResult{
		Success: false,
		Error:   "Bid too low",
	}}
	submitter, view, _, refresher := newSubmitterFixture(sender, &fakeConsent{accepted: true})

	require.NoError(t, submitter.Submit(context.Background(), "1", bidRequest("10", false)))

	require.Contains(t, view.Calls(), "msg:error:Bid too low")
	require.Zero(t, view.Count("price:"))
	require.Zero(t, refresher.calls)
}

func TestSubmitTransportFailureShowsRetryMessage(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	submitter, view, _, refresher := newSubmitterFixture(sender, &fakeConsent{accepted: true})

	err := submitter.Submit(context.Background(), "1", bidRequest("60", false))

	require.Error(t, err)
	require.Contains(t, view.Calls(), "msg:error:"+MsgSubmitFailed)
	require.Zero(t, view.Count("price:"))
	require.Zero(t, refresher.calls)
}

func TestSubmitAffordanceRestoredInEveryOutcome(t *testing.T) {
	cases := []struct {
		name   string
		sender *fakeSender
	}{
		{"accepted", &fakeSender{result: &domain.BidResult{
			Success: true, Message: "ok", NewPrice: decimal.NewFromInt(60),
		}}},
		{"rejected", &fakeSender{result: &domain.BidResult{Success: false, Error: "Bid too low"}}},
		{"transport failure", &fakeSender{err: errors.New("boom")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			submitter, view, _, _ := newSubmitterFixture(tc.sender, &fakeConsent{accepted: true})

			_ = submitter.Submit(context.Background(), "1", bidRequest("60", false))

			calls := view.Calls()
			require.Contains(t, calls, "submit:false")
			require.Equal(t, "submit:true", calls[len(calls)-1],
				"submit control must end up re-enabled")
		})
	}
}
