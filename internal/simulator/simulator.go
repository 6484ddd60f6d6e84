package simulator

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"zolta-live/pkg/logger"
)

// Auction is the simulator's server-side auction record.
type Auction struct {
	ID                       string
	Title                    string
	MinPrice                 decimal.Decimal
	MaxPrice                 decimal.Decimal // zero = unbounded
	MinIncrement             decimal.Decimal
	MaxIncrement             decimal.Decimal // zero = unbounded
	StartDate                time.Time
	EndDate                  time.Time
	RequireEmailConfirmation bool
	WhitelistedDomains       []string
}

type storedBid struct {
	ID        int64
	Name      string
	Email     string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// Simulator is an in-memory stand-in for the auction backend, speaking the
// same JSON contract over the same four endpoints. It exists for local
// development of the watcher and for integration tests; it enforces the
// real server's bid rules so client behavior against rejections can be
// exercised without a deployment.
type Simulator struct {
	mu        sync.RWMutex
	auctions  map[string]*Auction
	bids      map[string][]storedBid // sorted by amount, highest first
	endedSeen map[string]bool
	nextBidID int64

	hub          *Hub
	clock        clockwork.Clock
	cron         *cron.Cron
	pingInterval time.Duration
	log          logger.Logger
}

func New(clock clockwork.Clock, log logger.Logger) *Simulator {
	return &Simulator{
		auctions:     make(map[string]*Auction),
		bids:         make(map[string][]storedBid),
		endedSeen:    make(map[string]bool),
		nextBidID:    1,
		hub:          NewHub(log),
		clock:        clock,
		cron:         cron.New(cron.WithSeconds()),
		pingInterval: 15 * time.Second,
		log:          log,
	}
}

func (s *Simulator) AddAuction(a *Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions[a.ID] = a
}

// Start begins the end-of-auction sweep. Mirrors the backend behavior of
// announcing the terminal state through the push channel.
func (s *Simulator) Start() error {
	_, err := s.cron.AddFunc("@every 1s", s.sweepEnded)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Simulator) Stop() {
	s.cron.Stop()
}

func (s *Simulator) sweepEnded() {
	now := s.clock.Now()

	s.mu.Lock()
	var ended []string
	for id, a := range s.auctions {
		if now.After(a.EndDate) && !s.endedSeen[id] {
			s.endedSeen[id] = true
			ended = append(ended, id)
		}
	}
	s.mu.Unlock()

	for _, id := range ended {
		s.log.Info("Auction ended", "auction_id", id)
		s.hub.Broadcast(id, "update")
	}
}

// Handler wires the four public API endpoints into an echo instance.
func (s *Simulator) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())

	api := e.Group("/api/auction/:id")
	api.GET("/state", s.handleState)
	api.GET("/status", s.handleStatus)
	api.POST("/bid", s.handleBid)
	api.GET("/stream", s.handleStream)

	return e
}

func (s *Simulator) status(a *Auction, now time.Time) string {
	if now.Before(a.StartDate) {
		return "upcoming"
	}
	if now.After(a.EndDate) {
		return "ended"
	}
	return "active"
}

func (s *Simulator) currentPrice(a *Auction) decimal.Decimal {
	if bids := s.bids[a.ID]; len(bids) > 0 {
		return bids[0].Amount
	}
	return a.MinPrice
}

type bidJSON struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

func (s *Simulator) handleState(c echo.Context) error {
	auctionID := c.Param("id")

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
	}

	now := s.clock.Now()
	status := s.status(a, now)
	bids := s.bids[auctionID]

	recent := make([]bidJSON, 0, 10)
	for i, b := range bids {
		if i == 10 {
			break
		}
		recent = append(recent, bidJSON{Name: b.Name, Amount: b.Amount, CreatedAt: b.CreatedAt})
	}

	resp := map[string]interface{}{
		"status":        status,
		"current_price": s.currentPrice(a),
		"bid_count":     len(bids),
		"notify_winner": false,
		"bids":          recent,
	}
	if status == "ended" && len(bids) > 0 {
		resp["highest_bidder_name"] = bids[0].Name
		resp["highest_bid_amount"] = bids[0].Amount
		resp["notify_winner"] = true
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Simulator) handleStatus(c echo.Context) error {
	auctionID := c.Param("id")

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
	}

	var highest string
	if bids := s.bids[auctionID]; len(bids) > 0 {
		highest = bids[0].Name
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"current_price":  s.currentPrice(a),
		"highest_bidder": highest,
		"bid_count":      len(s.bids[auctionID]),
		"status":         s.status(a, s.clock.Now()),
		"end_date":       a.EndDate,
	})
}

type bidRequest struct {
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Amount        decimal.Decimal `json:"amount"`
	TermsAccepted bool            `json:"terms_accepted"`
}

func (s *Simulator) handleBid(c echo.Context) error {
	auctionID := c.Param("id")

	var req bidRequest
	if err := c.Bind(&req); err != nil {
		return bidError(c, "Invalid bid amount.")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
	}

	now := s.clock.Now()
	if s.status(a, now) != "active" {
		return bidError(c, "This auction is not currently accepting bids.")
	}

	if req.Name == "" || req.Email == "" || req.Amount.IsZero() {
		return bidError(c, "Name, email, and bid amount are required.")
	}

	if len(a.WhitelistedDomains) > 0 && !domainAllowed(req.Email, a.WhitelistedDomains) {
		return bidError(c, fmt.Sprintf("Email must be from one of these domains: %s",
			strings.Join(a.WhitelistedDomains, ", ")))
	}

	current := s.currentPrice(a)
	minBid := current.Add(a.MinIncrement)
	if req.Amount.LessThan(minBid) {
		return bidError(c, fmt.Sprintf("Minimum bid is €%s", minBid.StringFixed(2)))
	}
	if a.MaxIncrement.IsPositive() {
		maxBid := current.Add(a.MaxIncrement)
		if req.Amount.GreaterThan(maxBid) {
			return bidError(c, fmt.Sprintf("Maximum bid is €%s", maxBid.StringFixed(2)))
		}
	}
	if a.MaxPrice.IsPositive() && req.Amount.GreaterThan(a.MaxPrice) {
		return bidError(c, fmt.Sprintf("Bid cannot exceed €%s", a.MaxPrice.StringFixed(2)))
	}

	if a.RequireEmailConfirmation {
		// Provisional: nothing is committed until the emailed link is
		// followed, which the simulator does not model.
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":               true,
			"message":               "Check je e-mail om je bod te bevestigen.",
			"verification_required": true,
		})
	}

	bid := storedBid{
		ID:        s.nextBidID,
		Name:      req.Name,
		Email:     req.Email,
		Amount:    req.Amount,
		CreatedAt: now,
	}
	s.nextBidID++
	s.bids[auctionID] = insertByAmount(s.bids[auctionID], bid)

	s.log.Info("Bid placed", "auction_id", auctionID, "bid_id", bid.ID, "amount", bid.Amount)
	go s.hub.Broadcast(auctionID, "update")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Bid placed successfully!",
		"new_price": bid.Amount,
		"bid_id":    bid.ID,
	})
}

func bidError(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}

func domainAllowed(email string, domains []string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	emailDomain := email[at+1:]
	for _, d := range domains {
		if strings.EqualFold(strings.TrimSpace(d), emailDomain) {
			return true
		}
	}
	return false
}

func insertByAmount(bids []storedBid, bid storedBid) []storedBid {
	pos := len(bids)
	for i, b := range bids {
		if bid.Amount.GreaterThan(b.Amount) {
			pos = i
			break
		}
	}
	bids = append(bids, storedBid{})
	copy(bids[pos+1:], bids[pos:])
	bids[pos] = bid
	return bids
}

func (s *Simulator) handleStream(c echo.Context) error {
	auctionID := c.Param("id")

	s.mu.RLock()
	_, ok := s.auctions[auctionID]
	s.mu.RUnlock()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Auction not found"})
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	subID, events := s.hub.Subscribe(auctionID)
	defer s.hub.Unsubscribe(auctionID, subID)

	writeEvent(w, "hello")
	w.Flush()

	ping := time.NewTicker(s.pingInterval)
	defer ping.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ping.C:
			writeEvent(w, "ping")
			w.Flush()
		case ev, alive := <-events:
			if !alive {
				return nil
			}
			writeEvent(w, ev)
			w.Flush()
		}
	}
}

func writeEvent(w *echo.Response, event string) {
	fmt.Fprintf(w, "event: %s\ndata: {}\n\n", event)
}
