package simulator

import (
	"sync"

	"github.com/google/uuid"

	"zolta-live/pkg/logger"
)

// Hub tracks the open event-stream subscriptions per auction and fans
// broadcast events out to them. Slow subscribers drop events instead of
// blocking the broadcaster; the stream contract is "something changed, go
// fetch", so a dropped event costs one fetch at most.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan string // auctionID -> subscriberID -> events
	log  logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[string]chan string),
		log:  log,
	}
}

func (h *Hub) Subscribe(auctionID string) (string, <-chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	if h.subs[auctionID] == nil {
		h.subs[auctionID] = make(map[string]chan string)
	}
	ch := make(chan string, 4)
	h.subs[auctionID][id] = ch

	h.log.Debug("Stream subscriber registered", "auction_id", auctionID, "subscriber_id", id)
	return id, ch
}

func (h *Hub) Unsubscribe(auctionID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if auctionSubs, exists := h.subs[auctionID]; exists {
		if ch, ok := auctionSubs[subscriberID]; ok {
			close(ch)
			delete(auctionSubs, subscriberID)
		}
		if len(auctionSubs) == 0 {
			delete(h.subs, auctionID)
		}
	}

	h.log.Debug("Stream subscriber unregistered", "auction_id", auctionID, "subscriber_id", subscriberID)
}

func (h *Hub) Broadcast(auctionID, event string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs[auctionID] {
		select {
		case ch <- event:
		default:
			h.log.Warn("Dropping event for slow subscriber",
				"auction_id", auctionID, "subscriber_id", id, "event", event)
		}
	}
}

func (h *Hub) SubscriberCount(auctionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[auctionID])
}
