package chat

import (
	"sync"

	"github.com/zhouzirui/ai-chat/internal/model/chat"
)

const subscriberBuffer = 32

// Hub fans stored messages out to live subscribers of the owning user.
// Slow subscribers lose messages rather than block senders.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]map[*Subscription]struct{}
	closed bool
}

// Subscription receives messages for one user until Close.
type Subscription struct {
	C      <-chan chat.Message
	ch     chan chat.Message
	userID int64
	hub    *Hub
	once   sync.Once
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int64]map[*Subscription]struct{})}
}

// Subscribe registers a listener for userID.
func (h *Hub) Subscribe(userID int64) *Subscription {
	ch := make(chan chat.Message, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, userID: userID, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.once.Do(func() { close(ch) })
		return sub
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

// Publish delivers msg to the subscribers of msg.UserID.
func (h *Hub) Publish(msg chat.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[msg.UserID] {
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, set := range h.subs {
		for sub := range set {
			sub.once.Do(func() { close(sub.ch) })
		}
	}
	h.subs = make(map[int64]map[*Subscription]struct{})
}

// Close unregisters the subscription and closes C.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if set, ok := s.hub.subs[s.userID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(s.hub.subs, s.userID)
		}
	}
	s.once.Do(func() { close(s.ch) })
}
