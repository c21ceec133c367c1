package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mateovidal/routewave-backend/pkg/enums"
	"github.com/mateovidal/routewave-backend/pkg/logger"
	"github.com/mateovidal/routewave-backend/pkg/metrics"
)

// Bus is the publish surface injected into domain services. Delivery is
// best-effort and unordered: there is no acknowledgment and no replay for
// sessions that were absent when an event fired.
type Bus interface {
	Publish(ctx context.Context, channels []string, evt Event)
}

// Session is a live connection the hub can deliver events to. Deliver must
// not block; it reports false when the event was discarded.
type Session interface {
	Deliver(evt Event) bool
}

// Hub tracks channel membership for live sessions and fans events out to
// them. Membership is purely in-memory and rebuilt empty on restart.
type Hub struct {
	logg    *logger.Logger
	metrics *metrics.RealtimeMetrics

	mu       sync.RWMutex
	members  map[string]map[Session]struct{}
	channels map[Session]map[string]struct{}
}

// NewHub builds an empty hub.
func NewHub(logg *logger.Logger, m *metrics.RealtimeMetrics) *Hub {
	return &Hub{
		logg:     logg,
		metrics:  m,
		members:  make(map[string]map[Session]struct{}),
		channels: make(map[Session]map[string]struct{}),
	}
}

// Register adds the session and auto-subscribes it to the identity channel
// derived from its role and user id. The identity subscription is not
// client-controllable.
func (h *Hub) Register(s Session, role enums.ActorRole, userID uuid.UUID) {
	h.mu.Lock()
	if _, ok := h.channels[s]; !ok {
		h.channels[s] = make(map[string]struct{})
	}
	if channel, ok := IdentityChannel(role, userID); ok {
		h.subscribeLocked(s, channel)
	}
	h.mu.Unlock()

	h.metrics.ConnectionOpened()
}

// Unregister removes the session from every channel it belongs to.
func (h *Hub) Unregister(s Session) {
	h.mu.Lock()
	subscribed, ok := h.channels[s]
	if ok {
		for channel := range subscribed {
			h.unsubscribeLocked(s, channel)
		}
		delete(h.channels, s)
	}
	h.mu.Unlock()

	if ok {
		h.metrics.ConnectionClosed()
	}
}

// Join subscribes the session to the order's room. Idempotent.
func (h *Hub) Join(s Session, orderID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.channels[s]; !ok {
		// Never registered; joining would leak the session.
		return
	}
	h.subscribeLocked(s, OrderChannel(orderID))
}

// Leave unsubscribes the session from the order's room. Leaving a room never
// joined is a no-op.
func (h *Hub) Leave(s Session, orderID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(s, OrderChannel(orderID))
}

// Publish delivers the event to every member of each channel. A session
// subscribed to several target channels receives one copy per channel, in no
// guaranteed order.
func (h *Hub) Publish(ctx context.Context, channels []string, evt Event) {
	h.mu.RLock()
	var targets []Session
	for _, channel := range channels {
		for s := range h.members[channel] {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	dropped := 0
	for _, s := range targets {
		if !s.Deliver(evt) {
			dropped++
		}
	}

	h.metrics.IncPublished(evt.Name)
	if dropped > 0 && h.logg != nil {
		ctx = h.logg.WithFields(ctx, map[string]any{"event": evt.Name, "dropped": dropped})
		h.logg.Warn(ctx, "realtime.publish.slow_sessions")
	}
}

// MemberCount reports how many sessions are subscribed to the channel.
func (h *Hub) MemberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members[channel])
}

func (h *Hub) subscribeLocked(s Session, channel string) {
	if h.members[channel] == nil {
		h.members[channel] = make(map[Session]struct{})
	}
	h.members[channel][s] = struct{}{}
	h.channels[s][channel] = struct{}{}
}

func (h *Hub) unsubscribeLocked(s Session, channel string) {
	if set, ok := h.members[channel]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.members, channel)
		}
	}
	if set, ok := h.channels[s]; ok {
		delete(set, channel)
	}
}
