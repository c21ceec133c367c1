package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mateovidal/routewave-backend/pkg/config"
	"github.com/mateovidal/routewave-backend/pkg/enums"
	"github.com/mateovidal/routewave-backend/pkg/logger"
	"github.com/mateovidal/routewave-backend/pkg/metrics"
)

// LocationSink ingests a courier position reported over the stream. The
// implementation enforces that the reporter is the order's assigned partner.
type LocationSink interface {
	Ingest(ctx context.Context, orderID, partnerID uuid.UUID, lat, lng float64, at time.Time) error
}

// Client pumps one websocket connection. Inbound frames that are malformed or
// unauthorized are logged and dropped; nothing is ever sent back as a
// negative acknowledgment.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	sink    LocationSink
	cfg     config.RealtimeConfig
	logg    *logger.Logger
	metrics *metrics.RealtimeMetrics

	userID uuid.UUID
	role   enums.ActorRole

	send      chan Event
	closeOnce sync.Once
	done      chan struct{}
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type roomFramePayload struct {
	OrderID uuid.UUID `json:"orderId"`
}

type locationFramePayload struct {
	OrderID uuid.UUID `json:"orderId"`
	Lat     float64   `json:"lat"`
	Lng     float64   `json:"lng"`
	// Milliseconds since epoch, matching the web client's Date.now().
	// Zero means "stamp it server-side".
	Timestamp int64 `json:"timestamp"`
}

// NewClient wraps an upgraded connection for the authenticated actor.
func NewClient(
	hub *Hub,
	conn *websocket.Conn,
	sink LocationSink,
	cfg config.RealtimeConfig,
	logg *logger.Logger,
	m *metrics.RealtimeMetrics,
	userID uuid.UUID,
	role enums.ActorRole,
) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		sink:    sink,
		cfg:     cfg,
		logg:    logg,
		metrics: m,
		userID:  userID,
		role:    role,
		send:    make(chan Event, cfg.SendBufferSize),
		done:    make(chan struct{}),
	}
}

// Deliver implements Session. It never blocks; when the send buffer is full
// the event is discarded (best-effort contract).
func (c *Client) Deliver(evt Event) bool {
	select {
	case c.send <- evt:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Run registers the client with the hub and pumps until the connection dies.
// It blocks for the lifetime of the connection.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c, c.role, c.userID)
	defer func() {
		c.hub.Unregister(c)
		c.close()
	}()

	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) readPump(ctx context.Context) {
	if c.cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleFrame(ctx, raw)
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case evt := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) handleFrame(ctx context.Context, raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.drop(ctx, "malformed_frame", err)
		return
	}

	switch frame.Event {
	case EventJoin:
		var payload roomFramePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.OrderID == uuid.Nil {
			c.drop(ctx, "malformed_join", err)
			return
		}
		c.hub.Join(c, payload.OrderID)
	case EventLeave:
		var payload roomFramePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.OrderID == uuid.Nil {
			c.drop(ctx, "malformed_leave", err)
			return
		}
		c.hub.Leave(c, payload.OrderID)
	case EventLocationUpdate:
		c.handleLocationUpdate(ctx, frame.Data)
	default:
		c.drop(ctx, "unknown_event", nil)
	}
}

func (c *Client) handleLocationUpdate(ctx context.Context, data json.RawMessage) {
	if c.role != enums.ActorRoleDelivery {
		c.drop(ctx, "location_wrong_role", nil)
		return
	}

	var payload locationFramePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.OrderID == uuid.Nil {
		c.drop(ctx, "malformed_location", err)
		return
	}

	var at time.Time
	if payload.Timestamp > 0 {
		at = time.UnixMilli(payload.Timestamp).UTC()
	}

	if err := c.sink.Ingest(ctx, payload.OrderID, c.userID, payload.Lat, payload.Lng, at); err != nil {
		// Stream reports from the wrong courier (or against a missing
		// order) are dropped silently per the channel contract.
		c.drop(ctx, "location_rejected", err)
	}
}

func (c *Client) drop(ctx context.Context, reason string, err error) {
	c.metrics.IncDropped(reason)
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"user_id":    c.userID.String(),
		"actor_role": string(c.role),
		"reason":     reason,
	})
	if err != nil {
		c.logg.Error(ctx, "realtime.frame.dropped", err)
		return
	}
	c.logg.Warn(ctx, "realtime.frame.dropped")
}
