package realtime

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/routewave-backend/pkg/config"
	"github.com/mateovidal/routewave-backend/pkg/enums"
)

type sinkCall struct {
	orderID   uuid.UUID
	partnerID uuid.UUID
	lat, lng  float64
	at        time.Time
}

type recordingSink struct {
	calls []sinkCall
	err   error
}

func (s *recordingSink) Ingest(ctx context.Context, orderID, partnerID uuid.UUID, lat, lng float64, at time.Time) error {
	s.calls = append(s.calls, sinkCall{orderID: orderID, partnerID: partnerID, lat: lat, lng: lng, at: at})
	return s.err
}

func newFrameClient(hub *Hub, sink LocationSink, role enums.ActorRole, userID uuid.UUID) *Client {
	cfg := config.RealtimeConfig{SendBufferSize: 8}
	c := NewClient(hub, nil, sink, cfg, nil, nil, userID, role)
	hub.Register(c, role, userID)
	return c
}

func assertNoOutbound(t *testing.T, c *Client) {
	t.Helper()
	select {
	case evt := <-c.send:
		t.Fatalf("unexpected outbound event %s", evt.Name)
	default:
	}
}

func TestHandleFrameDropsMalformedJSON(t *testing.T) {
	hub := NewHub(nil, nil)
	sink := &recordingSink{}
	c := newFrameClient(hub, sink, enums.ActorRoleDelivery, uuid.New())
	orderID := uuid.New()

	c.handleFrame(context.Background(), []byte("{not json"))
	c.handleFrame(context.Background(), []byte(`{"event":"order:join","data":"nope"}`))
	c.handleFrame(context.Background(), []byte(`{"event":"order:join","data":{}}`))

	if got := hub.MemberCount(OrderChannel(orderID)); got != 0 {
		t.Fatalf("malformed frames must not join rooms, got %d members", got)
	}
	if len(sink.calls) != 0 {
		t.Fatalf("malformed frames must not reach the sink")
	}
	assertNoOutbound(t, c)
}

func TestHandleFrameDropsUnknownEvent(t *testing.T) {
	hub := NewHub(nil, nil)
	sink := &recordingSink{}
	c := newFrameClient(hub, sink, enums.ActorRoleCustomer, uuid.New())

	c.handleFrame(context.Background(), []byte(`{"event":"order:status","data":{"orderId":"ignored"}}`))

	if len(sink.calls) != 0 {
		t.Fatal("unknown events must be dropped")
	}
	assertNoOutbound(t, c)
}

func TestHandleFrameJoinAndLeave(t *testing.T) {
	hub := NewHub(nil, nil)
	c := newFrameClient(hub, &recordingSink{}, enums.ActorRoleCustomer, uuid.New())
	orderID := uuid.New()

	join := fmt.Sprintf(`{"event":"order:join","data":{"orderId":%q}}`, orderID)
	c.handleFrame(context.Background(), []byte(join))
	if got := hub.MemberCount(OrderChannel(orderID)); got != 1 {
		t.Fatalf("expected 1 member after join, got %d", got)
	}

	leave := fmt.Sprintf(`{"event":"order:leave","data":{"orderId":%q}}`, orderID)
	c.handleFrame(context.Background(), []byte(leave))
	if got := hub.MemberCount(OrderChannel(orderID)); got != 0 {
		t.Fatalf("expected 0 members after leave, got %d", got)
	}
}

func TestHandleFrameLocationUpdateRequiresDeliveryRole(t *testing.T) {
	hub := NewHub(nil, nil)
	sink := &recordingSink{}
	c := newFrameClient(hub, sink, enums.ActorRoleVendor, uuid.New())

	frame := fmt.Sprintf(`{"event":"location:update","data":{"orderId":%q,"lat":1,"lng":2,"timestamp":0}}`, uuid.New())
	c.handleFrame(context.Background(), []byte(frame))

	if len(sink.calls) != 0 {
		t.Fatal("non-courier location frames must never reach the sink")
	}
	assertNoOutbound(t, c)
}

func TestHandleFrameLocationUpdateForwardsToSink(t *testing.T) {
	hub := NewHub(nil, nil)
	sink := &recordingSink{}
	partnerID := uuid.New()
	c := newFrameClient(hub, sink, enums.ActorRoleDelivery, partnerID)
	orderID := uuid.New()
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	frame := fmt.Sprintf(`{"event":"location:update","data":{"orderId":%q,"lat":12.5,"lng":-70.25,"timestamp":%d}}`,
		orderID, at.UnixMilli())
	c.handleFrame(context.Background(), []byte(frame))

	if len(sink.calls) != 1 {
		t.Fatalf("expected 1 sink call, got %d", len(sink.calls))
	}
	call := sink.calls[0]
	if call.orderID != orderID || call.partnerID != partnerID {
		t.Fatalf("sink call carries wrong ids: %+v", call)
	}
	if call.lat != 12.5 || call.lng != -70.25 {
		t.Fatalf("sink call carries wrong coordinates: %+v", call)
	}
	if !call.at.Equal(at) {
		t.Fatalf("expected timestamp %v, got %v", at, call.at)
	}
}

func TestHandleFrameLocationUpdateZeroTimestampLeftToService(t *testing.T) {
	hub := NewHub(nil, nil)
	sink := &recordingSink{}
	c := newFrameClient(hub, sink, enums.ActorRoleDelivery, uuid.New())

	frame := fmt.Sprintf(`{"event":"location:update","data":{"orderId":%q,"lat":1,"lng":2,"timestamp":0}}`, uuid.New())
	c.handleFrame(context.Background(), []byte(frame))

	if len(sink.calls) != 1 {
		t.Fatalf("expected 1 sink call, got %d", len(sink.calls))
	}
	if !sink.calls[0].at.IsZero() {
		t.Fatalf("zero inbound timestamp must stay zero for server-side stamping, got %v", sink.calls[0].at)
	}
}

func TestHandleFrameLocationRejectionIsSilent(t *testing.T) {
	hub := NewHub(nil, nil)
	sink := &recordingSink{err: errors.New("not the assigned partner")}
	c := newFrameClient(hub, sink, enums.ActorRoleDelivery, uuid.New())

	frame := fmt.Sprintf(`{"event":"location:update","data":{"orderId":%q,"lat":1,"lng":2,"timestamp":0}}`, uuid.New())
	c.handleFrame(context.Background(), []byte(frame))

	if len(sink.calls) != 1 {
		t.Fatalf("expected the sink to be consulted once, got %d calls", len(sink.calls))
	}
	assertNoOutbound(t, c)
}
