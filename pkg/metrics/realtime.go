package metrics

import "github.com/prometheus/client_golang/prometheus"

// RealtimeMetrics records broadcast-fabric activity.
type RealtimeMetrics struct {
	connections     prometheus.Gauge
	eventsPublished *prometheus.CounterVec
	framesDropped   *prometheus.CounterVec
}

// NewRealtimeMetrics registers the realtime metrics on the provided registerer.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	connections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connections",
		Help: "Currently registered realtime sessions.",
	})
	eventsPublished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_published",
		Help: "Events fanned out to channels, by event name.",
	}, []string{"event"})
	framesDropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_frames_dropped",
		Help: "Inbound frames dropped, by reason.",
	}, []string{"reason"})
	reg.MustRegister(connections, eventsPublished, framesDropped)
	return &RealtimeMetrics{
		connections:     connections,
		eventsPublished: eventsPublished,
		framesDropped:   framesDropped,
	}
}

// ConnectionOpened increments the live connection gauge.
func (m *RealtimeMetrics) ConnectionOpened() {
	if m == nil || m.connections == nil {
		return
	}
	m.connections.Inc()
}

// ConnectionClosed decrements the live connection gauge.
func (m *RealtimeMetrics) ConnectionClosed() {
	if m == nil || m.connections == nil {
		return
	}
	m.connections.Dec()
}

// IncPublished counts one published event.
func (m *RealtimeMetrics) IncPublished(event string) {
	if m == nil || m.eventsPublished == nil {
		return
	}
	m.eventsPublished.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncDropped counts one dropped inbound frame.
func (m *RealtimeMetrics) IncDropped(reason string) {
	if m == nil || m.framesDropped == nil {
		return
	}
	m.framesDropped.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
