package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names the gateway reports. Registered up front so a typo in a
// call site shows up as a silent no-op instead of a panic mid-dispatch.
const (
	GatewayConnections = "herald_gateway_connections"
	GatewayUsersOnline = "herald_gateway_users_online"
	ChatRooms          = "herald_chat_rooms"
	NotificationTopics = "herald_notification_topics"

	EventsTotal      = "herald_events_total"
	RateLimitedTotal = "herald_events_rate_limited_total"
	PanicsTotal      = "herald_handler_panics_total"
	MessagesTotal    = "herald_chat_messages_total"
	NotificationsOut = "herald_notifications_delivered_total"

	EventDuration = "herald_event_duration_seconds"

	// System gauges refreshed on every metrics scrape.
	GoRoutines     = "herald_go_routines"
	SysMemoryAlloc = "herald_sys_memory_alloc"
	SysTotalAlloc  = "herald_sys_total_alloc"
	GoNumGC        = "herald_go_num_gc"
	GoSys          = "herald_go_sys"
)

type Manager interface {
	SetGauge(name string, value float64)
	IncrementCounter(name string, labels ...string)
	AddCounter(name string, value float64, labels ...string)
	ObserveHistogram(name string, value float64, labels ...string)
}

type prometheusManager struct {
	registry *prometheus.Registry

	mu         sync.RWMutex
	gauges     map[string]prometheus.Gauge
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

func NewManager() (Manager, *prometheus.Registry) {
	m := &prometheusManager{
		registry:   prometheus.NewRegistry(),
		gauges:     make(map[string]prometheus.Gauge),
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}

	m.gauge(GatewayConnections, "Open socket connections.")
	m.gauge(GatewayUsersOnline, "Distinct users with at least one open connection.")
	m.gauge(ChatRooms, "Chat rooms with at least one member.")
	m.gauge(NotificationTopics, "Topics with at least one subscriber.")
	m.gauge(GoRoutines, "Number of goroutines.")
	m.gauge(SysMemoryAlloc, "Bytes of allocated heap objects.")
	m.gauge(SysTotalAlloc, "Cumulative bytes allocated for heap objects.")
	m.gauge(GoNumGC, "Completed GC cycles.")
	m.gauge(GoSys, "Total bytes of memory obtained from the OS.")

	m.counter(EventsTotal, "Inbound socket events by name and outcome.", "event", "outcome")
	m.counter(RateLimitedTotal, "Events denied by the rate limiter.", "event")
	m.counter(PanicsTotal, "Handler panics caught by the dispatch boundary.", "event")
	m.counter(MessagesTotal, "Chat messages accepted into room history.")
	m.counter(NotificationsOut, "Notification deliveries handed to connections.", "topic")

	m.histogram(EventDuration, "Handler latency by event name.", []string{"event"},
		[]float64{.0005, .001, .005, .01, .05, .1, .5, 1})

	return m, m.registry
}

func (m *prometheusManager) gauge(name, help string) {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	m.registry.MustRegister(g)
	m.gauges[name] = g
}

func (m *prometheusManager) counter(name, help string, labels ...string) {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	m.registry.MustRegister(c)
	m.counters[name] = c
}

func (m *prometheusManager) histogram(name, help string, labels []string, buckets []float64) {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
	m.registry.MustRegister(h)
	m.histograms[name] = h
}

func (m *prometheusManager) SetGauge(name string, value float64) {
	m.mu.RLock()
	g, ok := m.gauges[name]
	m.mu.RUnlock()
	if ok {
		g.Set(value)
	}
}

func (m *prometheusManager) IncrementCounter(name string, labels ...string) {
	m.mu.RLock()
	c, ok := m.counters[name]
	m.mu.RUnlock()
	if ok {
		c.WithLabelValues(labels...).Inc()
	}
}

func (m *prometheusManager) AddCounter(name string, value float64, labels ...string) {
	m.mu.RLock()
	c, ok := m.counters[name]
	m.mu.RUnlock()
	if ok {
		c.WithLabelValues(labels...).Add(value)
	}
}

func (m *prometheusManager) ObserveHistogram(name string, value float64, labels ...string) {
	m.mu.RLock()
	h, ok := m.histograms[name]
	m.mu.RUnlock()
	if ok {
		h.WithLabelValues(labels...).Observe(value)
	}
}

// NopManager discards every metric. Wired when metrics are disabled and
// in tests.
type NopManager struct{}

func (NopManager) SetGauge(string, float64)                    {}
func (NopManager) IncrementCounter(string, ...string)          {}
func (NopManager) AddCounter(string, float64, ...string)       {}
func (NopManager) ObserveHistogram(string, float64, ...string) {}
