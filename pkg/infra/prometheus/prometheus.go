package prometheus

import (
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		25, 50, 100,
		250, 500, 1000,
		2500, 5000, 10000,
		30000, 60000,
	}

	SessionsActive = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_sessions_active",
			Help: "Number of open realtime sessions",
		},
	)

	SessionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_sessions_total",
			Help: "Closed realtime sessions by final status",
		},
		[]string{"status"},
	)

	TurnsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_turns_total",
			Help: "Finished turns by response.done status",
		},
		[]string{"outcome"},
	)

	BackendLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "realtime_backend_latency_ms",
			Help:    "Backend call latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"backend"},
	)

	EventsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Protocol events by direction and type",
		},
		[]string{"direction", "type"},
	)

	ErrorsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_errors_total",
			Help: "Error events sent to clients by code",
		},
		[]string{"code"},
	)
)

type MetricsConfig struct {
	EnableLatency     bool // backend latency histograms
	EnableConnections bool // session gauge and counters
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency:     true,
		EnableConnections: true,
	}
}

var Config MetricsConfig

func Initialize(cfg MetricsConfig) {
	Config = cfg
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

// Gatherer exposes the private registry to the metrics endpoint.
func Gatherer() prometheus.Gatherer {
	return registry
}

// Recorder feeds the realtime engine's hooks into the collectors above.
type Recorder struct {
	cfg MetricsConfig
}

func NewRecorder(cfg MetricsConfig) *Recorder {
	return &Recorder{cfg: cfg}
}

func (r *Recorder) SessionOpened() {
	if r.cfg.EnableConnections {
		SessionsActive.Inc()
	}
}

func (r *Recorder) SessionClosed(status string) {
	if r.cfg.EnableConnections {
		SessionsActive.Dec()
		SessionsTotal.WithLabelValues(status).Inc()
	}
}

func (r *Recorder) TurnFinished(status string) {
	TurnsTotal.WithLabelValues(status).Inc()
}

func (r *Recorder) EventSent(eventType string) {
	EventsTotal.WithLabelValues("outbound", eventType).Inc()
}

func (r *Recorder) EventReceived(eventType string) {
	EventsTotal.WithLabelValues("inbound", eventType).Inc()
}

func (r *Recorder) ErrorEmitted(code domain.Code) {
	ErrorsTotal.WithLabelValues(string(code)).Inc()
}

// ObserveBackend matches providers.LatencyObserver.
func (r *Recorder) ObserveBackend(backend string, elapsed time.Duration, _ error) {
	if r.cfg.EnableLatency {
		BackendLatency.WithLabelValues(backend).Observe(float64(elapsed.Milliseconds()))
	}
}
