package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	deskerrors "github.com/vango-dev/pdfdesk/internal/errors"
	"github.com/vango-dev/pdfdesk/pkg/controller"
	"github.com/vango-dev/pdfdesk/pkg/toast"
	"github.com/vango-dev/pdfdesk/pkg/zone"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "pdfdesk").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for submission duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "pdfdesk",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the pdfdesk collectors.
type Metrics struct {
	submissionsTotal   *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec
	submissionErrors   *prometheus.CounterVec
	inflight           prometheus.Gauge
	filesUploaded      *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	activeSessions     prometheus.Gauge
	patchesSent        prometheus.Counter
	wsErrors           *prometheus.CounterVec
}

// NewMetrics registers the collectors. Registering twice on the same
// registry panics, like promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		submissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "submissions_total",
			Help:        "Total number of zone submissions by result",
			ConstLabels: config.ConstLabels,
		}, []string{"zone", "result"}),

		submissionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "submission_duration_seconds",
			Help:        "Submission duration in seconds, response handling included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"zone"}),

		submissionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "submission_errors_total",
			Help:        "Total number of failed submissions by error type",
			ConstLabels: config.ConstLabels,
		}, []string{"zone", "error_type"}),

		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "inflight_submissions",
			Help:        "Number of submissions waiting for the document service",
			ConstLabels: config.ConstLabels,
		}),

		filesUploaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "files_uploaded_total",
			Help:        "Total number of files sent to the document service",
			ConstLabels: config.ConstLabels,
		}, []string{"zone"}),

		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of notifications shown by level",
			ConstLabels: config.ConstLabels,
		}, []string{"level"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of open live sessions",
			ConstLabels: config.ConstLabels,
		}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Total number of patches sent to browsers",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Middleware returns controller middleware recording every submission.
func (m *Metrics) Middleware() controller.Middleware {
	return controller.MiddlewareFunc(func(ctx context.Context, s *controller.Submission, next func(context.Context) error) error {
		zoneID := string(s.Route.ID)

		m.inflight.Inc()
		start := time.Now()
		err := next(ctx)
		m.inflight.Dec()

		m.submissionDuration.WithLabelValues(zoneID).Observe(time.Since(start).Seconds())
		m.filesUploaded.WithLabelValues(zoneID).Add(float64(len(zone.Pick(s.Route, s.Files))))

		kind := s.Result.Kind
		if kind == controller.Pending && err != nil {
			kind = controller.Failed
		}
		m.submissionsTotal.WithLabelValues(zoneID, kind.String()).Inc()
		if kind == controller.Failed {
			cause := s.Result.Err
			if cause == nil {
				cause = err
			}
			m.submissionErrors.WithLabelValues(zoneID, categorizeError(cause)).Inc()
		}
		return err
	})
}

// RecordNotification counts a notification. Its signature matches
// toast.WithHook.
func (m *Metrics) RecordNotification(level toast.Type, _ string) {
	m.notifications.WithLabelValues(string(level)).Inc()
}

// RecordPatches records the number of patches sent.
func (m *Metrics) RecordPatches(count int) {
	m.patchesSent.Add(float64(count))
}

// RecordSessionOpen records a new live session.
func (m *Metrics) RecordSessionOpen() {
	m.activeSessions.Inc()
}

// RecordSessionClose records the end of a live session.
func (m *Metrics) RecordSessionClose() {
	m.activeSessions.Dec()
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}

// categorizeError returns a low-cardinality label for a failed submission.
func categorizeError(err error) string {
	var se *controller.StatusError
	if errors.As(err, &se) {
		return "http_" + strconv.Itoa(se.Code/100) + "xx"
	}
	var svc *controller.ServiceError
	if errors.As(err, &svc) {
		return "service"
	}
	switch {
	case err == nil:
		return "unknown"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case deskerrors.HasCode(err, "E304"):
		return "transport"
	case deskerrors.HasCode(err, "E306"):
		return "malformed_response"
	case deskerrors.HasCode(err, "E302"):
		return "read_file"
	case deskerrors.HasCode(err, "E303"):
		return "storage"
	default:
		return "internal"
	}
}
