package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/helixir/figshare-connector/internal/domain"
)

// Deposit failure stages.
const (
	StageCreate = "create"
	StageUpload = "upload"
)

// Publish outcomes.
const (
	PublishSucceeded = "succeeded"
	PublishFailed    = "failed"
)

// Connection test outcomes.
const (
	ConnectionOK       = "ok"
	ConnectionRejected = "rejected"
	ConnectionError    = "error"
)

// Metrics contains all Prometheus metrics for the deposit connector.
// Metrics are organized by subsystem: deposits, uploads, link resolution,
// connection tests and remote requests. All counters and histograms are
// registered via promauto with the default Prometheus registry.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// DepositsStarted counts deposit submissions received.
	DepositsStarted prometheus.Counter

	// DepositsSucceeded counts deposits whose upload completed, regardless of publishing.
	DepositsSucceeded prometheus.Counter

	// DepositsFailed counts failed deposits, labeled by the failing stage (create, upload).
	DepositsFailed *prometheus.CounterVec

	// DepositDuration observes the end-to-end duration of deposits in seconds.
	DepositDuration prometheus.Histogram

	// PublishOutcomes counts publish attempts, labeled by outcome.
	PublishOutcomes *prometheus.CounterVec

	// PartsUploaded counts files uploaded to articles, including archive entries.
	PartsUploaded prometheus.Counter

	// LinkResolutions counts resolved article links, labeled by the strategy that produced them.
	LinkResolutions *prometheus.CounterVec

	// ConnectionTests counts connection tests, labeled by outcome.
	ConnectionTests *prometheus.CounterVec

	// RemoteRequestsTotal counts Figshare API requests, labeled by endpoint.
	RemoteRequestsTotal *prometheus.CounterVec

	// RemoteRequestsFailed counts failed Figshare API requests, labeled by endpoint and error type.
	RemoteRequestsFailed *prometheus.CounterVec

	// RemoteRequestDuration observes Figshare API request duration in seconds.
	RemoteRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DepositsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_started_total",
			Help:      "Total number of deposits started",
		}),
		DepositsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_succeeded_total",
			Help:      "Total number of deposits whose upload completed",
		}),
		DepositsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_failed_total",
			Help:      "Total number of failed deposits by stage",
		}, []string{"stage"}),
		DepositDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deposit_duration_seconds",
			Help:      "Duration of deposits in seconds",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 300, 900, 1800},
		}),
		PublishOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Total number of publish attempts by outcome",
		}, []string{"outcome"}),
		PartsUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_uploaded_total",
			Help:      "Total number of files uploaded to articles",
		}),
		LinkResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_resolutions_total",
			Help:      "Total number of article link resolutions by strategy",
		}, []string{"strategy"}),
		ConnectionTests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_tests_total",
			Help:      "Total number of connection tests by outcome",
		}, []string{"outcome"}),
		RemoteRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Total number of requests to the Figshare API",
		}, []string{"endpoint"}),
		RemoteRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_failed_total",
			Help:      "Total number of failed requests to the Figshare API",
		}, []string{"endpoint", "error_type"}),
		RemoteRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Duration of requests to the Figshare API in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 120},
		}, []string{"endpoint"}),
	}
}

// RecordDepositStarted records that a deposit has started.
func (m *Metrics) RecordDepositStarted() {
	if m == nil {
		return
	}
	m.DepositsStarted.Inc()
}

// RecordDepositSucceeded records a deposit whose files were all uploaded.
func (m *Metrics) RecordDepositSucceeded(durationSeconds float64) {
	if m == nil {
		return
	}
	m.DepositsSucceeded.Inc()
	m.DepositDuration.Observe(durationSeconds)
}

// RecordDepositFailed records a deposit that failed at stage.
func (m *Metrics) RecordDepositFailed(stage string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.DepositsFailed.WithLabelValues(stage).Inc()
	m.DepositDuration.Observe(durationSeconds)
}

// RecordPublish records the outcome of a publish attempt.
func (m *Metrics) RecordPublish(outcome string) {
	if m == nil {
		return
	}
	m.PublishOutcomes.WithLabelValues(outcome).Inc()
}

// RecordFileUploaded records one file uploaded to an article.
func (m *Metrics) RecordFileUploaded() {
	if m == nil {
		return
	}
	m.PartsUploaded.Inc()
}

// RecordLinkResolution records which strategy produced an article link.
func (m *Metrics) RecordLinkResolution(strategy string) {
	if m == nil {
		return
	}
	m.LinkResolutions.WithLabelValues(strategy).Inc()
}

// RecordConnectionTest records the outcome of a connection test.
func (m *Metrics) RecordConnectionTest(outcome string) {
	if m == nil {
		return
	}
	m.ConnectionTests.WithLabelValues(outcome).Inc()
}

// ObserveRemoteRequest records a Figshare API request and, when err is
// non-nil, its failure class.
func (m *Metrics) ObserveRemoteRequest(endpoint string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.RemoteRequestsTotal.WithLabelValues(endpoint).Inc()
	m.RemoteRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if err != nil {
		m.RemoteRequestsFailed.WithLabelValues(endpoint, ErrorType(err)).Inc()
	}
}

// ErrorType classifies an error for the error_type metric label.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrServiceUnavailable):
		return "server_error"
	case errors.Is(err, domain.ErrInvalidInput):
		return "client_error"
	default:
		return "transport"
	}
}
