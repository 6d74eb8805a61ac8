// Package metrics exposes Prometheus collectors for list fetches, submissions
// and web requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeStale    = "stale"
	OutcomeCanceled = "canceled"
	OutcomeRejected = "rejected"
)

// Config holds collector naming.
type Config struct {
	Namespace string `yaml:"namespace" json:"namespace"`
	Subsystem string `yaml:"subsystem" json:"subsystem"`
}

// DefaultConfig returns the default naming.
func DefaultConfig() Config {
	return Config{Namespace: "intakeqc"}
}

// Collector owns a private registry with every intakeqc metric.
type Collector struct {
	registry *prometheus.Registry

	Fetches         *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	Submissions     *prometheus.CounterVec
	SubmitDuration  *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	InFlightSubmits prometheus.Gauge
}

// New creates a collector with its own registry.
func New(cfg Config) *Collector {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultConfig().Namespace
	}
	ns, sub := cfg.Namespace, cfg.Subsystem
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: sub,
			Name:      "fetches_total",
			Help:      "List fetches by resource and outcome",
		}, []string{"resource", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: sub,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of list fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: sub,
			Name:      "submissions_total",
			Help:      "Form submissions by resource and outcome",
		}, []string{"resource", "outcome"}),
		SubmitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: sub,
			Name:      "submission_duration_seconds",
			Help:      "Duration of form submissions in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: sub,
			Name:      "http_requests_total",
			Help:      "Web requests by route, method and status code",
		}, []string{"route", "method", "status_code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: sub,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of web requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		InFlightSubmits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: sub,
			Name:      "submissions_in_flight",
			Help:      "Submissions currently waiting on the API",
		}),
	}

	reg.MustRegister(
		c.Fetches, c.FetchDuration,
		c.Submissions, c.SubmitDuration,
		c.HTTPRequests, c.HTTPDuration,
		c.InFlightSubmits,
	)
	return c
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveFetch records one list fetch.
func (c *Collector) ObserveFetch(resource, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Fetches.WithLabelValues(resource, outcome).Inc()
	c.FetchDuration.WithLabelValues(resource).Observe(elapsed.Seconds())
}

// ObserveSubmit records one submission attempt.
func (c *Collector) ObserveSubmit(resource, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Submissions.WithLabelValues(resource, outcome).Inc()
	if elapsed > 0 {
		c.SubmitDuration.WithLabelValues(resource).Observe(elapsed.Seconds())
	}
}

// SubmitStarted and SubmitFinished track in-flight submissions.
func (c *Collector) SubmitStarted() {
	if c != nil {
		c.InFlightSubmits.Inc()
	}
}

func (c *Collector) SubmitFinished() {
	if c != nil {
		c.InFlightSubmits.Dec()
	}
}

// ObserveHTTP records one web request.
func (c *Collector) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
