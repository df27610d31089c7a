package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Backtest metrics
	backtestsTotal   *prometheus.CounterVec
	backtestDuration prometheus.Histogram
	tradesEmitted    prometheus.Counter
	jobsActive       *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),

		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigma_backtests_total",
				Help: "Total number of backtests run",
			},
			[]string{"strategy", "status"},
		),

		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sigma_backtest_duration_seconds",
				Help:    "Backtest duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		tradesEmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sigma_trades_emitted_total",
				Help: "Total number of trades reconstructed across backtests",
			},
		),

		jobsActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sigma_jobs_active",
				Help: "Number of jobs by status",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)
	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.tradesEmitted)
	reg.MustRegister(r.jobsActive)

	return r
}

// RecordRequest records an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	r.httpRequestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments the in-flight request gauge.
func (r *Registry) InFlightInc() { r.httpRequestsInFlight.Inc() }

// InFlightDec decrements the in-flight request gauge.
func (r *Registry) InFlightDec() { r.httpRequestsInFlight.Dec() }

// RecordBacktest records a completed backtest run.
func (r *Registry) RecordBacktest(strategy, status string, duration float64, trades int) {
	r.backtestsTotal.WithLabelValues(strategy, status).Inc()
	r.backtestDuration.Observe(duration)
	r.tradesEmitted.Add(float64(trades))
}

// SetJobsActive sets the active job gauge for a status.
func (r *Registry) SetJobsActive(status string, count int) {
	r.jobsActive.WithLabelValues(status).Set(float64(count))
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
