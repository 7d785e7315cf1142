package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goliatone/go-lookup/internal/export"
	"github.com/goliatone/go-lookup/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lookup"

// Metrics holds the Prometheus collectors of the module.
type Metrics struct {
	Mutations      *prometheus.CounterVec   // change events by kind and type
	Exports        *prometheus.CounterVec   // workbook regenerations by status
	ExportDuration prometheus.Histogram     // regeneration latency in seconds
	ExportRows     prometheus.Gauge         // countries in the last workbook
	HTTPRequests   *prometheus.CounterVec   // requests by kind, route and status code
	HTTPDuration   *prometheus.HistogramVec // request latency by kind and route

	gatherer prometheus.Gatherer
}

// New registers the collectors with reg. A nil reg gets a private registry so
// several modules can live in one process.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "option_mutations_total",
				Help:      "Option changes published, by kind and change type",
			},
			[]string{"kind", "type"},
		),
		Exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "export_regenerations_total",
				Help:      "Country workbook regenerations by status",
			},
			[]string{"status"},
		),
		ExportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_regeneration_duration_seconds",
				Help:      "Country workbook regeneration latency in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		ExportRows: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "export_rows",
				Help:      "Active countries written to the last workbook",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Options API requests by kind, route and status code",
			},
			[]string{"kind", "route", "status_code"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Options API latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"kind", "route"},
		),
		gatherer: reg,
	}
}

// Handler serves the collected metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Watch counts change events until ctx is done. It returns once subscribed.
func (m *Metrics) Watch(ctx context.Context, subscriber interfaces.ChangeSubscriber) error {
	if subscriber == nil {
		return errors.New("metrics: change subscriber is nil")
	}
	events, err := subscriber.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for event := range events {
			m.Mutations.WithLabelValues(event.Kind, string(event.Type)).Add(float64(max(len(event.IDs), 1)))
		}
	}()
	return nil
}

// ObserveExport satisfies export.Observer.
func (m *Metrics) ObserveExport(result *export.Result, err error, elapsed time.Duration) {
	m.ExportDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.Exports.WithLabelValues("failed").Inc()
		return
	}
	m.Exports.WithLabelValues("success").Inc()
	if result != nil {
		m.ExportRows.Set(float64(result.Rows))
	}
}

// Instrument records the status and latency of one API route.
func (m *Metrics) Instrument(kind, route string, next http.Handler) http.Handler {
	duration := m.HTTPDuration.WithLabelValues(kind, route)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(rec, r)
		duration.Observe(time.Since(started).Seconds())
		m.HTTPRequests.WithLabelValues(kind, route, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
