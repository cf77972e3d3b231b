package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg          *prometheus.Registry
	SyncRuns     *prometheus.CounterVec
	PagesFetched prometheus.Counter
	StoredOrders prometheus.Gauge
	SyncDuration prometheus.Histogram
	LastSyncUnix prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_sync_runs_total",
		Help: "Sync passes by how they ended.",
	}, []string{"outcome"})
	pages := prometheus.NewCounter(prometheus.CounterOpts{Name: "order_sync_pages_fetched_total"})
	stored := prometheus.NewGauge(prometheus.GaugeOpts{Name: "order_sync_stored_orders"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_sync_duration_seconds",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90},
	})
	last := prometheus.NewGauge(prometheus.GaugeOpts{Name: "order_sync_last_success_unix"})

	r.MustRegister(runs, pages, stored, duration, last)
	return &Registry{
		reg:          r,
		SyncRuns:     runs,
		PagesFetched: pages,
		StoredOrders: stored,
		SyncDuration: duration,
		LastSyncUnix: last,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
