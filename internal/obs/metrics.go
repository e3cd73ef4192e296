package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Core sync metrics. The agent exposes no product API, so these are the main
// window into queue health on a device.
var (
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "queue_pending_operations",
		Help: "Operations currently waiting in the local queue.",
	})

	DrainsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_drains_total",
		Help: "Total number of drain passes.",
	})

	DrainOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_operations_total",
			Help: "Queued operations attempted during drains.",
		},
		[]string{"status"},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_submissions_total",
			Help: "Report submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

// Init registers metrics in the default registry.
func Init() {
	prometheus.MustRegister(QueueDepth, DrainsTotal, DrainOpsTotal, SubmissionsTotal)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
