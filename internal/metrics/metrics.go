// Package metrics exposes Prometheus counters for the settlement engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cartify_orders_placed_total",
		Help: "Total number of successfully placed orders",
	})
	OrdersReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cartify_orders_released_total",
		Help: "Total number of orders released to sellers",
	})
	OrdersRefunded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cartify_orders_refunded_total",
		Help: "Total number of orders refunded to buyers",
	})
	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cartify_orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})
	SettlementErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartify_settlement_errors_total",
		Help: "Settlement operation failures by error kind",
	}, []string{"kind"})
	OrderAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cartify_order_amount",
		Help:    "Distribution of placed order totals in minor units",
		Buckets: prometheus.ExponentialBuckets(100, 10, 6),
	})
)

// Handler serves the default registry, mounted on /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
