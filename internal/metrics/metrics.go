package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bookstore"

// Orders holds the counters of the order lifecycle.
type Orders struct {
	Placed            prometheus.Counter
	PlacementFailures *prometheus.CounterVec
	Cancelled         prometheus.Counter
	StockRestoreSkips prometheus.Counter
	StatusUpdates     *prometheus.CounterVec
}

// NewOrders creates the order counters and registers them on reg. A nil reg
// leaves them unregistered, which is what most tests want.
func NewOrders(reg prometheus.Registerer) *Orders {
	m := &Orders{
		Placed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders successfully placed.",
		}),
		PlacementFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_placement_failures_total",
			Help:      "Rejected order placements by error kind.",
		}, []string{"kind"}),
		Cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled by their owner or an admin.",
		}),
		StockRestoreSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_restore_skipped_total",
			Help:      "Order lines whose stock could not be restored on cancellation.",
		}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_updates_total",
			Help:      "Administrative order status updates by target status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.Placed, m.PlacementFailures, m.Cancelled, m.StockRestoreSkips, m.StatusUpdates)
	}
	return m
}
