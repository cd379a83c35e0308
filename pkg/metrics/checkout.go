package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// CheckoutMetrics counts placed orders and their value.
type CheckoutMetrics struct {
	placed   prometheus.Counter
	replayed prometheus.Counter
	totals   prometheus.Histogram
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "checkout",
		Name:      "orders_placed_total",
		Help:      "Orders created by confirm-payment.",
	})
	replayed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "checkout",
		Name:      "orders_replayed_total",
		Help:      "Confirm-payment calls answered from an existing order.",
	})
	totals := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "checkout",
		Name:      "order_total_amount",
		Help:      "Order totals after discount.",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 25000},
	})
	reg.MustRegister(placed, replayed, totals)
	return &CheckoutMetrics{placed: placed, replayed: replayed, totals: totals}
}

// OrderPlaced records a newly created order.
func (m *CheckoutMetrics) OrderPlaced(total decimal.Decimal) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.Inc()
	m.totals.Observe(total.InexactFloat64())
}

// OrderReplayed records an idempotent retry that returned an existing order.
func (m *CheckoutMetrics) OrderReplayed() {
	if m == nil || m.replayed == nil {
		return
	}
	m.replayed.Inc()
}
