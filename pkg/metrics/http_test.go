package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/v1/products", 200, 20*time.Millisecond)
	m.Observe("GET", "/api/v1/products", 200, 10*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	mf := findMetricFamily(mfs, "jewelmart_http_requests_total")
	if mf == nil {
		t.Fatal("requests metric missing")
	}
	var productHits, unmatched float64
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), "route", "/api/v1/products") {
			productHits = metric.GetCounter().GetValue()
		}
		if matchesLabel(metric.GetLabel(), "route", "unmatched") {
			unmatched = metric.GetCounter().GetValue()
		}
	}
	if productHits != 2 || unmatched != 1 {
		t.Fatalf("unexpected counts products=%f unmatched=%f", productHits, unmatched)
	}
}

func TestCheckoutMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)
	m.OrderPlaced(decimal.RequireFromString("220.00"))
	m.OrderReplayed()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	placed := findMetricFamily(mfs, "jewelmart_checkout_orders_placed_total")
	if placed == nil || placed.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatal("expected one placed order")
	}
	totals := findMetricFamily(mfs, "jewelmart_checkout_order_total_amount")
	if totals == nil || totals.GetMetric()[0].GetHistogram().GetSampleSum() != 220 {
		t.Fatal("expected order total sum 220")
	}
}
