package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)
	m.Observe("outbox-retention", 250*time.Millisecond, nil)
	m.Observe("outbox-retention", 10*time.Millisecond, errors.New("boom"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got := mustCounter(t, mfs, "storefront_job_success_total", "job", "outbox-retention"); got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got := mustCounter(t, mfs, "storefront_job_failure_total", "job", "outbox-retention"); got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}
}

func TestHTTPMetricsUsesRouteLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/v1/products/{id}", 200, time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got := mustCounter(t, mfs, "storefront_http_requests_total", "route", "/api/v1/products/{id}"); got != 1 {
		t.Fatalf("expected 1 request, got %f", got)
	}
	if got := mustCounter(t, mfs, "storefront_http_requests_total", "route", "unknown"); got != 1 {
		t.Fatalf("expected unknown route bucket, got %f", got)
	}
}

func TestCommerceMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCommerceMetrics(reg)
	m.OrderPlaced(true, 129900)
	m.CartMutation("add")
	m.ImportRows(3, 1)
	m.OutboxResult(false)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got := mustCounter(t, mfs, "storefront_orders_placed_total", "kind", "guest"); got != 1 {
		t.Fatalf("expected guest order, got %f", got)
	}
	if got := mustCounter(t, mfs, "storefront_import_rows_total", "result", "ok"); got != 3 {
		t.Fatalf("expected 3 imported rows, got %f", got)
	}
	if got := mustCounter(t, mfs, "storefront_outbox_events_total", "result", "failed"); got != 1 {
		t.Fatalf("expected failed outbox, got %f", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewJobMetrics(nil).Observe("x", time.Second, nil)
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Second)
	NewCommerceMetrics(nil).OrderPlaced(false, 1)
	var m *CommerceMetrics
	m.CartMutation("add")
}

func mustCounter(t *testing.T, mfs []*dto.MetricFamily, name, label, value string) float64 {
	t.Helper()
	v, err := counterValue(mfs, name, label, value)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func counterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == label && l.GetValue() == value {
					return metric.GetCounter().GetValue(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("metric %q with %s=%s not found", name, label, value)
}
