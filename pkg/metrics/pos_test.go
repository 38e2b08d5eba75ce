package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPOSMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPOSMetrics(reg)

	metrics.IncSaleCommitted("create")
	metrics.IncTransfer("recorded")
	metrics.IncStockRejected("transfer")
	metrics.ObserveDuration("create", 250*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "sales_transactions_total", "operation", "create"); err != nil {
		t.Fatalf("fetch sales: %v", err)
	} else if got != 1 {
		t.Fatalf("expected sales=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "inventory_transfers_total", "outcome", "recorded"); err != nil {
		t.Fatalf("fetch transfers: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transfers=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "insufficient_stock_rejections_total", "operation", "transfer"); err != nil {
		t.Fatalf("fetch rejections: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rejections=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "pos_operation_duration_seconds", "operation", "create"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestPOSMetricsNilSafe(t *testing.T) {
	var metrics *POSMetrics
	metrics.IncSaleCommitted("create")
	metrics.IncTransfer("recorded")
	metrics.IncStockRejected("sale")
	metrics.ObserveDuration("create", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
