package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// POSMetrics records counters for the transactional core: committed
// sales, recorded transfers, and stock-check rejections.
type POSMetrics struct {
	salesCommitted *prometheus.CounterVec
	transfers      *prometheus.CounterVec
	stockRejected  *prometheus.CounterVec
	opDuration     *prometheus.HistogramVec
}

// NewPOSMetrics registers the point-of-sale metrics on the provided registerer.
func NewPOSMetrics(reg prometheus.Registerer) *POSMetrics {
	if reg == nil {
		return &POSMetrics{}
	}
	salesCommitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_transactions_total",
		Help: "Committed sales transactions.",
	}, []string{"operation"})
	transfers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_transfers_total",
		Help: "Recorded inventory transfers.",
	}, []string{"outcome"})
	stockRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "insufficient_stock_rejections_total",
		Help: "Operations rejected because on-hand stock was too low.",
	}, []string{"operation"})
	opDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_operation_duration_seconds",
		Help:    "Duration of core POS operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(salesCommitted, transfers, stockRejected, opDuration)
	return &POSMetrics{
		salesCommitted: salesCommitted,
		transfers:      transfers,
		stockRejected:  stockRejected,
		opDuration:     opDuration,
	}
}

// IncSaleCommitted increments the sales counter for the named operation.
func (p *POSMetrics) IncSaleCommitted(operation string) {
	if p == nil || p.salesCommitted == nil {
		return
	}
	p.salesCommitted.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncTransfer increments the transfer counter with the given outcome.
func (p *POSMetrics) IncTransfer(outcome string) {
	if p == nil || p.transfers == nil {
		return
	}
	p.transfers.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncStockRejected counts an insufficient-stock rejection.
func (p *POSMetrics) IncStockRejected(operation string) {
	if p == nil || p.stockRejected == nil {
		return
	}
	p.stockRejected.WithLabelValues(normalizeLabel(operation)).Inc()
}

// ObserveDuration records the duration for the named operation.
func (p *POSMetrics) ObserveDuration(operation string, duration time.Duration) {
	if p == nil || p.opDuration == nil {
		return
	}
	p.opDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
