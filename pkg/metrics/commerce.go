package metrics

import "github.com/prometheus/client_golang/prometheus"

// CommerceMetrics counts storefront business events.
type CommerceMetrics struct {
	ordersPlaced   *prometheus.CounterVec
	orderValue     prometheus.Histogram
	cartMutations  *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	outboxOutcomes *prometheus.CounterVec
}

func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	m := &CommerceMetrics{
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders accepted, split by guest or account checkout.",
		}, []string{"kind"}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_value_minor",
			Help:      "Order totals in minor currency units.",
			Buckets:   prometheus.ExponentialBuckets(10000, 2, 12),
		}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart operations by kind.",
		}, []string{"op"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Bulk import rows by outcome.",
		}, []string{"result"}),
		outboxOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_total",
			Help:      "Outbox publish attempts by outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.ordersPlaced, m.orderValue, m.cartMutations, m.importRows, m.outboxOutcomes)
	return m
}

func (m *CommerceMetrics) OrderPlaced(guest bool, total int) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	kind := "account"
	if guest {
		kind = "guest"
	}
	m.ordersPlaced.WithLabelValues(kind).Inc()
	m.orderValue.Observe(float64(total))
}

func (m *CommerceMetrics) CartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(labelOrUnknown(op)).Inc()
}

func (m *CommerceMetrics) ImportRows(succeeded, failed int) {
	if m == nil || m.importRows == nil {
		return
	}
	m.importRows.WithLabelValues("ok").Add(float64(succeeded))
	m.importRows.WithLabelValues("failed").Add(float64(failed))
}

func (m *CommerceMetrics) OutboxResult(published bool) {
	if m == nil || m.outboxOutcomes == nil {
		return
	}
	result := "published"
	if !published {
		result = "failed"
	}
	m.outboxOutcomes.WithLabelValues(result).Inc()
}
