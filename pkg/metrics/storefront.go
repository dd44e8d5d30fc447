package metrics

import "github.com/prometheus/client_golang/prometheus"

// StorefrontMetrics counts cart and checkout outcomes.
type StorefrontMetrics struct {
	lineRemovals    *prometheus.CounterVec
	stockRejections prometheus.Counter
	eligibility     *prometheus.CounterVec
	orders          *prometheus.CounterVec
}

// NewStorefrontMetrics registers the cart and checkout counters.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	lineRemovals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_line_removals_total",
		Help: "Cart lines removed, by reason.",
	}, []string{"reason"})
	stockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_stock_rejections_total",
		Help: "Quantity changes rejected by the stock ceiling.",
	})
	eligibility := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_eligibility_checks_total",
		Help: "Eligibility checks by resolved state.",
	}, []string{"result"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(lineRemovals, stockRejections, eligibility, orders)
	return &StorefrontMetrics{
		lineRemovals:    lineRemovals,
		stockRejections: stockRejections,
		eligibility:     eligibility,
		orders:          orders,
	}
}

func (m *StorefrontMetrics) IncLineRemoval(reason string) {
	if m == nil || m.lineRemovals == nil {
		return
	}
	m.lineRemovals.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *StorefrontMetrics) IncStockRejection() {
	if m == nil || m.stockRejections == nil {
		return
	}
	m.stockRejections.Inc()
}

func (m *StorefrontMetrics) IncEligibility(result string) {
	if m == nil || m.eligibility == nil {
		return
	}
	m.eligibility.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *StorefrontMetrics) IncOrder(outcome string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(outcome)).Inc()
}
