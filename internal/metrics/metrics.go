package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the storefront counters. A nil *Metrics records nothing.
type Metrics struct {
	CartAdds      prometheus.Counter
	OrdersCreated *prometheus.CounterVec
	OrdersCancel  prometheus.Counter
	CorruptReads  *prometheus.CounterVec
	StorageSync   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CartAdds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopstate",
			Name:      "cart_adds_total",
			Help:      "Items added to the cart.",
		}),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopstate",
			Name:      "orders_created_total",
			Help:      "Orders placed, by payment method.",
		}, []string{"payment_method"}),
		OrdersCancel: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopstate",
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled.",
		}),
		CorruptReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopstate",
			Name:      "corrupt_values_total",
			Help:      "Stored values discarded because they did not parse.",
		}, []string{"key"}),
		StorageSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopstate",
			Name:      "storage_changes_received_total",
			Help:      "Storage changes received from other instances.",
		}, []string{"key"}),
	}
	reg.MustRegister(m.CartAdds, m.OrdersCreated, m.OrdersCancel, m.CorruptReads, m.StorageSync)
	return m
}

func (m *Metrics) CartAdded() {
	if m != nil {
		m.CartAdds.Inc()
	}
}

func (m *Metrics) OrderCreated(method string) {
	if m != nil {
		m.OrdersCreated.WithLabelValues(method).Inc()
	}
}

func (m *Metrics) OrderCancelled() {
	if m != nil {
		m.OrdersCancel.Inc()
	}
}

func (m *Metrics) CorruptValue(key string) {
	if m != nil {
		m.CorruptReads.WithLabelValues(key).Inc()
	}
}

func (m *Metrics) StorageChangeReceived(key string) {
	if m != nil {
		m.StorageSync.WithLabelValues(key).Inc()
	}
}
