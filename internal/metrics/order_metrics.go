package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики жизненного цикла заказа и рассылки уведомлений.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated  prometheus.Counter
	ordersRejected prometheus.Counter
	statusUpdates  *prometheus.CounterVec
	stockConflicts prometheus.Counter

	// Рассылка уведомлений
	notifyAttempts *prometheus.CounterVec
	notifyDuration prometheus.Histogram

	// Gauge активных рассылок
	activeDispatches prometheus.Gauge
}

// NewOrderMetrics создаёт экземпляр метрик на дефолтном Registerer.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "nucoffee_orders_created_total",
			Help: "Total number of orders persisted",
		}),
		ordersRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "nucoffee_orders_rejected_total",
			Help: "Total number of order requests rejected before persistence",
		}),
		statusUpdates: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "nucoffee_order_status_updates_total",
			Help: "Total number of order status transitions by target status",
		}, []string{"status"}),
		stockConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "nucoffee_stock_conflicts_total",
			Help: "Total number of reservations aborted on insufficient stock",
		}),
		notifyAttempts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "nucoffee_notify_attempts_total",
			Help: "Total number of per-recipient notification attempts by outcome",
		}, []string{"outcome"}),
		notifyDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "nucoffee_notify_dispatch_duration_seconds",
			Help:    "Duration of a full notification fan-out in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}),
		activeDispatches: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "nucoffee_active_dispatches",
			Help: "Number of notification fan-outs currently in flight",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик сохранённых заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderRejected увеличивает счётчик отклонённых запросов.
func (m *OrderMetrics) RecordOrderRejected() {
	m.ordersRejected.Inc()
}

// RecordStatusUpdate увеличивает счётчик переходов в указанный статус.
func (m *OrderMetrics) RecordStatusUpdate(status string) {
	m.statusUpdates.WithLabelValues(status).Inc()
}

// RecordStockConflict увеличивает счётчик сорванных резервирований.
func (m *OrderMetrics) RecordStockConflict() {
	m.stockConflicts.Inc()
}

// RecordNotifyAttempt фиксирует исход одной попытки доставки.
func (m *OrderMetrics) RecordNotifyAttempt(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.notifyAttempts.WithLabelValues(outcome).Inc()
}

// RecordDispatchDuration записывает длительность полной рассылки.
func (m *OrderMetrics) RecordDispatchDuration(duration time.Duration) {
	m.notifyDuration.Observe(duration.Seconds())
}

// DispatchStarted увеличивает количество активных рассылок.
func (m *OrderMetrics) DispatchStarted() {
	m.activeDispatches.Inc()
}

// DispatchFinished уменьшает количество активных рассылок.
func (m *OrderMetrics) DispatchFinished() {
	m.activeDispatches.Dec()
}
