package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the tracking engine.
var (
	SchedulerTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodtrack_scheduler_ticks_total",
			Help: "Total number of tracking scheduler ticks",
		},
	)

	SchedulerTickErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodtrack_scheduler_tick_errors_total",
			Help: "Total number of ticks that failed to load or commit",
		},
	)

	SchedulerTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodtrack_scheduler_tick_duration_seconds",
			Help:    "Duration of one scheduler tick",
			Buckets: prometheus.DefBuckets,
		},
	)

	OrdersAdvancedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodtrack_orders_advanced_total",
			Help: "Total number of order updates committed by the scheduler",
		},
	)

	OrdersDeliveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foodtrack_orders_delivered_total",
			Help: "Total number of orders that reached Delivered",
		},
	)

	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodtrack_cache_lookups_total",
			Help: "Read-through cache lookups by key kind and result",
		},
		[]string{"kind", "result"},
	)

	BroadcastDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodtrack_broadcast_deliveries_total",
			Help: "Broadcast hand-offs to subscribers by outcome",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Register registers all metrics with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SchedulerTicksTotal)
		prometheus.MustRegister(SchedulerTickErrorsTotal)
		prometheus.MustRegister(SchedulerTickDuration)
		prometheus.MustRegister(OrdersAdvancedTotal)
		prometheus.MustRegister(OrdersDeliveredTotal)
		prometheus.MustRegister(CacheLookupsTotal)
		prometheus.MustRegister(BroadcastDeliveriesTotal)
	})
}

func CacheHit(kind string)  { CacheLookupsTotal.WithLabelValues(kind, "hit").Inc() }
func CacheMiss(kind string) { CacheLookupsTotal.WithLabelValues(kind, "miss").Inc() }

// ObserveDelivery matches broadcast.DeliveryObserver.
func ObserveDelivery(delivered bool) {
	if delivered {
		BroadcastDeliveriesTotal.WithLabelValues("delivered").Inc()
		return
	}
	BroadcastDeliveriesTotal.WithLabelValues("dropped").Inc()
}
