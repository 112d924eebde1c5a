package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type marketplaceMetrics struct {
	events    *prometheus.CounterVec
	volume    *prometheus.CounterVec
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	registry    *marketplaceMetrics
)

// Metrics возвращает лениво зарегистрированный набор метрик сервиса.
func Metrics() *marketplaceMetrics {
	metricsOnce.Do(func() {
		registry = &marketplaceMetrics{
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "marketplace",
				Subsystem: "domain",
				Name:      "events_total",
				Help:      "Количество доменных событий по типу.",
			}, []string{"type"}),
			volume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "marketplace",
				Subsystem: "escrow",
				Name:      "amount_total",
				Help:      "Сумма средств, прошедших через escrow, по типу события.",
			}, []string{"type"}),
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "marketplace",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP-запросы по маршруту, методу и статусу.",
			}, []string{"route", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "marketplace",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Длительность обработки HTTP-запросов.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route", "method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "marketplace",
				Subsystem: "http",
				Name:      "throttles_total",
				Help:      "Запросы, отклонённые ограничителем частоты.",
			}, []string{"route"}),
		}
		prometheus.MustRegister(
			registry.events,
			registry.volume,
			registry.requests,
			registry.latency,
			registry.throttles,
		)
	})
	return registry
}

func (m *marketplaceMetrics) RecordEvent(eventType string, amount uint64) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
	if amount > 0 {
		m.volume.WithLabelValues(eventType).Add(float64(amount))
	}
}

// ObserveRequest учитывает завершённый HTTP-запрос. В route передаётся шаблон маршрута gin, а не сырой путь.
func (m *marketplaceMetrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

func (m *marketplaceMetrics) RecordThrottle(route string) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.throttles.WithLabelValues(route).Inc()
}
