package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30, 60},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	CheckRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "check_runs_total",
		Help: "Запуски проверок по направлениям и исходам",
	}, []string{"check", "status"})

	CheckDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "check_duration_seconds",
		Help:    "Длительность одной проверки",
		Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"check"})

	CheckMissing = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "check_missing_members",
		Help: "Сколько участников не отправили отчёт в последней успешной проверке",
	}, []string{"check"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		NetworkRequestDuration,
		NetworkRequestTotal,
		CheckRunsTotal,
		CheckDurationSeconds,
		CheckMissing,
	)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveCheck записывает итог проверки. Для неуспешных проверок missing игнорируется.
func ObserveCheck(check, status string, start time.Time, missing int) {
	CheckRunsTotal.WithLabelValues(check, status).Inc()
	CheckDurationSeconds.WithLabelValues(check).Observe(time.Since(start).Seconds())
	if status == StatusSuccess {
		CheckMissing.WithLabelValues(check).Set(float64(missing))
	}
}

// Исходы проверки для CheckRunsTotal.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)
