// Package metrics регистрирует прометеевские счётчики разрешения планов.
// Экспонируются через маршрут /metrics основного приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ResolutionMetrics объединяет счётчики сервиса разрешения планов.
type ResolutionMetrics struct {
	Resolutions      *prometheus.CounterVec
	ResolutionErrors prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

// New регистрирует счётчики в переданном регистраторе. Приложение передаёт
// prometheus.DefaultRegisterer, тесты — отдельный реестр.
func New(reg prometheus.Registerer) *ResolutionMetrics {
	factory := promauto.With(reg)
	return &ResolutionMetrics{
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "entitlements_resolutions_total",
			Help: "Number of plan resolutions by resolved plan.",
		}, []string{"plan"}),
		ResolutionErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "entitlements_resolution_errors_total",
			Help: "Number of failed plan resolutions.",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "entitlements_cache_hits_total",
			Help: "Number of resolutions served from cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "entitlements_cache_misses_total",
			Help: "Number of resolutions computed from source reads.",
		}),
	}
}
