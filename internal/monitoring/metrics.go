package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	TenantResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolutions_total",
			Help: "Total number of tenant resolutions by outcome",
		},
		[]string{"outcome"},
	)
	OrdersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders placed",
		},
	)
	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "Total number of order status transitions by target status",
		},
		[]string{"status"},
	)
	OnboardingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tenant_onboarding_duration_seconds",
			Help:    "Duration of tenant onboarding in seconds",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		},
	)
)

func InitMetrics() {
	err := prometheus.Register(TenantResolutions)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register TenantResolutions metric")
	}

	err = prometheus.Register(OrdersCreated)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register OrdersCreated metric")
	}

	err = prometheus.Register(OrderTransitions)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register OrderTransitions metric")
	}

	err = prometheus.Register(OnboardingDuration)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register OnboardingDuration metric")
	}

	err = prometheus.Register(AlertsRaised)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register AlertsRaised metric")
	}
}
