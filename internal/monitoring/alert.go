package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// AlertsRaised counts operational alerts by event name so dashboards can
// page on them.
var AlertsRaised = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "alerts_raised_total",
		Help: "Total number of operational alerts raised by event",
	},
	[]string{"event"},
)

// RaiseAlert records an operational alert. Delivery is the error log
// stream for now; the counter is the durable signal.
func RaiseAlert(event string, fields map[string]string) {
	AlertsRaised.WithLabelValues(event).Inc()
	log.Error().
		Str("event", event).
		Fields(fields).
		Msg("Operational alert raised")
}
