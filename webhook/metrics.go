package webhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Webhook deliveries by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	settleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "webhook_settlement_duration_seconds",
			Help: "Duration of webhook settlement by provider",
			Buckets: []float64{
				0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0,
			},
		},
		[]string{"provider"},
	)
)

func recordDelivery(provider string, outcome string) {
	deliveriesTotal.WithLabelValues(provider, outcome).Inc()
}

func recordSettleDuration(provider string, seconds float64) {
	settleDuration.WithLabelValues(provider).Observe(seconds)
}
