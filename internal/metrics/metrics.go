package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DeliveriesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deliveries_sent_total",
			Help: "Total deliveries with a success outcome",
		},
	)

	DeliveryFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_failures_total",
			Help: "Total deliveries that exhausted retries",
		},
	)

	SendAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "send_attempts_total",
			Help: "Total transport send attempts, including retries",
		},
	)

	SendRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "send_retries_total",
			Help: "Total retried send attempts",
		},
	)

	CampaignsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campaigns_completed_total",
			Help: "Total campaigns transitioned to completed",
		},
	)
)

func Init() {
	prometheus.MustRegister(
		DeliveriesSent,
		DeliveryFailures,
		SendAttempts,
		SendRetries,
		CampaignsCompleted,
	)
}
