package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var webhookUpdates = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "txrelay_webhook_updates_total",
		Help: "Total number of webhook deliveries by outcome",
	},
	[]string{"status"}, // ok, no_message, bad_request, unauthorized, send_failed
)
