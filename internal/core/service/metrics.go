package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txrelay_extractions_total",
			Help: "Total number of extraction calls by result",
		},
		[]string{"result"}, // ok, transport, upstream, malformed_envelope, schema_decode
	)

	extractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "txrelay_extraction_duration_seconds",
			Help:    "Latency of extraction calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		},
	)

	messagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "txrelay_messages_sent_total",
			Help: "Total number of relayed replies by result",
		},
		[]string{"result"}, // ok, error
	)
)
