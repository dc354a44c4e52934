package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chatbot",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	ConversationTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Name:      "conversation_turns_total",
			Help:      "Conversation turns by outcome",
		},
		[]string{"outcome"},
	)

	CompletionFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Name:      "completion_failures_total",
			Help:      "Completion calls that failed and were answered with the fallback reply",
		},
	)

	RelayUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatbot",
			Subsystem: "relay",
			Name:      "updates_total",
			Help:      "Inbound platform updates by result",
		},
		[]string{"result"},
	)
)
