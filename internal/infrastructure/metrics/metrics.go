package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Messaging API Metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hirelink",
			Subsystem: "messaging_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hirelink",
			Subsystem: "messaging_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Access checks by outcome reason
	AccessDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hirelink",
			Subsystem: "messaging_api",
			Name:      "access_decisions_total",
			Help:      "Messaging access decisions by reason",
		},
		[]string{"reason", "allowed"},
	)

	ConversationsOpenedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hirelink",
			Subsystem: "messaging_api",
			Name:      "conversations_opened_total",
			Help:      "createOrGet conversation calls by outcome",
		},
		[]string{"context_type", "status"},
	)

	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hirelink",
			Subsystem: "messaging_api",
			Name:      "messages_sent_total",
			Help:      "Messages sent by outcome",
		},
		[]string{"status"},
	)

	MessagesMarkedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hirelink",
			Subsystem: "messaging_api",
			Name:      "messages_marked_total",
			Help:      "Messages moved to a new delivery state",
		},
		[]string{"state"},
	)
)

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordRequest records an HTTP request with all relevant labels
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

func RecordAccessDecision(reason string, allowed bool) {
	AccessDecisionsTotal.WithLabelValues(reason, boolLabel(allowed)).Inc()
}

// RecordConversationOpened records a createOrGet call; contextType is "none" when absent.
func RecordConversationOpened(contextType string, err error) {
	if contextType == "" {
		contextType = "none"
	}
	ConversationsOpenedTotal.WithLabelValues(contextType, statusLabel(err)).Inc()
}

func RecordMessageSent(err error) {
	MessagesSentTotal.WithLabelValues(statusLabel(err)).Inc()
}

func RecordMessagesMarked(state string, count int64) {
	if count <= 0 {
		return
	}
	MessagesMarkedTotal.WithLabelValues(state).Add(float64(count))
}
