package p2p

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session Metrics
	SessionsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "blockledger",
			Subsystem: "p2p",
			Name:      "sessions_connected",
			Help:      "Current number of authenticated sessions registered for broadcast.",
		},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blockledger",
			Subsystem: "p2p",
			Name:      "auth_attempts_total",
			Help:      "Total authentication attempts on the replication channel, labeled by mode and outcome.",
		},
		[]string{"mode", "outcome"}, // mode: register, login; outcome: success, failure
	)

	// Ledger Metrics
	BlocksAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blockledger",
			Subsystem: "p2p",
			Name:      "blocks_appended_total",
			Help:      "Total number of blocks appended to the ledger via the replication channel.",
		},
	)

	BroadcastMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blockledger",
			Subsystem: "p2p",
			Name:      "broadcast_messages_total",
			Help:      "Total number of per-session messages sent during block broadcasts.",
		},
	)

	MalformedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "blockledger",
			Subsystem: "p2p",
			Name:      "malformed_messages_total",
			Help:      "Total number of inbound frames that failed to parse or validate.",
		},
	)
)
