package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screego_client_sessions_created_total",
		Help: "The total number of peer sessions created",
	}, []string{"role"})
	sessionClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screego_client_sessions_closed_total",
		Help: "The total number of peer sessions closed",
	}, []string{"role"})
	iceCandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screego_client_ice_candidates_total",
		Help: "The total number of relayed ICE candidates",
	}, []string{"direction"})
	controlMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screego_client_control_messages_total",
		Help: "The total number of control channel messages",
	}, []string{"direction"})
	capturesStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screego_client_captures_started_total",
		Help: "The total number of started captures",
	})
)
