package automod

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var dmMessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
	Name: "modbot_dm_messages_received",
	Help: "Number of direct messages routed through the report flow",
})

var channelMessagesScored = promauto.NewCounter(prometheus.CounterOpts{
	Name: "modbot_channel_messages_scored",
	Help: "Number of monitored-channel messages sent to the threat signal source",
})

var reportsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_reports_completed",
	Help: "Number of completed user reports, by resulting threat level",
}, []string{"level"})

var incidentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "modbot_incidents_created",
	Help: "Number of incidents created, by origin (report or auto)",
}, []string{"origin"})

var reactionsProcessed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "modbot_reactions_processed",
	Help: "Number of moderator reactions routed to an incident",
})

var actionFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "modbot_action_failures",
	Help: "Number of failed terminal moderator actions (ban, removal, notice)",
})

var autoFlagsSuppressed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "modbot_auto_flags_suppressed",
	Help: "Number of automatic flags dropped by the daily quota circuit breaker",
})
