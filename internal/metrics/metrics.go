package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GamesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "switch_games_created_total",
		Help: "Switch games created.",
	})

	GamesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switch_games_resolved_total",
		Help: "Switch games resolved, by outcome.",
	}, []string{"outcome"}) // decided, both_win, both_lose

	GamesChickenedOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "switch_games_chickened_out_total",
		Help: "Switch games forfeited before resolution.",
	})

	ProofsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "switch_proofs_submitted_total",
		Help: "Proofs submitted by losers.",
	})

	ProofsReviewed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switch_proofs_reviewed_total",
		Help: "Proof reviews, by action.",
	}, []string{"action"})

	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Notifications persisted and pushed.",
	})

	ProofsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "switch_proofs_swept_total",
		Help: "Expired proofs purged by the retention sweeper.",
	})
)
