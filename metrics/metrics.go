package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	XPAwardsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "progression_xp_awards_total", Help: "Total XP ledger applications"},
	)
	MissionsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "progression_missions_completed_total", Help: "Total mission completions"},
	)
	AchievementsUnlockedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "progression_achievements_unlocked_total", Help: "Total achievements unlocked"},
	)
	NotificationsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "progression_notifications_sent_total", Help: "Total outbox notifications delivered"},
	)
	NotificationsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "progression_notifications_failed_total", Help: "Total failed notification deliveries"},
	)
	NotificationsDLQTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "progression_notifications_dlq_total", Help: "Total notifications moved to the DLQ"},
	)
)

func Register() {
	prometheus.MustRegister(
		XPAwardsTotal,
		MissionsCompletedTotal,
		AchievementsUnlockedTotal,
		NotificationsSentTotal,
		NotificationsFailedTotal,
		NotificationsDLQTotal,
	)
}
