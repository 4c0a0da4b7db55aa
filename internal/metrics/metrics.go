// Package metrics exposes Prometheus counters for quest and notification activity.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QuestItemsCreated counts items added through quest creation.
	// Labels: type (goal, checklist)
	QuestItemsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "questchain",
			Subsystem: "quests",
			Name:      "items_created_total",
			Help:      "Total number of quest items created",
		},
		[]string{"type"},
	)

	// NotificationsCreated counts stored notifications.
	// Labels: type (broadcast, quest)
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "questchain",
			Subsystem: "notifications",
			Name:      "created_total",
			Help:      "Total number of notifications created",
		},
		[]string{"type"},
	)

	// ScheduledJobRuns counts scheduled job invocations.
	// Labels: job, status (success, error)
	ScheduledJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "questchain",
			Subsystem: "cron",
			Name:      "job_runs_total",
			Help:      "Total number of scheduled job runs",
		},
		[]string{"job", "status"},
	)
)

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
