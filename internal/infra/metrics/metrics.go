// Package metrics provides Prometheus metrics for LifeQuran.
// Counters, gauges and histograms for XP, streaks, badges, challenges,
// store health and the HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lifequran"

// ─── XP & Levels ────────────────────────────────────────────────────────────

// XPAwarded tracks XP granted, by source tag.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded.",
}, []string{"source"})

// TotalXP mirrors the cumulative XP of the user.
var TotalXP = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "total_xp",
	Help:      "Current cumulative XP.",
})

// Level mirrors the current level (1-6).
var Level = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "level",
	Help:      "Current level.",
})

// LevelUps counts level transitions.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "level_ups_total",
	Help:      "Total level-up events.",
})

// ─── Streaks ────────────────────────────────────────────────────────────────

// StreakCurrent mirrors the current streak in days.
var StreakCurrent = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "streak_current_days",
	Help:      "Current reading streak in days.",
})

// StreakFreezes counts consumed grace freezes.
var StreakFreezes = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "streak_freezes_used_total",
	Help:      "Total streak freezes consumed.",
})

// ─── Badges & Challenges ────────────────────────────────────────────────────

// BadgesUnlocked counts badge unlocks by category.
var BadgesUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "badges_unlocked_total",
	Help:      "Total badges unlocked.",
}, []string{"category"})

// ChallengesCompleted counts completed daily challenges by type.
var ChallengesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "challenges_completed_total",
	Help:      "Total daily challenges completed.",
}, []string{"type"})

// ─── Activity ───────────────────────────────────────────────────────────────

// ActivityDuration tracks facade call latency by activity kind.
var ActivityDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "activity_duration_seconds",
	Help:      "Duration of gamification calls in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
}, []string{"kind"})

// ActivityErrors counts failed facade calls by kind.
var ActivityErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "activity_errors_total",
	Help:      "Total failed gamification calls.",
}, []string{"kind"})

// NotificationsCreated counts feed entries, by type and outcome
// (created, suppressed).
var NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "notifications_total",
	Help:      "Notification feed decisions.",
}, []string{"type", "outcome"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "health_check_status",
	Help:      "Health check status (1=healthy, 0=unhealthy).",
}, []string{"check"})

// HealthRecoveries counts automatic recovery actions.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "health_recoveries_total",
	Help:      "Total automatic recovery actions.",
}, []string{"check"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts API requests by route pattern and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "http_requests_total",
	Help:      "Total HTTP API requests.",
}, []string{"route", "code"})
