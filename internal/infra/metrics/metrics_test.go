package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestXPMetrics_Registered(t *testing.T) {
	XPAwarded.WithLabelValues("reading").Add(10)
	TotalXP.Set(10)
	Level.Set(1)
	LevelUps.Inc()

	names := gatheredNames(t)
	for _, name := range []string{
		"lifequran_xp_awarded_total",
		"lifequran_total_xp",
		"lifequran_level",
		"lifequran_level_ups_total",
	} {
		if !names[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestEngagementCounters(t *testing.T) {
	StreakCurrent.Set(7)
	StreakFreezes.Inc()
	BadgesUnlocked.WithLabelValues("reading").Inc()
	ChallengesCompleted.WithLabelValues("pages").Inc()
	NotificationsCreated.WithLabelValues("badge_unlocked", "created").Inc()

	names := gatheredNames(t)
	for _, name := range []string{
		"lifequran_streak_current_days",
		"lifequran_streak_freezes_used_total",
		"lifequran_badges_unlocked_total",
		"lifequran_challenges_completed_total",
		"lifequran_notifications_total",
	} {
		if !names[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestActivityAndHealth(t *testing.T) {
	ActivityDuration.WithLabelValues("reading").Observe(0.01)
	ActivityErrors.WithLabelValues("reading").Inc()
	HealthCheckStatus.WithLabelValues("store").Set(1)
	HealthRecoveries.WithLabelValues("store").Inc()
	HTTPRequests.WithLabelValues("/api/level", "200").Inc()

	names := gatheredNames(t)
	for _, name := range []string{
		"lifequran_activity_duration_seconds",
		"lifequran_activity_errors_total",
		"lifequran_health_check_status",
		"lifequran_health_recoveries_total",
		"lifequran_http_requests_total",
	} {
		if !names[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}
