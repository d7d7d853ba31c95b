package gamification

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lifequran/lifequran/internal/domain"
)

// Notifier decides whether a feed entry may be created.
//   - At most MaxPerDay entries per calendar day
//   - Nothing between QuietStart and QuietEnd (local time)
//   - Only for badge unlocks, level ups, streak milestones and freeze use
type Notifier struct {
	policy domain.NotificationPolicy
}

// NewNotifier creates a notifier with the given policy.
func NewNotifier(policy domain.NotificationPolicy) *Notifier {
	return &Notifier{policy: policy}
}

// Policy returns the active policy.
func (n *Notifier) Policy() domain.NotificationPolicy {
	return n.policy
}

// Notify stores notif with CreatedAt = now if policy allows it.
// It returns the new ID, or 0 when the entry was suppressed.
func (n *Notifier) Notify(s domain.Store, notif domain.Notification, now time.Time) (int64, error) {
	if n.isQuietHour(now) {
		return 0, nil
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayCount, err := s.CountNotificationsSince(dayStart)
	if err != nil {
		return 0, fmt.Errorf("count today: %w", err)
	}
	if todayCount >= n.policy.MaxPerDay {
		return 0, nil
	}

	notif.CreatedAt = now
	notif.Shown = false
	return s.CreateNotification(notif)
}

// isQuietHour returns true if t falls within quiet hours.
func (n *Notifier) isQuietHour(t time.Time) bool {
	startHour, startMin := parseHHMM(n.policy.QuietStart)
	endHour, endMin := parseHHMM(n.policy.QuietEnd)

	timeMinutes := t.Hour()*60 + t.Minute()
	startMinutes := startHour*60 + startMin
	endMinutes := endHour*60 + endMin

	if startMinutes == endMinutes {
		return false // no quiet window
	}
	if startMinutes > endMinutes {
		// Wraps midnight: e.g., 22:00 – 08:00
		return timeMinutes >= startMinutes || timeMinutes < endMinutes
	}
	return timeMinutes >= startMinutes && timeMinutes < endMinutes
}

// parseHHMM parses "HH:MM" into hour and minute.
func parseHHMM(s string) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m
}

// ValidateHHMM checks a quiet-hours bound.
func ValidateHHMM(s string) error {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return fmt.Errorf("invalid minute in %q", s)
	}
	return nil
}

// ─── Feed Entries ───────────────────────────────────────────────────────────

func badgeNotification(b domain.Badge) domain.Notification {
	return domain.Notification{
		Type:  domain.NotifyBadge,
		Title: "🎉 Badge Baru Terbuka!",
		Body:  fmt.Sprintf("Selamat! Anda mendapatkan badge %q %s", b.Name, b.Icon),
	}
}

func levelUpNotification(level int) domain.Notification {
	tier := TierFor(level)
	return domain.Notification{
		Type:  domain.NotifyLevelUp,
		Title: "⭐ Naik Level!",
		Body:  fmt.Sprintf("Luar biasa! Anda naik ke Level %d: %s", level, tier.Name),
	}
}

// streakMilestones maps the celebrated streak lengths to their labels.
var streakMilestones = map[int]struct{ name, icon string }{
	7:   {"7 Hari Berturut-turut", "🔥"},
	30:  {"30 Hari Istiqomah", "🌙"},
	100: {"100 Hari Master", "👑"},
}

func streakMilestoneNotification(streak int) (domain.Notification, bool) {
	m, ok := streakMilestones[streak]
	if !ok {
		return domain.Notification{}, false
	}
	return domain.Notification{
		Type:  domain.NotifyMilestone,
		Title: "🔥 Streak Milestone!",
		Body:  fmt.Sprintf("Selamat! Anda mencapai %q %s", m.name, m.icon),
	}, true
}

func freezeUsedNotification() domain.Notification {
	return domain.Notification{
		Type:  domain.NotifyFreezeUsed,
		Title: "❄️ Streak Freeze Digunakan",
		Body:  "Streak Anda diselamatkan oleh freeze mingguan. Freeze baru tersedia setelah 7 hari berturut-turut.",
	}
}

func challengeNotification(c domain.DailyChallenge) domain.Notification {
	return domain.Notification{
		Type:  domain.NotifyChallenge,
		Title: "🎯 Tantangan Harian Selesai!",
		Body:  fmt.Sprintf("%s selesai, +%d XP", c.Title, c.XPReward),
	}
}
