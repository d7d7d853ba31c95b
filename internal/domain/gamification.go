// Package domain holds the pure gamification types shared by every layer.
// The engine drives reading retention through streaks, XP levels, badges,
// daily challenges, and an in-app notification feed.
package domain

import (
	"math"
	"time"
)

// DateLayout is the calendar-date format used for every per-day key.
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ─── User Stats ─────────────────────────────────────────────────────────────

// UserStats is the single aggregate row owned by the engine.
type UserStats struct {
	TotalPagesRead      int    `json:"total_pages_read"`
	TotalMinutes        int    `json:"total_minutes"`
	CurrentStreak       int    `json:"current_streak"`
	LongestStreak       int    `json:"longest_streak"`
	Level               int    `json:"level"`
	TotalXP             int64  `json:"total_xp"`
	LastActiveDate      string `json:"last_active_date,omitempty"` // "" = never active
	DailyTargetPages    int    `json:"daily_target_pages"`
	ChallengesCompleted int    `json:"challenges_completed"`
	FreezeAvailable     bool   `json:"freeze_available"`
	FreezeUsedDate      string `json:"freeze_used_date,omitempty"` // "" = not used this cycle
}

// JuzCompleted approximates finished juz as floor(pages / 20).
// Real juz boundaries vary (604 pages / 30 juz), so this is not exact.
func (s UserStats) JuzCompleted() int {
	return s.TotalPagesRead / PagesPerJuz
}

// PagesPerJuz is the page count used by the juz approximation.
const PagesPerJuz = 20

// DefaultUserStats returns the row created on first read.
func DefaultUserStats() UserStats {
	return UserStats{
		Level:            1,
		DailyTargetPages: 2,
		FreezeAvailable:  true,
	}
}

// StatsUpdate is a partial update of UserStats. Nil fields are left alone.
// An empty string in LastActiveDate or FreezeUsedDate stores NULL.
type StatsUpdate struct {
	TotalPagesRead      *int
	TotalMinutes        *int
	CurrentStreak       *int
	LongestStreak       *int
	Level               *int
	TotalXP             *int64
	LastActiveDate      *string
	DailyTargetPages    *int
	ChallengesCompleted *int
	FreezeAvailable     *bool
	FreezeUsedDate      *string
}

// IsEmpty reports whether the update touches no field.
func (u StatsUpdate) IsEmpty() bool {
	return u.TotalPagesRead == nil && u.TotalMinutes == nil &&
		u.CurrentStreak == nil && u.LongestStreak == nil &&
		u.Level == nil && u.TotalXP == nil && u.LastActiveDate == nil &&
		u.DailyTargetPages == nil && u.ChallengesCompleted == nil &&
		u.FreezeAvailable == nil && u.FreezeUsedDate == nil
}

// ─── XP Ledger ──────────────────────────────────────────────────────────────

// XPSource categorizes how XP was earned.
type XPSource string

const (
	XPReading        XPSource = "reading"
	XPAudioComplete  XPSource = "audio_complete"
	XPStreakBonus    XPSource = "streak_bonus"
	XPBadgeUnlock    XPSource = "badge_unlock"
	XPDailyChallenge XPSource = "daily_challenge"
)

// Valid reports whether s is a known source tag.
func (s XPSource) Valid() bool {
	switch s {
	case XPReading, XPAudioComplete, XPStreakBonus, XPBadgeUnlock, XPDailyChallenge:
		return true
	}
	return false
}

// XPTransaction is an immutable ledger row. The ledger is an audit trail;
// UserStats.TotalXP stays the source of truth.
type XPTransaction struct {
	ID          int64     `json:"id"`
	Amount      int64     `json:"amount"`
	Source      XPSource  `json:"source"`
	Description string    `json:"description,omitempty"`
	ActivityID  string    `json:"activity_id,omitempty"` // groups rows from one facade call
	CreatedAt   time.Time `json:"created_at"`
}

// XPResult is returned by every XP award.
type XPResult struct {
	NewTotalXP int64 `json:"new_total_xp"`
	OldLevel   int   `json:"old_level"`
	NewLevel   int   `json:"new_level"`
	LeveledUp  bool  `json:"leveled_up"`
}

// XPReward describes one award for display.
type XPReward struct {
	Amount      int64    `json:"amount"`
	Source      XPSource `json:"source"`
	Description string   `json:"description"`
}

// ─── Levels ─────────────────────────────────────────────────────────────────

// LevelTier is one row of the fixed level table.
type LevelTier struct {
	Level int    `json:"level"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	MinXP int64  `json:"min_xp"`
}

// LevelInfo is the read-only projection of cumulative XP.
type LevelInfo struct {
	Level       int     `json:"level"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	CurrentXP   int64   `json:"current_xp"`
	NextLevelXP int64   `json:"next_level_xp"`
	Progress    float64 `json:"progress"` // 0..1
	MaxLevel    bool    `json:"max_level"`
}

// ─── Streaks ────────────────────────────────────────────────────────────────

// StreakResult is the outcome of registering one day of activity.
type StreakResult struct {
	CurrentStreak   int  `json:"current_streak"`
	LongestStreak   int  `json:"longest_streak"`
	FreezeConsumed  bool `json:"freeze_consumed"`
	FreezeAvailable bool `json:"freeze_available"`
	WeeklyMilestone bool `json:"weekly_milestone"`
	Changed         bool `json:"changed"` // false on a same-day re-entry
}

// StreakStatus is the dashboard view of the streak.
type StreakStatus struct {
	CurrentStreak   int    `json:"current_streak"`
	LongestStreak   int    `json:"longest_streak"`
	FreezeAvailable bool   `json:"freeze_available"`
	FreezeUsedDate  string `json:"freeze_used_date,omitempty"`
	NextMilestone   int    `json:"next_milestone"`
	AtRisk          bool   `json:"at_risk"`
	Message         string `json:"message"`
}

// NextStreakMilestone returns the next multiple of 7 strictly above current.
func NextStreakMilestone(current int) int {
	return int(math.Ceil(float64(current+1)/7)) * 7
}

// StreakHistoryEntry is an append-only report row.
type StreakHistoryEntry struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	StreakCount int    `json:"streak_count"`
	FreezeUsed  bool   `json:"freeze_used"`
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgeCategory groups badges by theme.
type BadgeCategory string

const (
	BadgeReading   BadgeCategory = "reading"
	BadgeStreak    BadgeCategory = "streak"
	BadgeChallenge BadgeCategory = "challenge"
)

// RequirementType names the stat a badge threshold is compared against.
type RequirementType string

const (
	ReqPagesRead           RequirementType = "pages_read"
	ReqStreak              RequirementType = "streak"
	ReqJuzCompleted        RequirementType = "juz_completed"
	ReqChallengesCompleted RequirementType = "challenges_completed"
)

// Badge is a catalog entry with its one-way unlock state.
type Badge struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Icon             string          `json:"icon"`
	Category         BadgeCategory   `json:"category"`
	RequirementType  RequirementType `json:"requirement_type"`
	RequirementValue int             `json:"requirement_value"`
	XPReward         int64           `json:"xp_reward"`
	Unlocked         bool            `json:"unlocked"`
	UnlockedAt       time.Time       `json:"unlocked_at,omitempty"`
}

// ─── Daily Challenges ───────────────────────────────────────────────────────

// ChallengeType names which activity feeds a challenge.
type ChallengeType string

const (
	ChallengePages   ChallengeType = "pages"
	ChallengeMinutes ChallengeType = "minutes"
	ChallengeSurah   ChallengeType = "surah"
	ChallengeAudio   ChallengeType = "audio"
)

// ChallengeTemplate is one entry of the challenge pool.
type ChallengeTemplate struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Type        ChallengeType `json:"type"`
	Target      int           `json:"target"`
	XPReward    int64         `json:"xp_reward"`
}

// DailyChallenge is the single challenge row of a calendar date.
type DailyChallenge struct {
	ID              int64         `json:"id"`
	Date            string        `json:"date"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Type            ChallengeType `json:"challenge_type"`
	TargetValue     int           `json:"target_value"`
	CurrentProgress int           `json:"current_progress"`
	XPReward        int64         `json:"xp_reward"`
	Completed       bool          `json:"completed"`
	CompletedAt     time.Time     `json:"completed_at,omitempty"`
}

// ProgressPct returns completion percentage (0-100).
func (c DailyChallenge) ProgressPct() float64 {
	if c.TargetValue <= 0 {
		return 100.0
	}
	pct := float64(c.CurrentProgress) / float64(c.TargetValue) * 100.0
	if pct > 100.0 {
		pct = 100.0
	}
	return pct
}

// ─── Facade Results ─────────────────────────────────────────────────────────

// ActivityReport is what one reading/audio/minutes event produced.
type ActivityReport struct {
	ActivityID         string          `json:"activity_id"`
	Rewards            []XPReward      `json:"rewards"`
	TotalXP            int64           `json:"total_xp"`
	Level              int             `json:"level"`
	LeveledUp          bool            `json:"leveled_up"`
	Streak             *StreakResult   `json:"streak,omitempty"`
	Challenge          *DailyChallenge `json:"challenge,omitempty"`
	ChallengeCompleted bool            `json:"challenge_completed"`
	UnlockedBadges     []Badge         `json:"unlocked_badges,omitempty"`
}

// XPEarned sums the rewards of the report.
func (r ActivityReport) XPEarned() int64 {
	var total int64
	for _, rw := range r.Rewards {
		total += rw.Amount
	}
	return total
}

// Summary aggregates the dashboard view.
type Summary struct {
	Level          LevelInfo       `json:"level"`
	Streak         StreakStatus    `json:"streak"`
	DailyChallenge *DailyChallenge `json:"daily_challenge"`
	RecentBadges   []Badge         `json:"recent_badges"`
	Stats          UserStats       `json:"stats"`
}

// ─── Notifications ──────────────────────────────────────────────────────────

// NotificationType categorizes feed entries.
type NotificationType string

const (
	NotifyBadge      NotificationType = "badge_unlocked"
	NotifyLevelUp    NotificationType = "level_up"
	NotifyMilestone  NotificationType = "streak_milestone"
	NotifyFreezeUsed NotificationType = "freeze_used"
	NotifyChallenge  NotificationType = "challenge_complete"
)

// Notification is a user-facing feed entry.
type Notification struct {
	ID        int64            `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
	Shown     bool             `json:"shown"`
}

// NotificationPolicy governs how often feed entries are created.
type NotificationPolicy struct {
	MaxPerDay  int    `json:"max_per_day" toml:"max_per_day"`
	QuietStart string `json:"quiet_start" toml:"quiet_start"` // "22:00"
	QuietEnd   string `json:"quiet_end" toml:"quiet_end"`     // "08:00"
}

// DefaultNotificationPolicy returns the default feed policy.
func DefaultNotificationPolicy() NotificationPolicy {
	return NotificationPolicy{
		MaxPerDay:  3,
		QuietStart: "22:00",
		QuietEnd:   "08:00",
	}
}
