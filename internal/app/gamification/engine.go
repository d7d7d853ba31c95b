package gamification

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lifequran/lifequran/internal/domain"
	"github.com/lifequran/lifequran/internal/infra/metrics"
	"github.com/lifequran/lifequran/internal/logger"
)

// Input bounds.
const (
	MaxSurahID     = 114
	MaxDailyTarget = 604 // pages in a standard mushaf
	RecentBadges   = 3
)

// ActivityKind names the event a facade call processes.
type ActivityKind string

const (
	KindReading ActivityKind = "reading"
	KindAudio   ActivityKind = "audio"
	KindMinutes ActivityKind = "minutes"
)

// Activity identifies one facade call. Every ledger row it writes carries
// the same ID and timestamp.
type Activity struct {
	ID   string
	Kind ActivityKind
	At   time.Time
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Location           *time.Location   // calendar-day boundary; default time.Local
	Clock              func() time.Time // default time.Now
	Rand               *rand.Rand       // challenge picks; default seeded from the clock
	NotificationPolicy *domain.NotificationPolicy
	Logger             *logger.Logger
}

// Engine is the gamification facade. Every call holds the engine mutex
// and runs inside one store transaction, so a read-compute-write cycle is
// never observed half-done and a failed step leaves no partial state.
type Engine struct {
	mu       sync.Mutex
	store    domain.Transactor
	loc      *time.Location
	clock    func() time.Time
	rng      *rand.Rand
	notifier *Notifier
	log      *logger.Logger
}

// New creates an engine over store.
func New(store domain.Transactor, opts Options) *Engine {
	e := &Engine{
		store: store,
		loc:   opts.Location,
		clock: opts.Clock,
		rng:   opts.Rand,
		log:   opts.Logger,
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(e.clock().UnixNano()))
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	policy := domain.DefaultNotificationPolicy()
	if opts.NotificationPolicy != nil {
		policy = *opts.NotificationPolicy
	}
	e.notifier = NewNotifier(policy)
	return e
}

// Init seeds the badge catalog on first run.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Update(ctx, SeedCatalog); err != nil {
		return fmt.Errorf("seed badge catalog: %w", err)
	}
	return nil
}

func (e *Engine) now() time.Time {
	return e.clock().In(e.loc)
}

// ─── Activity Processing ────────────────────────────────────────────────────

// ProcessReadingActivity records pages read today. In order it
// (1) adds the pages and reading XP, (2) advances the streak and awards the
// weekly bonus, (3) feeds today's challenge, (4) runs the badge pass.
func (e *Engine) ProcessReadingActivity(ctx context.Context, pages int) (domain.ActivityReport, error) {
	if pages <= 0 {
		return domain.ActivityReport{}, fmt.Errorf("%w, got %d", domain.ErrInvalidPages, pages)
	}
	return e.process(ctx, KindReading, func(s domain.Store, act Activity, r *reportBuilder) error {
		stats, err := s.GetUserStats()
		if err != nil {
			return err
		}
		total := stats.TotalPagesRead + pages
		if err := s.UpdateUserStats(domain.StatsUpdate{TotalPagesRead: &total}); err != nil {
			return err
		}
		if err := r.award(s, act, int64(pages)*XPPerPage, domain.XPReading, readingDescription(pages)); err != nil {
			return err
		}

		if err := e.advanceStreak(s, act, r); err != nil {
			return err
		}
		if err := e.feedChallenge(s, act, pages, r); err != nil {
			return err
		}
		return e.badgePass(s, act, r)
	})
}

// ProcessAudioCompletion records one fully listened surah.
func (e *Engine) ProcessAudioCompletion(ctx context.Context, surahID int) (domain.ActivityReport, error) {
	if surahID < 1 || surahID > MaxSurahID {
		return domain.ActivityReport{}, fmt.Errorf("%w, got %d", domain.ErrInvalidSurah, surahID)
	}
	return e.process(ctx, KindAudio, func(s domain.Store, act Activity, r *reportBuilder) error {
		if err := r.award(s, act, XPPerAudioSurah, domain.XPAudioComplete, audioDescription(surahID)); err != nil {
			return err
		}
		if err := e.feedChallenge(s, act, 1, r); err != nil {
			return err
		}
		return e.badgePass(s, act, r)
	})
}

// RecordReadingMinutes adds reading time. It feeds minute challenges only.
func (e *Engine) RecordReadingMinutes(ctx context.Context, minutes int) (domain.ActivityReport, error) {
	if minutes <= 0 {
		return domain.ActivityReport{}, fmt.Errorf("%w, got %d", domain.ErrInvalidMinutes, minutes)
	}
	return e.process(ctx, KindMinutes, func(s domain.Store, act Activity, r *reportBuilder) error {
		stats, err := s.GetUserStats()
		if err != nil {
			return err
		}
		total := stats.TotalMinutes + minutes
		if err := s.UpdateUserStats(domain.StatsUpdate{TotalMinutes: &total}); err != nil {
			return err
		}
		if err := e.feedChallenge(s, act, minutes, r); err != nil {
			return err
		}
		return e.badgePass(s, act, r)
	})
}

func (e *Engine) advanceStreak(s domain.Store, act Activity, r *reportBuilder) error {
	res, err := RegisterActivity(s, act.At)
	if err != nil {
		return err
	}
	r.rep.Streak = &res
	if !res.Changed {
		return nil
	}
	if res.FreezeConsumed {
		r.freezeUsed = true
		if err := r.notify(s, freezeUsedNotification()); err != nil {
			return err
		}
	}
	if res.WeeklyMilestone {
		if err := r.award(s, act, XPStreakBonus, domain.XPStreakBonus, streakBonusDescription(res.CurrentStreak)); err != nil {
			return err
		}
	}
	if n, ok := streakMilestoneNotification(res.CurrentStreak); ok {
		if err := r.notify(s, n); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) feedChallenge(s domain.Store, act Activity, delta int, r *reportBuilder) error {
	c, err := GetOrCreateChallenge(s, domain.DateOf(act.At), e.rng)
	if err != nil {
		return err
	}
	r.rep.Challenge = &c
	if !feedsChallenge(act.Kind, c.Type) {
		return nil
	}

	p, err := UpdateProgress(s, c.Date, delta, act)
	if err != nil {
		return err
	}
	r.rep.Challenge = &p.Challenge
	if !p.CompletedNow {
		return nil
	}
	r.rep.ChallengeCompleted = true
	if p.Challenge.XPReward > 0 {
		r.record(p.Challenge.XPReward, domain.XPDailyChallenge, p.Challenge.Title)
	}
	return r.notify(s, challengeNotification(p.Challenge))
}

func (e *Engine) badgePass(s domain.Store, act Activity, r *reportBuilder) error {
	stats, err := s.GetUserStats()
	if err != nil {
		return err
	}
	unlocks, err := EvaluateUnlocks(s, stats, act)
	if err != nil {
		return err
	}
	for _, u := range unlocks {
		r.rep.UnlockedBadges = append(r.rep.UnlockedBadges, u.Badge)
		if u.Badge.XPReward > 0 {
			r.record(u.Badge.XPReward, domain.XPBadgeUnlock, u.Badge.Name)
		}
		if err := r.notify(s, badgeNotification(u.Badge)); err != nil {
			return err
		}
	}
	return nil
}

// process runs fn as one serialized unit of work and publishes metrics and
// logs after the transaction commits.
func (e *Engine) process(ctx context.Context, kind ActivityKind, fn func(domain.Store, Activity, *reportBuilder) error) (domain.ActivityReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	act := Activity{ID: uuid.NewString(), Kind: kind, At: e.now()}

	var r *reportBuilder
	err := e.store.Update(ctx, func(s domain.Store) error {
		r = &reportBuilder{rep: domain.ActivityReport{ActivityID: act.ID}, notifier: e.notifier, at: act.At}
		stats, err := s.GetUserStats()
		if err != nil {
			return err
		}
		r.startLevel = stats.Level

		if err := fn(s, act, r); err != nil {
			return err
		}

		final, err := s.GetUserStats()
		if err != nil {
			return err
		}
		r.rep.TotalXP = final.TotalXP
		r.rep.Level = final.Level
		r.rep.LeveledUp = final.Level > r.startLevel
		r.streak = final.CurrentStreak
		if r.rep.LeveledUp {
			return r.notify(s, levelUpNotification(final.Level))
		}
		return nil
	})
	metrics.ActivityDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ActivityErrors.WithLabelValues(string(kind)).Inc()
		e.log.Error("activity failed", "kind", kind, "activity_id", act.ID, "error", err)
		return domain.ActivityReport{}, err
	}

	r.publish(e.log, kind)
	return r.rep, nil
}

// reportBuilder accumulates one call's outcome inside the transaction.
type reportBuilder struct {
	rep        domain.ActivityReport
	notifier   *Notifier
	at         time.Time
	startLevel int
	streak     int
	freezeUsed bool
	notified   []domain.NotificationType
}

func (r *reportBuilder) award(s domain.Store, act Activity, amount int64, source domain.XPSource, desc string) error {
	if _, err := AwardXP(s, act, amount, source, desc); err != nil {
		return err
	}
	r.record(amount, source, desc)
	return nil
}

func (r *reportBuilder) record(amount int64, source domain.XPSource, desc string) {
	r.rep.Rewards = append(r.rep.Rewards, domain.XPReward{Amount: amount, Source: source, Description: desc})
}

func (r *reportBuilder) notify(s domain.Store, n domain.Notification) error {
	id, err := r.notifier.Notify(s, n, r.at)
	if err != nil {
		return err
	}
	if id > 0 {
		r.notified = append(r.notified, n.Type)
	}
	return nil
}

// publish emits metrics and log lines for a committed call.
func (r *reportBuilder) publish(log *logger.Logger, kind ActivityKind) {
	for _, rw := range r.rep.Rewards {
		metrics.XPAwarded.WithLabelValues(string(rw.Source)).Add(float64(rw.Amount))
	}
	for _, b := range r.rep.UnlockedBadges {
		metrics.BadgesUnlocked.WithLabelValues(string(b.Category)).Inc()
		log.Info("badge unlocked", "badge", b.ID, "name", b.Name, "activity_id", r.rep.ActivityID)
	}
	if r.rep.ChallengeCompleted && r.rep.Challenge != nil {
		metrics.ChallengesCompleted.WithLabelValues(string(r.rep.Challenge.Type)).Inc()
		log.Info("daily challenge completed", "date", r.rep.Challenge.Date, "title", r.rep.Challenge.Title)
	}
	if r.freezeUsed {
		metrics.StreakFreezes.Inc()
		log.Info("streak freeze consumed", "streak", r.streak)
	}
	if r.rep.LeveledUp {
		metrics.LevelUps.Inc()
		log.Info("level up", "level", r.rep.Level, "total_xp", r.rep.TotalXP)
	}
	for _, t := range r.notified {
		metrics.NotificationsCreated.WithLabelValues(string(t), "created").Inc()
	}
	metrics.TotalXP.Set(float64(r.rep.TotalXP))
	metrics.Level.Set(float64(r.rep.Level))
	metrics.StreakCurrent.Set(float64(r.streak))

	log.Debug("activity processed",
		"kind", kind,
		"activity_id", r.rep.ActivityID,
		"xp_earned", r.rep.XPEarned(),
		"total_xp", r.rep.TotalXP,
	)
}

// ─── Settings ───────────────────────────────────────────────────────────────

// SetDailyTarget changes the daily page goal.
func (e *Engine) SetDailyTarget(ctx context.Context, pages int) error {
	if pages < 1 || pages > MaxDailyTarget {
		return fmt.Errorf("%w, got %d", domain.ErrInvalidTarget, pages)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.store.Update(ctx, func(s domain.Store) error {
		return s.UpdateUserStats(domain.StatsUpdate{DailyTargetPages: &pages})
	})
	if err != nil {
		return err
	}
	e.log.Info("daily target updated", "pages", pages)
	return nil
}

// Reset wipes all progress and re-locks every badge. It is the only path
// that lowers total XP.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.store.Update(ctx, func(s domain.Store) error {
		if err := s.ResetAll(); err != nil {
			return err
		}
		if err := SeedCatalog(s); err != nil {
			return err
		}
		_, err := s.GetUserStats()
		return err
	})
	if err != nil {
		return err
	}
	def := domain.DefaultUserStats()
	metrics.TotalXP.Set(0)
	metrics.Level.Set(float64(def.Level))
	metrics.StreakCurrent.Set(0)
	e.log.Warn("gamification progress reset")
	return nil
}

// ─── Reads ──────────────────────────────────────────────────────────────────

func (e *Engine) view(ctx context.Context, fn func(domain.Store) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.View(ctx, fn)
}

// Stats returns the aggregate stats row.
func (e *Engine) Stats(ctx context.Context) (domain.UserStats, error) {
	var stats domain.UserStats
	err := e.view(ctx, func(s domain.Store) error {
		var err error
		stats, err = s.GetUserStats()
		return err
	})
	return stats, err
}

// LevelInfo projects the current XP onto the level table.
func (e *Engine) LevelInfo(ctx context.Context) (domain.LevelInfo, error) {
	stats, err := e.Stats(ctx)
	if err != nil {
		return domain.LevelInfo{}, err
	}
	return GetLevelInfo(stats.TotalXP), nil
}

// StreakStatus returns the streak dashboard view as of now.
func (e *Engine) StreakStatus(ctx context.Context) (domain.StreakStatus, error) {
	stats, err := e.Stats(ctx)
	if err != nil {
		return domain.StreakStatus{}, err
	}
	return GetStreakStatus(stats, e.now()), nil
}

// TodayChallenge returns today's challenge, creating it on first access.
func (e *Engine) TodayChallenge(ctx context.Context) (domain.DailyChallenge, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var c domain.DailyChallenge
	err := e.store.Update(ctx, func(s domain.Store) error {
		var err error
		c, err = GetOrCreateChallenge(s, domain.DateOf(e.now()), e.rng)
		return err
	})
	return c, err
}

// Badges returns the full catalog with unlock state.
func (e *Engine) Badges(ctx context.Context) ([]domain.Badge, error) {
	var badges []domain.Badge
	err := e.view(ctx, func(s domain.Store) error {
		var err error
		badges, err = s.GetAllBadges()
		return err
	})
	return badges, err
}

// Summary aggregates level, streak, today's challenge and the most recent
// unlocked badges.
func (e *Engine) Summary(ctx context.Context) (domain.Summary, error) {
	challenge, err := e.TodayChallenge(ctx)
	if err != nil {
		return domain.Summary{}, err
	}

	var sum domain.Summary
	err = e.view(ctx, func(s domain.Store) error {
		stats, err := s.GetUserStats()
		if err != nil {
			return err
		}
		recent, err := s.ListUnlockedBadges(RecentBadges)
		if err != nil {
			return err
		}
		sum = domain.Summary{
			Level:          GetLevelInfo(stats.TotalXP),
			Streak:         GetStreakStatus(stats, e.now()),
			DailyChallenge: &challenge,
			RecentBadges:   recent,
			Stats:          stats,
		}
		return nil
	})
	return sum, err
}

// XPHistory returns ledger rows, newest first. limit <= 0 returns all.
func (e *Engine) XPHistory(ctx context.Context, limit int) ([]domain.XPTransaction, error) {
	var txs []domain.XPTransaction
	err := e.view(ctx, func(s domain.Store) error {
		var err error
		txs, err = s.ListXPTransactions(limit)
		return err
	})
	return txs, err
}

// StreakHistory returns streak log rows, newest first.
func (e *Engine) StreakHistory(ctx context.Context, limit int) ([]domain.StreakHistoryEntry, error) {
	var hist []domain.StreakHistoryEntry
	err := e.view(ctx, func(s domain.Store) error {
		var err error
		hist, err = s.ListStreakHistory(limit)
		return err
	})
	return hist, err
}

// ─── Notification Feed ──────────────────────────────────────────────────────

// PendingNotifications returns feed entries not yet shown.
func (e *Engine) PendingNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	var notifs []domain.Notification
	err := e.view(ctx, func(s domain.Store) error {
		var err error
		notifs, err = s.PendingNotifications(limit)
		return err
	})
	return notifs, err
}

// MarkNotificationShown flags a feed entry as displayed.
func (e *Engine) MarkNotificationShown(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Update(ctx, func(s domain.Store) error {
		return s.MarkNotificationShown(id)
	})
}

// NotificationPolicy returns the active feed policy.
func (e *Engine) NotificationPolicy() domain.NotificationPolicy {
	return e.notifier.Policy()
}

// Ping checks that the store is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}
