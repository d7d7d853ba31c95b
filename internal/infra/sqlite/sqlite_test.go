package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lifequran/lifequran/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// update runs fn in a committed transaction and fails the test on error.
func update(t *testing.T, db *DB, fn func(s domain.Store) error) {
	t.Helper()
	if err := db.Update(context.Background(), fn); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, FileName)); os.IsNotExist(err) {
		t.Error("state.db should exist")
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	update(t, db, func(s domain.Store) error {
		return s.UpdateUserStats(domain.StatsUpdate{TotalPagesRead: ptr(42)})
	})
	db.Close()

	db2, err := Open(dir)
	if err != nil {
		t.Fatalf("re-Open() error: %v", err)
	}
	defer db2.Close()
	db2.View(context.Background(), func(s domain.Store) error {
		st, err := s.GetUserStats()
		if err != nil {
			t.Fatalf("GetUserStats() error: %v", err)
		}
		if st.TotalPagesRead != 42 {
			t.Errorf("TotalPagesRead = %d, want 42", st.TotalPagesRead)
		}
		return nil
	})
}

func TestOpen_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Open(filepath.Join(file, "sub"))
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("Open() error = %v, want ErrStoreUnavailable", err)
	}
}

// ─── Transactions ───────────────────────────────────────────────────────────

func TestUpdate_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")

	err := db.Update(context.Background(), func(s domain.Store) error {
		if err := s.UpdateUserStats(domain.StatsUpdate{TotalXP: ptr(int64(999))}); err != nil {
			return err
		}
		if err := s.AppendXPTransaction(domain.XPTransaction{Amount: 999, Source: domain.XPReading}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}

	db.View(context.Background(), func(s domain.Store) error {
		st, _ := s.GetUserStats()
		if st.TotalXP != 0 {
			t.Errorf("TotalXP = %d after rollback, want 0", st.TotalXP)
		}
		txs, _ := s.ListXPTransactions(0)
		if len(txs) != 0 {
			t.Errorf("ledger rows = %d after rollback, want 0", len(txs))
		}
		return nil
	})
}

func TestUpdate_CanceledContext(t *testing.T) {
	db := newTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := db.Update(ctx, func(domain.Store) error { return nil })
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("Update(canceled) error = %v, want ErrStoreUnavailable", err)
	}
}

// ─── User Stats ─────────────────────────────────────────────────────────────

func TestGetUserStats_Defaults(t *testing.T) {
	db := newTestDB(t)
	update(t, db, func(s domain.Store) error {
		st, err := s.GetUserStats()
		if err != nil {
			return err
		}
		if st != domain.DefaultUserStats() {
			t.Errorf("GetUserStats() = %+v, want defaults", st)
		}
		if st.Level != 1 || st.DailyTargetPages != 2 || !st.FreezeAvailable {
			t.Errorf("unexpected defaults: %+v", st)
		}
		return nil
	})
}

func TestUpdateUserStats_Partial(t *testing.T) {
	db := newTestDB(t)
	update(t, db, func(s domain.Store) error {
		if err := s.UpdateUserStats(domain.StatsUpdate{
			TotalPagesRead: ptr(12),
			LastActiveDate: ptr("2025-03-01"),
			FreezeUsedDate: ptr("2025-02-27"),
		}); err != nil {
			return err
		}
		if err := s.UpdateUserStats(domain.StatsUpdate{TotalMinutes: ptr(30)}); err != nil {
			return err
		}
		st, err := s.GetUserStats()
		if err != nil {
			return err
		}
		if st.TotalPagesRead != 12 || st.TotalMinutes != 30 {
			t.Errorf("pages/minutes = %d/%d, want 12/30", st.TotalPagesRead, st.TotalMinutes)
		}
		if st.LastActiveDate != "2025-03-01" {
			t.Errorf("LastActiveDate = %q", st.LastActiveDate)
		}
		if st.DailyTargetPages != 2 {
			t.Errorf("DailyTargetPages = %d, untouched field changed", st.DailyTargetPages)
		}

		// Empty string clears a nullable date.
		if err := s.UpdateUserStats(domain.StatsUpdate{FreezeUsedDate: ptr("")}); err != nil {
			return err
		}
		st, _ = s.GetUserStats()
		if st.FreezeUsedDate != "" {
			t.Errorf("FreezeUsedDate = %q, want cleared", st.FreezeUsedDate)
		}
		return nil
	})
}

func TestUpdateUserStats_LongestNeverDecreases(t *testing.T) {
	db := newTestDB(t)
	update(t, db, func(s domain.Store) error {
		steps := []struct {
			current     int
			wantLongest int
		}{
			{1, 1}, {2, 2}, {5, 5}, {1, 5}, {3, 5}, {6, 6},
		}
		for _, step := range steps {
			if err := s.UpdateUserStats(domain.StatsUpdate{CurrentStreak: ptr(step.current)}); err != nil {
				return err
			}
			st, err := s.GetUserStats()
			if err != nil {
				return err
			}
			if st.LongestStreak != step.wantLongest {
				t.Errorf("current=%d: LongestStreak = %d, want %d", step.current, st.LongestStreak, step.wantLongest)
			}
		}

		// An explicit lower longest is ignored.
		if err := s.UpdateUserStats(domain.StatsUpdate{LongestStreak: ptr(2)}); err != nil {
			return err
		}
		st, _ := s.GetUserStats()
		if st.LongestStreak != 6 {
			t.Errorf("LongestStreak = %d after lower write, want 6", st.LongestStreak)
		}
		return nil
	})
}

// ─── XP Ledger ──────────────────────────────────────────────────────────────

func TestXPTransactions_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	update(t, db, func(s domain.Store) error {
		for i, src := range []domain.XPSource{domain.XPReading, domain.XPStreakBonus, domain.XPBadgeUnlock} {
			if err := s.AppendXPTransaction(domain.XPTransaction{
				Amount:     int64(10 * (i + 1)),
				Source:     src,
				ActivityID: "act-1",
				CreatedAt:  now,
			}); err != nil {
				return err
			}
		}
		return nil
	})

	db.View(context.Background(), func(s domain.Store) error {
		txs, err := s.ListXPTransactions(2)
		if err != nil {
			t.Fatalf("ListXPTransactions() error: %v", err)
		}
		if len(txs) != 2 {
			t.Fatalf("len = %d, want 2", len(txs))
		}
		if txs[0].Source != domain.XPBadgeUnlock || txs[0].Amount != 30 {
			t.Errorf("first = %+v, want badge_unlock 30", txs[0])
		}
		if txs[0].ActivityID != "act-1" {
			t.Errorf("ActivityID = %q", txs[0].ActivityID)
		}
		return nil
	})
}

// ─── Badges ─────────────────────────────────────────────────────────────────

func testBadges() []domain.Badge {
	return []domain.Badge{
		{ID: "a", Name: "A", Icon: "1", Category: domain.BadgeReading, RequirementType: domain.ReqPagesRead, RequirementValue: 1, XPReward: 10},
		{ID: "b", Name: "B", Icon: "2", Category: domain.BadgeStreak, RequirementType: domain.ReqStreak, RequirementValue: 3, XPReward: 30},
	}
}

func TestSeedBadges_OnlyWhenEmpty(t *testing.T) {
	db := newTestDB(t)
	update(t, db, func(s domain.Store) error {
		if err := s.SeedBadges(testBadges()); err != nil {
			return err
		}
		if err := s.SeedBadges([]domain.Badge{{ID: "c", Name: "C"}}); err != nil {
			return err
		}
		all, err := s.GetAllBadges()
		if err != nil {
			return err
		}
		if len(all) != 2 {
			t.Fatalf("len(badges) = %d, want 2", len(all))
		}
		if all[0].ID != "a" || all[1].ID != "b" {
			t.Errorf("order = %s,%s, want a,b", all[0].ID, all[1].ID)
		}
		return nil
	})
}

func TestSetBadgeUnlocked_OneWay(t *testing.T) {
	db := newTestDB(t)
	at := time.Unix(1_700_000_000, 0)
	update(t, db, func(s domain.Store) error {
		if err := s.SeedBadges(testBadges()); err != nil {
			return err
		}
		flipped, err := s.SetBadgeUnlocked("a", at)
		if err != nil {
			return err
		}
		if !flipped {
			t.Error("first unlock should flip")
		}
		flipped, err = s.SetBadgeUnlocked("a", at.Add(time.Hour))
		if err != nil {
			return err
		}
		if flipped {
			t.Error("second unlock should not flip")
		}

		unlocked, err := s.ListUnlockedBadges(3)
		if err != nil {
			return err
		}
		if len(unlocked) != 1 || unlocked[0].ID != "a" {
			t.Fatalf("unlocked = %+v", unlocked)
		}
		if !unlocked[0].UnlockedAt.Equal(at) {
			t.Errorf("UnlockedAt = %v, want %v (stamped once)", unlocked[0].UnlockedAt, at)
		}
		return nil
	})
}

// ─── Daily Challenges ───────────────────────────────────────────────────────

func TestChallenge_CreateOncePerDate(t *testing.T) {
	db := newTestDB(t)
	tpl := domain.ChallengeTemplate{Title: "T1", Type: domain.ChallengePages, Target: 2, XPReward: 50}
	other := domain.ChallengeTemplate{Title: "T2", Type: domain.ChallengeAudio, Target: 1, XPReward: 20}

	update(t, db, func(s domain.Store) error {
		got, err := s.GetChallengeForDate("2025-03-01")
		if err != nil {
			return err
		}
		if got != nil {
			t.Error("expected nil challenge before create")
		}

		first, err := s.CreateChallenge("2025-03-01", tpl)
		if err != nil {
			return err
		}
		second, err := s.CreateChallenge("2025-03-01", other)
		if err != nil {
			return err
		}
		if second.ID != first.ID || second.Title != "T1" {
			t.Errorf("second create = %+v, want existing row", second)
		}
		if first.CurrentProgress != 0 || first.Completed {
			t.Errorf("fresh challenge = %+v", first)
		}
		return nil
	})
}

func TestSetChallengeProgress_ClampAndFreeze(t *testing.T) {
	db := newTestDB(t)
	tpl := domain.ChallengeTemplate{Title: "T", Type: domain.ChallengePages, Target: 2, XPReward: 50}
	at := time.Unix(1_700_000_000, 0)

	update(t, db, func(s domain.Store) error {
		if _, err := s.CreateChallenge("2025-03-01", tpl); err != nil {
			return err
		}
		if err := s.SetChallengeProgress("2025-03-01", 9, true, at); err != nil {
			return err
		}
		c, _ := s.GetChallengeForDate("2025-03-01")
		if c.CurrentProgress != 2 {
			t.Errorf("progress = %d, want clamped 2", c.CurrentProgress)
		}
		if !c.Completed || !c.CompletedAt.Equal(at) {
			t.Errorf("completion = %v at %v", c.Completed, c.CompletedAt)
		}

		// Completed rows are terminal.
		if err := s.SetChallengeProgress("2025-03-01", 0, false, at); err != nil {
			return err
		}
		c, _ = s.GetChallengeForDate("2025-03-01")
		if c.CurrentProgress != 2 || !c.Completed {
			t.Errorf("completed challenge mutated: %+v", c)
		}
		return nil
	})
}

// ─── Streak History & Notifications ─────────────────────────────────────────

func TestStreakHistory(t *testing.T) {
	db := newTestDB(t)
	update(t, db, func(s domain.Store) error {
		s.AppendStreakHistory(domain.StreakHistoryEntry{Date: "2025-03-01", StreakCount: 1})
		s.AppendStreakHistory(domain.StreakHistoryEntry{Date: "2025-03-03", StreakCount: 2, FreezeUsed: true})
		hist, err := s.ListStreakHistory(0)
		if err != nil {
			return err
		}
		if len(hist) != 2 {
			t.Fatalf("len = %d, want 2", len(hist))
		}
		if hist[0].Date != "2025-03-03" || !hist[0].FreezeUsed {
			t.Errorf("newest = %+v", hist[0])
		}
		return nil
	})
}

func TestNotifications(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	update(t, db, func(s domain.Store) error {
		id, err := s.CreateNotification(domain.Notification{
			Type: domain.NotifyBadge, Title: "t", Body: "b", CreatedAt: now,
		})
		if err != nil {
			return err
		}
		n, err := s.CountNotificationsSince(now.Add(-time.Minute))
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("count = %d, want 1", n)
		}
		if err := s.MarkNotificationShown(id); err != nil {
			return err
		}
		pending, _ := s.PendingNotifications(10)
		if len(pending) != 0 {
			t.Errorf("pending = %d, want 0", len(pending))
		}
		if err := s.MarkNotificationShown(id + 100); !errors.Is(err, domain.ErrNotificationNotFound) {
			t.Errorf("MarkNotificationShown(missing) = %v", err)
		}
		return nil
	})
}

// ─── Reset ──────────────────────────────────────────────────────────────────

func TestResetAll(t *testing.T) {
	db := newTestDB(t)
	update(t, db, func(s domain.Store) error {
		s.SeedBadges(testBadges())
		s.SetBadgeUnlocked("a", time.Now())
		s.UpdateUserStats(domain.StatsUpdate{TotalXP: ptr(int64(700)), CurrentStreak: ptr(4)})
		s.AppendXPTransaction(domain.XPTransaction{Amount: 700, Source: domain.XPReading})
		return s.ResetAll()
	})

	db.View(context.Background(), func(s domain.Store) error {
		st, _ := s.GetUserStats()
		if st != domain.DefaultUserStats() {
			t.Errorf("stats after reset = %+v", st)
		}
		all, _ := s.GetAllBadges()
		if len(all) != 2 {
			t.Errorf("catalog size after reset = %d, want 2", len(all))
		}
		for _, b := range all {
			if b.Unlocked {
				t.Errorf("badge %s still unlocked", b.ID)
			}
		}
		txs, _ := s.ListXPTransactions(0)
		if len(txs) != 0 {
			t.Errorf("ledger rows = %d, want 0", len(txs))
		}
		return nil
	})
}
