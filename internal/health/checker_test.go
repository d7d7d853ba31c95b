package health

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/lifequran/lifequran/internal/domain"
	"github.com/lifequran/lifequran/internal/infra/sqlite"
	"github.com/lifequran/lifequran/internal/logger"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func statusOf(t *testing.T, c *Checker, name string) Status {
	t.Helper()
	for _, s := range c.Statuses() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("check %q not found in statuses", name)
	return Status{}
}

// ─── Checker Tests ──────────────────────────────────────────────────────────

func TestNewChecker(t *testing.T) {
	c := NewChecker(newTestDB(t), t.TempDir(), nil)
	if c == nil {
		t.Fatal("NewChecker() returned nil")
	}
	if len(c.checks) != 3 {
		t.Errorf("checks = %d, want 3", len(c.checks))
	}
	if c.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", c.interval, DefaultInterval)
	}
}

func TestChecker_RunOnceHealthy(t *testing.T) {
	c := NewChecker(newTestDB(t), t.TempDir(), nil)
	c.RunOnce(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("Statuses() = %d, want 3", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true when all checks pass")
	}
}

func TestChecker_IsHealthy_BeforeRun(t *testing.T) {
	c := NewChecker(newTestDB(t), t.TempDir(), nil)

	// No statuses yet: vacuously healthy.
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true before first run (no statuses)")
	}
}

func TestChecker_DataDirRecovered(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "missing")
	c := NewChecker(newTestDB(t), dataDir, nil)

	c.RunOnce(context.Background())
	if statusOf(t, c, "data_dir").Healthy {
		t.Error("data_dir should fail when missing")
	}
	info, err := os.Stat(dataDir)
	if err != nil {
		t.Fatalf("recovery should create the data dir: %v", err)
	}
	if perm := info.Mode().Perm(); runtime.GOOS != "windows" && perm&0o077 != 0 {
		t.Errorf("recovered data dir mode = %o, want owner-only", perm)
	}

	c.RunOnce(context.Background())
	if !statusOf(t, c, "data_dir").Healthy {
		t.Error("data_dir should be healthy after recovery")
	}
}

func TestChecker_DataDirIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	os.WriteFile(path, []byte("not a dir"), 0o644)

	c := NewChecker(newTestDB(t), path, nil)
	c.RunOnce(context.Background())

	if statusOf(t, c, "data_dir").Healthy {
		t.Error("data_dir should fail when path is a file")
	}
}

func TestChecker_LedgerMismatch(t *testing.T) {
	db := newTestDB(t)
	err := db.Update(context.Background(), func(s domain.Store) error {
		if err := s.AppendXPTransaction(domain.XPTransaction{
			Amount: 10, Source: domain.XPReading, CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		total := int64(25)
		return s.UpdateUserStats(domain.StatsUpdate{TotalXP: &total})
	})
	if err != nil {
		t.Fatal(err)
	}

	c := NewChecker(db, t.TempDir(), nil)
	c.RunOnce(context.Background())

	s := statusOf(t, c, "xp_ledger")
	if s.Healthy {
		t.Error("xp_ledger should fail when the total diverges from the ledger")
	}
	if s.Error == "" {
		t.Error("error message should be populated")
	}
}

func TestChecker_StoreClosed(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, t.TempDir(), nil)
	db.Close()

	c.RunOnce(context.Background())
	if statusOf(t, c, "sqlite").Healthy {
		t.Error("sqlite should fail once the store is closed")
	}
	if c.IsHealthy() {
		t.Error("IsHealthy() should be false")
	}
}

func TestChecker_CustomCheck(t *testing.T) {
	c := &Checker{
		log: logger.Nop(),
		checks: []Check{
			{
				Name: "always_fail",
				CheckFn: func(ctx context.Context) error {
					return os.ErrPermission
				},
			},
		},
	}

	c.RunOnce(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 1 {
		t.Fatalf("statuses = %d, want 1", len(statuses))
	}
	if statuses[0].Healthy {
		t.Error("always_fail check should not be healthy")
	}
}

func TestChecker_StatusesCopy(t *testing.T) {
	c := NewChecker(newTestDB(t), t.TempDir(), nil)
	c.RunOnce(context.Background())

	s1 := c.Statuses()
	s2 := c.Statuses()

	s1[0].Healthy = false
	if !s2[0].Healthy {
		t.Error("Statuses() should return a copy, not a reference")
	}
}

func TestChecker_RunStopsOnCancel(t *testing.T) {
	c := NewChecker(newTestDB(t), t.TempDir(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
