// Package health runs periodic checks over the gamification store and the
// data directory.
package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lifequran/lifequran/internal/domain"
	"github.com/lifequran/lifequran/internal/infra/metrics"
	"github.com/lifequran/lifequran/internal/logger"
)

// DefaultInterval is the time between check rounds.
const DefaultInterval = 60 * time.Second

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	log      *logger.Logger
}

// NewChecker creates a checker with the standard checks: store
// reachability, data directory writability and ledger consistency.
func NewChecker(store domain.Transactor, dataDir string, log *logger.Logger) *Checker {
	if log == nil {
		log = logger.Nop()
	}
	return &Checker{
		interval: DefaultInterval,
		log:      log,
		checks: []Check{
			{
				Name:    "sqlite",
				CheckFn: store.Ping,
			},
			{
				Name: "data_dir",
				CheckFn: func(ctx context.Context) error {
					return checkDataDir(dataDir)
				},
				RecoverFn: func(ctx context.Context) error {
					return os.MkdirAll(dataDir, 0o700)
				},
			},
			{
				Name: "xp_ledger",
				CheckFn: func(ctx context.Context) error {
					return checkLedger(ctx, store)
				},
			},
		},
	}
}

// SetInterval changes the time between rounds. Non-positive values are ignored.
func (c *Checker) SetInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce executes every check and records the results.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
			c.log.Warn("health check failed", "check", check.Name, "error", err)
			if check.RecoverFn != nil {
				metrics.HealthRecoveries.WithLabelValues(check.Name).Inc()
				if rerr := check.RecoverFn(ctx); rerr != nil {
					c.log.Error("health recovery failed", "check", check.Name, "error", rerr)
				}
			}
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		} else {
			s.Healthy = true
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkDataDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	probe, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := probe.Name()
	return errors.Join(probe.Close(), os.Remove(filepath.Clean(name)))
}

// checkLedger verifies that the cached XP total equals the ledger sum.
func checkLedger(ctx context.Context, store domain.Transactor) error {
	return store.View(ctx, func(s domain.Store) error {
		stats, err := s.GetUserStats()
		if err != nil {
			return err
		}
		txs, err := s.ListXPTransactions(0)
		if err != nil {
			return err
		}
		var sum int64
		for _, tx := range txs {
			sum += tx.Amount
		}
		if sum != stats.TotalXP {
			return fmt.Errorf("ledger sum %d != total xp %d", sum, stats.TotalXP)
		}
		return nil
	})
}
