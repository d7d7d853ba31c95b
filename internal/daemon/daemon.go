package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lifequran/lifequran/internal/api"
	"github.com/lifequran/lifequran/internal/app/gamification"
	"github.com/lifequran/lifequran/internal/health"
	"github.com/lifequran/lifequran/internal/infra/sqlite"
	"github.com/lifequran/lifequran/internal/logger"
)

// Daemon is the core LifeQuran runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Engine *gamification.Engine
	Server *api.Server
	Health *health.Checker
	Log    *logger.Logger
	cancel context.CancelFunc
}

// New loads the configuration and creates a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	loc, _ := cfg.Location()

	if err := os.MkdirAll(cfg.Data.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sqlite.Open(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	policy := cfg.Gamification.Notifications
	eng := gamification.New(db, gamification.Options{
		Location:           loc,
		NotificationPolicy: &policy,
		Logger:             log.Named("gamification"),
	})

	ctx := context.Background()
	if err := eng.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if target := cfg.Gamification.DailyTargetPages; target > 0 {
		if err := eng.SetDailyTarget(ctx, target); err != nil {
			db.Close()
			return nil, err
		}
	}

	checker := health.NewChecker(db, cfg.Data.Dir, log.Named("health"))
	interval, _ := cfg.HealthInterval()
	checker.SetInterval(interval)

	srv := api.NewServer(eng, log.Named("api"))
	srv.SetHealthChecker(checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config: cfg,
		DB:     db,
		Engine: eng,
		Server: srv,
		Health: checker,
		Log:    log,
	}, nil
}

// Addr returns the listen address.
func (d *Daemon) Addr() string {
	return net.JoinHostPort(d.Config.API.Host, strconv.Itoa(d.Config.API.Port))
}

// Serve starts the HTTP server and blocks until ctx ends or a signal arrives.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	d.cancel = cancel
	defer cancel()

	go d.Health.Run(ctx)

	addr := d.Addr()
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	d.Log.Info("serving", "addr", "http://"+addr, "data_dir", d.Config.Data.Dir)
	if d.Config.Telemetry.Prometheus {
		d.Log.Info("metrics enabled", "url", "http://"+addr+"/metrics")
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	d.Log.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.Log != nil {
		d.Log.Sync()
	}
}
