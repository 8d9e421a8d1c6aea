package app

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"housekeeper/internal/admin"
	"housekeeper/internal/config"
	"housekeeper/internal/housekeeper"
	"housekeeper/internal/journal"
	"housekeeper/internal/metrics"
	"housekeeper/internal/platform/logger"
)

const shutdownTimeout = 5 * time.Second

// App wires application components.
type App struct {
	cfg config.Config
	log *slog.Logger
}

// New creates a new App instance and loads configuration.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{
		Env:          cfg.Env,
		ConsoleLevel: cfg.Log.ConsoleLevel,
		FileLevel:    cfg.Log.FileLevel,
		File:         cfg.Log.File,
		App:          "housekeeper",
	})
	return &App{cfg: cfg, log: log}, nil
}

// Run starts the scheduler and the admin server and blocks until SIGINT or
// SIGTERM.
func (a *App) Run() error {
	defer func() { _ = logger.Close(a.log) }()
	a.log.Info("starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *journal.Store
	if a.cfg.Journal.Path != "" {
		var err error
		store, err = journal.Open(ctx, a.cfg.Journal.Path, a.log)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	var m *metrics.Metrics
	var record func(housekeeper.Run)
	if store != nil {
		// runs finishing during shutdown must still reach the journal
		record = store.Hook(context.WithoutCancel(ctx))
	}

	h := housekeeper.NewWithContext(ctx, housekeeper.Config{
		Logger:        a.log,
		SlowThreshold: a.cfg.Housekeeper.SlowThreshold,
		Hooks: housekeeper.TaskHooks{
			OnTaskFinish: func(run housekeeper.Run) {
				m.ObserveRun(run)
				if record != nil {
					record(run)
				}
			},
		},
	})
	m = metrics.New(h)

	if err := registerBuiltins(h, builtins{
		log:             a.log,
		journal:         store,
		retention:       a.cfg.Journal.Retention,
		pruneEvery:      a.cfg.Journal.PruneEvery,
		heartbeatReport: a.cfg.HeartbeatReportEvery,
	}); err != nil {
		return err
	}
	h.Start()

	var srv *admin.Server
	if a.cfg.Admin.Addr != "" {
		var runs admin.RunLister
		if store != nil {
			runs = store
		}
		srv = admin.New(a.cfg.Admin.Addr, admin.Deps{
			Scheduler: h,
			Runs:      runs,
			Metrics:   m.Handler(),
			Logger:    a.log,
		})
		srv.Start()
	}

	<-h.Done()
	a.log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := h.StopContext(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
