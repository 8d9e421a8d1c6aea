// Package journal хранит историю выполнения задач в SQLite.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"housekeeper/internal/housekeeper"
	"housekeeper/internal/platform/sqlite"
	"housekeeper/internal/shared"
	"housekeeper/pkg/retry"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Entry - запись журнала об одном выполнении задачи.
type Entry struct {
	ID        int64         `json:"id"`
	Task      string        `json:"task"`
	Kind      string        `json:"kind"`
	Heartbeat int64         `json:"heartbeat"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
}

// Store - журнал выполнений поверх *sql.DB.
type Store struct {
	db    *sql.DB
	retry retry.Config
	log   *slog.Logger
}

// Open открывает (или создает) базу журнала по пути path и применяет миграции.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	db, err := sqlite.NewDB(ctx, path)
	if err != nil {
		return nil, shared.Wrap(err, "open journal")
	}
	if err := sqlite.ApplyMigrations(path, migrations, "migrations"); err != nil {
		_ = db.Close()
		return nil, shared.Wrap(err, "journal migrations")
	}
	return New(db, log), nil
}

// New оборачивает уже открытую базу. Схема должна быть применена заранее.
func New(db *sql.DB, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	cfg := retry.DefaultConfig()
	cfg.InitialDelay = 20 * time.Millisecond
	cfg.MaxDelay = time.Second
	cfg.MaxAttempts = 5
	return &Store{db: db, retry: cfg, log: log.With(slog.String("component", "journal"))}
}

// Close закрывает базу.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record сохраняет выполнение. SQLITE_BUSY повторяется с экспоненциальной
// задержкой, остальные ошибки возвращаются сразу.
func (s *Store) Record(ctx context.Context, run housekeeper.Run) error {
	var errText string
	if run.Err != nil {
		errText = run.Err.Error()
	}

	cfg := s.retry
	cfg.OnRetry = func(attempt int, err error, next time.Duration) {
		s.log.Debug("journal busy, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("next", next),
			slog.Any("error", err))
	}

	err := retry.DoWithRetryable(ctx, cfg, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO task_runs (task, kind, heartbeat, started_at, duration_ms, error)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.Name, run.Kind.String(), run.Heartbeat,
			run.Started.UnixMilli(), run.Duration.Milliseconds(), errText)
		return err
	}, sqlite.IsBusy)
	if err != nil {
		return shared.Wrapf(err, "record run of %q", run.Name)
	}
	return nil
}

// Recent возвращает до limit последних записей, новые первыми.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", shared.ErrValidation)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task, kind, heartbeat, started_at, duration_ms, error
		 FROM task_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, shared.Wrap(err, "query runs")
	}
	defer func() { _ = rows.Close() }()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e          Entry
			startedMs  int64
			durationMs int64
		)
		if err := rows.Scan(&e.ID, &e.Task, &e.Kind, &e.Heartbeat, &startedMs, &durationMs, &e.Error); err != nil {
			return nil, shared.Wrap(err, "scan run")
		}
		e.StartedAt = time.UnixMilli(startedMs).UTC()
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Wrap(err, "iterate runs")
	}
	return entries, nil
}

// Prune удаляет записи, начатые раньше before, и возвращает их количество.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM task_runs WHERE started_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, shared.Wrap(err, "prune runs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, shared.Wrap(err, "prune runs")
	}
	return n, nil
}

// Hook возвращает обработчик OnTaskFinish, который пишет каждое выполнение
// в журнал. Ошибки записи только логируются: драйвер не должен от них зависеть.
func (s *Store) Hook(ctx context.Context) func(housekeeper.Run) {
	return func(run housekeeper.Run) {
		if err := s.Record(ctx, run); err != nil {
			s.log.Warn("failed to record run", slog.String("task", run.Name), slog.Any("error", err))
		}
	}
}
