package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"housekeeper/internal/housekeeper"
	"housekeeper/internal/journal"
)

// Names of the tasks the application registers on startup.
const (
	taskJournalPrune    = "journal-prune"
	taskHeartbeatReport = "heartbeat-report"
	taskBootstrap       = "bootstrap"
)

type builtins struct {
	log             *slog.Logger
	journal         *journal.Store
	retention       time.Duration
	pruneEvery      time.Duration
	heartbeatReport time.Duration
}

// pruneJob is the opaque payload of the journal-prune task.
type pruneJob struct {
	store     *journal.Store
	retention time.Duration
	log       *slog.Logger
	now       func() time.Time
}

func registerBuiltins(h *housekeeper.Housekeeper, b builtins) error {
	if b.journal != nil {
		job := &pruneJob{store: b.journal, retention: b.retention, log: b.log, now: time.Now}
		if _, err := h.AddRepeated(taskJournalPrune, pruneJournal, job, b.pruneEvery); err != nil {
			return err
		}
	}
	if _, err := h.AddRepeated(taskHeartbeatReport, reportHeartbeat(b.log), h, b.heartbeatReport); err != nil {
		return err
	}
	if _, err := h.AddOneShot(taskBootstrap, logTaskTable(b.log), h, 0); err != nil {
		return err
	}
	return nil
}

func pruneJournal(ctx context.Context, data any) error {
	job, ok := data.(*pruneJob)
	if !ok {
		return fmt.Errorf("journal-prune: unexpected payload %T", data)
	}
	before := job.now().Add(-job.retention)
	n, err := job.store.Prune(ctx, before)
	if err != nil {
		return err
	}
	if n > 0 {
		job.log.Info("journal pruned", slog.Int64("removed", n), slog.Time("before", before))
	}
	return nil
}

func reportHeartbeat(log *slog.Logger) housekeeper.TaskFunc {
	return func(_ context.Context, data any) error {
		h, ok := data.(*housekeeper.Housekeeper)
		if !ok {
			return fmt.Errorf("heartbeat-report: unexpected payload %T", data)
		}
		log.Info("heartbeat", slog.Int64("heartbeat", h.Heartbeat()), slog.Int("tasks", h.Len()))
		return nil
	}
}

func logTaskTable(log *slog.Logger) housekeeper.TaskFunc {
	return func(_ context.Context, data any) error {
		h, ok := data.(*housekeeper.Housekeeper)
		if !ok {
			return fmt.Errorf("bootstrap: unexpected payload %T", data)
		}
		var buf bytes.Buffer
		if err := h.ShowTasks(&buf); err != nil {
			return err
		}
		for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
			log.Info(line)
		}
		return nil
	}
}
