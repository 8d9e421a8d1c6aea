// Package housekeeper provides an in-process scheduler for periodic and
// delayed tasks together with a coarse logical clock (heartbeat).
//
// Features:
//   - Repeated tasks with a fixed interval in whole seconds
//   - One-shot tasks executed once after a delay and then removed
//   - A single driver goroutine executing due tasks strictly one at a time
//   - Re-entrant Control API: tasks may add or remove tasks, including themselves
//   - Heartbeat counter incremented once per ten driver ticks (~1 second)
//   - Cooperative shutdown polled on every tick (100ms)
//   - Error and panic recovery around every task
//   - Structured logging with slog and optional hooks for observability
//   - Injectable clock (github.com/jonboulle/clockwork) for tests
//
// Basic usage:
//
//	hk := housekeeper.New(housekeeper.Config{Logger: logger})
//	hk.Start()
//	defer hk.Shutdown()
//
//	due, err := hk.AddRepeated("session-sweep", func(ctx context.Context, data any) error {
//		return data.(*SessionTable).Sweep(ctx)
//	}, sessions, 30*time.Second)
//
//	hk.AddOneShot("bootstrap", func(ctx context.Context, _ any) error {
//		return warmUp(ctx)
//	}, nil, 2*time.Second)
//
//	hk.ShowTasks(os.Stdout)
//
// Scheduling rules:
//   - A repeated task added at T with interval I first runs at T+I. After a run
//     at T' its next due time is T'+I, so a delayed driver does not replay
//     missed runs.
//   - Registering a repeated task whose name is already used by another
//     repeated task fails with ErrDuplicateName. One-shot tasks are not checked
//     for duplicates.
//   - Every task that is due when a scan starts runs exactly once in that scan.
//     After each run the scan restarts from the head of the registry, so a task
//     inserted already due by another task runs in the same scan.
//   - Shutdown never interrupts a running task; the driver exits at the next tick
//     after the task returns.
package housekeeper
