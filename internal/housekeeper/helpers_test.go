package housekeeper

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHousekeeper(t *testing.T, hooks TaskHooks) (*Housekeeper, *clockwork.FakeClock) {
	t.Helper()

	fc := clockwork.NewFakeClockAt(t0)
	h := New(Config{
		Logger:   discardLogger(),
		Clock:    fc,
		Location: time.UTC,
		Hooks:    hooks,
	})
	return h, fc
}

// start запускает драйвер и останавливает его после теста.
func start(t *testing.T, h *Housekeeper, fc *clockwork.FakeClock) {
	t.Helper()

	h.Start()
	t.Cleanup(func() {
		h.Shutdown()
		require.Eventually(t, func() bool {
			fc.Advance(DefaultTick)
			select {
			case <-h.Done():
				return true
			default:
				return false
			}
		}, 2*time.Second, time.Millisecond, "драйвер не остановился")
	})
}

// advanceTicks продвигает часы на n тиков, каждый раз дожидаясь сна драйвера.
func advanceTicks(t *testing.T, fc *clockwork.FakeClock, n int) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := 0; i < n; i++ {
		require.NoError(t, fc.BlockUntilContext(ctx, 1), "драйвер не уснул")
		fc.Advance(DefaultTick)
	}
}

// runCycles прогоняет n полных циклов драйвера и ждёт окончания последнего обхода.
func runCycles(t *testing.T, fc *clockwork.FakeClock, n int) {
	t.Helper()

	advanceTicks(t, fc, n*ticksPerBeat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, 1), "обход задач не завершился")
}

func counting(counter *atomic.Int64) TaskFunc {
	return func(ctx context.Context, data any) error {
		counter.Add(1)
		return nil
	}
}

func noop(context.Context, any) error { return nil }
