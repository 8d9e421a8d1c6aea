package housekeeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultTick - период опроса флага остановки.
	DefaultTick = 100 * time.Millisecond
	// ticksPerBeat - количество тиков между увеличениями heartbeat и проверками задач.
	ticksPerBeat = 10
)

// Config содержит конфигурацию планировщика.
type Config struct {
	Logger *slog.Logger
	// Clock - источник времени и сна (по умолчанию реальные часы).
	Clock clockwork.Clock
	// Tick - период тика драйвера (по умолчанию DefaultTick).
	Tick time.Duration
	// SlowThreshold - длительность, после которой выполнение задачи логируется как медленное.
	SlowThreshold time.Duration
	// Location - часовой пояс для диагностического вывода (по умолчанию time.Local).
	Location *time.Location
	Hooks    TaskHooks
}

// Housekeeper выполняет периодические и отложенные задачи в одной фоновой горутине
// и ведёт счётчик heartbeat.
type Housekeeper struct {
	reg registry

	clock         clockwork.Clock
	logger        *slog.Logger
	hooks         TaskHooks
	tick          time.Duration
	slowThreshold time.Duration
	loc           *time.Location

	ctx       context.Context
	heartbeat atomic.Int64
	shutdown  atomic.Bool
	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// New создает новый экземпляр планировщика с background контекстом.
func New(cfg Config) *Housekeeper {
	return NewWithContext(context.Background(), cfg)
}

// NewWithContext создает планировщик, который останавливается при отмене parentCtx.
// Тот же контекст передаётся в функции задач.
func NewWithContext(parentCtx context.Context, cfg Config) *Housekeeper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	tick := cfg.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &Housekeeper{
		clock:         clock,
		logger:        logger,
		hooks:         cfg.Hooks,
		tick:          tick,
		slowThreshold: cfg.SlowThreshold,
		loc:           loc,
		ctx:           parentCtx,
		done:          make(chan struct{}),
	}
}

// now возвращает текущее время с точностью до секунды.
func (h *Housekeeper) now() time.Time {
	return h.clock.Now().Truncate(time.Second)
}

// AddRepeated регистрирует задачу, которая будет впервые выполнена через interval
// и далее повторяться каждые interval. Интервал округляется вниз до целых секунд.
// Возвращает время первого запуска.
func (h *Housekeeper) AddRepeated(name string, fn TaskFunc, data any, interval time.Duration) (time.Time, error) {
	interval = interval.Truncate(time.Second)
	if err := validate(name, fn); err != nil {
		return h.rejected(name, Repeated, err)
	}
	if interval <= 0 {
		return h.rejected(name, Repeated, fmt.Errorf("%w: interval must be at least one second", ErrInvalidTask))
	}

	due, err := h.reg.insert(&task{
		name:     name,
		kind:     Repeated,
		interval: interval,
		nextDue:  h.now().Add(interval),
		fn:       fn,
		data:     data,
	})
	if err != nil {
		return h.rejected(name, Repeated, err)
	}

	h.logger.Debug("task added", "task", name, "kind", Repeated.String(), "interval", interval, "next_due", due)
	return due, nil
}

// AddOneShot регистрирует задачу, которая будет выполнена один раз через delay.
// Имена одноразовых задач не проверяются на уникальность.
func (h *Housekeeper) AddOneShot(name string, fn TaskFunc, data any, delay time.Duration) (time.Time, error) {
	delay = delay.Truncate(time.Second)
	if err := validate(name, fn); err != nil {
		return h.rejected(name, OneShot, err)
	}
	if delay < 0 {
		return h.rejected(name, OneShot, fmt.Errorf("%w: negative delay", ErrInvalidTask))
	}

	due, err := h.reg.insert(&task{
		name:    name,
		kind:    OneShot,
		nextDue: h.now().Add(delay),
		fn:      fn,
		data:    data,
	})
	if err != nil {
		return h.rejected(name, OneShot, err)
	}

	h.logger.Debug("task added", "task", name, "kind", OneShot.String(), "next_due", due)
	return due, nil
}

func validate(name string, fn TaskFunc) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTask)
	}
	if fn == nil {
		return fmt.Errorf("%w: nil task function", ErrInvalidTask)
	}
	return nil
}

func (h *Housekeeper) rejected(name string, kind Kind, err error) (time.Time, error) {
	h.logger.Warn("task registration rejected", "task", name, "kind", kind.String(), "error", err)
	return time.Time{}, err
}

// Remove удаляет первую задачу с указанным именем.
// Возвращает false, если такой задачи нет. Безопасно вызывать из самой задачи.
func (h *Housekeeper) Remove(name string) bool {
	removed := h.reg.remove(name)
	if removed {
		h.logger.Debug("task removed", "task", name)
	}
	return removed
}

// Tasks возвращает снимок зарегистрированных задач в порядке реестра.
func (h *Housekeeper) Tasks() []TaskInfo {
	return h.reg.snapshot()
}

// Len возвращает количество зарегистрированных задач.
func (h *Housekeeper) Len() int {
	return h.reg.len()
}

// Heartbeat возвращает значение счётчика, увеличивающегося раз в десять тиков.
func (h *Housekeeper) Heartbeat() int64 {
	return h.heartbeat.Load()
}

// Start запускает драйвер. Повторные вызовы ничего не делают.
func (h *Housekeeper) Start() {
	h.startOnce.Do(func() {
		h.started.Store(true)
		go h.run()

		// Отмена родительского контекста равносильна Shutdown
		go func() {
			select {
			case <-h.ctx.Done():
				h.Shutdown()
			case <-h.done:
			}
		}()
	})
}

// Shutdown выставляет флаг остановки и сразу возвращается.
// Драйвер завершается в течение одного тика; выполняющаяся задача не прерывается.
func (h *Housekeeper) Shutdown() {
	h.stopOnce.Do(func() {
		h.logger.Info("housekeeper shutdown requested")
		h.shutdown.Store(true)
	})
}

// Done возвращает канал, закрывающийся после завершения драйвера.
func (h *Housekeeper) Done() <-chan struct{} {
	return h.done
}

// StopContext вызывает Shutdown и ждёт завершения драйвера не дольше дедлайна ctx.
func (h *Housekeeper) StopContext(ctx context.Context) error {
	h.Shutdown()
	if !h.started.Load() {
		return nil
	}
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		h.logger.Warn("housekeeper stop deadline exceeded, a task is still running")
		return ctx.Err()
	}
}

// IsRunning возвращает true, если драйвер запущен и ещё не завершился.
func (h *Housekeeper) IsRunning() bool {
	if !h.started.Load() {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}
