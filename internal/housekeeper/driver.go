package housekeeper

import (
	"fmt"
	"time"
)

// run - цикл драйвера. Раз в ticksPerBeat тиков увеличивает heartbeat и
// выполняет задачи, срок которых наступил.
func (h *Housekeeper) run() {
	defer close(h.done)
	h.logger.Info("housekeeper started", "tick", h.tick)

	for h.sleepBeat() {
		beat := h.heartbeat.Add(1)
		h.scan(h.clock.Now(), beat)
	}

	h.logger.Info("housekeeper stopped", "heartbeat", h.Heartbeat())
}

// sleepBeat спит ticksPerBeat тиков, проверяя флаг остановки на каждом тике.
// Возвращает false, если драйвер должен завершиться.
func (h *Housekeeper) sleepBeat() bool {
	for i := 0; i < ticksPerBeat; i++ {
		if h.shutdown.Load() {
			return false
		}
		h.clock.Sleep(h.tick)
	}
	return !h.shutdown.Load()
}

// scan выполняет все задачи со сроком не позже now. После каждой выполненной
// задачи обход начинается с начала реестра: задача могла изменить реестр.
// Обход конечен, так как повторяющаяся задача получает срок в будущем до запуска,
// а одноразовая удаляется после выполнения.
func (h *Housekeeper) scan(now time.Time, beat int64) {
	now = now.Truncate(time.Second)
	for {
		c, ok := h.reg.claimDue(now)
		if !ok {
			return
		}
		h.execute(c, beat)
		if c.kind == OneShot {
			h.reg.removeID(c.id)
		}
	}
}

// execute выполняет задачу вне блокировки реестра.
func (h *Housekeeper) execute(c claim, beat int64) {
	if h.hooks.OnTaskStart != nil {
		h.callHook(c.name, func() { h.hooks.OnTaskStart(c.name, c.kind) })
	}

	started := h.clock.Now()
	err := h.invoke(c)
	run := Run{
		Name:      c.name,
		Kind:      c.kind,
		Heartbeat: beat,
		Started:   started,
		Duration:  h.clock.Since(started),
		Err:       err,
	}

	if err != nil {
		h.logger.Error("task failed", "task", c.name, "kind", c.kind.String(), "error", err, "duration", run.Duration)
	} else {
		h.logger.Debug("task completed", "task", c.name, "kind", c.kind.String(), "duration", run.Duration)
	}
	if h.slowThreshold > 0 && run.Duration > h.slowThreshold {
		h.logger.Warn("slow task execution", "task", c.name, "duration", run.Duration)
	}

	if h.hooks.OnTaskFinish != nil {
		h.callHook(c.name, func() { h.hooks.OnTaskFinish(run) })
	}
}

// invoke вызывает функцию задачи, превращая панику в ошибку.
func (h *Housekeeper) invoke(c claim) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return c.fn(h.ctx, c.data)
}

func (h *Housekeeper) callHook(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("task hook panicked", "task", name, "panic", r)
		}
	}()
	fn()
}
