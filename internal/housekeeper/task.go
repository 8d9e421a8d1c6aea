package housekeeper

import (
	"context"
	"time"
)

// Kind определяет тип задачи.
type Kind int

const (
	// Repeated - задача выполняется повторно с фиксированным интервалом.
	Repeated Kind = iota
	// OneShot - задача выполняется один раз и удаляется из реестра.
	OneShot
)

// String возвращает метку типа для диагностического вывода.
func (k Kind) String() string {
	switch k {
	case Repeated:
		return "Repeated"
	case OneShot:
		return "One-Shot"
	default:
		return "Unknown"
	}
}

// TaskFunc представляет функцию задачи. data передаётся без копирования,
// владельцем данных остаётся вызывающая сторона.
type TaskFunc func(ctx context.Context, data any) error

// TaskInfo - снимок состояния задачи для диагностики.
type TaskInfo struct {
	Name     string
	Kind     Kind
	Interval time.Duration
	NextDue  time.Time
}

// Run описывает одно выполнение задачи.
type Run struct {
	Name      string
	Kind      Kind
	Heartbeat int64
	Started   time.Time
	Duration  time.Duration
	Err       error
}

// TaskHooks содержит необязательные хуки для наблюдаемости.
// Хуки вызываются в горутине драйвера, поэтому должны быть быстрыми.
type TaskHooks struct {
	OnTaskStart  func(name string, kind Kind)
	OnTaskFinish func(run Run)
}

// task - запись реестра. Поля nextDue изменяются только под блокировкой реестра.
type task struct {
	id       uint64
	name     string
	kind     Kind
	interval time.Duration
	nextDue  time.Time
	fn       TaskFunc
	data     any
}

func (t *task) info() TaskInfo {
	return TaskInfo{Name: t.name, Kind: t.kind, Interval: t.interval, NextDue: t.nextDue}
}
