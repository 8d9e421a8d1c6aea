package housekeeper

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"housekeeper/internal/shared"
)

// ParseEvery разбирает интервал в формате "@every 5m" или "5m".
// Cron-выражения с календарным расписанием не поддерживаются: драйвер
// планирует задачи только с фиксированным интервалом.
func ParseEvery(spec string) (time.Duration, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, fmt.Errorf("%w: empty interval spec", shared.ErrValidation)
	}
	if !strings.HasPrefix(spec, "@") {
		spec = "@every " + spec
	}

	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return 0, shared.Wrapf(shared.MarkKind(err, shared.KindValidation), "parse interval %q", spec)
	}
	every, ok := sched.(cron.ConstantDelaySchedule)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a fixed interval", shared.ErrValidation, spec)
	}
	return every.Delay, nil
}
