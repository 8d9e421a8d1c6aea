package housekeeper

import (
	"errors"
	"fmt"

	"housekeeper/internal/shared"
)

var (
	// ErrDuplicateName возвращается при повторной регистрации повторяющейся задачи.
	ErrDuplicateName = fmt.Errorf("%w: duplicate task name", shared.ErrConflict)

	// ErrInvalidTask возвращается, если запись задачи не может быть построена.
	ErrInvalidTask = fmt.Errorf("%w: invalid task", shared.ErrValidation)

	// ErrTaskPanic оборачивает панику, перехваченную при выполнении задачи.
	ErrTaskPanic = shared.MarkKind(errors.New("task panicked"), shared.KindInternal)
)
