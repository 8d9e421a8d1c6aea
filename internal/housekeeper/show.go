package housekeeper

import (
	"fmt"
	"io"
	"time"
)

// ShowTasks выводит таблицу задач: имя, тип, интервал в секундах и время следующего запуска.
// Снимок реестра делается до вывода, блокировка на время записи не удерживается.
func (h *Housekeeper) ShowTasks(w io.Writer) error {
	return renderTasks(w, h.Tasks(), h.loc)
}

func renderTasks(w io.Writer, tasks []TaskInfo, loc *time.Location) error {
	if _, err := fmt.Fprintf(w, "%-25s | Type     | Frequency | Next Due\n", "Name"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "--------------------------+----------+-----------+-------------------------"); err != nil {
		return err
	}
	for _, t := range tasks {
		_, err := fmt.Fprintf(w, "%-25s | %-8s | %-9d | %s\n",
			t.Name,
			t.Kind,
			int64(t.Interval/time.Second),
			t.NextDue.In(loc).Format(time.ANSIC),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
