package housekeeper

import (
	"sync"
	"time"
)

// registry хранит задачи в порядке добавления и защищает их одним мьютексом.
// Мьютекс никогда не удерживается во время выполнения задачи.
type registry struct {
	mu    sync.Mutex
	tasks []*task
	seq   uint64
}

// claim - копия полей задачи, достаточная для её выполнения без блокировки.
// Задача может быть удалена из реестра во время выполнения, поэтому
// драйвер работает только с копией и никогда не хранит указатель на запись.
type claim struct {
	id   uint64
	name string
	kind Kind
	fn   TaskFunc
	data any
}

// insert добавляет задачу в конец реестра и возвращает время её первого запуска.
// Дубликаты имён проверяются только среди повторяющихся задач.
func (r *registry) insert(t *task) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.kind == Repeated {
		for _, e := range r.tasks {
			if e.kind == Repeated && e.name == t.name {
				return time.Time{}, ErrDuplicateName
			}
		}
	}

	r.seq++
	t.id = r.seq
	r.tasks = append(r.tasks, t)
	return t.nextDue, nil
}

// remove удаляет первую задачу с указанным именем.
func (r *registry) remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.tasks {
		if e.name == name {
			r.deleteLocked(i)
			return true
		}
	}
	return false
}

// removeID удаляет задачу по внутреннему идентификатору. Отсутствие записи не ошибка.
func (r *registry) removeID(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.tasks {
		if e.id == id {
			r.deleteLocked(i)
			return true
		}
	}
	return false
}

func (r *registry) deleteLocked(i int) {
	copy(r.tasks[i:], r.tasks[i+1:])
	r.tasks[len(r.tasks)-1] = nil
	r.tasks = r.tasks[:len(r.tasks)-1]
}

// claimDue проходит реестр с начала и возвращает первую задачу, срок которой наступил.
// Время следующего запуска повторяющейся задачи записывается до снятия блокировки.
func (r *registry) claimDue(now time.Time) (claim, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tasks {
		if t.nextDue.After(now) {
			continue
		}
		if t.kind == Repeated {
			t.nextDue = now.Add(t.interval)
		}
		return claim{id: t.id, name: t.name, kind: t.kind, fn: t.fn, data: t.data}, true
	}
	return claim{}, false
}

// snapshot возвращает копию состояния реестра.
func (r *registry) snapshot() []TaskInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TaskInfo, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.info())
	}
	return out
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}
