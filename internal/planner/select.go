package planner

import (
	"cmp"
	"slices"
	"time"

	"dailyPlanner/internal/models/task"
)

// SelectForDate возвращает задачи, чей дедлайн приходится на календарный день date,
// в порядке показа: сначала toDo, потом completed, внутри группы по времени дедлайна.
//
// День сравнивается в часовом поясе date. Порядок задач с одинаковым статусом и
// одинаковым часом:минутой не гарантируется контрактом (сейчас сохраняется входной).
// Входной срез не изменяется.
func SelectForDate(tasks []task.Task, date time.Time) []task.Task {
	loc := date.Location()
	selected := make([]task.Task, 0, len(tasks))

	for _, t := range tasks {
		if !SameDay(t.Deadline, date) {
			continue
		}
		t.Deadline = t.Deadline.In(loc)
		selected = append(selected, t)
	}

	slices.SortStableFunc(selected, Compare)
	return selected
}

// SameDay сравнивает год, месяц и число дедлайна с date в часовом поясе date
func SameDay(deadline, date time.Time) bool {
	y1, m1, d1 := deadline.In(date.Location()).Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Compare: группа статуса, затем (час, минута) дедлайна.
// Дедлайны сравниваются в том поясе, в котором пришли.
func Compare(a, b task.Task) int {
	if c := cmp.Compare(bucket(a.Status), bucket(b.Status)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Deadline.Hour(), b.Deadline.Hour()); c != 0 {
		return c
	}
	return cmp.Compare(a.Deadline.Minute(), b.Deadline.Minute())
}

func bucket(s task.Status) int {
	if s == task.StatusCompleted {
		return 1
	}
	return 0
}

// Day форматирует заголовок дня, например "Wednesday, 1 May 2024"
func Day(date time.Time) string {
	return date.Format("Monday, 2 January 2006")
}

// StartOfDay обрезает время, оставляя полночь в том же поясе
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
