package planner_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"dailyPlanner/internal/models/task"
	"dailyPlanner/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func ids(tasks []task.Task) []string {
	res := make([]string, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, t.ID)
	}
	return res
}

// TestSelectForDate_Scenario тестирует пример из описания политики показа
func TestSelectForDate_Scenario(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Status: task.StatusToDo, Deadline: at(2024, 5, 1, 14, 30)},
		{ID: "2", Status: task.StatusToDo, Deadline: at(2024, 5, 1, 9, 0)},
		{ID: "3", Status: task.StatusCompleted, Deadline: at(2024, 5, 1, 8, 0)},
		{ID: "4", Status: task.StatusToDo, Deadline: at(2024, 5, 2, 10, 0)},
	}

	got := planner.SelectForDate(tasks, at(2024, 5, 1, 0, 0))

	assert.Equal(t, []string{"2", "1", "3"}, ids(got))
}

func TestSelectForDate_Empty(t *testing.T) {
	got := planner.SelectForDate(nil, at(2024, 5, 1, 0, 0))
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = planner.SelectForDate([]task.Task{
		{ID: "1", Status: task.StatusCompleted, Deadline: at(2024, 4, 30, 23, 59)},
		{ID: "2", Status: task.StatusToDo, Deadline: at(2024, 5, 2, 0, 0)},
	}, at(2024, 5, 1, 12, 0))
	assert.Empty(t, got)
}

func TestSelectForDate_DoesNotModifyInput(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Status: task.StatusCompleted, Deadline: at(2024, 5, 1, 8, 0)},
		{ID: "b", Status: task.StatusToDo, Deadline: at(2024, 5, 1, 9, 0)},
	}

	_ = planner.SelectForDate(tasks, at(2024, 5, 1, 0, 0))

	assert.Equal(t, []string{"a", "b"}, ids(tasks))
}

func TestSelectForDate_IdenticalDeadlines(t *testing.T) {
	deadline := at(2024, 5, 1, 10, 15)
	tasks := []task.Task{
		{ID: "x", Status: task.StatusToDo, Deadline: deadline},
		{ID: "y", Status: task.StatusToDo, Deadline: deadline},
		{ID: "z", Status: task.StatusToDo, Deadline: deadline.Add(30 * time.Second)},
	}

	var got []task.Task
	require.NotPanics(t, func() {
		got = planner.SelectForDate(tasks, deadline)
	})
	assert.Len(t, got, 3)
	assert.ElementsMatch(t, []string{"x", "y", "z"}, ids(got))
	assert.Equal(t, got, planner.SelectForDate(tasks, deadline))
}

// день определяется в поясе выбранной даты, а не в поясе дедлайна
func TestSelectForDate_UsesDateLocation(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*60*60)
	tasks := []task.Task{
		// 23:30 UTC 30 апреля = 01:30 1 мая в UTC+2
		{ID: "late", Status: task.StatusToDo, Deadline: at(2024, 4, 30, 23, 30)},
		{ID: "noon", Status: task.StatusToDo, Deadline: at(2024, 5, 1, 10, 0)},
	}

	got := planner.SelectForDate(tasks, time.Date(2024, 5, 1, 0, 0, 0, 0, madrid))

	require.Equal(t, []string{"late", "noon"}, ids(got))
	assert.Equal(t, 1, got[0].Deadline.Hour())
	assert.Equal(t, madrid, got[0].Deadline.Location())

	got = planner.SelectForDate(tasks, at(2024, 5, 1, 0, 0))
	assert.Equal(t, []string{"noon"}, ids(got))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b task.Task
		want int
	}{
		{
			name: "toDo before completed regardless of time",
			a:    task.Task{Status: task.StatusToDo, Deadline: at(2024, 5, 1, 23, 0)},
			b:    task.Task{Status: task.StatusCompleted, Deadline: at(2024, 5, 1, 1, 0)},
			want: -1,
		},
		{
			name: "completed after toDo",
			a:    task.Task{Status: task.StatusCompleted, Deadline: at(2024, 5, 1, 1, 0)},
			b:    task.Task{Status: task.StatusToDo, Deadline: at(2024, 5, 1, 23, 0)},
			want: 1,
		},
		{
			name: "earlier hour first",
			a:    task.Task{Status: task.StatusToDo, Deadline: at(2024, 5, 1, 9, 59)},
			b:    task.Task{Status: task.StatusToDo, Deadline: at(2024, 5, 1, 10, 0)},
			want: -1,
		},
		{
			name: "earlier minute first among completed",
			a:    task.Task{Status: task.StatusCompleted, Deadline: at(2024, 5, 1, 10, 45)},
			b:    task.Task{Status: task.StatusCompleted, Deadline: at(2024, 5, 1, 10, 5)},
			want: 1,
		},
		{
			name: "same bucket and time",
			a:    task.Task{Status: task.StatusToDo, Deadline: at(2024, 5, 1, 10, 5)},
			b:    task.Task{Status: task.StatusToDo, Deadline: at(2024, 5, 1, 10, 5)},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, planner.Compare(tt.a, tt.b))
		})
	}
}

// TestSelectForDate_Properties проверяет свойства на случайных наборах
func TestSelectForDate_Properties(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	statuses := []task.Status{task.StatusToDo, task.StatusCompleted}

	for round := 0; round < 50; round++ {
		tasks := make([]task.Task, 0, 40)
		for i := 0; i < 40; i++ {
			tasks = append(tasks, task.Task{
				ID:       fmt.Sprintf("%d-%d", round, i),
				Status:   statuses[rnd.Intn(2)],
				Deadline: at(2024, 5, 1+rnd.Intn(3), rnd.Intn(24), rnd.Intn(60)),
			})
		}
		date := at(2024, 5, 2, rnd.Intn(24), 0)

		got := planner.SelectForDate(tasks, date)

		// включение тогда и только тогда, когда совпадает день
		want := 0
		for _, tk := range tasks {
			if tk.Deadline.Day() == 2 {
				want++
			}
		}
		require.Len(t, got, want)

		for i := 0; i < len(got); i++ {
			assert.Equal(t, 2, got[i].Deadline.Day())
			for j := i + 1; j < len(got); j++ {
				a, b := got[i], got[j]
				assert.False(t, a.Status == task.StatusCompleted && b.Status == task.StatusToDo,
					"completed %s перед toDo %s", a.ID, b.ID)
				if a.Status == b.Status {
					ta := a.Deadline.Hour()*60 + a.Deadline.Minute()
					tb := b.Deadline.Hour()*60 + b.Deadline.Minute()
					assert.LessOrEqual(t, ta, tb)
				}
			}
		}

		// идемпотентность
		assert.Equal(t, got, planner.SelectForDate(tasks, date))
	}
}

func TestDay(t *testing.T) {
	assert.Equal(t, "Wednesday, 1 May 2024", planner.Day(at(2024, 5, 1, 17, 0)))
}
