package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dailyPlanner/internal/backend"
	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/models/task"

	"go.uber.org/zap"
)

// Planner хранит снимок всех задач и выбранный день.
// Любая успешная мутация заканчивается полной перезагрузкой снимка,
// частичных слияний нет. При ошибке снимок не меняется.
type Planner struct {
	backend backend.Backend
	now     func() time.Time
	loc     *time.Location

	mtx   sync.RWMutex
	tasks []task.Task
	date  time.Time
}

type Option func(*Planner)

func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

func WithLocation(loc *time.Location) Option {
	return func(p *Planner) {
		if loc != nil {
			p.loc = loc
		}
	}
}

func WithDate(date time.Time) Option {
	return func(p *Planner) {
		p.date = date
	}
}

func New(b backend.Backend, options ...Option) *Planner {
	p := &Planner{
		backend: b,
		now:     time.Now,
		loc:     time.Local,
		tasks:   []task.Task{},
	}
	for _, opt := range options {
		opt(p)
	}
	if p.date.IsZero() {
		p.date = p.now()
	}
	p.date = StartOfDay(p.date.In(p.loc))
	return p
}

// Refresh заменяет снимок полной коллекцией задач из бэкенда
func (p *Planner) Refresh(ctx context.Context) error {
	start := time.Now()

	tasks, err := p.backend.ListTasks(ctx)
	if err != nil {
		logger.Error("Planner: Не удалось получить задачи, остаются старые данные", err)
		return fmt.Errorf("получение задач: %w", err)
	}

	p.mtx.Lock()
	p.tasks = tasks
	p.mtx.Unlock()

	logger.Debug("Planner: Снимок задач обновлён",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))
	return nil
}

func (p *Planner) Create(ctx context.Context, draft task.Draft) error {
	if err := p.backend.CreateTask(ctx, draft); err != nil {
		logger.Error("Planner: Задача не сохранена", err, zap.String("title", draft.Title))
		return fmt.Errorf("создание задачи: %w", err)
	}
	return p.Refresh(ctx)
}

func (p *Planner) Update(ctx context.Context, t task.Task) error {
	if err := p.backend.UpdateTask(ctx, t); err != nil {
		logger.Error("Planner: Задача не обновлена", err, zap.String("task_id", t.ID))
		return fmt.Errorf("обновление задачи %s: %w", t.ID, err)
	}
	return p.Refresh(ctx)
}

func (p *Planner) Delete(ctx context.Context, id string) error {
	if err := p.backend.DeleteTask(ctx, id); err != nil {
		logger.Error("Planner: Задача не удалена", err, zap.String("task_id", id))
		return fmt.Errorf("удаление задачи %s: %w", id, err)
	}
	return p.Refresh(ctx)
}

// ToggleStatus переключает toDo <-> completed у задачи из текущего снимка
func (p *Planner) ToggleStatus(ctx context.Context, id string) error {
	t, ok := p.Find(id)
	if !ok {
		logger.Warn("Planner: Задача для переключения не найдена в снимке", zap.String("task_id", id))
		return fmt.Errorf("переключение статуса %s: %w", id, backend.ErrNotFound)
	}
	t.Status = t.Status.Toggle()
	return p.Update(ctx, t)
}

func (p *Planner) Find(id string) (task.Task, bool) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	for _, t := range p.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// Tasks - упорядоченные задачи выбранного дня
func (p *Planner) Tasks() []task.Task {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return SelectForDate(p.tasks, p.date)
}

// All - копия всего снимка
func (p *Planner) All() []task.Task {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	res := make([]task.Task, len(p.tasks))
	copy(res, p.tasks)
	return res
}

// DaysWithTasks - числа месяца, на которые есть хотя бы одна задача
func (p *Planner) DaysWithTasks(year int, month time.Month) map[int]bool {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	days := make(map[int]bool)
	for _, t := range p.tasks {
		y, m, d := t.Deadline.In(p.loc).Date()
		if y == year && m == month {
			days[d] = true
		}
	}
	return days
}

func (p *Planner) SelectDate(date time.Time) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.date = StartOfDay(date.In(p.loc))
}

func (p *Planner) ShiftDate(days int) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.date = p.date.AddDate(0, 0, days)
}

func (p *Planner) Today() {
	p.SelectDate(p.now())
}

func (p *Planner) SelectedDate() time.Time {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	return p.date
}

func (p *Planner) Location() *time.Location {
	return p.loc
}
