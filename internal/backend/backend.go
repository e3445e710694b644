// Package backend описывает внешний источник задач, с которым работает планировщик.
// Планировщик не знает, REST это или Google Tasks.
package backend

import (
	"context"
	"errors"
	"fmt"

	"dailyPlanner/internal/models/task"
)

var (
	// бэкенд недоступен: сеть, таймаут, DNS
	ErrTransport = errors.New("бэкенд недоступен")
	// бэкенд ответил, но не тем кодом, который означает успех операции
	ErrUnexpectedStatus = errors.New("неожиданный код ответа")
	ErrNotFound         = errors.New("задача не найдена")
)

type Backend interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	CreateTask(ctx context.Context, draft task.Draft) error
	UpdateTask(ctx context.Context, t task.Task) error
	DeleteTask(ctx context.Context, id string) error
}

type StatusError struct {
	Op       string
	Code     int
	Expected int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: код %d, ожидался %d", e.Op, e.Code, e.Expected)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
