package task

import (
	"time"
)

// опция, изменяющая задачу при обновлении; nil-опции пропускаются
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	if title == "" {
		return nil
	}
	return func(task *Task) {
		task.Title = title
	}
}

// пустое описание допустимо: так пользователь его очищает
func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithStatus(status Status) TaskOption {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		task.Status = status
	}
}

func WithDeadline(deadline time.Time) TaskOption {
	if deadline.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.Deadline = deadline
	}
}

func Apply(t *Task, options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}
