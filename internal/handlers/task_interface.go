package handlers

import (
	"context"
	"time"

	"dailyPlanner/internal/models/task"
)

type Service interface {
	HealthCheck(context.Context) error
	CreateTask(ctx context.Context, title, description string, deadline time.Time, status task.Status) (*task.Task, error)
	ListTasks(context.Context) ([]*task.Task, error)
	ListTasksForDate(context.Context, time.Time) ([]*task.Task, error)
	GetTaskByID(context.Context, string) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, version *int, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(context.Context, string) (*task.Task, error)
}
