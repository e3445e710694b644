package service

import (
	"context"

	"dailyPlanner/internal/models/task"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	// Update сверяет Version с хранимой и увеличивает её
	Update(context.Context, *task.Task) error
	GetByID(context.Context, string) (*task.Task, error)
	List(context.Context) ([]*task.Task, error)
	Delete(context.Context, string) error
}
