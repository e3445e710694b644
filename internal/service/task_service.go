package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/models/task"
	"dailyPlanner/internal/planner"
	rep "dailyPlanner/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type RepoType string

const (
	InMemoryType RepoType = "inmemory"
	DBType       RepoType = "postgres"
	SQLiteType   RepoType = "sqlite"
)

type TaskService struct {
	repo     TaskRepository
	repoType RepoType
	now      func() time.Time
}

func NewTaskService(repo TaskRepository, repoType RepoType) *TaskService {
	return &TaskService{
		repo:     repo,
		repoType: repoType,
		now:      time.Now,
	}
}

func (s *TaskService) RepoType() RepoType {
	return s.repoType
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, title, description string, deadline time.Time, status task.Status) (*task.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "название не может быть пустым")
	}
	if deadline.IsZero() {
		return nil, NewValidationError("deadline", "дедлайн должен быть задан")
	}
	if status == "" {
		status = task.StatusToDo
	}
	if !status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("неизвестный статус %q", status))
	}

	newTask := &task.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Status:      status,
		Deadline:    deadline,
		CreatedAt:   s.now(),
		Version:     1,
	}

	if err := s.repo.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.String("task_id", newTask.ID))
	return newTask, nil
}

func (s *TaskService) ListTasks(ctx context.Context) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// ListTasksForDate отдаёт задачи дня в том же порядке, что показывает планировщик
func (s *TaskService) ListTasksForDate(ctx context.Context, date time.Time) ([]*task.Task, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]task.Task, len(tasks))
	for i, t := range tasks {
		values[i] = *t
	}

	selected := planner.SelectForDate(values, date)
	res := make([]*task.Task, len(selected))
	for i := range selected {
		res[i] = &selected[i]
	}
	return res, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id string) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id))
			return nil, NewNotFound(s.repoType, id)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

// UpdateTask применяет опции к задаче. Если version передан, он должен совпасть с текущим.
func (s *TaskService) UpdateTask(ctx context.Context, id string, version *int, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if version != nil && *version != t.Version {
		logger.Warn("Service: Конфликт версий",
			zap.String("task_id", id),
			zap.Int("expected_version", *version),
			zap.Int("actual_version", t.Version))
		return nil, NewVersionConflict(id, *version, t.Version)
	}

	task.Apply(t, options...)

	if strings.TrimSpace(t.Title) == "" {
		return nil, NewValidationError("title", "название не может быть пустым")
	}
	if !t.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("неизвестный статус %q", t.Status))
	}

	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, rep.ErrVersionConflict) {
			return nil, NewVersionConflict(id, t.Version, t.Version+1)
		}
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(s.repoType, id)
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	logger.Info("Service: Задача обновлена", zap.String("task_id", id), zap.Int("version", t.Version))
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) (*task.Task, error) {
	t, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(s.repoType, id)
		}
		return nil, fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id))
	return t, nil
}
