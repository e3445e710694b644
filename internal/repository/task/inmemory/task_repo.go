package inmemory

import (
	"context"
	"sync"
	"time"

	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/models/task"
	repo "dailyPlanner/internal/repository"
)

// наружу отдаются только копии, чтобы изменения шли через Update
type TaskStorage struct {
	storage map[string]*task.Task
	mtx     *sync.RWMutex
	ids     []string
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[string]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []string{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}
	if taskToCreate.Version == 0 {
		taskToCreate.Version = 1
	}

	stored := *taskToCreate
	s.storage[taskToCreate.ID] = &stored
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.storage[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if existed.Version != taskToUpdate.Version {
		return repo.ErrVersionConflict
	}

	now := time.Now()
	taskToUpdate.UpdatedAt = &now
	taskToUpdate.Version++

	stored := *taskToUpdate
	s.storage[taskToUpdate.ID] = &stored
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id string) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := *taskToGet
	return &res, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// все задачи в порядке создания
func (s *TaskStorage) List(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*task.Task, 0, len(s.ids))
	for _, id := range s.ids {
		t := *s.storage[id]
		res = append(res, &t)
	}
	return res, nil
}
