// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"dailyPlanner/internal/backend"
	"dailyPlanner/internal/models/task"
)

// FakeBackend is an in-memory implementation of backend.Backend for testing.
type FakeBackend struct {
	mu     sync.RWMutex
	tasks  []task.Task
	nextID int

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// Call counters
	ListCalls   int
	CreateCalls int
	UpdateCalls int
	DeleteCalls int
}

// NewFakeBackend creates a FakeBackend seeded with tasks.
func NewFakeBackend(tasks ...task.Task) *FakeBackend {
	f := &FakeBackend{}
	f.tasks = append(f.tasks, tasks...)
	f.nextID = len(tasks) + 1
	return f
}

// AddTask adds a task directly, bypassing error injection.
func (f *FakeBackend) AddTask(t task.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

// Stored returns a copy of the stored tasks.
func (f *FakeBackend) Stored() []task.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	res := make([]task.Task, len(f.tasks))
	copy(res, f.tasks)
	return res
}

// ListTasks implements backend.Backend.
func (f *FakeBackend) ListTasks(ctx context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	res := make([]task.Task, len(f.tasks))
	copy(res, f.tasks)
	return res, nil
}

// CreateTask implements backend.Backend.
func (f *FakeBackend) CreateTask(ctx context.Context, draft task.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.tasks = append(f.tasks, task.Task{
		ID:          fmt.Sprintf("%d", f.nextID),
		Title:       draft.Title,
		Description: draft.Description,
		Deadline:    draft.Deadline,
		Status:      draft.StatusOrDefault(),
	})
	f.nextID++
	return nil
}

// UpdateTask implements backend.Backend.
func (f *FakeBackend) UpdateTask(ctx context.Context, t task.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == t.ID {
			f.tasks[i] = t
			return nil
		}
	}
	return backend.ErrNotFound
}

// DeleteTask implements backend.Backend.
func (f *FakeBackend) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return backend.ErrNotFound
}

var _ backend.Backend = (*FakeBackend)(nil)
