package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"dailyPlanner/internal/models/task"
	"dailyPlanner/internal/repository"
	"dailyPlanner/internal/repository/task/inmemory"
	"dailyPlanner/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ service.TaskRepository = (*inmemory.TaskStorage)(nil)

func newTask(title string) *task.Task {
	return &task.Task{
		ID:       uuid.New().String(),
		Title:    title,
		Status:   task.StatusToDo,
		Deadline: time.Now().Add(24 * time.Hour),
	}
}

// TestTaskStorage_HealthCheck тестирует проверку здоровья
func TestTaskStorage_HealthCheck(t *testing.T) {
	storage := inmemory.NewTaskStorage()
	assert.NoError(t, storage.HealthCheck(context.Background()))
}

// TestTaskStorage_Create тестирует создание задачи
func TestTaskStorage_Create(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	taskToCreate := newTask("Test Task")
	err := storage.Create(ctx, taskToCreate)
	require.NoError(t, err)

	// Проверяем, что поля заполнены
	assert.False(t, taskToCreate.CreatedAt.IsZero())
	assert.Equal(t, 1, taskToCreate.Version)

	retrievedTask, err := storage.GetByID(ctx, taskToCreate.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Task", retrievedTask.Title)
}

// TestTaskStorage_GetByID тестирует получение задачи по ID
func TestTaskStorage_GetByID(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	taskToCreate := newTask("Test Get Task")
	require.NoError(t, storage.Create(ctx, taskToCreate))

	retrievedTask, err := storage.GetByID(ctx, taskToCreate.ID)
	require.NoError(t, err)
	assert.Equal(t, taskToCreate.ID, retrievedTask.ID)

	// изменения копии не попадают в хранилище
	retrievedTask.Title = "mutated"
	again, err := storage.GetByID(ctx, taskToCreate.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Get Task", again.Title)

	_, err = storage.GetByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTaskStorage_Update тестирует обновление задачи
func TestTaskStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	taskToCreate := newTask("Original Title")
	require.NoError(t, storage.Create(ctx, taskToCreate))

	toUpdate, err := storage.GetByID(ctx, taskToCreate.ID)
	require.NoError(t, err)
	toUpdate.Title = "Updated Title"
	toUpdate.Status = task.StatusCompleted

	require.NoError(t, storage.Update(ctx, toUpdate))
	assert.Equal(t, 2, toUpdate.Version)

	retrievedTask, err := storage.GetByID(ctx, taskToCreate.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", retrievedTask.Title)
	assert.Equal(t, task.StatusCompleted, retrievedTask.Status)
	assert.NotNil(t, retrievedTask.UpdatedAt)
	assert.Equal(t, 2, retrievedTask.Version)

	// устаревшая версия
	stale := *toUpdate
	stale.Version = 1
	assert.ErrorIs(t, storage.Update(ctx, &stale), repository.ErrVersionConflict)

	missing := newTask("missing")
	assert.ErrorIs(t, storage.Update(ctx, missing), repository.ErrNotFound)
}

// TestTaskStorage_Delete тестирует удаление
func TestTaskStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	first, second := newTask("first"), newTask("second")
	require.NoError(t, storage.Create(ctx, first))
	require.NoError(t, storage.Create(ctx, second))

	require.NoError(t, storage.Delete(ctx, first.ID))

	_, err := storage.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, second.ID, tasks[0].ID)

	assert.ErrorIs(t, storage.Delete(ctx, first.ID), repository.ErrNotFound)
}

// TestTaskStorage_List тестирует порядок выдачи
func TestTaskStorage_List(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	var created []string
	for i := 0; i < 5; i++ {
		tk := newTask(fmt.Sprintf("task %d", i))
		require.NoError(t, storage.Create(ctx, tk))
		created = append(created, tk.ID)
	}

	tasks, err = storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 5)
	for i, tk := range tasks {
		assert.Equal(t, created[i], tk.ID)
	}
}

// TestTaskStorage_Concurrent тестирует конкурентный доступ
func TestTaskStorage_Concurrent(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tk := newTask(fmt.Sprintf("concurrent %d", i))
			assert.NoError(t, storage.Create(ctx, tk))
			_, err := storage.GetByID(ctx, tk.ID)
			assert.NoError(t, err)
			_, err = storage.List(ctx)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 50)
}
