package dto

import (
	"time"

	"dailyPlanner/internal/models/task"
)

type CreateTaskRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Deadline    time.Time   `json:"deadline"`
	Status      task.Status `json:"status,omitempty"`
}

// клиент присылает задачу целиком, но все поля опциональны
type UpdateTaskRequest struct {
	ID          *string      `json:"id,omitempty"`
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Status      *task.Status `json:"status,omitempty"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	Version     *int         `json:"version,omitempty"`
}

type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Deadline    time.Time  `json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Version     int        `json:"version"`
}

type TasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// ответ GET /tasks/{id}
type TaskEnvelope struct {
	Task TaskResponse `json:"task"`
}

// ответ мутаций: сама задача и обновлённая коллекция
type MutationResponse struct {
	Message string         `json:"message"`
	Task    *TaskResponse  `json:"task,omitempty"`
	Tasks   []TaskResponse `json:"tasks"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Deadline:    t.Deadline,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Version:     t.Version,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

func (r TaskResponse) ToTask() task.Task {
	return task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      task.Status(r.Status),
		Deadline:    r.Deadline,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Version:     r.Version,
	}
}

func ToTaskList(responses []TaskResponse) []task.Task {
	result := make([]task.Task, len(responses))
	for i, r := range responses {
		result[i] = r.ToTask()
	}
	return result
}
