package task

import (
	"time"
)

type Task struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	Deadline    time.Time  `json:"deadline" db:"deadline"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at,omitempty"`
	Version     int        `json:"version" db:"version"`
}

// Draft - поля новой задачи без id, id назначает бэкенд
type Draft struct {
	Title       string
	Description string
	Deadline    time.Time
	Status      Status
}

type Status string

const StatusToDo Status = "toDo"
const StatusCompleted Status = "completed"

func (s Status) Valid() bool {
	return s == StatusToDo || s == StatusCompleted
}

// Toggle переключает задачу между двумя состояниями
func (s Status) Toggle() Status {
	if s == StatusCompleted {
		return StatusToDo
	}
	return StatusCompleted
}

// StatusOrDefault возвращает toDo для пустого статуса черновика
func (d Draft) StatusOrDefault() Status {
	if d.Status == "" {
		return StatusToDo
	}
	return d.Status
}
