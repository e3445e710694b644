package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/migrations"
	"dailyPlanner/internal/models/task"
	repo "dailyPlanner/internal/repository"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const slowQuery = 50 * time.Millisecond

const selectColumns = `id, title, description, status, deadline, created_at, updated_at, version`

// Storage - файловое хранилище для одного пользователя, без отдельного сервера БД
type Storage struct {
	db *sql.DB
}

// Open открывает (или создаёт) файл базы и применяет миграции
func Open(ctx context.Context, path string) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("создание каталога базы: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		logger.Error("Repository: Не удалось открыть SQLite", err, zap.String("path", path))
		return nil, fmt.Errorf("открытие базы: %w", err)
	}
	// один писатель, иначе "database is locked"
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("проверка соединения: %w", err)
	}

	if err := migrations.UpSQLite(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Repository: SQLite открыта", zap.String("path", path))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие SQLite")
	return s.db.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer warnIfSlow(start, "create")

	if taskToCreate.Version == 0 {
		taskToCreate.Version = 1
	}
	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks
			(id, title, description, status, deadline, created_at, version)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		taskToCreate.ID,
		taskToCreate.Title,
		taskToCreate.Description,
		string(taskToCreate.Status),
		taskToCreate.Deadline.UTC(),
		taskToCreate.CreatedAt.UTC(),
		taskToCreate.Version,
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err)
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer warnIfSlow(start, "update")

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `UPDATE tasks
			SET title = ?,
				description = ?,
				status = ?,
				deadline = ?,
				version = version + 1,
				updated_at = ?
			WHERE id = ? AND version = ?`,
		taskToUpdate.Title,
		taskToUpdate.Description,
		string(taskToUpdate.Status),
		taskToUpdate.Deadline.UTC(),
		now.UTC(),
		taskToUpdate.ID,
		taskToUpdate.Version,
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetByID(ctx, taskToUpdate.ID); err != nil {
			return err
		}
		logger.Warn("Repository: Конфликт версий при обновлении задачи",
			zap.String("task_id", taskToUpdate.ID),
			zap.Int("expected_version", taskToUpdate.Version))
		return repo.ErrVersionConflict
	}

	taskToUpdate.Version++
	taskToUpdate.UpdatedAt = &now
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id string) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow(start, "list")

	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM tasks ORDER BY created_at, rowid`)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err)
		return fmt.Errorf("удаление задачи: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if affected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		t         task.Task
		status    string
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&t.Deadline,
		&t.CreatedAt,
		&updatedAt,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}

	t.Status = task.Status(status)
	if updatedAt.Valid {
		u := updatedAt.Time
		t.UpdatedAt = &u
	}
	return &t, nil
}

func warnIfSlow(start time.Time, op string) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", op),
			zap.Duration("ms", elapsed))
	}
}
