package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/migrations"
	"dailyPlanner/internal/models/task"
	repo "dailyPlanner/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

const selectColumns = `id, title, description, status, deadline, created_at, updated_at, version`

type Options struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

type Storage struct {
	pool       *pgxpool.Pool
	connString string
}

func New(ctx context.Context, connString string, opts Options) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool, connString: connString}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

// Migrate применяет встроенные миграции через отдельное database/sql соединение
func (s *Storage) Migrate(ctx context.Context) error {
	return s.withMigrationDB(ctx, migrations.UpPostgres)
}

// Rollback откатывает все миграции, таблица задач удаляется
func (s *Storage) Rollback(ctx context.Context) error {
	return s.withMigrationDB(ctx, migrations.DownPostgres)
}

func (s *Storage) withMigrationDB(ctx context.Context, fn func(*sql.DB) error) error {
	db, err := sql.Open("pgx", s.connString)
	if err != nil {
		return fmt.Errorf("соединение для миграций: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("соединение для миграций: %w", err)
	}
	return fn(db)
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Debug("Repository: Соединение стабильно")
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

	query := `INSERT INTO tasks
				(id, title, description, status, deadline, created_at, version)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
		taskToCreate.Deadline,
		taskToCreate.CreatedAt,
		taskToCreate.Version,
	).Scan(&taskToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer warnIfSlow(start, "update")

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				status = $3,
				deadline = $4,
				version = version + 1,
				updated_at = NOW()
			WHERE id = $5 AND version = $6
			RETURNING updated_at, version`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.Deadline,
		taskToUpdate.ID,
		taskToUpdate.Version,
	).Scan(&taskToUpdate.UpdatedAt, &taskToUpdate.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.missingOrConflict(ctx, taskToUpdate)
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return nil
}

// строка не обновилась: либо задачи нет, либо версия устарела
func (s *Storage) missingOrConflict(ctx context.Context, t *task.Task) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, t.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("проверка существования задачи: %w", err)
	}
	if !exists {
		return repo.ErrNotFound
	}

	logger.Warn("Repository: Конфликт версий при обновлении задачи",
		zap.String("task_id", t.ID),
		zap.Int("expected_version", t.Version))
	return repo.ErrVersionConflict
}

func (s *Storage) GetByID(ctx context.Context, id string) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow(start, "get_by_id")

	query := `SELECT ` + selectColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow(start, "list")

	query := `SELECT ` + selectColumns + ` FROM tasks ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
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
	start := time.Now()
	defer warnIfSlow(start, "delete")

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Deadline,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func warnIfSlow(start time.Time, op string) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", op),
			zap.Duration("ms", elapsed))
	}
}
