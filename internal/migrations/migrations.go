// Package migrations хранит схему задач для PostgreSQL и SQLite и применяет её через golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"dailyPlanner/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// UpPostgres применяет миграции. db закрывает вызывающий.
func UpPostgres(db *sql.DB) error {
	m, err := postgresMigrate(db)
	if err != nil {
		return err
	}
	return up(m, "postgres")
}

func DownPostgres(db *sql.DB) error {
	m, err := postgresMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migrations: Откат миграций не удался", err)
		return fmt.Errorf("откат миграций: %w", err)
	}
	logger.Info("Migrations: Миграции откачены")
	return nil
}

func UpSQLite(db *sql.DB) error {
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("драйвер миграций sqlite: %w", err)
	}
	m, err := newMigrate(driver, "sqlite", "sqlite3")
	if err != nil {
		return err
	}
	return up(m, "sqlite")
}

func postgresMigrate(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("драйвер миграций postgres: %w", err)
	}
	return newMigrate(driver, "postgres", "pgx5")
}

func newMigrate(driver database.Driver, dir, name string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, dir)
	if err != nil {
		return nil, fmt.Errorf("источник миграций %s: %w", dir, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, name, driver)
	if err != nil {
		return nil, fmt.Errorf("инициализация миграций: %w", err)
	}
	return m, nil
}

// m.Close() не вызывается: он закрыл бы *sql.DB вызывающего
func up(m *migrate.Migrate, dialect string) error {
	logger.Info("Migrations: Попытка миграций", zap.String("dialect", dialect))

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migrations: Миграции не применились", err, zap.String("dialect", dialect))
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("версия схемы: %w", err)
	}
	logger.Info("Migrations: Схема актуальна",
		zap.String("dialect", dialect),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}
