package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"dailyPlanner/internal/app"
	"dailyPlanner/internal/config"
	"dailyPlanner/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	if cfg.PrintConfig {
		return cfg.PrintYAML(os.Stdout)
	}

	if err := logger.Init(cfg.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		logger.Error("App: Не удалось запустить приложение", err)
		return err
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("App: Сервер завершился с ошибкой", err)
		return err
	}
	logger.Info("App: Сервер остановлен")
	return nil
}
