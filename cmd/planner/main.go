package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"dailyPlanner/internal/backend"
	"dailyPlanner/internal/backend/googletasks"
	"dailyPlanner/internal/backend/rest"
	"dailyPlanner/internal/config"
	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/planner"
	"dailyPlanner/internal/tui"
	"dailyPlanner/internal/worker"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("planner", pflag.ContinueOnError)
	configPath := flags.String("config", config.DefaultPlannerPath(), "путь к config.toml")
	backendType := flags.String("backend", "", "бэкенд: rest или googletasks")
	url := flags.String("url", "", "адрес REST API задач")
	initConfig := flags.Bool("init-config", false, "записать конфиг по умолчанию и выйти")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	if *initConfig {
		if err := config.DefaultPlanner().SaveTo(*configPath); err != nil {
			return err
		}
		fmt.Println("config written to", *configPath)
		return nil
	}

	cfg, err := config.LoadPlanner(*configPath)
	if err != nil {
		return err
	}
	if *backendType != "" {
		cfg.Backend.Type = *backendType
	}
	if *url != "" {
		cfg.Backend.URL = *url
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), 0o755); err != nil {
		return fmt.Errorf("создание каталога логов: %w", err)
	}
	if err := logger.InitWithOutput(cfg.Log.Development, cfg.Log.Path); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := newBackend(ctx, cfg, loc)
	if err != nil {
		logger.Error("Planner: Не удалось подключить бэкенд", err, zap.String("backend", cfg.Backend.Type))
		return err
	}
	logger.Info("Planner: Бэкенд подключён", zap.String("backend", cfg.Backend.Type))

	p := planner.New(b, planner.WithLocation(loc))
	model := tui.New(p, tui.WithContext(ctx), tui.WithCallTimeout(cfg.Backend.Timeout))
	program := tea.NewProgram(model, tea.WithAltScreen())

	interval := cfg.UI.RefreshInterval
	refresher := worker.NewRefreshWorker(p, &interval, func(err error) {
		program.Send(tui.RefreshedMsg{Err: err})
	})
	go refresher.Start(ctx)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("работа интерфейса: %w", err)
	}
	return nil
}

func newBackend(ctx context.Context, cfg *config.PlannerConfig, loc *time.Location) (backend.Backend, error) {
	switch cfg.Backend.Type {
	case config.BackendGoogleTasks:
		return googletasks.New(ctx, cfg.Backend.GoogleDir,
			googletasks.WithListID(cfg.Backend.ListID),
			googletasks.WithLocation(loc),
		)
	case config.BackendREST:
		return rest.New(cfg.Backend.URL,
			rest.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout}),
			rest.WithRetries(cfg.Backend.Retries),
		), nil
	}
	return nil, fmt.Errorf("неизвестный бэкенд %q", cfg.Backend.Type)
}
