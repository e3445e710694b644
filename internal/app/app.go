package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"dailyPlanner/internal/config"
	"dailyPlanner/internal/handlers"
	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/middleware"
	"dailyPlanner/internal/repository/task/inmemory"
	"dailyPlanner/internal/repository/task/postgres"
	"dailyPlanner/internal/repository/task/sqlite"
	"dailyPlanner/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.TaskRepository
	service    *service.TaskService
	shutdowns  []func(context.Context) error // выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(context.Context) error, 0),
	}
}

// Init поднимает хранилище, сервис и роутер. При ошибке уже открытые ресурсы закрываются.
func (a *App) Init(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			err = multierr.Append(err, a.Shutdown(context.Background()))
		}
	}()

	repo, repoType, err := a.initRepository(ctx)
	if err != nil {
		return err
	}
	a.repository = repo
	a.service = service.NewTaskService(repo, repoType)

	a.router = a.buildRouter(handlers.NewTaskHandler(a.service))
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("App: Приложение инициализировано",
		zap.String("repository", string(repoType)),
		zap.String("addr", a.server.Addr))
	return nil
}

func (a *App) initRepository(ctx context.Context) (service.TaskRepository, service.RepoType, error) {
	switch service.RepoType(a.config.Repository.Type) {
	case service.DBType:
		storage, err := postgres.New(ctx, a.config.Database.URL, postgres.Options{
			MaxConns:        a.config.Database.MaxConnections,
			MinConns:        a.config.Database.MinConnections,
			MaxConnIdleTime: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return nil, "", fmt.Errorf("подключение к postgres: %w", err)
		}
		a.onShutdown(func(context.Context) error {
			storage.Close()
			return nil
		})
		if err := storage.Migrate(ctx); err != nil {
			return nil, "", fmt.Errorf("миграции postgres: %w", err)
		}
		return storage, service.DBType, nil

	case service.SQLiteType:
		storage, err := sqlite.Open(ctx, a.config.Database.SQLitePath)
		if err != nil {
			return nil, "", fmt.Errorf("открытие sqlite: %w", err)
		}
		a.onShutdown(func(context.Context) error {
			return storage.Close()
		})
		return storage, service.SQLiteType, nil

	case service.InMemoryType:
		return inmemory.NewTaskStorage(), service.InMemoryType, nil
	}
	return nil, "", fmt.Errorf("неизвестный тип хранилища %q", a.config.Repository.Type)
}

func (a *App) buildRouter(h *handlers.TaskHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(a.config.Server.CORSOrigins))
	r.Use(middleware.Timeout(a.config.Server.RequestTimeout))
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))

	h.Register(r)
	return r
}

func (a *App) onShutdown(fn func(context.Context) error) {
	a.shutdowns = append(a.shutdowns, fn)
}

// Handler нужен тестам и встраиванию без сетевого listener'а
func (a *App) Handler() http.Handler {
	return a.router
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер
func (a *App) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("прослушивание %s: %w", a.server.Addr, err)
	}
	return a.Serve(ctx, listener)
}

func (a *App) Serve(ctx context.Context, listener net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: Сервер запущен", zap.String("addr", listener.Addr().String()))
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("работа сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: Остановка сервера")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		return multierr.Append(
			a.server.Shutdown(shutdownCtx),
			a.Shutdown(shutdownCtx),
		)
	})

	return g.Wait()
}

// Shutdown освобождает ресурсы хранилища; ошибки всех шагов собираются вместе
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i](ctx))
	}
	a.shutdowns = nil
	return err
}
