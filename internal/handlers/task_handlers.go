package handlers

import (
	"errors"
	"net/http"
	"time"

	"dailyPlanner/internal/handlers/dto"
	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/models/task"
	"dailyPlanner/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	serviceName = "daily-planner"
	dateLayout  = "2006-01-02"
)

type TaskHandler struct {
	TaskService Service
}

func NewTaskHandler(taskService Service) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

// Register вешает маршруты задач на роутер
func (h *TaskHandler) Register(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.PostTask)
		r.Get("/{id}", h.GetTaskByID)
		r.Put("/{id}", h.UpdateTaskByID)
		r.Delete("/{id}", h.DeleteTaskByID)
	})
}

// ListTasks отдаёт всю коллекцию, а с ?date=YYYY-MM-DD[&tz=Europe/Moscow] только задачи дня в порядке планировщика
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var (
		tasks []*task.Task
		err   error
	)

	if rawDate := r.URL.Query().Get("date"); rawDate != "" {
		loc := time.Local
		if tz := r.URL.Query().Get("tz"); tz != "" {
			loc, err = time.LoadLocation(tz)
			if err != nil {
				logger.Warn("HTTP: Неверное значение параметра",
					zap.String("query", "tz"),
					zap.Error(err),
					zap.String("client_ip", r.RemoteAddr))
				responseWithError(w, http.StatusBadRequest, "неизвестный часовой пояс: "+tz)
				return
			}
		}

		date, parseErr := time.ParseInLocation(dateLayout, rawDate, loc)
		if parseErr != nil {
			logger.Warn("HTTP: Неверное значение параметра",
				zap.String("query", "date"),
				zap.Error(parseErr),
				zap.String("client_ip", r.RemoteAddr))
			responseWithError(w, http.StatusBadRequest, "дата должна быть в формате YYYY-MM-DD")
			return
		}

		tasks, err = h.TaskService.ListTasksForDate(r.Context(), date)
	} else {
		tasks, err = h.TaskService.ListTasks(r.Context())
	}
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.TasksResponse{Tasks: dto.FromTaskList(tasks)})
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := decodeValid(r, createTaskSchema, &request); err != nil {
		h.badRequest(w, r, err)
		return
	}

	created, err := h.TaskService.CreateTask(r.Context(), request.Title, request.Description, request.Deadline, request.Status)
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	h.respondMutation(w, r, http.StatusCreated, "задача создана", created)
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис нездоров", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
		toPayload("time", time.Now().UTC()))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")

	found, err := h.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.String("task_id", found.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.TaskEnvelope{Task: dto.FromTask(found)})
}

// UpdateTaskByID принимает задачу целиком или частично; version, если передан, должен совпасть
func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	id := chi.URLParam(r, "id")

	var request dto.UpdateTaskRequest
	if err := decodeValid(r, updateTaskSchema, &request); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if request.ID != nil && *request.ID != id {
		h.badRequest(w, r, service.NewValidationError("id", "id в теле не совпадает с id в пути"))
		return
	}

	var options []task.TaskOption
	if request.Title != nil {
		options = append(options, task.WithTitle(*request.Title))
	}
	if request.Description != nil {
		options = append(options, task.WithDescription(*request.Description))
	}
	if request.Status != nil {
		options = append(options, task.WithStatus(*request.Status))
	}
	if request.Deadline != nil {
		options = append(options, task.WithDeadline(*request.Deadline))
	}

	updated, err := h.TaskService.UpdateTask(r.Context(), id, request.Version, options...)
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", updated.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	h.respondMutation(w, r, http.StatusOK, "задача обновлена", updated)
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")

	deleted, err := h.TaskService.DeleteTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	h.respondMutation(w, r, http.StatusOK, "задача удалена", deleted)
}

// respondMutation отдаёт задачу и актуальную коллекцию.
// Коллекция вспомогательная: если её не удалось прочитать, мутация всё равно успешна.
func (h *TaskHandler) respondMutation(w http.ResponseWriter, r *http.Request, code int, message string, t *task.Task) {
	resp := dto.MutationResponse{
		Message: message,
		Tasks:   []dto.TaskResponse{},
	}
	if t != nil {
		tr := dto.FromTask(t)
		resp.Task = &tr
	}

	all, err := h.TaskService.ListTasks(r.Context())
	if err != nil {
		logger.Warn("HTTP: Не удалось приложить коллекцию к ответу", zap.Error(err))
	} else {
		resp.Tasks = dto.FromTaskList(all)
	}

	writeJSON(w, code, resp)
}

func (h *TaskHandler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errMalformedBody) {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	handleServiceError(w, r, err, "validate_request")
}
