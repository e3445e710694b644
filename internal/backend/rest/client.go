// Package rest - клиент REST API задач (cmd/api) для планировщика.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dailyPlanner/internal/backend"
	"dailyPlanner/internal/handlers/dto"
	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/models/task"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultTimeout       = 10 * time.Second
	DefaultRetries       = 3
	DefaultRetryInterval = 200 * time.Millisecond
)

type Client struct {
	baseURL       string
	http          *http.Client
	retries       uint64
	retryInterval time.Duration
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithRetries - сколько раз повторять GET при сетевой ошибке
func WithRetries(n uint64) Option {
	return func(c *Client) {
		c.retries = n
	}
}

func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryInterval = d
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{Timeout: DefaultTimeout},
		retries:       DefaultRetries,
		retryInterval: DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTasks повторяет запрос только при сетевых ошибках; неверный код ответа сразу возвращается
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task

	operation := func() error {
		resp, err := c.do(ctx, http.MethodGet, "/tasks", nil)
		if err != nil {
			return err
		}
		defer drain(resp)

		if err := expectStatus(resp, "получение задач", http.StatusOK); err != nil {
			return backoff.Permanent(err)
		}

		var body dto.TasksResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return backoff.Permanent(fmt.Errorf("разбор ответа: %w", err))
		}
		tasks = dto.ToTaskList(body.Tasks)
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, c.retries), ctx)

	notify := func(err error, wait time.Duration) {
		logger.Warn("Backend: Повтор запроса списка задач",
			zap.Error(err),
			zap.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, draft task.Draft) error {
	req := dto.CreateTaskRequest{
		Title:       draft.Title,
		Description: draft.Description,
		Deadline:    draft.Deadline,
		Status:      draft.StatusOrDefault(),
	}
	return c.mutate(ctx, http.MethodPost, "/tasks", req, "создание задачи", http.StatusCreated)
}

func (c *Client) UpdateTask(ctx context.Context, t task.Task) error {
	req := dto.UpdateTaskRequest{
		ID:          &t.ID,
		Title:       &t.Title,
		Description: &t.Description,
		Status:      &t.Status,
		Deadline:    &t.Deadline,
	}
	if t.Version > 0 {
		req.Version = &t.Version
	}
	return c.mutate(ctx, http.MethodPut, "/tasks/"+url.PathEscape(t.ID), req, "обновление задачи", http.StatusOK)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, "удаление задачи", http.StatusOK)
}

// мутации не повторяются: повторный POST создал бы дубликат
func (c *Client) mutate(ctx context.Context, method, path string, payload any, op string, expected int) error {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer drain(resp)

	return expectStatus(resp, op, expected)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("кодирование запроса: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, backend.ErrTransport, err)
	}

	logger.Debug("Backend: Ответ получен",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("ms", time.Since(start)))
	return resp, nil
}

func expectStatus(resp *http.Response, op string, expected int) error {
	if resp.StatusCode == expected {
		return nil
	}
	statusErr := &backend.StatusError{Op: op, Code: resp.StatusCode, Expected: expected}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", backend.ErrNotFound, statusErr)
	}
	return statusErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

var _ backend.Backend = (*Client)(nil)
