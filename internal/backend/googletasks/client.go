// Package googletasks - бэкенд планировщика поверх Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"dailyPlanner/internal/backend"
	"dailyPlanner/internal/logger"
	"dailyPlanner/internal/models/task"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"
)

const (
	DefaultListID = "@default"
	PageSize      = 100
	APITimeout    = 5 * time.Second

	OAuthClientFile = "oauth_client.json"
	TokenFile       = "token.json"

	tasksScope = "https://www.googleapis.com/auth/tasks"

	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

var errNoDue = errors.New("у задачи нет срока")

type Client struct {
	svc    *tasks.Service
	listID string
	loc    *time.Location
}

type Option func(*Client)

func WithListID(listID string) Option {
	return func(c *Client) {
		if listID != "" {
			c.listID = listID
		}
	}
}

// WithLocation - пояс, в котором показываются задачи без времени
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// New читает oauth_client.json и token.json из configDir, токен обновляется автоматически
func New(ctx context.Context, configDir string, opts ...Option) (*Client, error) {
	clientJSON, err := os.ReadFile(filepath.Join(configDir, OAuthClientFile))
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", OAuthClientFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("неверный %s: %w", OAuthClientFile, err)
	}

	tokenData, err := os.ReadFile(filepath.Join(configDir, TokenFile))
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", TokenFile, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("неверный %s: %w", TokenFile, err)
	}

	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return NewWithHTTPClient(ctx, httpClient, nil, opts...)
}

// NewWithHTTPClient нужен тестам: свой http.Client и, при необходимости, свой endpoint
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, apiOpts []option.ClientOption, opts ...Option) (*Client, error) {
	apiOpts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, apiOpts...)
	svc, err := tasks.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("создание сервиса задач: %w", err)
	}

	c := &Client{
		svc:    svc,
		listID: DefaultListID,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListTasks собирает все страницы, включая выполненные и скрытые задачи
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	result := []task.Task{}
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, item := range resp.Items {
				t, err := c.fromAPI(item)
				if err != nil {
					logger.Warn("Backend: Пропущена задача без срока или с неверным сроком",
						zap.String("task_id", item.Id),
						zap.String("due", item.Due),
						zap.Error(err))
					continue
				}
				result = append(result, t)
			}
			return nil
		})
	if err != nil {
		return nil, wrapError("получение задач", err)
	}
	return result, nil
}

func (c *Client) CreateTask(ctx context.Context, draft task.Draft) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	item := &tasks.Task{
		Title:  draft.Title,
		Notes:  draft.Description,
		Status: toAPIStatus(draft.StatusOrDefault()),
		Due:    draft.Deadline.Format(time.RFC3339),
	}
	if _, err := c.svc.Tasks.Insert(c.listID, item).Context(ctx).Do(); err != nil {
		return wrapError("создание задачи", err)
	}
	return nil
}

func (c *Client) UpdateTask(ctx context.Context, t task.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	patch := &tasks.Task{
		Title:  t.Title,
		Notes:  t.Description,
		Status: toAPIStatus(t.Status),
		Due:    t.Deadline.Format(time.RFC3339),
		// пустое описание тоже должно уйти в запрос
		ForceSendFields: []string{"Notes"},
	}
	if t.Status != task.StatusCompleted {
		patch.NullFields = []string{"Completed"}
	}
	if _, err := c.svc.Tasks.Patch(c.listID, t.ID, patch).Context(ctx).Do(); err != nil {
		return wrapError("обновление задачи", err)
	}
	return nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError("удаление задачи", err)
	}
	return nil
}

func (c *Client) fromAPI(item *tasks.Task) (task.Task, error) {
	t := task.Task{
		ID:          item.Id,
		Title:       item.Title,
		Description: item.Notes,
		Status:      fromAPIStatus(item.Status),
	}

	// у задачи планировщика всегда есть срок
	if item.Due == "" {
		return task.Task{}, errNoDue
	}
	due, err := time.Parse(time.RFC3339, item.Due)
	if err != nil {
		return task.Task{}, err
	}
	t.Deadline = c.anchorDue(due)

	if item.Updated != "" {
		if updated, err := time.Parse(time.RFC3339, item.Updated); err == nil {
			t.UpdatedAt = &updated
		}
	}
	return t, nil
}

// Google Tasks хранит только дату: полночь UTC означает "этот день" в поясе планировщика
func (c *Client) anchorDue(due time.Time) time.Time {
	utc := due.UTC()
	if utc.Hour() != 0 || utc.Minute() != 0 || utc.Second() != 0 {
		return due
	}
	y, m, d := utc.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

func toAPIStatus(s task.Status) string {
	if s == task.StatusCompleted {
		return statusCompleted
	}
	return statusNeedsAction
}

func fromAPIStatus(s string) task.Status {
	if s == statusCompleted {
		return task.StatusCompleted
	}
	return task.StatusToDo
}

func wrapError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		statusErr := &backend.StatusError{Op: op, Code: apiErr.Code, Expected: http.StatusOK}
		if apiErr.Code == http.StatusNotFound {
			return fmt.Errorf("%w: %w", backend.ErrNotFound, statusErr)
		}
		return statusErr
	}
	return fmt.Errorf("%s: %w: %w", op, backend.ErrTransport, err)
}

var _ backend.Backend = (*Client)(nil)
