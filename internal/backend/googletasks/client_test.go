package googletasks_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dailyPlanner/internal/backend"
	"dailyPlanner/internal/backend/googletasks"
	"dailyPlanner/internal/models/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"
)

func newClient(t *testing.T, server *httptest.Server, opts ...googletasks.Option) *googletasks.Client {
	t.Helper()
	client, err := googletasks.NewWithHTTPClient(context.Background(), server.Client(),
		[]option.ClientOption{option.WithEndpoint(server.URL + "/")}, opts...)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{"code": code, "message": http.StatusText(code)},
	})
}

func TestClient_ListTasks_AllPages(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/tasks"), r.URL.Path)
		queries = append(queries, r.URL.RawQuery)

		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(w, http.StatusOK, tasks.Tasks{
				Items: []*tasks.Task{
					{Id: "a", Title: "Buy milk", Status: "needsAction", Due: "2024-05-01T14:30:00Z", Notes: "2 l"},
				},
				NextPageToken: "page-2",
			})
			return
		}
		writeJSON(w, http.StatusOK, tasks.Tasks{
			Items: []*tasks.Task{
				{Id: "b", Title: "Call", Status: "completed", Due: "2024-05-01T00:00:00.000Z"},
				{Id: "c", Title: "Broken", Status: "needsAction", Due: "not a date"},
				{Id: "d", Title: "Someday", Status: "needsAction"},
			},
		})
	}))
	defer server.Close()

	loc := time.FixedZone("UTC-5", -5*60*60)
	got, err := newClient(t, server, googletasks.WithLocation(loc)).ListTasks(context.Background())

	require.NoError(t, err)
	// Broken с неверным сроком и Someday без срока пропущены
	require.Len(t, got, 2)
	for _, tk := range got {
		assert.False(t, tk.Deadline.IsZero(), tk.ID)
	}
	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], "showCompleted=true")
	assert.Contains(t, queries[0], "showHidden=true")

	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, task.StatusToDo, got[0].Status)
	assert.Equal(t, "2 l", got[0].Description)
	assert.True(t, time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC).Equal(got[0].Deadline))

	// дата без времени остаётся тем же днём в поясе планировщика
	assert.Equal(t, task.StatusCompleted, got[1].Status)
	y, m, d := got[1].Deadline.In(loc).Date()
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.May, m)
	assert.Equal(t, 1, d)
}

func TestClient_CreateTask(t *testing.T) {
	var got tasks.Task
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/tasks"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		got.Id = "new"
		writeJSON(w, http.StatusOK, got)
	}))
	defer server.Close()

	deadline := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	err := newClient(t, server).CreateTask(context.Background(), task.Draft{
		Title:       "Buy milk",
		Description: "2 l",
		Deadline:    deadline,
	})

	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2 l", got.Notes)
	assert.Equal(t, "needsAction", got.Status)
	assert.Equal(t, "2024-05-01T09:00:00Z", got.Due)
}

func TestClient_UpdateTask(t *testing.T) {
	tests := []struct {
		name       string
		status     task.Status
		wantStatus string
	}{
		{name: "complete", status: task.StatusCompleted, wantStatus: "completed"},
		{name: "reopen", status: task.StatusToDo, wantStatus: "needsAction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPatch, r.Method)
				assert.True(t, strings.HasSuffix(r.URL.Path, "/tasks/t1"), r.URL.Path)
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				writeJSON(w, http.StatusOK, tasks.Task{Id: "t1"})
			}))
			defer server.Close()

			err := newClient(t, server).UpdateTask(context.Background(), task.Task{
				ID:       "t1",
				Title:    "Call",
				Status:   tt.status,
				Deadline: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Equal(t, "Call", body["title"])
			assert.Contains(t, body, "notes")
		})
	}
}

func TestClient_DeleteTask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if strings.HasSuffix(r.URL.Path, "/tasks/t1") {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeAPIError(w, http.StatusNotFound)
	}))
	defer server.Close()
	client := newClient(t, server)

	assert.NoError(t, client.DeleteTask(context.Background(), "t1"))

	err := client.DeleteTask(context.Background(), "missing")
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.ErrorIs(t, err, backend.ErrUnexpectedStatus)
}

func TestClient_ErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusForbidden)
	}))
	client := newClient(t, server)

	_, err := client.ListTasks(context.Background())
	var statusErr *backend.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
	assert.NotErrorIs(t, err, backend.ErrNotFound)

	server.Close()

	err = client.CreateTask(context.Background(), task.Draft{Title: "x", Deadline: time.Now()})
	assert.ErrorIs(t, err, backend.ErrTransport)
}

func TestNew_MissingFiles(t *testing.T) {
	_, err := googletasks.New(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, googletasks.OAuthClientFile)
}
