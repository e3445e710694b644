package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dailyPlanner/internal/models/task"
	"dailyPlanner/internal/planner"
	"dailyPlanner/internal/testutil"
	"dailyPlanner/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestNewRefreshWorker_Defaults(t *testing.T) {
	w := worker.NewRefreshWorker(&countingRefresher{}, nil, nil)
	assert.Equal(t, worker.DefaultInterval, w.Interval())

	zero := time.Duration(0)
	w = worker.NewRefreshWorker(&countingRefresher{}, &zero, nil)
	assert.Equal(t, worker.DefaultInterval, w.Interval())

	custom := 5 * time.Second
	w = worker.NewRefreshWorker(&countingRefresher{}, &custom, nil)
	assert.Equal(t, custom, w.Interval())
}

func TestRefreshWorker_CheckReportsResult(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "success"},
		{name: "backend failure", err: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refresher := &countingRefresher{err: tt.err}
			var got error
			called := false
			w := worker.NewRefreshWorker(refresher, nil, func(err error) {
				called = true
				got = err
			})

			w.Check(context.Background())

			assert.True(t, called)
			assert.Equal(t, int32(1), refresher.calls.Load())
			if tt.wantErr {
				assert.Error(t, got)
			} else {
				assert.NoError(t, got)
			}
		})
	}
}

func TestRefreshWorker_StartTicksUntilCanceled(t *testing.T) {
	refresher := &countingRefresher{}
	interval := 5 * time.Millisecond
	w := worker.NewRefreshWorker(refresher, &interval, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Start(ctx)
	}()

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	wg.Wait()

	stopped := refresher.calls.Load()
	time.Sleep(4 * interval)
	assert.Equal(t, stopped, refresher.calls.Load())
}

// изменения, сделанные в бэкенде в обход планировщика, появляются после очередного тика
func TestRefreshWorker_PicksUpRemoteChanges(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	fake := testutil.NewFakeBackend()
	p := planner.New(fake, planner.WithLocation(time.UTC), planner.WithDate(day))
	require.NoError(t, p.Refresh(context.Background()))
	require.Empty(t, p.Tasks())

	fake.AddTask(task.Task{ID: "remote", Title: "From phone", Status: task.StatusToDo, Deadline: day.Add(9 * time.Hour)})

	w := worker.NewRefreshWorker(p, nil, nil)
	w.Check(context.Background())

	tasks := p.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "remote", tasks[0].ID)
}
