package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"flowtrack/internal/db/dbtest"
	"flowtrack/internal/jobs"
	"flowtrack/internal/logger"
)

type fakeRefresher struct {
	calls  int
	err    error
	before func()
}

func (f *fakeRefresher) RefreshStreaks(context.Context) (int, error) {
	f.calls++
	if f.before != nil {
		f.before()
	}
	return 2, f.err
}

func newWorker(t *testing.T, now *time.Time, refresher jobs.StreakRefresher) (*jobs.Worker, *jobs.Repo) {
	t.Helper()
	clock := func() time.Time { return *now }
	repo := &jobs.Repo{DB: dbtest.Open(t), Now: clock}
	w := jobs.NewWorker(repo, refresher, time.UTC, time.Millisecond, nil)
	w.Now = clock
	return w, repo
}

func pending(t *testing.T, repo *jobs.Repo) []jobs.Job {
	t.Helper()
	var out []jobs.Job
	require.NoError(t, repo.DB.Where("status = ?", jobs.StatusPending).Order("id asc").Find(&out).Error)
	return out
}

func TestNextMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	got := jobs.NextMidnight(time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC), loc)
	// 23:30 in Berlin on the 10th; next midnight is the 11th local
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, loc), got)

	exact := jobs.NextMidnight(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), exact)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, jobs.Backoff(1))
	assert.Equal(t, 8*time.Second, jobs.Backoff(3))
	assert.Equal(t, 600*time.Second, jobs.Backoff(20))
}

func TestScheduleIsIdempotent(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	w, repo := newWorker(t, &now, &fakeRefresher{})
	ctx := context.Background()

	require.NoError(t, w.Schedule(ctx))
	require.NoError(t, w.Schedule(ctx))

	jobsQueued := pending(t, repo)
	require.Len(t, jobsQueued, 1)
	assert.Equal(t, jobs.TypeStreakRefresh, jobsQueued[0].Type)
	assert.True(t, jobsQueued[0].RunAt.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))
}

func TestClaimWaitsUntilDue(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	refresher := &fakeRefresher{}
	w, repo := newWorker(t, &now, refresher)
	ctx := context.Background()
	require.NoError(t, w.Schedule(ctx))

	assert.False(t, w.Tick(ctx))
	assert.Zero(t, refresher.calls)

	now = time.Date(2024, 3, 11, 0, 0, 1, 0, time.UTC)
	assert.True(t, w.Tick(ctx))
	assert.Equal(t, 1, refresher.calls)

	var done int64
	require.NoError(t, repo.DB.Model(&jobs.Job{}).Where("status = ?", jobs.StatusDone).Count(&done).Error)
	assert.Equal(t, int64(1), done)

	next := pending(t, repo)
	require.Len(t, next, 1)
	assert.True(t, next[0].RunAt.Equal(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)))
}

func TestFailedRefreshRetriesWithBackoff(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	refresher := &fakeRefresher{err: errors.New("database is locked")}
	w, repo := newWorker(t, &now, refresher)
	ctx := context.Background()

	_, err := repo.Enqueue(ctx, jobs.TypeStreakRefresh, map[string]string{"date": "2024-03-10"}, now)
	require.NoError(t, err)

	assert.True(t, w.Tick(ctx))

	queued := pending(t, repo)
	require.Len(t, queued, 1)
	assert.Equal(t, 1, queued[0].Attempts)
	require.NotNil(t, queued[0].LastError)
	assert.Equal(t, "database is locked", *queued[0].LastError)
	assert.True(t, queued[0].RunAt.Equal(now.Add(2*time.Second)))
	assert.Nil(t, queued[0].LockedBy)
}

func TestUnknownJobTypeFails(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	w, repo := newWorker(t, &now, &fakeRefresher{})
	ctx := context.Background()

	j, err := repo.Enqueue(ctx, "NOPE", map[string]any{}, now)
	require.NoError(t, err)
	assert.True(t, w.Tick(ctx))

	var got jobs.Job
	require.NoError(t, repo.DB.First(&got, "id = ?", j.ID).Error)
	assert.Equal(t, jobs.StatusFailed, got.Status)
}

func TestClaimRequeuesStuckJobs(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	_, repo := newWorker(t, &now, &fakeRefresher{})
	ctx := context.Background()

	_, err := repo.Enqueue(ctx, jobs.TypeStreakRefresh, map[string]string{}, now)
	require.NoError(t, err)

	first, err := repo.Claim(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, first)

	again, err := repo.Claim(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, again, "running job must not be claimed twice")

	now = now.Add(10 * time.Minute)
	stolen, err := repo.Claim(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, stolen)
	assert.Equal(t, first.ID, stolen.ID)
	require.NotNil(t, stolen.LockedBy)
	assert.Equal(t, "b", *stolen.LockedBy)
}

func TestJobStateWriteErrorsAreLogged(t *testing.T) {
	cases := []struct {
		name        string
		maxAttempts int
		wantMsg     string
	}{
		{"retry", 8, "retry job later"},
		{"give up", 1, "mark job failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
			refresher := &fakeRefresher{err: errors.New("refresh failed")}
			w, repo := newWorker(t, &now, refresher)
			core, logs := observer.New(zap.DebugLevel)
			w.Log = &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
			ctx := context.Background()

			j, err := repo.Enqueue(ctx, jobs.TypeStreakRefresh, map[string]string{"date": "2024-03-10"}, now)
			require.NoError(t, err)
			require.NoError(t, repo.DB.Model(&jobs.Job{}).Where("id = ?", j.ID).Update("max_attempts", tc.maxAttempts).Error)

			// the job row vanishes mid-run so the state write after the refresh fails
			refresher.before = func() {
				require.NoError(t, repo.DB.Migrator().DropTable(&jobs.Job{}))
			}
			assert.True(t, w.Tick(ctx))

			found := logs.FilterMessage(tc.wantMsg).All()
			require.Len(t, found, 1)
			assert.Equal(t, zap.ErrorLevel, found[0].Level)
			assert.Contains(t, found[0].ContextMap(), "error")
		})
	}
}
