package jobs

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"flowtrack/internal/logger"
)

const maxBackoff = 600 // seconds

// StreakRefresher is the slice of the tracker the worker drives.
type StreakRefresher interface {
	RefreshStreaks(ctx context.Context) (int, error)
}

type Worker struct {
	ID       string
	Repo     *Repo
	Streaks  StreakRefresher
	Location *time.Location
	Poll     time.Duration
	Log      *logger.Logger
	Now      func() time.Time
}

type refreshPayload struct {
	Date string `json:"date"`
}

func NewWorker(repo *Repo, streaks StreakRefresher, loc *time.Location, poll time.Duration, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Nop()
	}
	id := "worker-" + uuid.NewString()
	return &Worker{
		ID:       id,
		Repo:     repo,
		Streaks:  streaks,
		Location: loc,
		Poll:     poll,
		Log:      log.With("worker", id),
	}
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// NextMidnight is the first local midnight strictly after t.
func NextMidnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day()+1, 0, 0, 0, 0, loc)
}

// Schedule makes sure a streak refresh is queued for the coming midnight.
func (w *Worker) Schedule(ctx context.Context) error {
	at := NextMidnight(w.now(), w.Location)
	created, err := w.Repo.EnsureScheduled(ctx, TypeStreakRefresh,
		refreshPayload{Date: at.Format("2006-01-02")}, at)
	if err != nil {
		return err
	}
	if created {
		w.Log.Info("scheduled streak refresh", "run_at", at)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	poll := w.Poll
	if poll <= 0 {
		poll = 800 * time.Millisecond
	}
	if err := w.Schedule(ctx); err != nil {
		w.Log.Error("schedule streak refresh", "error", err)
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick claims and handles at most one due job. Reports whether one ran.
func (w *Worker) Tick(ctx context.Context) bool {
	job, err := w.Repo.Claim(ctx, w.ID)
	if err != nil {
		w.Log.Error("worker claim error", "error", err)
		return false
	}
	if job == nil {
		return false
	}
	w.handle(ctx, job)
	return true
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeStreakRefresh:
		w.handleStreakRefresh(ctx, job)
	default:
		w.fail(ctx, job, "unknown job type")
	}
}

func (w *Worker) handleStreakRefresh(ctx context.Context, job *Job) {
	var p refreshPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		w.fail(ctx, job, "bad payload")
		return
	}

	changed, err := w.Streaks.RefreshStreaks(ctx)
	if err != nil {
		w.Log.Warn("streak refresh failed", "job", job.ID, "error", err)
		w.retry(ctx, job, err.Error())
		return
	}
	w.Log.Info("streaks refreshed", "job", job.ID, "date", p.Date, "changed", changed)

	if err := w.Repo.MarkDone(ctx, job.ID); err != nil {
		w.Log.Error("mark job done", "job", job.ID, "error", err)
		return
	}
	if err := w.Schedule(ctx); err != nil {
		w.Log.Error("schedule streak refresh", "error", err)
	}
}

func (w *Worker) retry(ctx context.Context, job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		w.fail(ctx, job, errMsg)
		// keep the nightly cadence alive after giving up on this run
		if err := w.Schedule(ctx); err != nil {
			w.Log.Error("schedule streak refresh", "error", err)
		}
		return
	}

	if err := w.Repo.RetryLater(ctx, job.ID, attempts, w.now().Add(Backoff(attempts)), errMsg); err != nil {
		w.Log.Error("retry job later", "job", job.ID, "attempts", attempts, "error", err)
	}
}

func (w *Worker) fail(ctx context.Context, job *Job, reason string) {
	if err := w.Repo.MarkFailed(ctx, job.ID, reason); err != nil {
		w.Log.Error("mark job failed", "job", job.ID, "reason", reason, "error", err)
	}
}

// Backoff is 2^attempts seconds, capped at ten minutes.
func Backoff(attempts int) time.Duration {
	sec := math.Min(math.Pow(2, float64(attempts)), maxBackoff)
	return time.Duration(sec) * time.Second
}
