package handler

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"flowtrack/internal/logger"
	"flowtrack/internal/todo"
	"flowtrack/internal/tracker"
)

type GamifyHandler struct {
	Svc  *tracker.Service
	Todo *todo.Service
	Log  *logger.Logger
}

func (h *GamifyHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	var (
		m         tracker.Metrics
		completed int64
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		m, err = h.Svc.Metrics(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = h.Todo.CompletedCount(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activeHabits":   m.ActiveHabits,
		"longestStreak":  m.LongestStreak,
		"tasksCompleted": completed,
		"stats":          toStatsDTO(m.Stats),
		"badges":         toEarnedDTOs(m.Badges),
	})
}

func (h *GamifyHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.Svc.Analytics(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"series":   a.Series,
		"forecast": a.Forecast,
	})
}

func (h *GamifyHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := h.Svc.CalendarActivity(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": days})
}

type focusReq struct {
	Minutes int `json:"minutes"`
}

func (h *GamifyHandler) CompleteFocus(w http.ResponseWriter, r *http.Request) {
	var req focusReq
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Svc.CompleteFocusSession(r.Context(), req.Minutes)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":     toStatsDTO(res.Stats),
		"leveledUp": res.LeveledUp,
		"newLevel":  res.NewLevel,
		"newBadges": toBadgeDTOs(res.NewBadges),
	})
}
