package handler

import (
	"net/http"
	"strings"

	"flowtrack/internal/logger"
	"flowtrack/internal/tracker"
)

type HabitHandler struct {
	Svc *tracker.Service
	Log *logger.Logger
}

type habitReq struct {
	Title               *string            `json:"title"`
	Frequency           *tracker.Frequency `json:"frequency"`
	Color               *string            `json:"color"`
	Icon                *string            `json:"icon"`
	NotificationTime    *string            `json:"notification_time"`
	NotificationEnabled *bool              `json:"notification_enabled"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	habits, err := h.Svc.ListHabits(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	out := make([]habitDTO, 0, len(habits))
	for _, hb := range habits {
		out = append(out, toHabitDTO(hb))
	}
	writeJSON(w, http.StatusOK, map[string]any{"habits": out})
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req habitReq
	if !decodeJSON(w, r, &req) {
		return
	}
	hb, err := h.Svc.CreateHabit(r.Context(), tracker.HabitInput{
		Title:               deref(req.Title),
		Frequency:           deref(req.Frequency),
		Color:               deref(req.Color),
		Icon:                deref(req.Icon),
		NotificationTime:    req.NotificationTime,
		NotificationEnabled: deref(req.NotificationEnabled),
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHabitDTO(hb))
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req habitReq
	if !decodeJSON(w, r, &req) {
		return
	}
	hb, err := h.Svc.UpdateHabit(r.Context(), id, tracker.HabitPatch{
		Title:               req.Title,
		Frequency:           req.Frequency,
		Color:               req.Color,
		Icon:                req.Icon,
		NotificationTime:    req.NotificationTime,
		NotificationEnabled: req.NotificationEnabled,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toHabitDTO(hb))
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteHabit(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dateParam reads d, falling back to date. Empty means today.
func dateParam(r *http.Request) string {
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("d")); v != "" {
		return v
	}
	return strings.TrimSpace(q.Get("date"))
}

func (h *HabitHandler) Mark(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	h.mark(w, r, id)
}

func (h *HabitHandler) Unmark(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	h.unmark(w, r, id)
}

// MarkLegacy serves /api/mark_habit?id=&d=.
func (h *HabitHandler) MarkLegacy(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		writeMsg(w, http.StatusBadRequest, "invalid id")
		return
	}
	h.mark(w, r, id)
}

// UnmarkLegacy serves /api/unmark_habit?id=&d=.
func (h *HabitHandler) UnmarkLegacy(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		writeMsg(w, http.StatusBadRequest, "invalid id")
		return
	}
	h.unmark(w, r, id)
}

func (h *HabitHandler) mark(w http.ResponseWriter, r *http.Request, id uint64) {
	res, err := h.Svc.MarkHabit(r.Context(), id, dateParam(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"habit":      toHabitDTO(res.Habit),
		"streak":     res.Habit.Streak,
		"lastMarked": res.Habit.LastMarked,
		"inserted":   res.Inserted,
		"leveledUp":  res.LeveledUp,
		"newLevel":   res.NewLevel,
		"newBadges":  toBadgeDTOs(res.NewBadges),
	})
}

func (h *HabitHandler) unmark(w http.ResponseWriter, r *http.Request, id uint64) {
	hb, err := h.Svc.UnmarkHabit(r.Context(), id, dateParam(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"habit":      toHabitDTO(hb),
		"streak":     hb.Streak,
		"lastMarked": hb.LastMarked,
	})
}

// Progress takes week=d1,...,d7; without it the week is the seven days
// ending today.
func (h *HabitHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var dates []string
	if raw := strings.TrimSpace(r.URL.Query().Get("week")); raw != "" {
		for _, d := range strings.Split(raw, ",") {
			dates = append(dates, strings.TrimSpace(d))
		}
	} else {
		today := h.Svc.Today()
		for i := 6; i >= 0; i-- {
			dates = append(dates, tracker.FormatDate(today.AddDate(0, 0, -i)))
		}
	}

	p, err := h.Svc.WeekProgress(r.Context(), id, dates)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *HabitHandler) Logs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	logs, err := h.Svc.LogsInRange(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	// {"logs": {"<habit id>": {"<date>": 1}}}
	out := make(map[uint64]map[string]int, len(logs))
	for id, dates := range logs {
		m := make(map[string]int, len(dates))
		for d := range dates {
			m[d] = 1
		}
		out[id] = m
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": out})
}

func (h *HabitHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	date := dateParam(r)
	note, err := h.Svc.Note(r.Context(), id, date)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"note": note})
}

type noteReq struct {
	Date string `json:"date"`
	Note string `json:"note"`
}

func (h *HabitHandler) SetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req noteReq
	if !decodeJSON(w, r, &req) {
		return
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = dateParam(r)
	}
	if err := h.Svc.SetNote(r.Context(), id, date, req.Note); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
