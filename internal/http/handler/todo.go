package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"flowtrack/internal/logger"
	"flowtrack/internal/todo"
)

type TodoHandler struct {
	Svc *todo.Service
	Log *logger.Logger
}

func (h *TodoHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Svc.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryDTO{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

type categoryReq struct {
	Name string `json:"name"`
}

func (h *TodoHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.Svc.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryDTO{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt})
}

func (h *TodoHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TodoHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := todo.TaskFilter{
		Query:    q.Get("q"),
		StartDue: strings.TrimSpace(q.Get("start_due")),
		EndDue:   strings.TrimSpace(q.Get("end_due")),
		Tag:      q.Get("tag"),
	}
	if raw := strings.TrimSpace(q.Get("category_id")); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			writeMsg(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		f.CategoryID = &id
	}

	tasks, err := h.Svc.ListTasks(r.Context(), f)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	out := make([]taskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskDTO(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": out})
}

type createTaskReq struct {
	Title      string  `json:"title"`
	CategoryID *uint64 `json:"category_id"`
	DueDate    *string `json:"due_date"`
}

func (h *TodoHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskReq
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.Svc.CreateTask(r.Context(), todo.TaskInput{
		Title:      req.Title,
		CategoryID: req.CategoryID,
		DueDate:    req.DueDate,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskDTO(t))
}

// UpdateTask accepts a partial object; an explicit null clears category_id
// or due_date.
func (h *TodoHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var raw map[string]json.RawMessage
	if !decodeJSON(w, r, &raw) {
		return
	}

	var p todo.TaskPatch
	isNull := func(v json.RawMessage) bool { return strings.TrimSpace(string(v)) == "null" }
	field := func(key string, dst any) bool {
		if err := json.Unmarshal(raw[key], dst); err != nil {
			writeMsg(w, http.StatusBadRequest, "invalid "+key)
			return false
		}
		return true
	}

	if v, ok := raw["title"]; ok && !isNull(v) {
		p.Title = new(string)
		if !field("title", p.Title) {
			return
		}
	}
	if v, ok := raw["category_id"]; ok {
		if isNull(v) {
			p.ClearCategory = true
		} else {
			p.CategoryID = new(uint64)
			if !field("category_id", p.CategoryID) {
				return
			}
		}
	}
	if v, ok := raw["due_date"]; ok {
		if isNull(v) {
			p.ClearDue = true
		} else {
			p.DueDate = new(string)
			if !field("due_date", p.DueDate) {
				return
			}
		}
	}
	if v, ok := raw["completed"]; ok && !isNull(v) {
		p.Completed = new(bool)
		if !field("completed", p.Completed) {
			return
		}
	}

	t, err := h.Svc.UpdateTask(r.Context(), id, p)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(t))
}

func (h *TodoHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteTask(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
