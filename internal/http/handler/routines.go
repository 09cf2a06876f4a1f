package handler

import (
	"net/http"
	"strings"

	"flowtrack/internal/logger"
	"flowtrack/internal/tracker"
)

type RoutineHandler struct {
	Svc *tracker.Service
	Log *logger.Logger
}

type routineReq struct {
	Kind *tracker.RoutineKind `json:"kind"`
	Text *string              `json:"text"`
	Sort *int                 `json:"sort"`
}

func (h *RoutineHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := tracker.RoutineKind(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind"))))
	rows, err := h.Svc.ListRoutines(r.Context(), kind)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	out := make([]routineDTO, 0, len(rows))
	for _, rt := range rows {
		out = append(out, toRoutineDTO(rt))
	}
	writeJSON(w, http.StatusOK, map[string]any{"routines": out})
}

func (h *RoutineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req routineReq
	if !decodeJSON(w, r, &req) {
		return
	}
	rt, err := h.Svc.CreateRoutine(r.Context(), tracker.RoutineInput{
		Kind: deref(req.Kind),
		Text: deref(req.Text),
		Sort: deref(req.Sort),
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoutineDTO(rt))
}

func (h *RoutineHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req routineReq
	if !decodeJSON(w, r, &req) {
		return
	}
	rt, err := h.Svc.UpdateRoutine(r.Context(), id, tracker.RoutinePatch{
		Kind: req.Kind,
		Text: req.Text,
		Sort: req.Sort,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoutineDTO(rt))
}

func (h *RoutineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteRoutine(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toggleReq struct {
	ID   uint64 `json:"id"`
	Date string `json:"date"`
}

func (h *RoutineHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID == 0 {
		writeMsg(w, http.StatusBadRequest, "invalid id")
		return
	}
	res, err := h.Svc.ToggleRoutine(r.Context(), req.ID, req.Date)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"completed": res.Completed,
		"leveledUp": res.LeveledUp,
		"newLevel":  res.NewLevel,
		"newBadges": toBadgeDTOs(res.NewBadges),
	})
}

func (h *RoutineHandler) Progress(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Svc.RoutineProgress(r.Context(), dateParam(r))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"completed": ids})
}
