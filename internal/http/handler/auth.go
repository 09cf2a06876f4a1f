package handler

import (
	"net/http"

	"flowtrack/internal/auth"
	"flowtrack/internal/logger"
)

type AuthHandler struct {
	Svc *auth.Service
	Log *logger.Logger
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := h.Svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}
