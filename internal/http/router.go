package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"flowtrack/internal/auth"
	"flowtrack/internal/config"
	"flowtrack/internal/http/handler"
	mw "flowtrack/internal/http/middleware"
	"flowtrack/internal/logger"
	"flowtrack/internal/realtime"
	"flowtrack/internal/todo"
	"flowtrack/internal/tracker"
)

type Deps struct {
	Tracker *tracker.Service
	Todo    *todo.Service
	Auth    *auth.Service
	JWT     *auth.JWT
	Hub     *realtime.Hub
	Log     *logger.Logger
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(log))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if d.Auth != nil {
		ah := &handler.AuthHandler{Svc: d.Auth, Log: log}
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)
	}

	habits := &handler.HabitHandler{Svc: d.Tracker, Log: log}
	routines := &handler.RoutineHandler{Svc: d.Tracker, Log: log}
	gamify := &handler.GamifyHandler{Svc: d.Tracker, Todo: d.Todo, Log: log}
	todos := &handler.TodoHandler{Svc: d.Todo, Log: log}

	r.Route("/api", func(r chi.Router) {
		if cfg.AuthEnabled && d.JWT != nil {
			r.Use(auth.RequireAuth(d.JWT))
		}

		r.Get("/habits", habits.List)
		r.Post("/habits", habits.Create)
		r.Put("/habits/{id}", habits.Update)
		r.Delete("/habits/{id}", habits.Delete)
		r.Post("/habits/{id}/mark", habits.Mark)
		r.Post("/habits/{id}/unmark", habits.Unmark)
		r.Get("/habits/{id}/progress", habits.Progress)
		r.Get("/habits/{id}/note", habits.GetNote)
		r.Post("/habits/{id}/note", habits.SetNote)
		r.Get("/habit_logs", habits.Logs)
		r.Post("/mark_habit", habits.MarkLegacy)
		r.Post("/unmark_habit", habits.UnmarkLegacy)

		r.Get("/routines", routines.List)
		r.Post("/routines", routines.Create)
		r.Post("/routines/toggle", routines.Toggle)
		r.Get("/routines/progress", routines.Progress)
		r.Put("/routines/{id}", routines.Update)
		r.Delete("/routines/{id}", routines.Delete)

		r.Get("/metrics", gamify.Metrics)
		r.Get("/analytics", gamify.Analytics)
		r.Get("/calendar_activity", gamify.Calendar)
		r.Post("/focus/complete", gamify.CompleteFocus)

		r.Get("/categories", todos.ListCategories)
		r.Post("/categories", todos.CreateCategory)
		r.Delete("/categories/{id}", todos.DeleteCategory)
		r.Get("/tasks", todos.ListTasks)
		r.Post("/tasks", todos.CreateTask)
		r.Put("/tasks/{id}", todos.UpdateTask)
		r.Delete("/tasks/{id}", todos.DeleteTask)

		if d.Hub != nil {
			r.Get("/events", realtime.StreamHandler(d.Hub, log))
		}
	})

	return r
}
