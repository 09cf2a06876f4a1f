package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"flowtrack/internal/auth"
	"flowtrack/internal/config"
	"flowtrack/internal/db"
	httpx "flowtrack/internal/http"
	"flowtrack/internal/jobs"
	"flowtrack/internal/logger"
	"flowtrack/internal/realtime"
	"flowtrack/internal/todo"
	"flowtrack/internal/tracker"
)

type appContext struct {
	Config config.Config
	Log    *logger.Logger
}

func (a *appContext) open() (*gorm.DB, error) {
	gdb, err := db.Connect(a.Config.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Setup(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(app *appContext) error {
	if _, err := app.open(); err != nil {
		return err
	}
	app.Log.Info("database migrated and seeded")
	return nil
}

type RefreshStreaksCmd struct{}

func (c *RefreshStreaksCmd) Run(app *appContext) error {
	gdb, err := app.open()
	if err != nil {
		return err
	}
	svc := &tracker.Service{DB: gdb, Location: app.Config.Location, Log: app.Log}
	changed, err := svc.RefreshStreaks(context.Background())
	if err != nil {
		return err
	}
	app.Log.Info("streaks refreshed", "changed", changed)
	return nil
}

type ServeCmd struct {
	Addr string `help:"Listen address (overrides HTTP_ADDR)."`
}

func (c *ServeCmd) Run(app *appContext) error {
	cfg := app.Config
	log := app.Log
	if c.Addr != "" {
		cfg.HTTPAddr = c.Addr
	}

	gdb, err := app.open()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := realtime.NewHub()
	var events realtime.Publisher = hub
	if cfg.RedisAddr != "" {
		bus, err := realtime.NewRedisBus(cfg.RedisAddr, cfg.RedisChannel, hub, log)
		if err != nil {
			return err
		}
		defer bus.Close()
		events = bus
		go func() {
			if err := bus.Run(ctx); err != nil {
				log.Error("redis forwarder stopped", "error", err)
			}
		}()
		log.Info("event bus on redis", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
	}

	trackerSvc := &tracker.Service{
		DB:       gdb,
		Location: cfg.Location,
		Events:   events,
		Log:      log.With("service", "tracker"),
	}
	todoSvc := &todo.Service{DB: gdb}

	var (
		authSvc *auth.Service
		jwtSvc  *auth.JWT
	)
	if cfg.AuthEnabled {
		jwtSvc = auth.NewJWT(cfg.JWTSecret)
		authSvc = &auth.Service{DB: gdb, JWT: jwtSvc}
	}

	r := httpx.NewRouter(cfg, httpx.Deps{
		Tracker: trackerSvc,
		Todo:    todoSvc,
		Auth:    authSvc,
		JWT:     jwtSvc,
		Hub:     hub,
		Log:     log,
	})

	// worker
	if cfg.WorkerEnabled {
		worker := jobs.NewWorker(&jobs.Repo{DB: gdb}, trackerSvc, cfg.Location, cfg.WorkerPoll, log)
		go worker.Run(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ch:
	case err := <-errCh:
		return err
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
