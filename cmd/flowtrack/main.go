package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"flowtrack/internal/config"
	"flowtrack/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag

	Serve          ServeCmd          `cmd:"" help:"Run the HTTP API and background worker." default:"1"`
	Migrate        MigrateCmd        `cmd:"" help:"Create tables and seed default rows."`
	RefreshStreaks RefreshStreaksCmd `cmd:"" name:"refresh-streaks" help:"Recompute every habit streak against today."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("flowtrack"),
		kong.Description("Habit, routine and task tracker with streaks and badges"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := ctx.Run(&appContext{Config: cfg, Log: log}); err != nil {
		log.Error("command failed", "command", ctx.Command(), "error", err)
		log.Sync()
		os.Exit(1)
	}
}
