package db

import (
	"fmt"
	"net/url"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"flowtrack/internal/auth"
	"flowtrack/internal/jobs"
	"flowtrack/internal/todo"
	"flowtrack/internal/tracker"
)

const sqlitePrefix = "sqlite://"

// sqliteDefaults take the write lock at BEGIN and wait for it, so concurrent
// writers queue instead of failing with "database is locked".
var sqliteDefaults = [][2]string{
	{"_txlock", "immediate"},
	{"_busy_timeout", "5000"},
	{"_journal_mode", "WAL"},
}

// sqliteDSN adds sqliteDefaults to path unless the caller set them.
func sqliteDSN(path string) string {
	base, rawQuery, _ := strings.Cut(path, "?")
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		q = url.Values{}
	}
	for _, kv := range sqliteDefaults {
		if q.Get(kv[0]) == "" {
			q.Set(kv[0], kv[1])
		}
	}
	return base + "?" + q.Encode()
}

// Connect opens a Postgres DSN (postgres:// or key=value form) or a SQLite
// file given as sqlite://path.
func Connect(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, sqlitePrefix) {
		path := strings.TrimPrefix(dsn, sqlitePrefix)
		if path == "" {
			return nil, fmt.Errorf("sqlite dsn has no path")
		}
		dialector = sqlite.Open(sqliteDSN(path))
	} else {
		dialector = postgres.Open(dsn)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&tracker.Habit{},
		&tracker.CompletionLog{},
		&tracker.Routine{},
		&tracker.RoutineLog{},
		&tracker.UserStats{},
		&tracker.Badge{},
		&tracker.UserBadge{},
		&todo.Category{},
		&todo.Task{},
		&jobs.Job{},
		&auth.User{},
	); err != nil {
		return err
	}

	// Plain b-tree indexes; both dialects accept this syntax.
	stmts := []string{
		`create index if not exists idx_routines_kind_sort on routines(kind, sort);`,
		`create index if not exists idx_tasks_due on tasks(completed, due_date);`,
		`create index if not exists idx_tasks_category on tasks(category_id);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}

// Seed writes the rows the app expects on first start: the stats row, the
// badge catalog and the default routine checklist. Safe to run repeatedly.
func Seed(gdb *gorm.DB) error {
	if err := (&tracker.Ledger{}).Ensure(gdb); err != nil {
		return fmt.Errorf("seed stats: %w", err)
	}
	if err := tracker.SeedBadges(gdb); err != nil {
		return fmt.Errorf("seed badges: %w", err)
	}
	if err := tracker.SeedRoutines(gdb); err != nil {
		return fmt.Errorf("seed routines: %w", err)
	}
	return nil
}

// Setup migrates and seeds.
func Setup(gdb *gorm.DB) error {
	if err := AutoMigrateAndIndexes(gdb); err != nil {
		return err
	}
	return Seed(gdb)
}
