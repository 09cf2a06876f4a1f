package tracker

import "time"

type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

func (f Frequency) Valid() bool { return f == Daily || f == Weekly }

type RoutineKind string

const (
	Morning RoutineKind = "morning"
	Night   RoutineKind = "night"
)

func (k RoutineKind) Valid() bool { return k == Morning || k == Night }

// Habit carries a cached Streak/LastMarked pair. Both are rewritten only by
// recompute, inside the same transaction as the log mutation.
type Habit struct {
	ID                  uint64    `gorm:"primaryKey"`
	Title               string    `gorm:"type:text;not null"`
	Frequency           Frequency `gorm:"type:varchar(10);not null;default:'daily'"`
	Streak              int       `gorm:"not null;default:0"`
	LastMarked          *string   `gorm:"type:varchar(10)"`
	Color               string    `gorm:"type:varchar(32);not null;default:''"`
	Icon                string    `gorm:"type:varchar(32);not null;default:''"`
	NotificationTime    *string   `gorm:"type:varchar(5)"`
	NotificationEnabled bool      `gorm:"not null;default:false"`
	CreatedAt           time.Time `gorm:"not null"`
}

// CompletionLog is unique per (habit, day).
type CompletionLog struct {
	ID        uint64    `gorm:"primaryKey"`
	HabitID   uint64    `gorm:"not null;uniqueIndex:uq_habit_logs_habit_date,priority:1"`
	LogDate   string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_habit_logs_habit_date,priority:2;index"`
	Note      string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
}

func (CompletionLog) TableName() string { return "habit_logs" }

type Routine struct {
	ID        uint64      `gorm:"primaryKey"`
	Kind      RoutineKind `gorm:"type:varchar(10);not null;index"`
	Text      string      `gorm:"type:text;not null"`
	Sort      int         `gorm:"not null;default:0"`
	CreatedAt time.Time   `gorm:"not null"`
}

type RoutineLog struct {
	ID        uint64    `gorm:"primaryKey"`
	RoutineID uint64    `gorm:"not null;uniqueIndex:uq_routine_logs_routine_date,priority:1"`
	LogDate   string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_routine_logs_routine_date,priority:2;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// UserStats is a single row (ID = StatsRowID).
type UserStats struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement:false"`
	Points       int       `gorm:"not null;default:0"`
	Level        int       `gorm:"not null;default:1"`
	XP           int       `gorm:"not null;default:0"`
	FocusMinutes int       `gorm:"not null;default:0"`
	UpdatedAt    time.Time `gorm:"not null"`
}

const StatsRowID uint64 = 1

type ConditionType string

const (
	CondTotalHabits    ConditionType = "total_habits"
	CondStreak         ConditionType = "streak"
	CondMorningRoutine ConditionType = "morning_routine"
	CondNightRoutine   ConditionType = "night_routine"
)

type Badge struct {
	ID             string        `gorm:"primaryKey;type:varchar(64)" yaml:"id"`
	Name           string        `gorm:"type:text;not null" yaml:"name"`
	Icon           string        `gorm:"type:varchar(32);not null;default:''" yaml:"icon"`
	Description    string        `gorm:"type:text;not null;default:''" yaml:"description"`
	ConditionType  ConditionType `gorm:"type:varchar(32);not null" yaml:"condition_type"`
	ConditionValue int           `gorm:"not null" yaml:"condition_value"`
}

// UserBadge is append-only; a badge appears at most once.
type UserBadge struct {
	ID       uint64    `gorm:"primaryKey"`
	BadgeID  string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	EarnedAt time.Time `gorm:"not null"`
}
