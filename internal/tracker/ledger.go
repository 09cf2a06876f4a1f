package tracker

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	PointsHabitMark    = 10
	PointsRoutineItem  = 5
	focusMinutesPerPt  = 5
	xpPerLevelMultiple = 100
)

// FocusPoints is the award for a completed focus session.
func FocusPoints(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return minutes / focusMinutesPerPt
}

type Award struct {
	LeveledUp bool
	NewLevel  int
	Stats     UserStats
}

// XPForLevel is the xp needed to leave level.
func XPForLevel(level int) int { return level * xpPerLevelMultiple }

// ApplyAward adds points to both counters and levels up at most once.
func ApplyAward(s UserStats, points int) (UserStats, bool) {
	s.Points += points
	s.XP += points
	required := XPForLevel(s.Level)
	if s.XP >= required {
		s.Level++
		s.XP -= required
		return s, true
	}
	return s, false
}

// Ledger owns the singleton stats row.
type Ledger struct {
	Now func() time.Time
}

// Ensure creates the stats row if absent.
func (l *Ledger) Ensure(tx *gorm.DB) error {
	row := UserStats{ID: StatsRowID, Level: 1, UpdatedAt: l.now()}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (l *Ledger) Get(db *gorm.DB) (UserStats, error) {
	var s UserStats
	err := db.First(&s, "id = ?", StatsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return UserStats{ID: StatsRowID, Level: 1}, nil
	}
	return s, err
}

func (l *Ledger) lock(tx *gorm.DB) (UserStats, error) {
	if err := l.Ensure(tx); err != nil {
		return UserStats{}, err
	}
	var s UserStats
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", StatsRowID).Error
	return s, err
}

// Award applies points inside tx.
func (l *Ledger) Award(tx *gorm.DB, points int) (Award, error) {
	s, err := l.lock(tx)
	if err != nil {
		return Award{}, err
	}
	next, leveled := ApplyAward(s, points)
	next.UpdatedAt = l.now()
	if err := tx.Model(&UserStats{}).Where("id = ?", StatsRowID).Updates(map[string]any{
		"points":     next.Points,
		"xp":         next.XP,
		"level":      next.Level,
		"updated_at": next.UpdatedAt,
	}).Error; err != nil {
		return Award{}, err
	}
	return Award{LeveledUp: leveled, NewLevel: next.Level, Stats: next}, nil
}

func (l *Ledger) AddFocusMinutes(tx *gorm.DB, minutes int) error {
	if _, err := l.lock(tx); err != nil {
		return err
	}
	return tx.Model(&UserStats{}).Where("id = ?", StatsRowID).
		Update("focus_minutes", gorm.Expr("focus_minutes + ?", minutes)).Error
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
