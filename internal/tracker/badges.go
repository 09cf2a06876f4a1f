package tracker

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed badges.yaml
var badgeCatalogYAML []byte

// Aggregates is the snapshot every badge condition is judged against.
type Aggregates struct {
	TotalHabitLogs     int64
	MaxStreak          int64
	MorningRoutineLogs int64
	NightRoutineLogs   int64
}

// Condition reports whether a snapshot reaches threshold.
type Condition func(a Aggregates, threshold int) bool

func atLeast(pick func(Aggregates) int64) Condition {
	return func(a Aggregates, threshold int) bool { return pick(a) >= int64(threshold) }
}

// Conditions maps condition_type to its rule. New badge kinds are added here.
var Conditions = map[ConditionType]Condition{
	CondTotalHabits:    atLeast(func(a Aggregates) int64 { return a.TotalHabitLogs }),
	CondStreak:         atLeast(func(a Aggregates) int64 { return a.MaxStreak }),
	CondMorningRoutine: atLeast(func(a Aggregates) int64 { return a.MorningRoutineLogs }),
	CondNightRoutine:   atLeast(func(a Aggregates) int64 { return a.NightRoutineLogs }),
}

// Qualifies is false for unknown condition types.
func (b Badge) Qualifies(a Aggregates) bool {
	cond, ok := Conditions[b.ConditionType]
	if !ok {
		return false
	}
	return cond(a, b.ConditionValue)
}

// Catalog parses the embedded badge definitions.
func Catalog() ([]Badge, error) {
	var out []Badge
	if err := yaml.Unmarshal(badgeCatalogYAML, &out); err != nil {
		return nil, fmt.Errorf("parse badge catalog: %w", err)
	}
	for _, b := range out {
		if b.ID == "" || b.Name == "" {
			return nil, fmt.Errorf("badge catalog: entry missing id or name")
		}
		if _, ok := Conditions[b.ConditionType]; !ok {
			return nil, fmt.Errorf("badge catalog: %s has unknown condition %q", b.ID, b.ConditionType)
		}
	}
	return out, nil
}

// SeedBadges inserts catalog entries that are not yet stored.
func SeedBadges(db *gorm.DB) error {
	cat, err := Catalog()
	if err != nil {
		return err
	}
	if len(cat) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cat).Error
}

func loadAggregates(tx *gorm.DB) (Aggregates, error) {
	var a Aggregates
	if err := tx.Model(&CompletionLog{}).Count(&a.TotalHabitLogs).Error; err != nil {
		return a, err
	}
	if err := tx.Model(&Habit{}).Select("coalesce(max(streak), 0)").Scan(&a.MaxStreak).Error; err != nil {
		return a, err
	}
	routineCount := func(kind RoutineKind, dst *int64) error {
		return tx.Table("routine_logs").
			Joins("join routines on routines.id = routine_logs.routine_id").
			Where("routines.kind = ?", kind).
			Count(dst).Error
	}
	if err := routineCount(Morning, &a.MorningRoutineLogs); err != nil {
		return a, err
	}
	if err := routineCount(Night, &a.NightRoutineLogs); err != nil {
		return a, err
	}
	return a, nil
}

// evaluateBadges grants every badge whose condition now holds and returns the
// ones earned by this call.
func evaluateBadges(tx *gorm.DB, now time.Time) ([]Badge, error) {
	var catalog []Badge
	if err := tx.Order("id asc").Find(&catalog).Error; err != nil {
		return nil, err
	}
	var earned []string
	if err := tx.Model(&UserBadge{}).Pluck("badge_id", &earned).Error; err != nil {
		return nil, err
	}
	have := make(map[string]struct{}, len(earned))
	for _, id := range earned {
		have[id] = struct{}{}
	}

	agg, err := loadAggregates(tx)
	if err != nil {
		return nil, err
	}

	out := []Badge{}
	for _, b := range catalog {
		if _, ok := have[b.ID]; ok {
			continue
		}
		if !b.Qualifies(agg) {
			continue
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&UserBadge{BadgeID: b.ID, EarnedAt: now})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

type EarnedBadge struct {
	Badge
	EarnedAt time.Time
}

func earnedBadges(db *gorm.DB) ([]EarnedBadge, error) {
	var ubs []UserBadge
	if err := db.Order("earned_at asc, id asc").Find(&ubs).Error; err != nil {
		return nil, err
	}
	if len(ubs) == 0 {
		return []EarnedBadge{}, nil
	}
	ids := make([]string, 0, len(ubs))
	for _, ub := range ubs {
		ids = append(ids, ub.BadgeID)
	}
	var badges []Badge
	if err := db.Where("id IN ?", ids).Find(&badges).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]Badge, len(badges))
	for _, b := range badges {
		byID[b.ID] = b
	}

	out := make([]EarnedBadge, 0, len(ubs))
	for _, ub := range ubs {
		b, ok := byID[ub.BadgeID]
		if !ok {
			continue
		}
		out = append(out, EarnedBadge{Badge: b, EarnedAt: ub.EarnedAt})
	}
	return out, nil
}
