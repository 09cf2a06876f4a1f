package handler

import (
	"time"

	"flowtrack/internal/todo"
	"flowtrack/internal/tracker"
)

type habitDTO struct {
	ID                  uint64            `json:"id"`
	Title               string            `json:"title"`
	Frequency           tracker.Frequency `json:"frequency"`
	Streak              int               `json:"streak"`
	LastMarked          *string           `json:"last_marked"`
	Color               string            `json:"color"`
	Icon                string            `json:"icon"`
	NotificationTime    *string           `json:"notification_time"`
	NotificationEnabled bool              `json:"notification_enabled"`
	CreatedAt           time.Time         `json:"created_at"`
}

func toHabitDTO(h tracker.Habit) habitDTO {
	return habitDTO{
		ID:                  h.ID,
		Title:               h.Title,
		Frequency:           h.Frequency,
		Streak:              h.Streak,
		LastMarked:          h.LastMarked,
		Color:               h.Color,
		Icon:                h.Icon,
		NotificationTime:    h.NotificationTime,
		NotificationEnabled: h.NotificationEnabled,
		CreatedAt:           h.CreatedAt,
	}
}

type routineDTO struct {
	ID        uint64              `json:"id"`
	Kind      tracker.RoutineKind `json:"kind"`
	Text      string              `json:"text"`
	Sort      int                 `json:"sort"`
	CreatedAt time.Time           `json:"created_at"`
}

func toRoutineDTO(r tracker.Routine) routineDTO {
	return routineDTO{ID: r.ID, Kind: r.Kind, Text: r.Text, Sort: r.Sort, CreatedAt: r.CreatedAt}
}

type badgeDTO struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Icon           string     `json:"icon"`
	Description    string     `json:"description"`
	ConditionType  string     `json:"condition_type"`
	ConditionValue int        `json:"condition_value"`
	EarnedAt       *time.Time `json:"earned_at,omitempty"`
}

func toBadgeDTOs(in []tracker.Badge) []badgeDTO {
	out := make([]badgeDTO, 0, len(in))
	for _, b := range in {
		out = append(out, badgeDTO{
			ID:             b.ID,
			Name:           b.Name,
			Icon:           b.Icon,
			Description:    b.Description,
			ConditionType:  string(b.ConditionType),
			ConditionValue: b.ConditionValue,
		})
	}
	return out
}

func toEarnedDTOs(in []tracker.EarnedBadge) []badgeDTO {
	out := make([]badgeDTO, 0, len(in))
	for _, b := range in {
		earned := b.EarnedAt
		out = append(out, badgeDTO{
			ID:             b.ID,
			Name:           b.Name,
			Icon:           b.Icon,
			Description:    b.Description,
			ConditionType:  string(b.ConditionType),
			ConditionValue: b.ConditionValue,
			EarnedAt:       &earned,
		})
	}
	return out
}

type statsDTO struct {
	Points       int `json:"points"`
	Level        int `json:"level"`
	XP           int `json:"xp"`
	FocusMinutes int `json:"focus_minutes"`
	NextLevelXP  int `json:"next_level_xp"`
}

func toStatsDTO(s tracker.UserStats) statsDTO {
	return statsDTO{
		Points:       s.Points,
		Level:        s.Level,
		XP:           s.XP,
		FocusMinutes: s.FocusMinutes,
		NextLevelXP:  tracker.XPForLevel(s.Level),
	}
}

type categoryDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type taskDTO struct {
	ID         uint64    `json:"id"`
	Title      string    `json:"title"`
	CategoryID *uint64   `json:"category_id"`
	DueDate    *string   `json:"due_date"`
	Completed  bool      `json:"completed"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
}

func toTaskDTO(t todo.Task) taskDTO {
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}
	return taskDTO{
		ID:         t.ID,
		Title:      t.Title,
		CategoryID: t.CategoryID,
		DueDate:    t.DueDate,
		Completed:  t.Completed,
		Tags:       tags,
		CreatedAt:  t.CreatedAt,
	}
}
