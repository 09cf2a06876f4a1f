package realtime

import (
	"context"
	"time"
)

const (
	EventHabitMarked    = "habit.marked"
	EventHabitUnmarked  = "habit.unmarked"
	EventRoutineToggled = "routine.toggled"
	EventFocusCompleted = "focus.completed"
	EventLevelUp        = "level.up"
	EventBadgeEarned    = "badge.earned"
)

type Event struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// Publisher delivers events to live subscribers. Publishing is best effort;
// callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
