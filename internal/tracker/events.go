package tracker

import (
	"context"

	"flowtrack/internal/realtime"
)

// publish is called after commit; a failed publish never fails the request.
func (s *Service) publish(ctx context.Context, typ string, payload any) {
	if s.Events == nil {
		return
	}
	ev := realtime.Event{Type: typ, At: s.now().UTC(), Payload: payload}
	if err := s.Events.Publish(ctx, ev); err != nil {
		s.logger().Warn("publish event failed", "type", typ, "error", err)
	}
}

func (s *Service) publishHabit(ctx context.Context, typ string, p *pipeline) {
	s.publish(ctx, typ, map[string]any{
		"habit_id":    p.habit.ID,
		"date":        p.date,
		"streak":      p.habit.Streak,
		"last_marked": p.habit.LastMarked,
	})
}

// publishProgress announces level-ups and newly earned badges.
func (s *Service) publishProgress(ctx context.Context, p *pipeline) {
	if p.award != nil && p.award.LeveledUp {
		s.publish(ctx, realtime.EventLevelUp, map[string]any{"level": p.award.NewLevel})
	}
	for _, b := range p.newBadges {
		s.publish(ctx, realtime.EventBadgeEarned, map[string]any{
			"id":   b.ID,
			"name": b.Name,
			"icon": b.Icon,
		})
	}
}
