package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flowtrack/internal/logger"
	"flowtrack/internal/realtime"
)

type Service struct {
	DB       *gorm.DB
	Location *time.Location
	Now      func() time.Time
	Events   realtime.Publisher
	Log      *logger.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Today is the current calendar date in the configured location.
func (s *Service) Today() time.Time {
	return CalendarDay(s.now(), s.Location)
}

func (s *Service) ledger() *Ledger { return &Ledger{Now: s.now} }

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}

// pipeline carries state between the steps of one mutating request. All steps
// share a transaction; the first error rolls every step back.
type pipeline struct {
	today time.Time
	now   time.Time
	date  string

	habit   *Habit
	routine *Routine

	inserted  bool
	removed   bool
	earned    bool
	points    int
	award     *Award
	newBadges []Badge
}

type step func(tx *gorm.DB, p *pipeline) error

func (s *Service) run(ctx context.Context, p *pipeline, steps ...step) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, fn := range steps {
			if err := fn(tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) newPipeline(rawDate string) (*pipeline, error) {
	today := s.Today()
	date, err := resolveDate(rawDate, today)
	if err != nil {
		return nil, err
	}
	// YYYY-MM-DD compares correctly as a string
	if date > FormatDate(today) {
		return nil, fmt.Errorf("%w: date %s is in the future", ErrInvalidInput, date)
	}
	return &pipeline{today: today, now: s.now(), date: date}, nil
}

func lockHabit(id uint64) step {
	return func(tx *gorm.DB, p *pipeline) error {
		var h Habit
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&h, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		p.habit = &h
		return nil
	}
}

func lockRoutine(id uint64) step {
	return func(tx *gorm.DB, p *pipeline) error {
		var r Routine
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&r, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		p.routine = &r
		return nil
	}
}

func insertHabitLog(tx *gorm.DB, p *pipeline) error {
	inserted, err := markLog(tx, p.habit.ID, p.date, p.now)
	if err != nil {
		return err
	}
	p.inserted = inserted
	if inserted {
		p.earned = true
		p.points = PointsHabitMark
	}
	return nil
}

func deleteHabitLog(tx *gorm.DB, p *pipeline) error {
	removed, err := unmarkLog(tx, p.habit.ID, p.date)
	p.removed = removed
	return err
}

func recomputeStreak(tx *gorm.DB, p *pipeline) error {
	return recompute(tx, p.habit, p.today)
}

// toggleRoutineLog removes the day's log if present, otherwise inserts it.
func toggleRoutineLog(tx *gorm.DB, p *pipeline) error {
	res := tx.Where("routine_id = ? AND log_date = ?", p.routine.ID, p.date).Delete(&RoutineLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		p.removed = true
		return nil
	}
	row := RoutineLog{RoutineID: p.routine.ID, LogDate: p.date, CreatedAt: p.now}
	ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if ins.Error != nil {
		return ins.Error
	}
	p.inserted = ins.RowsAffected > 0
	if p.inserted {
		p.earned = true
		p.points = PointsRoutineItem
	}
	return nil
}

// award runs only for pipelines that earned something: a new completion or
// a finished focus session.
func (s *Service) award(tx *gorm.DB, p *pipeline) error {
	if !p.earned {
		return nil
	}
	a, err := s.ledger().Award(tx, p.points)
	if err != nil {
		return err
	}
	p.award = &a
	return nil
}

func checkBadges(tx *gorm.DB, p *pipeline) error {
	if !p.earned {
		return nil
	}
	earned, err := evaluateBadges(tx, p.now)
	if err != nil {
		return err
	}
	p.newBadges = earned
	return nil
}

// currentLevel fills the level for responses where no award happened.
func (s *Service) currentLevel(ctx context.Context, p *pipeline) int {
	if p.award != nil {
		return p.award.NewLevel
	}
	st, err := s.ledger().Get(s.DB.WithContext(ctx))
	if err != nil {
		return 0
	}
	return st.Level
}

type MarkResult struct {
	Habit     Habit
	Inserted  bool
	LeveledUp bool
	NewLevel  int
	NewBadges []Badge
}

// MarkHabit records a completion for date (today when empty), refreshes the
// habit's streak and, for a new completion, awards points and evaluates badges.
func (s *Service) MarkHabit(ctx context.Context, habitID uint64, rawDate string) (MarkResult, error) {
	p, err := s.newPipeline(rawDate)
	if err != nil {
		return MarkResult{}, err
	}
	if err := s.run(ctx, p,
		lockHabit(habitID),
		insertHabitLog,
		recomputeStreak,
		s.award,
		checkBadges,
	); err != nil {
		return MarkResult{}, err
	}

	out := MarkResult{
		Habit:     *p.habit,
		Inserted:  p.inserted,
		LeveledUp: p.award != nil && p.award.LeveledUp,
		NewLevel:  s.currentLevel(ctx, p),
		NewBadges: nonNil(p.newBadges),
	}
	s.publishHabit(ctx, realtime.EventHabitMarked, p)
	s.publishProgress(ctx, p)
	return out, nil
}

// UnmarkHabit removes the completion for date and refreshes the streak.
// Points already awarded are kept.
func (s *Service) UnmarkHabit(ctx context.Context, habitID uint64, rawDate string) (Habit, error) {
	p, err := s.newPipeline(rawDate)
	if err != nil {
		return Habit{}, err
	}
	if err := s.run(ctx, p,
		lockHabit(habitID),
		deleteHabitLog,
		recomputeStreak,
	); err != nil {
		return Habit{}, err
	}
	if p.removed {
		s.publishHabit(ctx, realtime.EventHabitUnmarked, p)
	}
	return *p.habit, nil
}

type ToggleResult struct {
	Completed bool
	LeveledUp bool
	NewLevel  int
	NewBadges []Badge
}

func (s *Service) ToggleRoutine(ctx context.Context, routineID uint64, rawDate string) (ToggleResult, error) {
	p, err := s.newPipeline(rawDate)
	if err != nil {
		return ToggleResult{}, err
	}
	if err := s.run(ctx, p,
		lockRoutine(routineID),
		toggleRoutineLog,
		s.award,
		checkBadges,
	); err != nil {
		return ToggleResult{}, err
	}

	out := ToggleResult{
		Completed: p.inserted,
		LeveledUp: p.award != nil && p.award.LeveledUp,
		NewLevel:  s.currentLevel(ctx, p),
		NewBadges: nonNil(p.newBadges),
	}
	s.publish(ctx, realtime.EventRoutineToggled, map[string]any{
		"routine_id": p.routine.ID,
		"kind":       p.routine.Kind,
		"date":       p.date,
		"completed":  out.Completed,
	})
	s.publishProgress(ctx, p)
	return out, nil
}

type FocusResult struct {
	Stats     UserStats
	LeveledUp bool
	NewLevel  int
	NewBadges []Badge
}

// CompleteFocusSession adds minutes to the focus total and awards
// floor(minutes/5) points.
func (s *Service) CompleteFocusSession(ctx context.Context, minutes int) (FocusResult, error) {
	if minutes <= 0 {
		return FocusResult{}, fmt.Errorf("%w: minutes must be positive", ErrInvalidInput)
	}
	p := &pipeline{today: s.Today(), now: s.now(), earned: true, points: FocusPoints(minutes)}
	addMinutes := func(tx *gorm.DB, _ *pipeline) error {
		return s.ledger().AddFocusMinutes(tx, minutes)
	}
	if err := s.run(ctx, p, addMinutes, s.award, checkBadges); err != nil {
		return FocusResult{}, err
	}

	out := FocusResult{
		Stats:     p.award.Stats,
		LeveledUp: p.award.LeveledUp,
		NewLevel:  p.award.NewLevel,
		NewBadges: nonNil(p.newBadges),
	}
	s.publish(ctx, realtime.EventFocusCompleted, map[string]any{"minutes": minutes, "points": p.points})
	s.publishProgress(ctx, p)
	return out, nil
}

// RefreshStreaks recomputes every habit against today so lapsed streaks read
// zero without waiting for the next mark. Returns how many habits changed.
func (s *Service) RefreshStreaks(ctx context.Context) (int, error) {
	var ids []uint64
	if err := s.DB.WithContext(ctx).Model(&Habit{}).Order("id asc").Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	changed := 0
	today := s.Today()
	for _, id := range ids {
		var before Habit
		p := &pipeline{today: today, now: s.now()}
		snapshot := func(_ *gorm.DB, p *pipeline) error {
			before = *p.habit
			return nil
		}
		err := s.run(ctx, p, lockHabit(id), snapshot, recomputeStreak)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return changed, err
		}
		if before.Streak != p.habit.Streak || !sameDate(before.LastMarked, p.habit.LastMarked) {
			changed++
		}
	}
	return changed, nil
}

func sameDate(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func nonNil(b []Badge) []Badge {
	if b == nil {
		return []Badge{}
	}
	return b
}
