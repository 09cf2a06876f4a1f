package tracker

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type HabitInput struct {
	Title               string
	Frequency           Frequency
	Color               string
	Icon                string
	NotificationTime    *string
	NotificationEnabled bool
}

// HabitPatch updates only the non-nil fields.
type HabitPatch struct {
	Title               *string
	Frequency           *Frequency
	Color               *string
	Icon                *string
	NotificationTime    *string
	NotificationEnabled *bool
}

func validateClock(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil, nil
	}
	if !clockRe.MatchString(t) {
		return nil, fmt.Errorf("%w: notification_time must be HH:MM", ErrInvalidInput)
	}
	return &t, nil
}

func (s *Service) ListHabits(ctx context.Context) ([]Habit, error) {
	out := []Habit{}
	err := s.DB.WithContext(ctx).Order("created_at desc, id desc").Find(&out).Error
	return out, err
}

func (s *Service) GetHabit(ctx context.Context, id uint64) (Habit, error) {
	var h Habit
	err := s.DB.WithContext(ctx).First(&h, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Habit{}, ErrNotFound
	}
	return h, err
}

func (s *Service) CreateHabit(ctx context.Context, in HabitInput) (Habit, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Habit{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	freq := in.Frequency
	if freq == "" {
		freq = Daily
	}
	if !freq.Valid() {
		return Habit{}, fmt.Errorf("%w: frequency must be daily or weekly", ErrInvalidInput)
	}
	clock, err := validateClock(in.NotificationTime)
	if err != nil {
		return Habit{}, err
	}

	h := Habit{
		Title:               title,
		Frequency:           freq,
		Color:               strings.TrimSpace(in.Color),
		Icon:                strings.TrimSpace(in.Icon),
		NotificationTime:    clock,
		NotificationEnabled: in.NotificationEnabled,
		CreatedAt:           s.now(),
	}
	if err := s.DB.WithContext(ctx).Create(&h).Error; err != nil {
		return Habit{}, err
	}
	return h, nil
}

// UpdateHabit applies patch. A frequency change re-derives the streak in the
// same transaction.
func (s *Service) UpdateHabit(ctx context.Context, id uint64, patch HabitPatch) (Habit, error) {
	fields := map[string]any{}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return Habit{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		fields["title"] = t
	}
	if patch.Frequency != nil {
		if !patch.Frequency.Valid() {
			return Habit{}, fmt.Errorf("%w: frequency must be daily or weekly", ErrInvalidInput)
		}
		fields["frequency"] = *patch.Frequency
	}
	if patch.Color != nil {
		fields["color"] = strings.TrimSpace(*patch.Color)
	}
	if patch.Icon != nil {
		fields["icon"] = strings.TrimSpace(*patch.Icon)
	}
	if patch.NotificationTime != nil {
		clock, err := validateClock(patch.NotificationTime)
		if err != nil {
			return Habit{}, err
		}
		fields["notification_time"] = clock
	}
	if patch.NotificationEnabled != nil {
		fields["notification_enabled"] = *patch.NotificationEnabled
	}
	if len(fields) == 0 {
		return Habit{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	p := &pipeline{today: s.Today(), now: s.now()}
	apply := func(tx *gorm.DB, p *pipeline) error {
		if err := tx.Model(&Habit{}).Where("id = ?", p.habit.ID).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(p.habit, "id = ?", p.habit.ID).Error
	}
	steps := []step{lockHabit(id), apply}
	if patch.Frequency != nil {
		steps = append(steps, recomputeStreak)
	}
	if err := s.run(ctx, p, steps...); err != nil {
		return Habit{}, err
	}
	return *p.habit, nil
}

// DeleteHabit removes the habit together with its completion logs.
func (s *Service) DeleteHabit(ctx context.Context, id uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", id).Delete(&CompletionLog{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Habit{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Note returns the note on a completion; empty when the day has no log.
func (s *Service) Note(ctx context.Context, habitID uint64, rawDate string) (string, error) {
	date, err := resolveDate(rawDate, s.Today())
	if err != nil {
		return "", err
	}
	var row CompletionLog
	err = s.DB.WithContext(ctx).
		Where("habit_id = ? AND log_date = ?", habitID, date).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return row.Note, err
}

// SetNote attaches note to an existing completion.
func (s *Service) SetNote(ctx context.Context, habitID uint64, rawDate, note string) error {
	date, err := resolveDate(rawDate, s.Today())
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Model(&CompletionLog{}).
		Where("habit_id = ? AND log_date = ?", habitID, date).
		Update("note", strings.TrimSpace(note))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
