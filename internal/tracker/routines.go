package tracker

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var defaultRoutines = map[RoutineKind][]string{
	Morning: {"skin care", "make bed", "warm lemon water", "5 min stretching", "journaling", "workout"},
	Night:   {"nice warm bath", "mood lights in room", "herbal tea", "journal", "plan next day", "read 10 pages"},
}

// SeedRoutines fills an empty routines table with the default checklist.
func SeedRoutines(db *gorm.DB) error {
	var n int64
	if err := db.Model(&Routine{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var rows []Routine
	for _, kind := range []RoutineKind{Morning, Night} {
		for i, text := range defaultRoutines[kind] {
			rows = append(rows, Routine{Kind: kind, Text: text, Sort: i})
		}
	}
	return db.Create(&rows).Error
}

type RoutineInput struct {
	Kind RoutineKind
	Text string
	Sort int
}

type RoutinePatch struct {
	Kind *RoutineKind
	Text *string
	Sort *int
}

func (s *Service) ListRoutines(ctx context.Context, kind RoutineKind) ([]Routine, error) {
	q := s.DB.WithContext(ctx).Model(&Routine{})
	if kind != "" {
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: kind must be morning or night", ErrInvalidInput)
		}
		q = q.Where("kind = ?", kind).Order("sort asc, id asc")
	} else {
		q = q.Order("kind asc, sort asc, id asc")
	}
	out := []Routine{}
	err := q.Find(&out).Error
	return out, err
}

// ensureUniqueText rejects text already used by another routine of kind.
func ensureUniqueText(tx *gorm.DB, kind RoutineKind, text string, exceptID uint64) error {
	var n int64
	q := tx.Model(&Routine{}).Where("kind = ? AND lower(text) = lower(?)", kind, text)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %s routine %q already exists", ErrConflict, kind, text)
	}
	return nil
}

func (s *Service) CreateRoutine(ctx context.Context, in RoutineInput) (Routine, error) {
	text := strings.TrimSpace(in.Text)
	if !in.Kind.Valid() || text == "" {
		return Routine{}, fmt.Errorf("%w: kind and text are required", ErrInvalidInput)
	}

	r := Routine{Kind: in.Kind, Text: text, Sort: in.Sort, CreatedAt: s.now()}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueText(tx, r.Kind, r.Text, 0); err != nil {
			return err
		}
		return tx.Create(&r).Error
	})
	if err != nil {
		return Routine{}, err
	}
	return r, nil
}

func (s *Service) UpdateRoutine(ctx context.Context, id uint64, patch RoutinePatch) (Routine, error) {
	if patch.Kind == nil && patch.Text == nil && patch.Sort == nil {
		return Routine{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if patch.Kind != nil && !patch.Kind.Valid() {
		return Routine{}, fmt.Errorf("%w: kind must be morning or night", ErrInvalidInput)
	}
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return Routine{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	p := &pipeline{}
	apply := func(tx *gorm.DB, p *pipeline) error {
		r := p.routine
		if patch.Kind != nil {
			r.Kind = *patch.Kind
		}
		if patch.Text != nil {
			r.Text = strings.TrimSpace(*patch.Text)
		}
		if patch.Sort != nil {
			r.Sort = *patch.Sort
		}
		if patch.Kind != nil || patch.Text != nil {
			if err := ensureUniqueText(tx, r.Kind, r.Text, r.ID); err != nil {
				return err
			}
		}
		return tx.Model(&Routine{}).Where("id = ?", r.ID).Updates(map[string]any{
			"kind": r.Kind,
			"text": r.Text,
			"sort": r.Sort,
		}).Error
	}
	if err := s.run(ctx, p, lockRoutine(id), apply); err != nil {
		return Routine{}, err
	}
	return *p.routine, nil
}

// DeleteRoutine removes the routine and its logs.
func (s *Service) DeleteRoutine(ctx context.Context, id uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("routine_id = ?", id).Delete(&RoutineLog{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Routine{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
