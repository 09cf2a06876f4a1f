package tracker

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// parseRange validates a [start, end] pair of dates.
func parseRange(start, end string) (string, string, error) {
	if start == "" || end == "" {
		return "", "", fmt.Errorf("%w: start and end are required (YYYY-MM-DD)", ErrInvalidInput)
	}
	s, err := ParseDate(start)
	if err != nil {
		return "", "", err
	}
	e, err := ParseDate(end)
	if err != nil {
		return "", "", err
	}
	if e.Before(s) {
		return "", "", fmt.Errorf("%w: end before start", ErrInvalidInput)
	}
	return FormatDate(s), FormatDate(e), nil
}

// LogsInRange maps habit id to the dates it was completed on in [start, end].
func (s *Service) LogsInRange(ctx context.Context, start, end string) (map[uint64]map[string]bool, error) {
	start, end, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	return logsInRange(s.DB.WithContext(ctx), start, end)
}

func (s *Service) WeekProgress(ctx context.Context, habitID uint64, dates []string) (Progress, error) {
	if len(dates) != 7 {
		return Progress{}, fmt.Errorf("%w: week needs exactly 7 dates, got %d", ErrInvalidInput, len(dates))
	}
	var week [7]string
	for i, raw := range dates {
		d, err := ParseDate(raw)
		if err != nil {
			return Progress{}, err
		}
		week[i] = FormatDate(d)
	}

	db := s.DB.WithContext(ctx)
	var h Habit
	if err := db.First(&h, "id = ?", habitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Progress{}, ErrNotFound
		}
		return Progress{}, err
	}

	var logged []string
	if err := db.Model(&CompletionLog{}).
		Where("habit_id = ? AND log_date IN ?", habitID, week[:]).
		Pluck("log_date", &logged).Error; err != nil {
		return Progress{}, err
	}
	set := make(map[string]bool, len(logged))
	for _, d := range logged {
		set[d] = true
	}
	return WeekProgress(h.Frequency, week, set), nil
}

// RoutineProgress lists the routine ids completed on date (today when empty).
func (s *Service) RoutineProgress(ctx context.Context, rawDate string) ([]uint64, error) {
	date, err := resolveDate(rawDate, s.Today())
	if err != nil {
		return nil, err
	}
	ids := []uint64{}
	err = s.DB.WithContext(ctx).Model(&RoutineLog{}).
		Where("log_date = ?", date).
		Order("routine_id asc").
		Pluck("routine_id", &ids).Error
	return ids, err
}

type Metrics struct {
	ActiveHabits  int64
	LongestStreak int64
	Stats         UserStats
	Badges        []EarnedBadge
}

// Metrics gathers the dashboard counters. The reads are independent and run
// concurrently.
func (s *Service) Metrics(ctx context.Context) (Metrics, error) {
	var m Metrics
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.DB.WithContext(gctx).Model(&Habit{}).Count(&m.ActiveHabits).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gctx).Model(&Habit{}).
			Select("coalesce(max(streak), 0)").
			Scan(&m.LongestStreak).Error
	})
	g.Go(func() error {
		st, err := s.ledger().Get(s.DB.WithContext(gctx))
		m.Stats = st
		return err
	})
	g.Go(func() error {
		b, err := earnedBadges(s.DB.WithContext(gctx))
		m.Badges = b
		return err
	})

	if err := g.Wait(); err != nil {
		return Metrics{}, err
	}
	return m, nil
}

type Analytics struct {
	Series   []DayCount
	Forecast []int64
}

// Analytics reports daily activity over the trailing window ending today,
// plus a short linear forecast.
func (s *Service) Analytics(ctx context.Context) (Analytics, error) {
	today := s.Today()
	start := FormatDate(today.AddDate(0, 0, -analyticsWindowDays))
	series, err := activity(s.DB.WithContext(ctx), start, FormatDate(today))
	if err != nil {
		return Analytics{}, err
	}

	counts := make([]int64, len(series))
	for i, d := range series {
		counts[i] = d.Count
	}
	fc := Forecast(counts)
	if fc == nil {
		fc = []int64{}
	}
	return Analytics{Series: series, Forecast: fc}, nil
}

// CalendarActivity maps each active date in [start, end] to its completion count.
func (s *Service) CalendarActivity(ctx context.Context, start, end string) (map[string]int64, error) {
	start, end, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	series, err := activity(s.DB.WithContext(ctx), start, end)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(series))
	for _, d := range series {
		out[d.Date] = d.Count
	}
	return out, nil
}
