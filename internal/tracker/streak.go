package tracker

import (
	"sort"
	"time"

	"gorm.io/gorm"
)

// gapDays is the largest distance between two logs that still keeps them in
// one chain.
func gapDays(f Frequency) int {
	if f == Weekly {
		return 7
	}
	return 1
}

// ComputeStreak returns the current streak for logs (calendar dates, any
// order, duplicates allowed) as of today.
//
// The streak is 0 when there are no logs or when the most recent log is more
// than one period behind today. Otherwise logs are grouped into periods of
// gap days counted back from the most recent log, and the streak is the run of
// consecutive non-empty periods starting at period 0. Each period counts once,
// and a run also breaks when the earliest log of one period is more than gap
// days after the latest log of the next. lastMarked is the most recent log
// even when the streak lapsed.
func ComputeStreak(freq Frequency, logs []time.Time, today time.Time) (streak int, lastMarked *time.Time) {
	if len(logs) == 0 {
		return 0, nil
	}

	days := make([]time.Time, len(logs))
	copy(days, logs)
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	mostRecent := days[0]
	lastMarked = &mostRecent

	gap := gapDays(freq)
	if daysBetween(mostRecent, today) > gap {
		return 0, lastMarked
	}

	streak = 1
	period := 0
	earliest := mostRecent // earliest log seen in the current period
	for _, d := range days[1:] {
		k := daysBetween(d, mostRecent) / gap
		switch {
		case k == period:
			earliest = d
		case k == period+1 && daysBetween(d, earliest) <= gap:
			streak++
			period = k
			earliest = d
		default:
			return streak, lastMarked
		}
	}
	return streak, lastMarked
}

// recompute rebuilds h's cached streak from the log store and persists it.
func recompute(tx *gorm.DB, h *Habit, today time.Time) error {
	raw, err := datesFor(tx, h.ID)
	if err != nil {
		return err
	}
	logs := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := ParseDate(s)
		if err != nil {
			return err
		}
		logs = append(logs, d)
	}

	streak, last := ComputeStreak(h.Frequency, logs, today)
	h.Streak = streak
	h.LastMarked = nil
	if last != nil {
		s := FormatDate(*last)
		h.LastMarked = &s
	}

	return tx.Model(&Habit{}).
		Where("id = ?", h.ID).
		Updates(map[string]any{
			"streak":      h.Streak,
			"last_marked": h.LastMarked,
		}).Error
}
