package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func days(t *testing.T, ss ...string) []time.Time {
	out := make([]time.Time, 0, len(ss))
	for _, s := range ss {
		out = append(out, day(t, s))
	}
	return out
}

func TestComputeStreak(t *testing.T) {
	today := "2024-03-10"

	cases := []struct {
		name       string
		freq       Frequency
		logs       []string
		wantStreak int
		wantLast   string
	}{
		{"no logs", Daily, nil, 0, ""},
		{"daily consecutive", Daily, []string{"2024-03-10", "2024-03-09", "2024-03-08"}, 3, "2024-03-10"},
		{"daily broken by gap", Daily, []string{"2024-03-10", "2024-03-08"}, 1, "2024-03-10"},
		{"daily ending yesterday", Daily, []string{"2024-03-09", "2024-03-08"}, 2, "2024-03-09"},
		{"daily lapsed", Daily, []string{"2024-03-08", "2024-03-07"}, 0, "2024-03-08"},
		{"unordered with duplicates", Daily, []string{"2024-03-08", "2024-03-10", "2024-03-09", "2024-03-10"}, 3, "2024-03-10"},
		{"weekly seven days apart", Weekly, []string{"2024-03-10", "2024-03-03"}, 2, "2024-03-10"},
		{"weekly eight days apart", Weekly, []string{"2024-03-10", "2024-03-02"}, 1, "2024-03-10"},
		{"weekly within tolerance of today", Weekly, []string{"2024-03-03"}, 1, "2024-03-03"},
		{"weekly lapsed", Weekly, []string{"2024-03-02"}, 0, "2024-03-02"},
		{"weekly several per window", Weekly, []string{"2024-03-10", "2024-03-08", "2024-03-01", "2024-02-20"}, 2, "2024-03-10"},
		{"weekly marked every day of one week", Weekly, []string{
			"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09", "2024-03-10",
		}, 1, "2024-03-10"},
		{"weekly marked every day of two weeks", Weekly, []string{
			"2024-02-26", "2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02", "2024-03-03",
			"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09", "2024-03-10",
		}, 2, "2024-03-10"},
		{"weekly one per week for three weeks", Weekly, []string{"2024-03-09", "2024-03-02", "2024-02-24"}, 3, "2024-03-09"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			streak, last := ComputeStreak(tc.freq, days(t, tc.logs...), day(t, today))
			assert.Equal(t, tc.wantStreak, streak)
			if tc.wantLast == "" {
				assert.Nil(t, last)
				return
			}
			require.NotNil(t, last)
			assert.Equal(t, tc.wantLast, FormatDate(*last))
		})
	}
}

func TestComputeStreakDoesNotReorderInput(t *testing.T) {
	logs := days(t, "2024-03-08", "2024-03-10")
	_, _ = ComputeStreak(Daily, logs, day(t, "2024-03-10"))
	assert.Equal(t, "2024-03-08", FormatDate(logs[0]))
}

func TestCalendarDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:30 UTC on the 10th is still the 9th in New York.
	instant := time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-09", FormatDate(CalendarDay(instant, loc)))
	assert.Equal(t, "2024-03-10", FormatDate(CalendarDay(instant, time.UTC)))
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "2024-13-01", "10/03/2024", "2024-02-30"} {
		_, err := ParseDate(raw)
		assert.ErrorIs(t, err, ErrInvalidInput, raw)
	}
}
