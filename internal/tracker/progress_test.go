package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var week = [7]string{
	"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07",
	"2024-03-08", "2024-03-09", "2024-03-10",
}

func TestWeekProgressDaily(t *testing.T) {
	p := WeekProgress(Daily, week, map[string]bool{
		"2024-03-04": true,
		"2024-03-06": true,
		"2024-03-10": true,
		"2024-03-11": true, // outside the window
	})
	assert.Equal(t, Progress{CompletedCount: 3, RequiredCount: 7, Percent: 43}, p)
}

func TestWeekProgressWeekly(t *testing.T) {
	one := WeekProgress(Weekly, week, map[string]bool{"2024-03-07": true})
	assert.Equal(t, Progress{CompletedCount: 1, RequiredCount: 1, Percent: 100}, one)

	many := WeekProgress(Weekly, week, map[string]bool{"2024-03-07": true, "2024-03-08": true})
	assert.Equal(t, Progress{CompletedCount: 1, RequiredCount: 1, Percent: 100}, many)

	none := WeekProgress(Weekly, week, nil)
	assert.Equal(t, Progress{CompletedCount: 0, RequiredCount: 1, Percent: 0}, none)
}
