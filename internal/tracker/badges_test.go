package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogParses(t *testing.T) {
	cat, err := Catalog()
	require.NoError(t, err)
	require.NotEmpty(t, cat)

	seen := map[string]bool{}
	for _, b := range cat {
		assert.False(t, seen[b.ID], "duplicate badge %s", b.ID)
		seen[b.ID] = true
		assert.Positive(t, b.ConditionValue, b.ID)
	}
	assert.True(t, seen["first_step"])
}

func TestBadgeQualifies(t *testing.T) {
	firstStep := Badge{ID: "first_step", ConditionType: CondTotalHabits, ConditionValue: 1}
	assert.False(t, firstStep.Qualifies(Aggregates{}))
	assert.True(t, firstStep.Qualifies(Aggregates{TotalHabitLogs: 1}))

	week := Badge{ID: "week_warrior", ConditionType: CondStreak, ConditionValue: 7}
	assert.False(t, week.Qualifies(Aggregates{MaxStreak: 6, TotalHabitLogs: 100}))
	assert.True(t, week.Qualifies(Aggregates{MaxStreak: 7}))

	night := Badge{ID: "night_owl", ConditionType: CondNightRoutine, ConditionValue: 10}
	assert.False(t, night.Qualifies(Aggregates{MorningRoutineLogs: 10}))
	assert.True(t, night.Qualifies(Aggregates{NightRoutineLogs: 10}))
}

func TestBadgeUnknownConditionNeverQualifies(t *testing.T) {
	b := Badge{ID: "mystery", ConditionType: "mystery", ConditionValue: 0}
	assert.False(t, b.Qualifies(Aggregates{TotalHabitLogs: 1000}))
}
