package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyAwardLevelsUpOnce(t *testing.T) {
	next, leveled := ApplyAward(UserStats{Level: 1, XP: 50, Points: 50}, 100)
	assert.True(t, leveled)
	assert.Equal(t, 2, next.Level)
	assert.Equal(t, 50, next.XP)
	assert.Equal(t, 150, next.Points)
}

func TestApplyAwardBelowThreshold(t *testing.T) {
	next, leveled := ApplyAward(UserStats{Level: 2, XP: 150}, 10)
	assert.False(t, leveled)
	assert.Equal(t, 2, next.Level)
	assert.Equal(t, 160, next.XP)
}

func TestApplyAwardDoesNotCascade(t *testing.T) {
	// 450 xp would clear levels 1 and 2, but one award moves one level.
	next, leveled := ApplyAward(UserStats{Level: 1}, 450)
	assert.True(t, leveled)
	assert.Equal(t, 2, next.Level)
	assert.Equal(t, 350, next.XP)
}

func TestFocusPoints(t *testing.T) {
	assert.Equal(t, 0, FocusPoints(0))
	assert.Equal(t, 0, FocusPoints(4))
	assert.Equal(t, 5, FocusPoints(25))
	assert.Equal(t, 5, FocusPoints(29))
	assert.Equal(t, 0, FocusPoints(-10))
}
