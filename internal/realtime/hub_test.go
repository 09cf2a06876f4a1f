package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFansOut(t *testing.T) {
	hub := NewHub()
	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	defer cancelB()
	assert.Equal(t, 2, hub.Subscribers())

	ev := Event{Type: EventHabitMarked, At: time.Now()}
	require.NoError(t, hub.Publish(context.Background(), ev))

	assert.Equal(t, EventHabitMarked, (<-a).Type)
	assert.Equal(t, EventHabitMarked, (<-b).Type)

	cancelA()
	cancelA() // second cancel is a no-op
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, hub.Subscribers())
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Broadcast(Event{Type: EventLevelUp})
	}
	assert.Len(t, ch, subscriberBuffer)
}
