package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_RunsInSubmissionOrderOneAtATime(t *testing.T) {
	var (
		mu       sync.Mutex
		order    []int
		inFlight int
		maxSeen  int
	)
	q := NewQueue(func(cmd Command) {
		mu.Lock()
		inFlight++
		if inFlight > maxSeen {
			maxSeen = inFlight
		}
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		order = append(order, cmd.Target)
		inFlight--
		mu.Unlock()
	})

	for i := 0; i < 20; i++ {
		q.Enqueue(Command{Target: i})
	}
	require.NoError(t, q.Wait(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 20)
	for i, got := range order {
		assert.Equal(t, i, got)
	}
	assert.Equal(t, 1, maxSeen, "never more than one command in flight")
}

func TestQueue_RetiresAndRestarts(t *testing.T) {
	release := make(chan struct{})
	var ran []int
	var mu sync.Mutex
	q := NewQueue(func(cmd Command) {
		<-release
		mu.Lock()
		ran = append(ran, cmd.Target)
		mu.Unlock()
	})

	assert.False(t, q.Active())

	q.Enqueue(Command{Target: 1})
	assert.True(t, q.Active())
	q.Enqueue(Command{Target: 2})

	release <- struct{}{}
	release <- struct{}{}
	require.NoError(t, q.Wait(context.Background()))
	assert.False(t, q.Active(), "chain retired once drained")

	q.Enqueue(Command{Target: 3})
	assert.True(t, q.Active(), "next command starts a fresh chain")
	release <- struct{}{}
	require.NoError(t, q.Wait(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, ran)
}

func TestQueue_SurvivesPanic(t *testing.T) {
	var ran []int
	q := NewQueue(func(cmd Command) {
		if cmd.Target == 1 {
			panic("bad command")
		}
		ran = append(ran, cmd.Target)
	})

	q.Enqueue(Command{Target: 1})
	q.Enqueue(Command{Target: 2})
	require.NoError(t, q.Wait(context.Background()))

	assert.Equal(t, []int{2}, ran)
}

func TestQueue_WaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue(func(Command) { <-block })
	q.Enqueue(Command{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Wait(ctx), context.DeadlineExceeded)

	close(block)
	require.NoError(t, q.Wait(context.Background()))
}
