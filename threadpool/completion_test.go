package threadpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDrainClearsEventStateAndInvokesHandler(t *testing.T) {
	var got []int
	var mu sync.Mutex

	for i := 0; i < 3; i++ {
		i := i
		task := &Task{Event: Event{Active: true}}
		task.Event.Handler = func(e *Event) {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}
		pushCompletion(task)
	}

	Drain()

	require.Equal(t, []int{0, 1, 2}, got)
}

func TestDrainOnEmptyQueueIsNoOp(t *testing.T) {
	require.NotPanics(t, Drain)
}

func TestSetNotifyIsUsedInsteadOfDirectCall(t *testing.T) {
	t.Cleanup(func() { SetNotify(nil) })

	var called bool
	SetNotify(func(h func()) {
		called = true
		h()
	})

	ranHandler := false
	notifyLoop(func() { ranHandler = true })

	require.True(t, called)
	require.True(t, ranHandler)
}
