package timer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddFindNextTimeUntilEarliest(t *testing.T) {
	now := uint32(1000)
	s := New(func() uint32 { return now })

	a := &Event{}
	b := &Event{}
	s.Add(a, 1500)
	s.Add(b, 1200)

	timeout, ok := s.FindNext()
	require.True(t, ok)
	require.Equal(t, uint32(200), timeout)
}

func TestFindNextNoTimers(t *testing.T) {
	s := New(func() uint32 { return 0 })
	_, ok := s.FindNext()
	require.False(t, ok)
}

func TestFindNextPastDeadlineReturnsZero(t *testing.T) {
	now := uint32(5000)
	s := New(func() uint32 { return now })
	e := &Event{}
	s.Add(e, 1000)

	timeout, ok := s.FindNext()
	require.True(t, ok)
	require.Equal(t, uint32(0), timeout)
}

func TestExpireFiresInDeadlineOrder(t *testing.T) {
	now := uint32(1000)
	s := New(func() uint32 { return now })

	var fired []int
	mk := func(id int) *Event {
		e := &Event{}
		e.Handler = func(*Event) { fired = append(fired, id) }
		return e
	}

	e1, e2, e3 := mk(1), mk(2), mk(3)
	s.Add(e1, 900)
	s.Add(e2, 500)
	s.Add(e3, 950)

	s.Expire()
	require.Equal(t, []int{2, 1, 3}, fired)
	require.True(t, e1.Timedout)
	require.False(t, e1.TimerSet)
}

func TestExpireStopsAtFutureDeadline(t *testing.T) {
	now := uint32(1000)
	s := New(func() uint32 { return now })

	var fired []int
	past := &Event{Handler: func(*Event) { fired = append(fired, 1) }}
	future := &Event{Handler: func(*Event) { fired = append(fired, 2) }}
	s.Add(past, 500)
	s.Add(future, 2000)

	s.Expire()
	require.Equal(t, []int{1}, fired)
	require.True(t, future.TimerSet)
}

func TestDelUnschedules(t *testing.T) {
	now := uint32(1000)
	s := New(func() uint32 { return now })

	e := &Event{}
	s.Add(e, 1500)
	s.Del(e)
	require.False(t, e.TimerSet)

	_, ok := s.FindNext()
	require.False(t, ok)

	// Del on an unscheduled event is a no-op, not a panic.
	s.Del(e)
}

func TestAddReschedulesAlreadyScheduledEvent(t *testing.T) {
	now := uint32(0)
	s := New(func() uint32 { return now })

	e := &Event{}
	s.Add(e, 100)
	s.Add(e, 50)

	timeout, ok := s.FindNext()
	require.True(t, ok)
	require.Equal(t, uint32(50), timeout)
}

func TestNoTimersLeft(t *testing.T) {
	s := New(func() uint32 { return 0 })
	require.True(t, s.NoTimersLeft())

	cancelable := &Event{Cancelable: true}
	s.Add(cancelable, 100)
	require.True(t, s.NoTimersLeft())

	blocking := &Event{}
	s.Add(blocking, 200)
	require.False(t, s.NoTimersLeft())

	s.Del(blocking)
	require.True(t, s.NoTimersLeft())
}

// deadlines spanning a uint32 rollover must still order correctly.
func TestExpireAcrossClockWrap(t *testing.T) {
	nearMax := uint32(math.MaxUint32 - 20)
	now := nearMax
	s := New(func() uint32 { return now })

	var fired []int
	before := &Event{Handler: func(*Event) { fired = append(fired, 1) }}
	after := &Event{Handler: func(*Event) { fired = append(fired, 2) }}
	s.Add(before, nearMax-50)
	s.Add(after, nearMax+50) // wraps past 0

	s.Expire()
	require.Equal(t, []int{1}, fired)

	now = nearMax + 50
	s.Expire()
	require.Equal(t, []int{1, 2}, fired)
}
