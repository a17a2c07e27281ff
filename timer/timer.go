// Package timer implements a deadline-ordered timer service on top of
// rbtree, the Go analogue of nginx's event timer rbtree.
//
// The event timer rbtree may contain duplicate keys; ngx_event_timer.c
// notes this plainly and relies on the tree only to find a minimum
// value, never to distinguish duplicates from one another. Expire
// below does the same: it pops and fires events strictly in
// non-decreasing Key order without ever needing to break ties.
//
// Grounded on ngx_event_timer.c.
package timer

import (
	"github.com/nginxcore/corert/corelog"
	"github.com/nginxcore/corert/rbtree"
)

// Event is one scheduled timer, the Go analogue of ngx_event_t's timer
// fields. Handler is invoked in-line by Expire when the deadline has
// passed.
type Event struct {
	Key uint32

	// Handler runs when the timer fires. Data carries caller context;
	// the original recovers this via field-offset from ngx_rbtree_node_t,
	// replaced here by direct storage per the Design Notes' tagged-data
	// alternative.
	Handler func(*Event)
	Data    any

	// TimerSet mirrors ngx_event_t.timer_set: true while this event is
	// linked into the tree.
	TimerSet bool
	// Timedout mirrors ngx_event_t.timedout: set once Expire has fired
	// this event.
	Timedout bool
	// Cancelable mirrors ngx_event_t.cancelable: cancelable timers don't
	// count toward NoTimersLeft, letting a loop exit while one is still
	// pending.
	Cancelable bool

	node rbtree.Node[*Event]
}

// Service holds the set of pending timers for one event loop.
//
// CurrentMsec supplies the loop's current time in milliseconds,
// wrapping modulo 2^32 the same way nginx's ngx_current_msec does;
// FindNext and Expire rely on the tree's wrap-safe key comparator
// rather than on CurrentMsec itself never wrapping.
type Service struct {
	tree        *rbtree.Tree[*Event]
	CurrentMsec func() uint32
	Log         corelog.Logger
}

// New returns a Service using now to read the current time.
func New(now func() uint32) *Service {
	s := &Service{CurrentMsec: now, Log: corelog.NoOp()}
	s.tree = rbtree.New[*Event](rbtree.InsertTimerValue[*Event]())
	return s
}

// Add schedules e to fire at absolute deadline key (milliseconds, same
// clock as CurrentMsec). If e is already scheduled it is rescheduled.
//
// ngx_event_add_timer takes a relative delay and only unlinks/relinks
// when the new deadline differs from the old by more than an
// implementation-defined slack, to avoid rbtree churn for timers that
// get refreshed to nearly the same deadline. Add takes the already-
// computed absolute deadline instead and uses a slack of zero: any
// change to key, however small, causes a delete+reinsert. Simpler, and
// not observable by callers, but it gives up that churn-avoidance
// optimization.
//
// Grounded on ngx_event_add_timer.
func (s *Service) Add(e *Event, key uint32) {
	if e.TimerSet {
		s.Del(e)
	}
	e.Key = key
	e.node.Key = key
	e.node.Value = e
	e.Timedout = false
	s.tree.Insert(&e.node)
	e.TimerSet = true
}

// Del unschedules e. Del on an event that isn't scheduled is a no-op.
//
// Grounded on ngx_event_del_timer.
func (s *Service) Del(e *Event) {
	if !e.TimerSet {
		return
	}
	s.tree.Delete(&e.node)
	e.TimerSet = false
}

// FindNext returns the number of milliseconds until the earliest
// pending deadline, 0 if one has already passed, and ok=false if there
// are no pending timers at all.
//
// Grounded on ngx_event_find_timer.
func (s *Service) FindNext() (timeout uint32, ok bool) {
	n := s.tree.TreeMin()
	if n == nil {
		return 0, false
	}
	now := s.CurrentMsec()
	if !keyLess(now, n.Key) {
		return 0, true
	}
	return n.Key - now, true
}

// Expire pops and fires every event whose deadline is not after the
// current time, in non-decreasing Key order, until it reaches one that
// hasn't arrived yet or the tree is empty.
//
// Grounded on ngx_event_expire_timers.
func (s *Service) Expire() {
	now := s.CurrentMsec()
	for {
		n := s.tree.TreeMin()
		if n == nil {
			return
		}
		if keyLess(now, n.Key) {
			return
		}
		e := n.Value
		s.tree.Delete(&e.node)
		e.TimerSet = false
		e.Timedout = true
		if s.Log.IsEnabled(corelog.LevelDebug) {
			s.Log.Log(corelog.Entry{Level: corelog.LevelDebug, Message: "event timer", Fields: map[string]any{"key": e.Key, "now": now}})
		}
		if e.Handler != nil {
			e.Handler(e)
		}
	}
}

// NoTimersLeft reports whether every remaining pending timer is
// cancelable, meaning a run loop may exit without waiting on them.
//
// Grounded on ngx_event_no_timers_left.
func (s *Service) NoTimersLeft() bool {
	for n := s.tree.TreeMin(); n != nil; n = s.tree.Next(n) {
		if !n.Value.Cancelable {
			return false
		}
	}
	return true
}

// keyLess reports a < b using wrap-safe signed 32-bit difference.
func keyLess(a, b uint32) bool {
	return int32(a-b) < 0
}
