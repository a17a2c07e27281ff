package threadpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// spinlock is a CompareAndSwap-based lock for the short, uncontended
// critical sections around the global completion FIFO.
//
// Grounded on ngx_spinlock/ngx_unlock.
type spinlock struct{ state uint32 }

func (s *spinlock) Lock() {
	for !atomic.CompareAndSwapUint32(&s.state, 0, 1) {
		runtime.Gosched()
	}
}

func (s *spinlock) Unlock() {
	atomic.StoreUint32(&s.state, 0)
}

// completion is the process-wide FIFO of finished tasks shared by every
// Pool's workers and drained by the event loop.
var completion struct {
	lock       spinlock
	head, tail *Task
}

// pushCompletion appends t to the global completion FIFO.
func pushCompletion(t *Task) {
	t.next = nil
	completion.lock.Lock()
	if completion.tail == nil {
		completion.head = t
	} else {
		completion.tail.next = t
	}
	completion.tail = t
	completion.lock.Unlock()
}

// stealCompletions atomically detaches and returns the entire
// completion FIFO, leaving it empty.
func stealCompletions() *Task {
	completion.lock.Lock()
	head := completion.head
	completion.head = nil
	completion.tail = nil
	completion.lock.Unlock()
	return head
}

// Drain steals the global completion FIFO and, for each finished task,
// sets Event.Complete, clears Event.Active, and invokes Event.Handler.
// Must only be called on the event loop thread; workers call
// notifyLoop(Drain) after publishing a completion so the loop runs this
// in response.
//
// Grounded on the completion-handling half of ngx_thread_pool_handler.
func Drain() {
	t := stealCompletions()
	for t != nil {
		next := t.next
		t.next = nil
		t.Event.Complete = true
		t.Event.Active = false
		if t.Event.Handler != nil {
			t.Event.Handler(&t.Event)
		}
		t = next
	}
}

var notify struct {
	sync.RWMutex
	fn func(func())
}

// SetNotify installs the loop's wake-up collaborator: after a worker
// publishes a completion it calls notify(Drain) to ask the loop to run
// Drain. With no notify installed, Drain runs synchronously on the
// worker goroutine instead, which keeps the pool usable without an
// event loop present (e.g. in tests).
func SetNotify(fn func(func())) {
	notify.Lock()
	notify.fn = fn
	notify.Unlock()
}

func notifyLoop(handler func()) {
	notify.RLock()
	fn := notify.fn
	notify.RUnlock()
	if fn != nil {
		fn(handler)
		return
	}
	handler()
}
