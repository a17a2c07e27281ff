// Package threadpool implements a bounded worker-thread pool with a
// per-pool submission FIFO and a process-wide completion FIFO drained
// by the event loop, the Go analogue of ngx_thread_pool_t.
//
// Grounded on ngx_thread_pool.c: mutex+condvar queue, spinlock-guarded
// global completion list, directive-based pool configuration, and
// process-role gated worker init/exit.
package threadpool

import (
	"fmt"
	"sync"

	"github.com/nginxcore/corert/corelog"
)

// Event carries the completion-side state of a submitted Task: the Go
// analogue of the active/complete/handler trio ngx_thread_task_t shares
// with ngx_event_t. Handler runs on the loop thread once the task has
// finished, with Complete already true and Active already false.
type Event struct {
	Active   bool
	Complete bool
	Handler  func(*Event)
}

// Task is one unit of work. Ctx is published once at submission and
// read by Handler on the worker thread; it is the Go analogue of the
// original's inline context pointer.
//
// A Task must not be posted again while its Event.Active is true.
type Task struct {
	ID      uint64
	Ctx     any
	Handler func(ctx any, log corelog.Logger)
	Event   Event

	exit bool
	next *Task
}

// Config describes one pool, matching the `threads=N max_queue=M`
// directive surface.
type Config struct {
	Name     string
	Threads  int
	MaxQueue int
}

// Pool runs Threads worker goroutines draining one FIFO of posted
// Tasks.
type Pool struct {
	name     string
	log      corelog.Logger
	threads  int
	maxQueue int

	mu      sync.Mutex
	cond    *sync.Cond
	head    *Task
	tail    *Task
	waiting int
	nextID  uint64

	wg sync.WaitGroup
}

// New creates and starts a Pool of cfg.Threads workers. log may be nil,
// in which case records are discarded.
//
// Grounded on ngx_thread_pool_init.
func New(cfg Config, log corelog.Logger) (*Pool, error) {
	if cfg.Threads < 1 {
		return nil, fmt.Errorf("%w: pool %q: threads must be >= 1", ErrInvalidConfig, cfg.Name)
	}
	if log == nil {
		log = corelog.NoOp()
	}
	p := &Pool{
		name:     cfg.Name,
		log:      log,
		threads:  cfg.Threads,
		maxQueue: cfg.MaxQueue,
	}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(cfg.Threads)
	for i := 0; i < cfg.Threads; i++ {
		go p.run()
	}
	return p, nil
}

// Name returns the pool's configured name.
func (p *Pool) Name() string { return p.name }

// Post submits t. It fails with ErrTaskActive if t is already queued,
// or ErrQueueFull if the backlog is already at MaxQueue; with MaxQueue
// 0 a task is accepted only while a worker is idle and waiting for one.
//
// Grounded on ngx_thread_task_post.
func (p *Pool) Post(t *Task) error {
	if t.Event.Active {
		return ErrTaskActive
	}

	p.mu.Lock()
	if p.waiting >= p.maxQueue {
		p.mu.Unlock()
		if p.log.IsEnabled(corelog.LevelError) {
			p.log.Log(corelog.Entry{Level: corelog.LevelError, Pool: p.name, Message: "thread pool queue overflow"})
		}
		return ErrQueueFull
	}

	p.nextID++
	t.ID = p.nextID
	t.Event.Active = true
	p.enqueueLocked(t)
	p.mu.Unlock()
	return nil
}

// enqueueLocked appends t to the tail of the FIFO; p.mu must be held.
func (p *Pool) enqueueLocked(t *Task) {
	t.next = nil
	if p.tail == nil {
		p.head = t
	} else {
		p.tail.next = t
	}
	p.tail = t
	p.waiting++
	p.cond.Signal()
}

// Close posts one exit task per worker and waits for every worker to
// return, mirroring ngx_thread_pool_destroy's per-worker spin-wait
// (here a sync.WaitGroup, since Go has no portable spin-yield idiom for
// "wait until goroutine N has observed its exit task").
func (p *Pool) Close() {
	p.mu.Lock()
	for i := 0; i < p.threads; i++ {
		p.enqueueLocked(&Task{exit: true})
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// run is one worker's loop body: dequeue, execute outside the lock,
// publish the completion, repeat until an exit task is dequeued.
//
// Grounded on ngx_thread_pool_cycle.
func (p *Pool) run() {
	defer p.wg.Done()
	lockWorkerThread()

	for {
		p.mu.Lock()
		p.waiting--
		for p.head == nil {
			p.cond.Wait()
		}
		t := p.head
		p.head = t.next
		if p.head == nil {
			p.tail = nil
		}
		p.mu.Unlock()

		if t.exit {
			return
		}

		if t.Handler != nil {
			t.Handler(t.Ctx, p.log)
		}

		pushCompletion(t)
		notifyLoop(Drain)
	}
}
