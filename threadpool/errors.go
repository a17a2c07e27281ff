package threadpool

import "errors"

// ErrTaskActive is returned by Post when the task's Event is already
// queued; a Task must not be reposted until its handler has run and
// Drain has cleared Event.Active.
var ErrTaskActive = errors.New("threadpool: task already active")

// ErrQueueFull is returned by Post when the pool's MaxQueue backlog is
// already reached. It provides backpressure only at submission time;
// once accepted a task always runs.
var ErrQueueFull = errors.New("threadpool: queue full")

// ErrInvalidConfig is returned by New/ParseDirective for a config that
// can't start a pool (Threads < 1).
var ErrInvalidConfig = errors.New("threadpool: invalid config")

// ErrPoolNotConfigured is returned by Registry.Get for a name that was
// never added via Add and isn't the reserved "default" pool.
var ErrPoolNotConfigured = errors.New("threadpool: pool not configured")
