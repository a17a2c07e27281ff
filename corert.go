// Package corert composes the runtime primitives into the one-per-worker-process
// bundle nginx itself assembles at startup: a memory arena, the timer
// service, and the thread pool registry, all sharing one structured
// logger.
//
// This composition isn't a separate [MODULE] of its own; it's the
// concrete, testable shape of how the rest of the packages cooperate in
// one process.
package corert

import (
	"github.com/nginxcore/corert/arena"
	"github.com/nginxcore/corert/corelog"
	"github.com/nginxcore/corert/threadpool"
	"github.com/nginxcore/corert/timer"
)

// Runtime bundles the per-process primitives.
type Runtime struct {
	Arena  *arena.Arena
	Timers *timer.Service
	Pools  *threadpool.Registry
	Log    corelog.Logger
}

// Config configures a Runtime.
type Config struct {
	// ArenaName is the name the arena reports in its log records.
	ArenaName string
	// ArenaChunkSize is the size of each chunk the arena allocates.
	ArenaChunkSize int
	// Role selects which process role this Runtime's thread pools run
	// under; pool initialization is a no-op outside RoleWorker/RoleSingle.
	Role threadpool.ProcessRole
	// Now supplies the current time in milliseconds, wrapping modulo
	// 2^32, for the timer service.
	Now func() uint32
}

// New builds a Runtime, wiring log into every component that logs.
func New(cfg Config, log corelog.Logger) *Runtime {
	if log == nil {
		log = corelog.NoOp()
	}
	if cfg.ArenaChunkSize <= 0 {
		cfg.ArenaChunkSize = 16 * 1024
	}

	r := &Runtime{
		Arena:  arena.New(cfg.ArenaName, cfg.ArenaChunkSize, log),
		Timers: timer.New(cfg.Now),
		Pools:  threadpool.NewRegistry(cfg.Role, log),
		Log:    log,
	}
	r.Timers.Log = log
	return r
}

// Tick drives one iteration of the event loop: expire due timers, then
// drain any thread pool completions that arrived since the last tick.
// nowMsec is only used to log the tick; the timer service reads the
// current time through its own Now collaborator, matching how
// ngx_event_timer.c separates "what time is it" from "run expired
// timers".
func (r *Runtime) Tick(nowMsec uint32) {
	if r.Log.IsEnabled(corelog.LevelDebug) {
		r.Log.Log(corelog.Entry{Level: corelog.LevelDebug, Message: "tick", Fields: map[string]any{"now": nowMsec}})
	}
	r.Timers.Expire()
	threadpool.Drain()
}
