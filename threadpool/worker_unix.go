//go:build linux

package threadpool

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// lockWorkerThread pins the calling goroutine to its OS thread and
// blocks every signal except the synchronous fault signals (illegal
// instruction, floating-point exception, segmentation fault, bus
// error), so asynchronous signals are handled only by the process's
// designated signal-handling goroutine.
//
// Grounded on ngx_thread_pool.c's worker setup, which pthread_sigmasks
// every thread the same way. pthread_sigmask has no per-goroutine Go
// equivalent, so this masks the underlying OS thread directly and is
// carried only on the platform where golang.org/x/sys/unix exposes it.
func lockWorkerThread() {
	runtime.LockOSThread()

	var set unix.Sigset_t
	for i := range set.Val {
		set.Val[i] = ^uint64(0)
	}
	clearSignal(&set, unix.SIGILL)
	clearSignal(&set, unix.SIGFPE)
	clearSignal(&set, unix.SIGSEGV)
	clearSignal(&set, unix.SIGBUS)

	_ = unix.PthreadSigmask(unix.SIG_SETMASK, &set, nil)
}

func clearSignal(set *unix.Sigset_t, sig unix.Signal) {
	idx := (int(sig) - 1) / 64
	bit := uint((int(sig) - 1) % 64)
	set.Val[idx] &^= 1 << bit
}
