//go:build !linux

package threadpool

import "runtime"

// lockWorkerThread pins the calling goroutine to its OS thread. Signal
// masking is only implemented on Linux, where
// golang.org/x/sys/unix.PthreadSigmask and unix.Sigset_t's layout are
// available to this module; see worker_unix.go.
func lockWorkerThread() {
	runtime.LockOSThread()
}
