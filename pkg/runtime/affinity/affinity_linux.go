//go:build linux

// Package affinity resets the calling process's CPU affinity mask and
// blocks catchable signals on the calling thread, the two invariants
// runtime.New must establish before spawning any worker.
package affinity

import "golang.org/x/sys/unix"

// Reset widens the process's CPU affinity mask to every core reported by
// the kernel. Without this, a process started with a restricted starting
// mask would propagate that restriction to every worker thread it spawns.
func Reset() error {
	var set unix.CPUSet
	for i := 0; i < unix.CPU_SETSIZE; i++ {
		set.Set(i)
	}
	return unix.SchedSetaffinity(0, &set)
}

// BlockAllSignals blocks every catchable signal on the calling OS thread.
// It must run before any worker thread is spawned so that each inherits
// the same blocked mask; afterward, all signal delivery is routed to the
// dedicated signal worker instead of interrupting an arbitrary thread.
func BlockAllSignals() error {
	var set unix.Sigset_t
	if err := unix.Sigfillset(&set); err != nil {
		return err
	}
	return unix.PthreadSigmask(unix.SIG_BLOCK, &set, nil)
}
