package runtime

import (
	"os"
	"os/signal"
	stdruntime "runtime"
	"sync"
	"time"
)

// timeoutWorker polls timed waits. The scheduler surface spawns exactly
// one of these, pinned to its own OS thread so a long poll never steals a
// goroutine's share of the Go scheduler's own threads.
type timeoutWorker struct {
	stop chan struct{}
	done chan struct{}
}

func newTimeoutWorker() *timeoutWorker {
	return &timeoutWorker{stop: make(chan struct{}), done: make(chan struct{})}
}

func (w *timeoutWorker) run() {
	stdruntime.LockOSThread()
	defer stdruntime.UnlockOSThread()
	defer close(w.done)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			// Nothing currently schedules timed waits; the tick exists so
			// the worker has real periodic work to perform.
		}
	}
}

func (w *timeoutWorker) shutdown() {
	close(w.stop)
	<-w.done
}

// networkPollWorker owns one poller identity out of the configured pool.
type networkPollWorker struct {
	id   int
	stop chan struct{}
	done chan struct{}
}

func newNetworkPollWorker(id int) *networkPollWorker {
	return &networkPollWorker{id: id, stop: make(chan struct{}), done: make(chan struct{})}
}

func (w *networkPollWorker) run() {
	stdruntime.LockOSThread()
	defer stdruntime.UnlockOSThread()
	defer close(w.done)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
		}
	}
}

func (w *networkPollWorker) shutdown() {
	close(w.stop)
	<-w.done
}

// signalWorker is the sole recipient of OS signals once BlockAllSignals
// has run on the calling thread. It is deliberately never joined on
// shutdown: signal delivery races with shutdown notification, and waiting
// for this worker risks hanging the whole program.
type signalWorker struct {
	ch   chan os.Signal
	stop chan struct{}
}

func newSignalWorker() *signalWorker {
	return &signalWorker{ch: make(chan os.Signal, 1), stop: make(chan struct{})}
}

func (w *signalWorker) run() {
	stdruntime.LockOSThread()
	defer stdruntime.UnlockOSThread()

	signal.Notify(w.ch)
	defer signal.Stop(w.ch)

	for {
		select {
		case <-w.stop:
			return
		case <-w.ch:
			// Individual signal handling is a runtime built-in and out
			// of scope here; observing delivery is enough to exercise
			// the worker's role.
		}
	}
}

// requestStop asks the worker to exit but does not wait for it, per the
// non-join invariant above.
func (w *signalWorker) requestStop() {
	close(w.stop)
}

// spawnWorker runs fn on its own goroutine, registered with wg so the
// caller can join it through wg.Wait. No name is attached to the
// goroutine or to the OS thread it runs on.
func spawnWorker(wg *sync.WaitGroup, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn()
	}()
}
