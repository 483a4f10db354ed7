// Package runtime implements the process-oriented runtime entry point:
// the scheduler surface that allocates shared state, spawns the fixed
// worker topology, and drives a user program's main process to
// completion.
//
// Lifecycle:
//
// New builds a Runtime's State without starting any threads. Before
// anything else it resets the calling process's CPU affinity and blocks
// all catchable signals on the calling thread, so that every worker
// Start later spawns inherits an unrestricted core mask and a fully
// blocked signal mask. It also installs the process-wide default TLS
// configuration exactly once.
//
// Start spawns the timeout worker, one network-poll worker per
// configured poller, and the signal worker, in that order, then builds
// the main process with a freshly allocated, page-aligned stack and
// blocks the calling goroutine inside the scheduler until that process
// terminates. Standard output is flushed before Start returns; standard
// error is not.
package runtime

import (
	"bufio"
	"log"
	"os"
	"sync"

	"github.com/weftlang/weft/pkg/runtime/affinity"
)

// Runtime owns a State and the worker goroutines Start spawns.
type Runtime struct {
	state *State
	wg    sync.WaitGroup
}

// New allocates a Runtime's State from configuration, the method-count
// table, and argv. See the package doc for the ordering invariant this
// enforces before returning.
func New(cfg Config, counts MethodCounts, argv []string, logger *log.Logger) (*Runtime, error) {
	if err := affinity.Reset(); err != nil {
		return nil, err
	}
	if err := affinity.BlockAllSignals(); err != nil {
		return nil, err
	}
	if err := installDefaultTLSProvider(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	return &Runtime{state: newState(cfg, counts, argv, logger)}, nil
}

// Start spawns the fixed worker topology and blocks until entry, running
// as the main process, returns. Stdout is flushed unconditionally before
// Start returns, whether entry succeeded or failed.
func (r *Runtime) Start(entry Entry) error {
	s := r.state

	s.timeout = newTimeoutWorker()
	spawnWorker(&r.wg, s.timeout.run)

	s.pollers = make([]*networkPollWorker, s.Config.NetworkPollers)
	for i := range s.pollers {
		s.pollers[i] = newNetworkPollWorker(i)
		spawnWorker(&r.wg, s.pollers[i].run)
	}

	// Signal handling is racy at shutdown; this worker is spawned but,
	// as signalWorker's doc explains, never joined.
	s.signals = newSignalWorker()
	go s.signals.run()

	proc, err := newMainProcess(s.Config, entry)
	if err != nil {
		r.shutdownWorkers()
		return err
	}

	runErr := (scheduler{}).run(s, proc)

	r.shutdownWorkers()
	flushStdout()

	return runErr
}

func (r *Runtime) shutdownWorkers() {
	if r.state.timeout != nil {
		r.state.timeout.shutdown()
	}
	for _, p := range r.state.pollers {
		p.shutdown()
	}
	if r.state.signals != nil {
		r.state.signals.requestStop()
	}
	r.wg.Wait()
}

func flushStdout() {
	_ = bufio.NewWriter(os.Stdout).Flush()
	_ = os.Stdout.Sync()
}

// State returns a read-only borrow of the Runtime's shared state.
func (r *Runtime) State() *State {
	return r.state
}

// StackMask returns the bitwise complement of (the configured stack
// size, rounded up to the platform page size, minus one).
func (r *Runtime) StackMask() uint64 {
	return stackMask(r.state.Config.StackSize)
}

// Close releases the Runtime's State. Workers are expected to have
// already been stopped by Start returning; Close does not itself wait on
// the signal worker, consistent with it never being joined.
func (r *Runtime) Close() error {
	r.state = nil
	return nil
}
