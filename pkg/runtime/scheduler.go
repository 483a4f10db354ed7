package runtime

// scheduler is a minimal dispatcher: the pool of goroutines executing
// arbitrary user processes is out of scope for this module, so this
// implements only what's needed to drive the single main process given
// to Start to completion and report its result.
type scheduler struct{}

// run executes proc's entry against state and blocks until it returns.
// A real scheduler would multiplex many processes across pooled workers;
// this one exists to give Start something to block inside, matching the
// "caller thread blocks inside start for the entire program" invariant.
func (scheduler) run(state *State, proc *Process) error {
	defer proc.release()
	return proc.entry(proc, state)
}
