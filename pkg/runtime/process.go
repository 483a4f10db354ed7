package runtime

import "github.com/google/uuid"

// Entry is the compiled code a Process runs. The real representation of
// compiled code is out of scope here; a Go function value standing in
// for "native operations executing against runtime state" is sufficient
// to drive a process to completion.
type Entry func(*Process, *State) error

// Process is a user-visible concurrent unit with its own stack. The main
// process is built once by Start; any further processes it spawns are
// outside this module's scope.
type Process struct {
	ID        uuid.UUID
	Stack     []byte
	StackMask uint64
	entry     Entry
}

// newMainProcess allocates the main process's stack and wraps entry as
// its code to run.
func newMainProcess(cfg Config, entry Entry) (*Process, error) {
	stack, err := allocateStack(cfg.StackSize)
	if err != nil {
		return nil, err
	}

	return &Process{
		ID:        uuid.New(),
		Stack:     stack,
		StackMask: stackMask(cfg.StackSize),
		entry:     entry,
	}, nil
}

// release frees the process's stack. Safe to call once a process has
// terminated.
func (p *Process) release() error {
	err := freeStack(p.Stack)
	p.Stack = nil
	return err
}
