package runtime

import "log"

// MethodCounts is the pre-sized method-count table a caller supplies at
// construction: one entry per class, used to pre-size dispatch tables
// before any method is registered. No dispatch table is built in this
// module's scope, so State only carries the table through construction.
type MethodCounts []int

// State is the process-wide state shared by every worker: configuration,
// the method-count table, argv, the built-in class prototype registry,
// and handles to the workers spawned by Start. It's built once by New
// and handed out by reference; workers mutate only their own internal
// queues.
type State struct {
	Config     Config
	Counts     MethodCounts
	Argv       []string
	Logger     *log.Logger
	Prototypes []BuiltinClass

	timeout *timeoutWorker
	pollers []*networkPollWorker
	signals *signalWorker
}

// stripProgramName discards argv's first element (the program name,
// which the platform already makes available another way) and returns
// the rest, stopping early at the first empty-string sentinel in case the
// caller's declared argument count overstates the actual argument slice.
func stripProgramName(argv []string) []string {
	if len(argv) <= 1 {
		return nil
	}
	var rest []string
	for _, a := range argv[1:] {
		if a == "" {
			break
		}
		rest = append(rest, a)
	}
	return rest
}

func newState(cfg Config, counts MethodCounts, argv []string, logger *log.Logger) *State {
	return &State{
		Config:     cfg,
		Counts:     counts,
		Argv:       stripProgramName(argv),
		Logger:     logger,
		Prototypes: prototypeRegistry,
	}
}
