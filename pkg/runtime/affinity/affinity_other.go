//go:build !linux

package affinity

// Reset is a no-op on platforms without a SchedSetaffinity-style call;
// the kernel scheduler is left to balance threads across cores on its
// own.
func Reset() error { return nil }

// BlockAllSignals is a no-op on platforms without POSIX thread signal
// masks. On these platforms signal routing to a dedicated worker is not
// guaranteed.
func BlockAllSignals() error { return nil }
