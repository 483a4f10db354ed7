//go:build unix

package runtime

import "golang.org/x/sys/unix"

// roundUpToPage rounds size up to the next multiple of the platform page
// size.
func roundUpToPage(size, pageSize int) int {
	if size <= 0 {
		size = pageSize
	}
	rem := size % pageSize
	if rem == 0 {
		return size
	}
	return size + (pageSize - rem)
}

// allocateStack reserves size bytes (rounded up to a full page) of
// anonymous memory for a process stack. Real stack memory, rather than a
// plain Go slice, is what lets compiled code locate a process header by
// masking any address inside the stack (see StackMask).
func allocateStack(size int) ([]byte, error) {
	pageSize := unix.Getpagesize()
	total := roundUpToPage(size, pageSize)

	mem, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	return mem, nil
}

// freeStack releases memory obtained from allocateStack.
func freeStack(mem []byte) error {
	if mem == nil {
		return nil
	}
	return unix.Munmap(mem)
}

// stackMask computes the bitwise complement of (stackSize rounded up to a
// full page, minus one): compiled code ANDs a stack address with this
// mask to recover the address of the process header placed at the base
// of its stack.
func stackMask(stackSize int) uint64 {
	pageSize := unix.Getpagesize()
	total := uint64(roundUpToPage(stackSize, pageSize))
	return ^(total - 1)
}
