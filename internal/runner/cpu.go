package runner

import "context"

// cpu is a counting semaphore guarding the simulated processor. The runner
// creates it with capacity 1: at most one task occupies the CPU at a time.
type cpu struct {
	ch chan struct{}
}

func newCPU(cores int) *cpu {
	if cores <= 0 {
		cores = 1
	}
	return &cpu{ch: make(chan struct{}, cores)}
}

// Acquire blocks until the CPU is free or ctx is cancelled.
// Returns true if acquired, false if ctx was cancelled.
func (c *cpu) Acquire(ctx context.Context) bool {
	select {
	case c.ch <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Release frees the CPU.
func (c *cpu) Release() {
	<-c.ch
}

// Busy reports whether a task currently holds the CPU.
func (c *cpu) Busy() bool {
	return len(c.ch) == cap(c.ch)
}
