package cache

import "sync"

// Fence orders the fills of a [Guard] against the evictions of a [Trigger]
// sharing it inside one process. A guard remembers the sequence of its
// resource before computing and drops the fill if an eviction has started
// since. The trigger advances the sequence of every target before evicting,
// and once more after the write, when it evicts a second time. Together
// this keeps a response computed from pre-write rows from being stored
// after the write's eviction.
//
// A nil *Fence orders nothing.
type Fence struct {
	mu   sync.RWMutex
	seqs map[string]uint64
}

// NewFence returns an empty Fence.
func NewFence() *Fence {
	return &Fence{seqs: make(map[string]uint64)}
}

func (f *Fence) seq(resource string) uint64 {
	if f == nil {
		return 0
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.seqs[resource]
}

// advance waits for running fills and moves every resource forward.
func (f *Fence) advance(resources []string) {
	if f == nil || len(resources) == 0 {
		return
	}
	f.mu.Lock()
	for _, r := range resources {
		f.seqs[r]++
	}
	f.mu.Unlock()
}

// fill runs set unless resource has advanced past since. Fills run
// concurrently with each other but never with advance.
func (f *Fence) fill(resource string, since uint64, set func() error) (bool, error) {
	if f == nil {
		return true, set()
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.seqs[resource] != since {
		return false, nil
	}
	return true, set()
}
