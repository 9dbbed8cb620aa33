package runtime

import (
	"sync"

	"github.com/raillang/railway/internal/railfmt"
)

// Hub is the per-run synchronization hub (spec.md §4.7): named barriers
// (all threads rendezvous) and named mutexes (mutual exclusion, re-entrant
// per thread). It lives once per Runner.Run invocation and is shared by
// every Thread spawned during that run.
//
// No library in the retrieval pack implements a reusable cyclic barrier or
// a name-keyed re-entrant mutex set (see DESIGN.md); both are hand-rolled
// here on top of stdlib sync.Cond / sync.Mutex, which is the standard way
// to build a rendezvous barrier in Go.
type Hub struct {
	mu       sync.Mutex
	barriers map[string]*barrier
	mutexes  map[string]*reentrantMutex

	// Out is the shared, serialized print/println sink for every thread in
	// this run (spec.md §4.6).
	Out *railfmt.Sink
}

// NewHub creates an empty hub writing print/println output to out.
func NewHub(out *railfmt.Sink) *Hub {
	return &Hub{
		barriers: make(map[string]*barrier),
		mutexes:  make(map[string]*reentrantMutex),
		Out:      out,
	}
}

// barrier is a reusable (cyclic) rendezvous point. expected is fixed on
// first arrival to the thread-group size passed to Arrive; generation
// guards against a thread that starts a new cycle waking up threads still
// finishing the previous one.
type barrier struct {
	cond       *sync.Cond
	expected   int
	arrived    int
	generation int
}

// Arrive blocks the calling goroutine until `expected` arrivals have been
// observed for barrier `name`, then releases all of them together. Per
// spec.md §4.7, a barrier reached by only some of a function's threads
// deadlocks the others forever — that is a program bug this runtime does
// not detect (spec.md §5 "Cancellation / timeout: None").
func (h *Hub) Arrive(name string, expected int) {
	h.mu.Lock()
	b, ok := h.barriers[name]
	if !ok {
		b = &barrier{cond: sync.NewCond(&h.mu), expected: expected}
		h.barriers[name] = b
	}
	gen := b.generation
	b.arrived++
	if b.arrived == b.expected {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		h.mu.Unlock()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
	h.mu.Unlock()
}

// reentrantMutex is a named mutex that the owning goroutine (identified by
// TID) may re-acquire without deadlocking itself (spec.md §4.7 "re-entrant
// on the same thread").
type reentrantMutex struct {
	cond  *sync.Cond
	owner int // TID of current holder, -1 if free
	depth int
}

// Lock acquires the named mutex for tid, blocking if held by a different
// thread. Re-entrant for the same tid.
func (h *Hub) Lock(name string, tid int) {
	h.mu.Lock()
	m, ok := h.mutexes[name]
	if !ok {
		m = &reentrantMutex{cond: sync.NewCond(&h.mu), owner: -1}
		h.mutexes[name] = m
	}
	for m.owner != -1 && m.owner != tid {
		m.cond.Wait()
	}
	m.owner = tid
	m.depth++
	h.mu.Unlock()
}

// Unlock releases one level of a named mutex held by tid. Guaranteed to be
// called via defer by every caller in internal/interp so it runs on error
// unwind too (spec.md §5 "Resource release").
func (h *Hub) Unlock(name string, tid int) {
	h.mu.Lock()
	m, ok := h.mutexes[name]
	if !ok || m.owner != tid {
		h.mu.Unlock()
		return
	}
	m.depth--
	if m.depth == 0 {
		m.owner = -1
		m.cond.Broadcast()
	}
	h.mu.Unlock()
}
