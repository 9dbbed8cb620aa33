package runtime

// Thread is the per-thread identity and shared-resource handle described
// in spec.md §3/§4: a TID in [0, N), a reference to the shared
// synchronization Hub, and a reference to the shared module Registry. A
// Thread does not own a scope stack directly — each function call in
// internal/interp allocates and discards its own *Scope on the Go call
// stack — but it is threaded through every Eval/Exec call so `TID`,
// `#TID`, `barrier`, and `mutex` can reach the shared hub.
type Thread struct {
	TID      int
	N        int
	Hub      *Hub
	Registry *Registry
}

// NewThread builds the Nth of N threads sharing hub and registry.
func NewThread(tid, n int, hub *Hub, registry *Registry) *Thread {
	return &Thread{TID: tid, N: n, Hub: hub, Registry: registry}
}
