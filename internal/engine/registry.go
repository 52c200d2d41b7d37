package engine

import "callwatch/internal/call"

// registry is the insertion-ordered set of in-flight calls. Only the engine
// mutates it, under the engine lock. A completed call is never present: it
// is removed in the same step that completes it.
type registry struct {
	calls []*call.Call
}

func (r *registry) add(c *call.Call) {
	r.calls = append(r.calls, c)
}

func (r *registry) remove(c *call.Call) {
	for i, cand := range r.calls {
		if cand.LocalID() == c.LocalID() {
			r.calls = append(r.calls[:i], r.calls[i+1:]...)
			return
		}
	}
}

// snapshot copies the active set so callers can iterate while the engine
// mutates the registry underneath.
func (r *registry) snapshot() []*call.Call {
	out := make([]*call.Call, len(r.calls))
	copy(out, r.calls)
	return out
}
