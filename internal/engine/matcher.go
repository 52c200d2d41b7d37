package engine

import "callwatch/internal/call"

// Matching is two-tier: an authoritative platform-id lookup, falling back
// to heuristic attribute+status matching. The tiers are kept as separate
// functions so each can be tested on its own.

// matchExact returns the call already bound to the event's platform id.
// An exact id match always wins, regardless of current status.
func matchExact(calls []*call.Call, id string) *call.Call {
	if id == "" {
		return nil
	}
	for _, c := range calls {
		if c.PlatformID() == id {
			return c
		}
	}
	return nil
}

// matchHeuristic scans from most-recently-added to least-recently-added for
// a call the event could plausibly belong to. Newest-first is a deliberate
// tie-break: newer calls are more likely to be the source of a fresh
// notification than stale ones.
func matchHeuristic(calls []*call.Call, ev call.RawEvent) *call.Call {
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].CanBeLinked(ev) {
			return calls[i]
		}
	}
	return nil
}
