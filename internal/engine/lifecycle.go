package engine

import "callwatch/internal/call"

// LifecycleState mirrors the app lifecycle signal delivered by the
// platform. Only resumed is consumed.
type LifecycleState string

const (
	LifecycleResumed  LifecycleState = "resumed"
	LifecyclePaused   LifecycleState = "paused"
	LifecycleInactive LifecycleState = "inactive"
	LifecycleDetached LifecycleState = "detached"
)

// OnLifecycle consumes an app lifecycle transition. Returning to the
// foreground shortly after a dial, with no native feedback yet, means the
// user backed out of the call UI before the call connected. This is a
// lower-confidence signal racing against the feedback window and any
// native notification; whichever lands first decides the call.
func (e *Engine) OnLifecycle(s LifecycleState) {
	if s != LifecycleResumed {
		return
	}
	e.clk.AfterFunc(e.cfg.ResumeDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		now := e.clk.Now()
		for _, c := range e.reg.snapshot() {
			if c.Status() != call.StatusDialing {
				continue
			}
			if now.Sub(c.StartedAt()) >= e.cfg.ResumeGrace {
				continue
			}
			e.log.Info("dial cancelled on app resume", "call_id", c.LocalID())
			e.completeLocked(c, call.StatusCancelled)
			return
		}
	})
}
