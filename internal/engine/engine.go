// Package engine correlates the platform's sparse, unordered call-state
// notifications into stateful call entities. One engine instance tracks one
// device; all registry mutation is serialized behind the engine lock, so
// notifications, timers and lifecycle signals are processed to completion
// one at a time.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"callwatch/internal/call"
	"callwatch/internal/stream"
	"callwatch/pkg/clock"
)

// Config tunes the engine's timer races. Zero values take the defaults.
type Config struct {
	// FeedbackWindow bounds how long an outbound dial may stay silent
	// before it is presumed abandoned.
	FeedbackWindow time.Duration

	// ResumeGrace is the maximum age of a dialing call that an app-resume
	// signal may still cancel.
	ResumeGrace time.Duration

	// ResumeDelay is the settle time after a resume signal before the
	// registry is scanned; platforms can flash foreground briefly before
	// the native call UI takes over.
	ResumeDelay time.Duration
}

func (c Config) withDefaults() Config {
	out := c
	if out.FeedbackWindow <= 0 {
		out.FeedbackWindow = 60 * time.Second
	}
	if out.ResumeGrace <= 0 {
		out.ResumeGrace = call.DialingExpiry
	}
	if out.ResumeDelay <= 0 {
		out.ResumeDelay = time.Second
	}
	return out
}

// CompletedCall is the snapshot handed to the archiver when a call leaves
// the registry.
type CompletedCall struct {
	CallID      string
	PlatformID  string
	PhoneNumber string
	Placement   call.Placement
	Status      call.Status
	StartedAt   time.Time
	EndedAt     time.Time
	Duration    time.Duration
}

// Archiver receives completed calls. Archiving is best-effort: failures are
// logged, never surfaced to callers.
type Archiver interface {
	Archive(ctx context.Context, rec CompletedCall) error
}

const archiveTimeout = 5 * time.Second

// Engine is the reconciliation facade: the single entry point that ingests
// raw notifications, matches them to calls and republishes a unified event
// stream to observers.
type Engine struct {
	mu  sync.Mutex
	cfg Config
	clk clock.Clock
	log *slog.Logger

	reg    registry
	events *stream.Stream[call.Event]

	dialer Dialer

	// Archiver is optional and may be set before the engine starts serving.
	Archiver Archiver
}

func New(cfg Config, clk clock.Clock, d Dialer, log *slog.Logger) *Engine {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		cfg:    cfg.withDefaults(),
		clk:    clk,
		log:    log,
		dialer: d,
		events: stream.New[call.Event](),
	}
}

// Events subscribes to the unified stream of every call's events.
func (e *Engine) Events() *stream.Subscription[call.Event] {
	return e.events.Subscribe()
}

// ActiveCalls returns a snapshot of the in-flight calls at call time; it
// does not update live.
func (e *Engine) ActiveCalls() []*call.Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.snapshot()
}

// Close ends the unified event stream. Per-call streams close with their
// calls.
func (e *Engine) Close() {
	e.events.Close()
}

// Ingest applies one raw platform notification. Unmatched notifications
// that cannot start a call are expected under lossy platform reporting and
// dropped silently; a malformed type is logged and dropped. Ingest never
// fails the caller.
func (e *Engine) Ingest(ev call.RawEvent) {
	if _, err := call.ParseEventType(string(ev.Type)); err != nil {
		e.log.Warn("malformed call event dropped", "err", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Cheap linear scan; the registry holds at most a handful of calls.
	e.pruneLocked()

	c := matchExact(e.reg.calls, ev.ID)
	if c == nil {
		c = matchHeuristic(e.reg.calls, ev)
		if c != nil && ev.ID != "" {
			// Future notifications for this call take the fast id path.
			c.BindPlatformID(ev.ID)
		}
	}

	if c == nil {
		if !ev.Type.IsNewCall() {
			e.log.Debug("unmatched call event dropped", "type", string(ev.Type))
			return
		}
		e.synthesizeLocked(ev)
		return
	}

	if ev.PhoneNumber != "" {
		c.FillPhoneNumber(ev.PhoneNumber)
	}

	switch ev.Type {
	case call.EventOutbound:
		e.recordLocked(c, call.StatusConnecting)
	case call.EventConnected:
		e.recordLocked(c, call.StatusConnected)
	case call.EventDisconnected:
		e.completeLocked(c, call.StatusDisconnected)
	case call.EventInbound:
		// The transition table never validates inbound against an existing
		// call, so a match here cannot happen.
	}
}

// synthesizeLocked starts tracking a call discovered from a notification.
func (e *Engine) synthesizeLocked(ev call.RawEvent) {
	placement := call.PlacementOutbound
	status := call.StatusDialing
	if ev.Type == call.EventInbound {
		placement = call.PlacementInbound
		status = call.StatusRinging
	}
	c := call.New(call.Params{
		Placement:   placement,
		PhoneNumber: ev.PhoneNumber,
		PlatformID:  ev.ID,
		StartedAt:   e.clk.Now(),
	})
	e.reg.add(c)
	e.recordLocked(c, status)
}

// pruneLocked force-completes stuck calls so the registry never silently
// accumulates zombies when the platform drops a terminating notification.
func (e *Engine) pruneLocked() {
	now := e.clk.Now()
	for _, c := range e.reg.snapshot() {
		if c.ExpiredAt(now) {
			e.log.Info("expired call pruned",
				"call_id", c.LocalID(), "status", string(c.Status()))
			e.completeLocked(c, call.StatusTimedOut)
		}
	}
}

func (e *Engine) recordLocked(c *call.Call, s call.Status) {
	ev, err := c.RecordStatus(s, e.clk.Now())
	if err != nil {
		// Invariant violation: never swallowed silently.
		e.log.Error("status recorded on completed call",
			"call_id", c.LocalID(), "status", string(s), "err", err)
		return
	}
	e.events.Publish(ev)
}

// completeLocked records the terminal status, removes the call from the
// registry in the same step, and hands the snapshot to the archiver.
func (e *Engine) completeLocked(c *call.Call, s call.Status) {
	ev, err := c.Complete(s, e.clk.Now())
	if err != nil {
		e.log.Error("call completion rejected",
			"call_id", c.LocalID(), "status", string(s), "err", err)
		return
	}
	e.reg.remove(c)
	e.events.Publish(ev)

	if e.Archiver == nil {
		return
	}
	rec := CompletedCall{
		CallID:      c.LocalID(),
		PlatformID:  c.PlatformID(),
		PhoneNumber: c.PhoneNumber(),
		Placement:   c.Placement(),
		Status:      s,
		StartedAt:   c.StartedAt(),
		EndedAt:     ev.At,
		Duration:    c.Duration(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := e.Archiver.Archive(ctx, rec); err != nil {
			e.log.Warn("call archive failed", "call_id", rec.CallID, "err", err)
		}
	}()
}
