package call

import (
	"errors"
	"sync"
	"time"

	"callwatch/internal/stream"

	"github.com/google/uuid"
)

var (
	// ErrCompleted marks an attempt to mutate a call that already finished.
	// This is an engine invariant violation, not an expected condition.
	ErrCompleted = errors.New("call: already completed")

	// ErrNotTerminal rejects completion with a non-terminal status.
	ErrNotTerminal = errors.New("call: completion status must be terminal")
)

// Stuck-call thresholds. A dial that never progresses past dialing for this
// long is almost certainly abandoned; a connected call older than eight
// hours is almost certainly a leaked notification rather than a real call.
const (
	DialingExpiry   = 30 * time.Second
	ConnectedExpiry = 8 * time.Hour
)

// Event is an immutable snapshot of one status transition. Events are
// created only by the owning call's status recording and never mutated.
type Event struct {
	Call   *Call
	Status Status
	At     time.Time
}

// Call is one tracked phone call, correlated out of raw notifications.
//
// Only the engine's registry mutates a call while it is active; references
// handed to observers are read-only by convention. Getters take the call
// lock so observers on other goroutines always see a consistent view.
type Call struct {
	mu sync.Mutex

	localID    string
	platformID string
	number     string
	status     Status
	placement  Placement
	startedAt  time.Time

	events    []Event
	completed bool
	duration  time.Duration

	stream *stream.Stream[Event]
	done   chan struct{}
}

// Params describes a call at creation time. The initial status is derived
// from Placement: inbound calls start ringing, outbound calls dialing.
type Params struct {
	Placement   Placement
	PhoneNumber string
	PlatformID  string
	StartedAt   time.Time
}

func New(p Params) *Call {
	status := StatusDialing
	if p.Placement == PlacementInbound {
		status = StatusRinging
	}
	return &Call{
		localID:    uuid.NewString(),
		platformID: p.PlatformID,
		number:     p.PhoneNumber,
		status:     status,
		placement:  p.Placement,
		startedAt:  p.StartedAt,
		stream:     stream.New[Event](),
		done:       make(chan struct{}),
	}
}

func (c *Call) LocalID() string { return c.localID }

func (c *Call) Placement() Placement { return c.placement }

func (c *Call) StartedAt() time.Time { return c.startedAt }

func (c *Call) PlatformID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.platformID
}

func (c *Call) PhoneNumber() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.number
}

func (c *Call) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Call) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Duration is fixed at completion; zero while the call is active.
func (c *Call) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Events returns a copy of the call's append-only event history.
func (c *Call) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Subscribe attaches an observer to this call's own event stream.
func (c *Call) Subscribe() *stream.Subscription[Event] {
	return c.stream.Subscribe()
}

// Done is closed when the call completes.
func (c *Call) Done() <-chan struct{} { return c.done }

// RecordStatus transitions the call, appends the event snapshot and
// publishes it on the call's own stream. Recording onto a completed call
// is an illegal-state failure.
func (c *Call) RecordStatus(s Status, at time.Time) (Event, error) {
	c.mu.Lock()
	if c.completed {
		c.mu.Unlock()
		return Event{}, ErrCompleted
	}
	c.status = s
	ev := Event{Call: c, Status: s, At: at}
	c.events = append(c.events, ev)
	c.mu.Unlock()

	c.stream.Publish(ev)
	return ev, nil
}

// Complete records the terminal status, fixes the duration and closes the
// per-call stream; existing subscribers see end-of-stream. Removal from the
// registry is the caller's side of the same step.
func (c *Call) Complete(s Status, at time.Time) (Event, error) {
	if !s.Terminal() {
		return Event{}, ErrNotTerminal
	}

	c.mu.Lock()
	if c.completed {
		c.mu.Unlock()
		return Event{}, ErrCompleted
	}
	c.status = s
	ev := Event{Call: c, Status: s, At: at}
	c.events = append(c.events, ev)
	c.completed = true
	c.duration = at.Sub(c.startedAt)
	c.mu.Unlock()

	c.stream.Publish(ev)
	c.stream.Close()
	close(c.done)
	return ev, nil
}

// BindPlatformID attaches the platform identifier, settable exactly once.
// Returns false if an id is already bound.
func (c *Call) BindPlatformID(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.platformID != "" || id == "" {
		return false
	}
	c.platformID = id
	return true
}

// FillPhoneNumber records a number learned from a later notification.
// An already-known number is never overwritten.
func (c *Call) FillPhoneNumber(n string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.number == "" && n != "" {
		c.number = n
	}
}

// CanBeLinked reports whether a raw event could plausibly belong to this
// call: numbers unset on one side or equal, platform id unset or equal, and
// the current status accepted by the transition table for the event type.
func (c *Call) CanBeLinked(ev RawEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.number != "" && ev.PhoneNumber != "" &&
		SanitizeNumber(c.number) != SanitizeNumber(ev.PhoneNumber) {
		return false
	}
	if c.platformID != "" && c.platformID != ev.ID {
		return false
	}
	return IsBefore(c.status, ev.Type)
}

// ExpiredAt reports whether the call is stuck as of now: dialing for over
// 30 seconds, or connected for over 8 hours.
func (c *Call) ExpiredAt(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.status {
	case StatusDialing:
		return now.Sub(c.startedAt) > DialingExpiry
	case StatusConnected:
		return now.Sub(c.startedAt) > ConnectedExpiry
	default:
		return false
	}
}
