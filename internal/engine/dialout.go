package engine

import (
	"context"
	"errors"

	"callwatch/internal/call"
)

var (
	ErrNoDialer    = errors.New("engine: no dialer configured")
	ErrEmptyNumber = errors.New("engine: phone number required")
)

// DialResult is the dial mechanism's verdict on a placed call.
type DialResult string

const (
	DialSuccess      DialResult = "success"
	DialFailed       DialResult = "failed"
	DialUnsupported  DialResult = "unsupported"
	DialInvalidInput DialResult = "invalid_input"
)

// Dialer places an outbound call through the platform dial mechanism. It
// receives the sanitized numeric string; transport failures surface as
// errors and are mapped to call status error by the engine.
type Dialer interface {
	Dial(ctx context.Context, number string) (DialResult, error)
}

// StartCall places an outbound call and begins tracking it. The dial
// mechanism is invoked asynchronously: placing a call through a system
// dialer gives almost no synchronous feedback, so the call's outcome is a
// race between native notifications, the app-resume signal and the
// feedback window, and the first signal to land wins.
func (e *Engine) StartCall(ctx context.Context, phoneNumber string) (*call.Call, error) {
	if e.dialer == nil {
		return nil, ErrNoDialer
	}
	number := call.SanitizeNumber(phoneNumber)
	if number == "" {
		return nil, ErrEmptyNumber
	}

	e.mu.Lock()
	c := call.New(call.Params{
		Placement:   call.PlacementOutbound,
		PhoneNumber: number,
		StartedAt:   e.clk.Now(),
	})
	e.reg.add(c)
	e.recordLocked(c, call.StatusDialing)
	e.mu.Unlock()

	go e.watchDial(ctx, c, number)
	return c, nil
}

func (e *Engine) watchDial(ctx context.Context, c *call.Call, number string) {
	res, err := e.dialer.Dial(ctx, number)

	e.mu.Lock()
	defer e.mu.Unlock()

	if c.Completed() {
		// A notification or cancellation beat the dial response.
		return
	}
	if err != nil {
		e.log.Warn("dial failed", "call_id", c.LocalID(), "err", err)
		e.completeLocked(c, call.StatusError)
		return
	}
	if res != DialSuccess {
		e.log.Warn("dial rejected", "call_id", c.LocalID(), "result", string(res))
		e.completeLocked(c, call.StatusError)
		return
	}

	// Feedback window: if no corroborating signal arrives while the call is
	// still dialing, give up. The timer re-checks its guard when it fires;
	// against a call that already progressed or completed it is a no-op.
	e.clk.AfterFunc(e.cfg.FeedbackWindow, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c.Completed() || c.Status() != call.StatusDialing {
			return
		}
		e.log.Info("dial feedback window elapsed", "call_id", c.LocalID())
		e.completeLocked(c, call.StatusTimedOut)
	})
}
