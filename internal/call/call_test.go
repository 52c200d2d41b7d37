package call

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newDialing() *Call {
	return New(Params{Placement: PlacementOutbound, PhoneNumber: "4805551234", StartedAt: t0})
}

func TestNew_InitialStatusFromPlacement(t *testing.T) {
	out := newDialing()
	if out.Status() != StatusDialing {
		t.Fatalf("outbound call should start dialing, got %q", out.Status())
	}
	in := New(Params{Placement: PlacementInbound, StartedAt: t0})
	if in.Status() != StatusRinging {
		t.Fatalf("inbound call should start ringing, got %q", in.Status())
	}
	if out.LocalID() == "" || out.LocalID() == in.LocalID() {
		t.Fatalf("local ids must be unique and non-empty")
	}
}

func TestRecordStatus_AppendsAndPublishes(t *testing.T) {
	c := newDialing()
	sub := c.Subscribe()

	ev, err := c.RecordStatus(StatusConnecting, t0.Add(time.Second))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ev.Call != c || ev.Status != StatusConnecting {
		t.Fatalf("bad event: %+v", ev)
	}
	got := <-sub.C
	if got.Status != StatusConnecting {
		t.Fatalf("subscriber got %q", got.Status)
	}
	if len(c.Events()) != 1 {
		t.Fatalf("expected 1 event, got %d", len(c.Events()))
	}
}

func TestComplete_FixesDurationAndClosesStream(t *testing.T) {
	c := newDialing()
	sub := c.Subscribe()

	if _, err := c.Complete(StatusDisconnected, t0.Add(90*time.Second)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !c.Completed() {
		t.Fatalf("expected completed")
	}
	if c.Duration() != 90*time.Second {
		t.Fatalf("duration = %v", c.Duration())
	}

	// terminal event, then end-of-stream
	if ev := <-sub.C; ev.Status != StatusDisconnected {
		t.Fatalf("got %q", ev.Status)
	}
	if _, ok := <-sub.C; ok {
		t.Fatalf("stream should be closed")
	}
	select {
	case <-c.Done():
	default:
		t.Fatalf("done should be closed")
	}
}

func TestComplete_RequiresTerminalStatus(t *testing.T) {
	c := newDialing()
	if _, err := c.Complete(StatusConnected, t0); !errors.Is(err, ErrNotTerminal) {
		t.Fatalf("expected ErrNotTerminal, got %v", err)
	}
}

func TestMutationAfterCompletionIsIllegalState(t *testing.T) {
	c := newDialing()
	if _, err := c.Complete(StatusCancelled, t0.Add(time.Second)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := c.RecordStatus(StatusConnected, t0.Add(2*time.Second)); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted, got %v", err)
	}
	if _, err := c.Complete(StatusDisconnected, t0.Add(2*time.Second)); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted on double completion, got %v", err)
	}
	if n := len(c.Events()); n != 1 {
		t.Fatalf("no events may land after completion; have %d", n)
	}
	if c.Status() != StatusCancelled {
		t.Fatalf("status changed after completion: %q", c.Status())
	}
}

func TestBindPlatformID_SetOnce(t *testing.T) {
	c := newDialing()
	if !c.BindPlatformID("A") {
		t.Fatalf("first bind should succeed")
	}
	if c.BindPlatformID("B") {
		t.Fatalf("rebinding must be rejected")
	}
	if c.PlatformID() != "A" {
		t.Fatalf("platform id = %q", c.PlatformID())
	}
}

func TestFillPhoneNumber_NeverOverwrites(t *testing.T) {
	c := New(Params{Placement: PlacementInbound, StartedAt: t0})
	c.FillPhoneNumber("4805551234")
	c.FillPhoneNumber("6025550000")
	if c.PhoneNumber() != "4805551234" {
		t.Fatalf("number = %q", c.PhoneNumber())
	}
}

func TestCanBeLinked(t *testing.T) {
	c := newDialing()

	if !c.CanBeLinked(RawEvent{Type: EventConnected}) {
		t.Fatalf("event with no attributes should link to a dialing call")
	}
	if !c.CanBeLinked(RawEvent{Type: EventConnected, PhoneNumber: "(480) 555-1234"}) {
		t.Fatalf("formatted number should still match after sanitizing")
	}
	if c.CanBeLinked(RawEvent{Type: EventConnected, PhoneNumber: "6025550000"}) {
		t.Fatalf("different number must not link")
	}
	if c.CanBeLinked(RawEvent{Type: EventInbound}) {
		t.Fatalf("inbound never links to an existing call")
	}

	c.BindPlatformID("A")
	if c.CanBeLinked(RawEvent{Type: EventConnected, ID: "B"}) {
		t.Fatalf("different platform id must not link")
	}
	if !c.CanBeLinked(RawEvent{Type: EventConnected, ID: "A"}) {
		t.Fatalf("matching platform id should link")
	}
}

func TestExpiredAt_Boundaries(t *testing.T) {
	c := newDialing()
	if c.ExpiredAt(t0.Add(DialingExpiry)) {
		t.Fatalf("dialing call must not expire at exactly 30s")
	}
	if !c.ExpiredAt(t0.Add(DialingExpiry + time.Millisecond)) {
		t.Fatalf("dialing call must expire strictly after 30s")
	}

	if _, err := c.RecordStatus(StatusConnected, t0.Add(time.Second)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.ExpiredAt(t0.Add(ConnectedExpiry)) {
		t.Fatalf("connected call must not expire at exactly 8h")
	}
	if !c.ExpiredAt(t0.Add(ConnectedExpiry + time.Second)) {
		t.Fatalf("connected call must expire after 8h")
	}

	if _, err := c.Complete(StatusDisconnected, t0.Add(2*time.Second)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.ExpiredAt(t0.Add(24 * time.Hour)) {
		t.Fatalf("terminal statuses never expire")
	}
}
