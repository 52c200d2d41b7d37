package clock

import (
	"testing"
	"time"
)

func TestManual_AdvanceMovesNow(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m := NewManual(start)
	if !m.Now().Equal(start) {
		t.Fatalf("now = %v", m.Now())
	}
	m.Advance(90 * time.Second)
	if !m.Now().Equal(start.Add(90 * time.Second)) {
		t.Fatalf("now = %v", m.Now())
	}
}

func TestManual_FiresTimersInDeadlineOrder(t *testing.T) {
	m := NewManual(time.Time{})
	var fired []string
	m.AfterFunc(3*time.Second, func() { fired = append(fired, "c") })
	m.AfterFunc(1*time.Second, func() { fired = append(fired, "a") })
	m.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })

	m.Advance(90 * time.Second)

	if len(fired) != 3 || fired[0] != "a" || fired[1] != "b" || fired[2] != "c" {
		t.Fatalf("fired = %v", fired)
	}
	if m.TimerCount() != 0 {
		t.Fatalf("pending timers = %d", m.TimerCount())
	}
}

func TestManual_NowInsideCallbackIsDeadline(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m := NewManual(start)
	var at time.Time
	m.AfterFunc(5*time.Second, func() { at = m.Now() })
	m.Advance(time.Minute)
	if !at.Equal(start.Add(5 * time.Second)) {
		t.Fatalf("callback saw %v", at)
	}
}

func TestManual_StopPreventsFiring(t *testing.T) {
	m := NewManual(time.Time{})
	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Fatalf("stop should report success")
	}
	if timer.Stop() {
		t.Fatalf("second stop should report failure")
	}
	m.Advance(time.Minute)
	if fired {
		t.Fatalf("stopped timer fired")
	}
}

func TestManual_CallbackMayScheduleMore(t *testing.T) {
	m := NewManual(time.Time{})
	var fired []int
	m.AfterFunc(time.Second, func() {
		fired = append(fired, 1)
		m.AfterFunc(time.Second, func() { fired = append(fired, 2) })
	})
	m.Advance(5 * time.Second)
	if len(fired) != 2 {
		t.Fatalf("fired = %v", fired)
	}
}
