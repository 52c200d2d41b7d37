package stream

import "testing"

func TestPublish_FansOutToAllSubscribers(t *testing.T) {
	s := New[int]()
	a := s.Subscribe()
	b := s.Subscribe()

	s.Publish(7)
	if got := <-a.C; got != 7 {
		t.Fatalf("a got %d", got)
	}
	if got := <-b.C; got != 7 {
		t.Fatalf("b got %d", got)
	}
}

func TestPublish_NoSubscribersIsNoop(t *testing.T) {
	s := New[string]()
	s.Publish("nobody home") // must not block or fail
}

func TestCancel_DetachesOneSubscriber(t *testing.T) {
	s := New[int]()
	a := s.Subscribe()
	b := s.Subscribe()

	a.Cancel()
	a.Cancel() // idempotent
	s.Publish(1)

	if _, ok := <-a.C; ok {
		t.Fatalf("cancelled subscription should be closed")
	}
	if got := <-b.C; got != 1 {
		t.Fatalf("b should still receive, got %d", got)
	}
}

func TestClose_EndsAllSubscriptions(t *testing.T) {
	s := New[int]()
	a := s.Subscribe()
	s.Publish(1)
	s.Close()
	s.Close()    // idempotent
	s.Publish(2) // no-op after close
	if got := <-a.C; got != 1 {
		t.Fatalf("buffered value lost, got %d", got)
	}
	if _, ok := <-a.C; ok {
		t.Fatalf("expected end-of-stream")
	}

	late := s.Subscribe()
	if _, ok := <-late.C; ok {
		t.Fatalf("subscribing after close should yield a closed channel")
	}
}

func TestPublish_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	s := New[int]()
	sub := s.Subscribe()
	for i := 0; i < subscriberBuffer+10; i++ {
		s.Publish(i)
	}
	// The first subscriberBuffer values survive; the rest were dropped.
	for i := 0; i < subscriberBuffer; i++ {
		if got := <-sub.C; got != i {
			t.Fatalf("value %d: got %d", i, got)
		}
	}
	select {
	case v := <-sub.C:
		t.Fatalf("unexpected extra value %d", v)
	default:
	}
}
