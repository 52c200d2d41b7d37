package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"callwatch/internal/call"
	"callwatch/internal/engine"
)

var base = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

func TestService_ArchiveConvertsSnapshot(t *testing.T) {
	repo := NewMemoryRepository()
	s := NewService(repo)

	err := s.Archive(context.Background(), engine.CompletedCall{
		CallID:      "c1",
		PlatformID:  "X",
		PhoneNumber: "4805551234",
		Placement:   call.PlacementOutbound,
		Status:      call.StatusDisconnected,
		StartedAt:   base,
		EndedAt:     base.Add(95 * time.Second),
		Duration:    95 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	rows, err := repo.List(context.Background(), base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	rec := rows[0]
	if rec.CallID != "c1" || rec.Status != "disconnected" || rec.Placement != "outbound" {
		t.Fatalf("bad record: %+v", rec)
	}
	if rec.DurationSeconds != 95 {
		t.Fatalf("duration = %d", rec.DurationSeconds)
	}
}

func TestService_SummarizeAggregates(t *testing.T) {
	repo := NewMemoryRepository()
	s := NewService(repo)
	ctx := context.Background()

	seed := []Record{
		{CallID: "a", Placement: "outbound", Status: "disconnected", StartedAt: base, DurationSeconds: 60},
		{CallID: "b", Placement: "outbound", Status: "error", StartedAt: base.Add(time.Minute)},
		{CallID: "c", Placement: "inbound", Status: "disconnected", StartedAt: base.Add(2 * time.Minute), DurationSeconds: 30},
		{CallID: "d", Placement: "inbound", Status: "timed_out", StartedAt: base.Add(48 * time.Hour)}, // outside range
	}
	for _, rec := range seed {
		if err := repo.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	sum, err := s.Summarize(ctx, base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sum.TotalCalls != 3 {
		t.Fatalf("total = %d", sum.TotalCalls)
	}
	if sum.TotalDurationSeconds != 90 {
		t.Fatalf("duration = %d", sum.TotalDurationSeconds)
	}
	if sum.ByStatus["disconnected"] != 2 || sum.ByStatus["error"] != 1 {
		t.Fatalf("by status: %v", sum.ByStatus)
	}
	if sum.ByPlacement["outbound"] != 2 || sum.ByPlacement["inbound"] != 1 {
		t.Fatalf("by placement: %v", sum.ByPlacement)
	}
}

func TestService_SummarizeRejectsInvalidRange(t *testing.T) {
	s := NewService(NewMemoryRepository())
	if _, err := s.Summarize(context.Background(), base, base); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := s.Summarize(context.Background(), time.Time{}, base); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}
