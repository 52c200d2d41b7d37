package history

import (
	"context"
	"errors"
	"time"

	"callwatch/internal/engine"
)

var ErrInvalidRange = errors.New("history: invalid range")

// Repository abstracts call archive persistence. Implementations must be
// append-only.
type Repository interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context, from, to time.Time) ([]Record, error)
}

// Service archives completed calls and summarizes the archive. It
// implements the engine's Archiver port.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Archive stores the completed-call snapshot. Callers should treat
// archiving as best-effort.
func (s *Service) Archive(ctx context.Context, done engine.CompletedCall) error {
	if s.repo == nil {
		return errors.New("history: repository not configured")
	}
	return s.repo.Append(ctx, Record{
		CallID:          done.CallID,
		PlatformID:      done.PlatformID,
		PhoneNumber:     done.PhoneNumber,
		Placement:       string(done.Placement),
		Status:          string(done.Status),
		StartedAt:       done.StartedAt,
		EndedAt:         done.EndedAt,
		DurationSeconds: int(done.Duration / time.Second),
	})
}

// Summarize aggregates archived calls whose start falls in [from, to).
func (s *Service) Summarize(ctx context.Context, from, to time.Time) (Summary, error) {
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return Summary{}, ErrInvalidRange
	}
	if s.repo == nil {
		return Summary{}, errors.New("history: repository not configured")
	}

	rows, err := s.repo.List(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		From:        from,
		To:          to,
		ByStatus:    map[string]int{},
		ByPlacement: map[string]int{},
	}
	for _, rec := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += rec.DurationSeconds
		out.ByStatus[rec.Status]++
		out.ByPlacement[rec.Placement]++
	}
	return out, nil
}
