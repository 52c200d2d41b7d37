package history

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for tests and DB-less
// deployments.
type MemoryRepository struct {
	mu   sync.Mutex
	rows []Record
}

func NewMemoryRepository() *MemoryRepository { return &MemoryRepository{} }

func (r *MemoryRepository) Append(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rec)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, from, to time.Time) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Record
	for _, rec := range r.rows {
		if rec.StartedAt.Before(from) || !rec.StartedAt.Before(to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
