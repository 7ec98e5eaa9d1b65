// Package logrepo provides the in-process audit entry store.
package logrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskflow-server/internal/domain/logentry"
)

// MemoryRepository implements logentry.Repository in memory, keeping the
// most recent entries in arrival order.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []*logentry.Entry
}

var _ logentry.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(_ context.Context, e *logentry.Entry) (*logentry.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *e
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, &stored)

	out := stored
	return &out, nil
}

// Recent returns up to n most recent entries, newest last.
func (r *MemoryRepository) Recent(n int) []*logentry.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n <= 0 || n > len(r.entries) {
		n = len(r.entries)
	}
	out := make([]*logentry.Entry, n)
	copy(out, r.entries[len(r.entries)-n:])
	return out
}
