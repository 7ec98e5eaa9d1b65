// Package taskrepo provides the in-process task store backing the task
// worker; the repository contract lives in the domain package.
package taskrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskflow-server/internal/domain/task"
)

// MemoryRepository implements task.Repository in memory. Safe for
// concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	tasks map[string]*task.Task
}

var _ task.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[string]*task.Task)}
}

func (r *MemoryRepository) Create(_ context.Context, t *task.Task) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *t
	stored.ID = uuid.NewString()
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.tasks[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) FindAll(_ context.Context, limit, page int) ([]*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.collect(func(*task.Task) bool { return true }), limit, page), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tasks[id]; ok {
		out := *t
		return &out, nil
	}
	return nil, nil
}

func (r *MemoryRepository) FindByAuthor(_ context.Context, authorID string, limit, page int) ([]*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.collect(func(t *task.Task) bool { return t.AuthorID == authorID }), limit, page), nil
}

func (r *MemoryRepository) FindByAssignee(_ context.Context, userID string, limit, page int) ([]*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.collect(func(t *task.Task) bool { return t.AssignedUserID == userID }), limit, page), nil
}

func (r *MemoryRepository) Update(_ context.Context, t *task.Task) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *t
	stored.UpdatedAt = time.Now().UTC()
	r.tasks[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

// collect copies matching tasks ordered by creation time. Callers hold the
// read lock.
func (r *MemoryRepository) collect(match func(*task.Task) bool) []*task.Task {
	out := make([]*task.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if match(t) {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func paginate(all []*task.Task, limit, page int) []*task.Task {
	if limit <= 0 {
		return all
	}
	start := page * limit
	if start >= len(all) {
		return []*task.Task{}
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
