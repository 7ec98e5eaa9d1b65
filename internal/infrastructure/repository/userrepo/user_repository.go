// Package userrepo provides the in-process user store. Durable persistence
// is an external collaborator in this system; the repository contract lives
// in the domain package and this implementation keeps the workers runnable
// and testable without one.
package userrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskflow-server/internal/domain/user"
)

// MemoryRepository implements user.Repository in memory. Safe for
// concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

var _ user.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*user.User)}
}

func (r *MemoryRepository) Create(_ context.Context, u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *u
	stored.ID = uuid.NewString()
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, nil
}

func (r *MemoryRepository) FindInactiveByToken(_ context.Context, verifyToken string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if !u.Active && u.VerifyToken == verifyToken {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) Activate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Active = true
		u.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *MemoryRepository) FindAll(_ context.Context, limit, page int) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		out := *u
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	return paginate(all, limit, page), nil
}

func paginate(all []*user.User, limit, page int) []*user.User {
	if limit <= 0 {
		return all
	}
	start := page * limit
	if start >= len(all) {
		return []*user.User{}
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
