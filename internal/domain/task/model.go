// Package task implements the tasks backend: CRUD, status changes,
// assignment, cached reads, and the task.assigned event.
package task

import (
	"context"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ValidStatus reports whether s is a known status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is the stored task record. AuthorID is the creating manager/admin;
// AssignedUserID is the user currently responsible, empty when unassigned.
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	Priority       string     `json:"priority,omitempty"`
	AuthorID       string     `json:"authorId"`
	AssignedUserID string     `json:"assignedUserId,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Repository defines storage operations for tasks. Lookups return nil
// without error when no record matches.
type Repository interface {
	Create(ctx context.Context, t *Task) (*Task, error)
	FindAll(ctx context.Context, limit, page int) ([]*Task, error)
	FindByID(ctx context.Context, id string) (*Task, error)
	FindByAuthor(ctx context.Context, authorID string, limit, page int) ([]*Task, error)
	FindByAssignee(ctx context.Context, userID string, limit, page int) ([]*Task, error)
	Update(ctx context.Context, t *Task) (*Task, error)
	Delete(ctx context.Context, id string) error
}
