package requests

import "time"

// CreateTask is the body of POST /api/tasks.
type CreateTask struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  string     `json:"assignedTo"`
}

// UpdateTask is the body of PUT /api/tasks/:id. All fields are optional;
// absent fields leave the stored value untouched.
type UpdateTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
}

// ChangeTaskStatus is the body of PATCH /api/tasks/:id/status.
type ChangeTaskStatus struct {
	Status string `json:"status" binding:"required"`
}
