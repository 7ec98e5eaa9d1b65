// Package events carries the decoupled publish/subscribe fan-out used to
// drive side effects after mutations commit. Events are at-most-once per
// subscriber process and are not persisted: a subscriber crash loses
// undelivered events, which is accepted.
package events

import "context"

// Topics published by the backend workers.
const (
	TopicUserRegister = "user.register"
	TopicTaskAssigned = "task.assigned"
)

// UserRegistered is the user.register payload.
type UserRegistered struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// TaskAssigned is the task.assigned payload.
type TaskAssigned struct {
	UserID      string `json:"userId"`
	TaskID      string `json:"taskId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Publisher publishes a domain event. Implementations never fail the caller:
// publish happens after the triggering mutation has committed, and a delivery
// problem is the subscriber's loss, not the mutation's.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any)
}

// Handler consumes one event. It receives the raw payload bytes and is
// invoked at most once per received message.
type Handler func(ctx context.Context, payload []byte)
