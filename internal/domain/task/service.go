package task

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"taskflow-server/internal/domain/fault"
	"taskflow-server/internal/infrastructure/cache"
	"taskflow-server/internal/infrastructure/events"
	"taskflow-server/internal/infrastructure/logclient"
	"taskflow-server/internal/utils/reqctx"
)

// cachePrefix is the root of every cached task key. Mutations invalidate the
// whole prefix so paginated and per-owner variants can never go stale.
const cachePrefix = "tasks"

// CreateInput is the tasks.create payload.
type CreateInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	AuthorID    string     `json:"authorId"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
}

// UpdateInput is the tasks.update payload.
type UpdateInput struct {
	ID          string     `json:"id"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Reply shapes returned to the gateway.
type (
	// OneReply carries a single task.
	OneReply struct {
		Status  string `json:"status"`
		Task    *Task  `json:"task"`
		Message string `json:"message,omitempty"`
	}
	// ListReply carries a page of tasks.
	ListReply struct {
		Status string  `json:"status"`
		Tasks  []*Task `json:"tasks"`
	}
	// StatusReply acknowledges a mutation without a body.
	StatusReply struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
)

// Service implements the task command handlers.
type Service struct {
	repo      Repository
	store     *cache.Store
	publisher events.Publisher
	audit     *logclient.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewService constructs a Service with required dependencies.
func NewService(repo Repository, store *cache.Store, publisher events.Publisher, audit *logclient.Client, cacheTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		store:     store,
		publisher: publisher,
		audit:     audit,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Create stores a new task. When the task is born assigned, the assignment
// event is published after the record committed.
func (s *Service) Create(ctx context.Context, in CreateInput) (*OneReply, error) {
	if in.Title == "" {
		return nil, fault.Validation("Title is required")
	}

	t := &Task{
		Title:          in.Title,
		Description:    in.Description,
		Status:         StatusPending,
		Priority:       in.Priority,
		AuthorID:       in.AuthorID,
		AssignedUserID: in.AssignedTo,
		DueDate:        in.DueDate,
	}
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}

	s.store.Invalidate(ctx, cachePrefix)

	if created.AssignedUserID != "" {
		s.publishAssigned(ctx, created)
	}

	s.audit.Info(ctx, created.AuthorID, "tasks.create", "Task created successfully", map[string]any{
		"taskId":     created.ID,
		"assignedTo": created.AssignedUserID,
	})

	return &OneReply{Status: "success", Task: created, Message: "Task created successfully"}, nil
}

// FindAll lists tasks through the cache-aside store.
func (s *Service) FindAll(ctx context.Context, limit, page int) (*ListReply, error) {
	key := listKey("", "", limit, page)
	return s.cachedList(ctx, key, "tasks.findAll", func(ctx context.Context) ([]*Task, error) {
		return s.repo.FindAll(ctx, limit, page)
	})
}

// FindByAuthor lists an author's tasks through the cache-aside store.
func (s *Service) FindByAuthor(ctx context.Context, authorID string, limit, page int) (*ListReply, error) {
	key := listKey("author", authorID, limit, page)
	return s.cachedList(ctx, key, "tasks.findByAuthorId", func(ctx context.Context) ([]*Task, error) {
		return s.repo.FindByAuthor(ctx, authorID, limit, page)
	})
}

// FindByAssignee lists a user's assigned tasks through the cache-aside store.
func (s *Service) FindByAssignee(ctx context.Context, userID string, limit, page int) (*ListReply, error) {
	key := listKey("assigned", userID, limit, page)
	return s.cachedList(ctx, key, "tasks.findByAssignedId", func(ctx context.Context) ([]*Task, error) {
		return s.repo.FindByAssignee(ctx, userID, limit, page)
	})
}

// FindOne returns one task or a not-found fault.
func (s *Service) FindOne(ctx context.Context, id string) (*OneReply, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OneReply{Status: "success", Task: t}, nil
}

// Update applies partial field changes to an existing task.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*OneReply, error) {
	t, err := s.find(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		t.Title = in.Title
	}
	if in.Description != "" {
		t.Description = in.Description
	}
	if in.Priority != "" {
		t.Priority = in.Priority
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}

	s.store.Invalidate(ctx, cachePrefix)

	s.audit.Info(ctx, reqctx.CallerID(ctx), "tasks.update", "Task updated successfully", map[string]any{"taskId": updated.ID})

	return &OneReply{Status: "success", Task: updated, Message: "Task updated successfully"}, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id string) (*StatusReply, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}

	s.store.Invalidate(ctx, cachePrefix)

	s.audit.Info(ctx, reqctx.CallerID(ctx), "tasks.delete", "Task deleted successfully", map[string]any{"taskId": id})

	return &StatusReply{Status: "success", Message: fmt.Sprintf("The task #%s has been deleted", id)}, nil
}

// ChangeStatus moves a task to a new lifecycle state.
func (s *Service) ChangeStatus(ctx context.Context, id string, status Status) (*OneReply, error) {
	if !ValidStatus(status) {
		return nil, fault.Validation("Invalid task status")
	}
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	t.Status = status
	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}

	s.store.Invalidate(ctx, cachePrefix)

	s.audit.Info(ctx, reqctx.CallerID(ctx), "tasks.change-status", "Task status changed", map[string]any{
		"taskId": id,
		"status": status,
	})

	return &OneReply{Status: "success", Task: updated, Message: "Task status changed successfully"}, nil
}

// AssignUser assigns a task to a user and publishes exactly one
// task.assigned event after the mutation committed.
func (s *Service) AssignUser(ctx context.Context, id, userID string) (*OneReply, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	t.AssignedUserID = userID
	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}

	s.store.Invalidate(ctx, cachePrefix)
	s.publishAssigned(ctx, updated)

	s.audit.Info(ctx, reqctx.CallerID(ctx), "tasks.assign-user", "Task assigned successfully", map[string]any{
		"taskId":     id,
		"assignedTo": userID,
	})

	return &OneReply{Status: "success", Task: updated, Message: "Task assigned successfully"}, nil
}

func (s *Service) find(ctx context.Context, id string) (*Task, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fault.Unknown(err, "Internal Server Error")
	}
	if t == nil {
		return nil, fault.NotFound("Task not found")
	}
	return t, nil
}

func (s *Service) cachedList(ctx context.Context, key, eventType string, load func(ctx context.Context) ([]*Task, error)) (*ListReply, error) {
	reply, hit, err := cache.GetOrCompute(ctx, s.store, key, s.cacheTTL, func(ctx context.Context) (*ListReply, error) {
		ts, err := load(ctx)
		if err != nil {
			return nil, fault.Unknown(err, "Internal Server Error")
		}
		if ts == nil {
			ts = []*Task{}
		}
		return &ListReply{Status: "success", Tasks: ts}, nil
	})
	if err != nil {
		return nil, err
	}

	msg := "Tasks found successfully"
	if hit {
		msg += " (cache)"
	}
	s.audit.Info(ctx, reqctx.CallerID(ctx), eventType, msg, map[string]any{"count": len(reply.Tasks)})

	return reply, nil
}

func (s *Service) publishAssigned(ctx context.Context, t *Task) {
	s.publisher.Publish(ctx, events.TopicTaskAssigned, events.TaskAssigned{
		UserID:      t.AssignedUserID,
		TaskID:      t.ID,
		Title:       t.Title,
		Description: t.Description,
	})
}

func listKey(scope, id string, limit, page int) string {
	segments := make([]string, 0, 4)
	if scope != "" {
		segments = append(segments, scope, id)
	}
	if limit > 0 {
		segments = append(segments, fmt.Sprintf("limit=%d", limit), fmt.Sprintf("page=%d", page))
	}
	return cache.Key(cachePrefix, segments...)
}
