package rpcserver

import (
	"context"

	"taskflow-server/internal/domain/task"
	"taskflow-server/internal/infrastructure/broker"
)

type scopedPagePayload struct {
	ID    string `json:"id"`
	Limit int    `json:"limit"`
	Page  int    `json:"page"`
}

type changeStatusPayload struct {
	ID     string      `json:"id"`
	Status task.Status `json:"status"`
}

type assignUserPayload struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
}

// BindTaskCommands registers the task command handlers.
func BindTaskCommands(r *broker.Responder, svc *task.Service) {
	r.Handle("tasks.create", func(ctx context.Context, req broker.Request) (any, error) {
		var in task.CreateInput
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		if in.AuthorID == "" {
			in.AuthorID = req.CallerID
		}
		return svc.Create(ctx, in)
	})

	r.Handle("tasks.findAll", func(ctx context.Context, req broker.Request) (any, error) {
		var in pagePayload
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.FindAll(ctx, in.Limit, in.Page)
	})

	r.Handle("tasks.findOne", func(ctx context.Context, req broker.Request) (any, error) {
		var in idPayload
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.FindOne(ctx, in.ID)
	})

	r.Handle("tasks.findByAuthorId", func(ctx context.Context, req broker.Request) (any, error) {
		var in scopedPagePayload
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.FindByAuthor(ctx, in.ID, in.Limit, in.Page)
	})

	r.Handle("tasks.findByAssignedId", func(ctx context.Context, req broker.Request) (any, error) {
		var in scopedPagePayload
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.FindByAssignee(ctx, in.ID, in.Limit, in.Page)
	})

	r.Handle("tasks.update", func(ctx context.Context, req broker.Request) (any, error) {
		var in task.UpdateInput
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.Update(ctx, in)
	})

	r.Handle("tasks.delete", func(ctx context.Context, req broker.Request) (any, error) {
		var in idPayload
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.Delete(ctx, in.ID)
	})

	r.Handle("tasks.change-status", func(ctx context.Context, req broker.Request) (any, error) {
		var in changeStatusPayload
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.ChangeStatus(ctx, in.ID, in.Status)
	})

	r.Handle("tasks.assign-user", func(ctx context.Context, req broker.Request) (any, error) {
		var in assignUserPayload
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.AssignUser(ctx, in.ID, in.UserID)
	})
}
