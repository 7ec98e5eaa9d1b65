// Package rpcserver binds command names to domain services on the worker
// side of the broker. Each command maps to exactly one handler.
package rpcserver

import (
	"context"

	"taskflow-server/internal/domain/user"
	"taskflow-server/internal/infrastructure/broker"
)

type tokenPayload struct {
	Token string `json:"token"`
}

type idPayload struct {
	ID string `json:"id"`
}

type pagePayload struct {
	Limit int `json:"limit"`
	Page  int `json:"page"`
}

// BindAuthCommands registers the auth/users command handlers.
func BindAuthCommands(r *broker.Responder, svc *user.Service) {
	r.Handle("auth.create", func(ctx context.Context, req broker.Request) (any, error) {
		var in user.CreateInput
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.Create(ctx, in)
	})

	r.Handle("auth.login", func(ctx context.Context, req broker.Request) (any, error) {
		var in user.LoginInput
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.Login(ctx, in)
	})

	r.Handle("auth.verify-token", func(ctx context.Context, req broker.Request) (any, error) {
		var in tokenPayload
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.VerifyToken(ctx, in.Token)
	})

	r.Handle("auth.verify-account", func(ctx context.Context, req broker.Request) (any, error) {
		var in tokenPayload
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.VerifyAccount(ctx, in.Token)
	})

	r.Handle("users.findAll", func(ctx context.Context, req broker.Request) (any, error) {
		var in pagePayload
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.FindAll(ctx, in.Limit, in.Page)
	})

	r.Handle("users.findById", func(ctx context.Context, req broker.Request) (any, error) {
		var in idPayload
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return svc.FindByID(ctx, in.ID)
	})
}
