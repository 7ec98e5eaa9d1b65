package rpcserver

import (
	"context"

	"taskflow-server/internal/domain/logentry"
	"taskflow-server/internal/infrastructure/broker"
)

// BindLogCommands registers the audit-log sink. logs.create is emitted
// fire-and-forget, so the handler result is only used when a caller does
// wait for a reply.
func BindLogCommands(r *broker.Responder, svc *logentry.Service) {
	r.Handle("logs.create", func(ctx context.Context, req broker.Request) (any, error) {
		var e logentry.Entry
		if err := req.Decode(&e); err != nil {
			return nil, err
		}
		if e.RequestID == "" {
			e.RequestID = req.RequestID
		}
		if err := svc.Record(ctx, e); err != nil {
			return nil, err
		}
		return map[string]string{"status": "success"}, nil
	})
}
