// Package logclient forwards audit entries to the log service as
// fire-and-forget logs.create commands.
package logclient

import (
	"context"

	"github.com/rs/zerolog"

	"taskflow-server/internal/domain/fault"
	"taskflow-server/internal/infrastructure/broker"
	"taskflow-server/internal/utils/reqctx"
)

// Entry is the logs.create payload.
type Entry struct {
	Level       string         `json:"level"`
	Message     string         `json:"message"`
	RequestID   string         `json:"request_id"`
	UserID      string         `json:"user_id"`
	EventType   string         `json:"event_type"`
	ServiceName string         `json:"service_name"`
	Details     map[string]any `json:"details,omitempty"`
}

// Client emits audit entries on behalf of one service. Emission never fails
// the business operation that produced the entry.
type Client struct {
	dispatcher broker.Dispatcher
	service    string
	logger     zerolog.Logger
}

// New builds a client for the named service.
func New(dispatcher broker.Dispatcher, service string, logger zerolog.Logger) *Client {
	return &Client{dispatcher: dispatcher, service: service, logger: logger}
}

// Info records a successful operation.
func (c *Client) Info(ctx context.Context, userID, eventType, message string, details map[string]any) {
	c.emit(ctx, Entry{
		Level:     "info",
		Message:   message,
		UserID:    userID,
		EventType: eventType,
		Details:   details,
	})
}

// Error records a failed operation with the fault's client-facing message.
func (c *Client) Error(ctx context.Context, userID, eventType string, err error) {
	f := fault.From(err)
	c.emit(ctx, Entry{
		Level:     "error",
		Message:   f.Message,
		UserID:    userID,
		EventType: eventType,
		Details:   map[string]any{"status": f.Status, "kind": string(f.Kind)},
	})
}

func (c *Client) emit(ctx context.Context, entry Entry) {
	entry.RequestID = reqctx.RequestID(ctx)
	entry.ServiceName = c.service
	if err := c.dispatcher.Emit(ctx, "logs.create", entry); err != nil {
		c.logger.Warn().Err(err).Str("event_type", entry.EventType).Msg("audit emit failed")
	}
}
