// Package logentry implements the audit-log sink consumed by the fire-and-
// forget logs.create command.
package logentry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"taskflow-server/internal/domain/fault"
)

// Entry is one audit record.
type Entry struct {
	ID          string         `json:"id"`
	Level       string         `json:"level"`
	Message     string         `json:"message"`
	RequestID   string         `json:"request_id"`
	UserID      string         `json:"user_id"`
	EventType   string         `json:"event_type"`
	ServiceName string         `json:"service_name"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Repository defines storage operations for audit entries.
type Repository interface {
	Append(ctx context.Context, e *Entry) (*Entry, error)
}

// Service records audit entries.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService constructs a Service with required dependencies.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record persists one entry. Missing level/message default rather than
// reject: the sink must never bounce audit traffic.
func (s *Service) Record(ctx context.Context, e Entry) error {
	if e.Level == "" {
		e.Level = "info"
	}
	if e.Message == "" {
		e.Message = "(no message)"
	}

	stored, err := s.repo.Append(ctx, &e)
	if err != nil {
		return fault.Unknown(err, "Internal Server Error")
	}

	s.logger.Debug().
		Str("id", stored.ID).
		Str("event_type", stored.EventType).
		Str("request_id", stored.RequestID).
		Msg("audit entry recorded")
	return nil
}
