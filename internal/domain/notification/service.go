// Package notification turns domain events into email. It is a pure
// subscriber: no HTTP surface, no storage, one RPC to resolve recipient
// addresses.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"taskflow-server/internal/domain/user"
	"taskflow-server/internal/infrastructure/broker"
	"taskflow-server/internal/infrastructure/events"
	"taskflow-server/internal/infrastructure/mailer"
)

// Service holds the event handlers for the notification worker.
type Service struct {
	dispatcher broker.Dispatcher
	mail       mailer.Mailer
	logger     zerolog.Logger
}

// NewService constructs a Service with required dependencies.
func NewService(dispatcher broker.Dispatcher, mail mailer.Mailer, logger zerolog.Logger) *Service {
	return &Service{dispatcher: dispatcher, mail: mail, logger: logger}
}

// HandleUserRegister delivers the account verification mail. The recipient
// address arrives in the event itself.
func (s *Service) HandleUserRegister(ctx context.Context, payload []byte) {
	var evt events.UserRegistered
	if err := json.Unmarshal(payload, &evt); err != nil {
		s.logger.Error().Err(err).Str("topic", events.TopicUserRegister).Msg("undecodable event payload")
		return
	}

	body := fmt.Sprintf("Thanks for registering with TaskFlow. Verify your account with token %s", evt.Token)
	if err := s.mail.Send(ctx, evt.Email, "Welcome to TaskFlow", body); err != nil {
		s.logger.Error().Err(err).Str("email", evt.Email).Msg("verification mail failed")
		return
	}
	s.logger.Info().Str("email", evt.Email).Msg("verification mail sent")
}

// HandleTaskAssigned resolves the assignee's address via users.findById and
// delivers the assignment mail. The lookup goes through the same dispatch
// contract as every other backend call.
func (s *Service) HandleTaskAssigned(ctx context.Context, payload []byte) {
	var evt events.TaskAssigned
	if err := json.Unmarshal(payload, &evt); err != nil {
		s.logger.Error().Err(err).Str("topic", events.TopicTaskAssigned).Msg("undecodable event payload")
		return
	}

	var reply user.GetReply
	if err := s.dispatcher.Send(ctx, "users.findById", map[string]string{"id": evt.UserID}, &reply); err != nil {
		s.logger.Error().Err(err).Str("user_id", evt.UserID).Msg("assignee lookup failed")
		return
	}

	body := fmt.Sprintf("Hi %s, the task %q has been assigned to you", reply.User.Email, evt.Title)
	if err := s.mail.Send(ctx, reply.User.Email, "Task assigned", body); err != nil {
		s.logger.Error().Err(err).Str("email", reply.User.Email).Msg("assignment mail failed")
		return
	}
	s.logger.Info().Str("email", reply.User.Email).Str("task_id", evt.TaskID).Msg("assignment mail sent")
}
