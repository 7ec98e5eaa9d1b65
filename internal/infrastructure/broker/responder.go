package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"taskflow-server/internal/domain/fault"
	"taskflow-server/internal/utils/reqctx"
)

// Request is the decoded command envelope handed to a handler.
type Request struct {
	Command   string
	RequestID string
	CallerID  string
	payload   json.RawMessage
}

// Decode unmarshals the request payload into v. An empty payload leaves v
// untouched.
func (r Request) Decode(v any) error {
	if len(r.payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.payload, v); err != nil {
		return fault.Validation("Your request is invalid")
	}
	return nil
}

// HandlerFunc handles one command. The returned value is marshalled into the
// reply envelope; a returned error is coerced to a fault and encoded as the
// wire error.
type HandlerFunc func(ctx context.Context, req Request) (any, error)

// SubscriberTransport is the slice of the NATS connection the responder needs.
type SubscriberTransport interface {
	QueueSubscribe(subj, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Responder binds command names to handlers on the worker side of the
// broker. Each command gets a queue-group subscription so that exactly one
// worker instance handles a given request.
type Responder struct {
	tr       SubscriberTransport
	queue    string
	logger   zerolog.Logger
	handlers map[string]HandlerFunc
	subs     []*nats.Subscription
}

// NewResponder creates a responder for a service. The queue name scopes the
// queue group, so multiple instances of one service share the load.
func NewResponder(tr SubscriberTransport, queue string, logger zerolog.Logger) *Responder {
	return &Responder{
		tr:       tr,
		queue:    queue,
		logger:   logger,
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers the handler for a command name. A command maps to exactly
// one handler; re-registering is a programming error.
func (r *Responder) Handle(command string, h HandlerFunc) {
	if _, dup := r.handlers[command]; dup {
		panic(fmt.Sprintf("broker: duplicate handler for command %q", command))
	}
	r.handlers[command] = h
}

// Start subscribes every registered command. Handlers run on their own
// goroutine per message, mirroring one-logical-task-per-request.
func (r *Responder) Start() error {
	for command, handler := range r.handlers {
		command, handler := command, handler
		sub, err := r.tr.QueueSubscribe(Subject(command), r.queue, func(msg *nats.Msg) {
			go func() {
				resp := r.process(command, handler, msg.Data)
				if msg.Reply == "" || resp == nil {
					return
				}
				if err := msg.Respond(resp); err != nil {
					r.logger.Error().Err(err).Str("command", command).Msg("reply publish failed")
				}
			}()
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", command, err)
		}
		r.subs = append(r.subs, sub)
		r.logger.Info().Str("command", command).Str("queue", r.queue).Msg("command handler registered")
	}
	return nil
}

// Drain unsubscribes all commands, letting in-flight handlers finish.
func (r *Responder) Drain() {
	for _, sub := range r.subs {
		if err := sub.Drain(); err != nil {
			r.logger.Warn().Err(err).Msg("subscription drain failed")
		}
	}
}

// process decodes the envelope, runs the handler, and encodes the reply.
// It never returns a nil reply for a well-formed request, so every Send gets
// exactly one reply or one error. Panics are contained and reported as
// unknown faults rather than taking the worker down.
func (r *Responder) process(command string, handler HandlerFunc, data []byte) (resp []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.logger.Error().Err(err).Str("command", command).Msg("malformed command envelope")
		return encodeReply(nil, fault.Validation("Your request is invalid"))
	}

	ctx := reqctx.WithRequestID(context.Background(), env.RequestID)
	if env.CallerID != "" {
		ctx = reqctx.WithCallerID(ctx, env.CallerID)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Interface("panic", rec).
				Str("command", command).
				Str("request_id", env.RequestID).
				Msg("handler panicked")
			resp = encodeReply(nil, fault.Unknown(fmt.Errorf("panic: %v", rec), "Internal Server Error"))
		}
	}()

	result, err := handler(ctx, Request{
		Command:   command,
		RequestID: env.RequestID,
		CallerID:  env.CallerID,
		payload:   env.Payload,
	})
	if err != nil {
		f := fault.From(err)
		if !f.Business() {
			r.logger.Error().Err(err).
				Str("command", command).
				Str("request_id", env.RequestID).
				Msg("handler failed")
		}
		return encodeReply(nil, f)
	}
	return encodeReply(result, nil)
}

func encodeReply(result any, f *fault.Fault) []byte {
	var reply replyEnvelope
	if f != nil {
		reply.Error = &wireError{Status: f.Status, Message: f.Message}
	} else if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			reply.Error = &wireError{Status: fault.StatusFor(fault.KindUnknown), Message: "Internal Server Error"}
		} else {
			reply.Data = data
		}
	}
	out, _ := json.Marshal(reply)
	return out
}
