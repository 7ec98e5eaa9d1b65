package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"taskflow-server/internal/domain/fault"
	"taskflow-server/internal/infrastructure/metrics"
)

// Dispatcher sends command envelopes to backend services. Send blocks until
// exactly one reply or one failure arrives; Emit is fire-and-forget.
type Dispatcher interface {
	Send(ctx context.Context, command string, payload any, out any) error
	Emit(ctx context.Context, command string, payload any) error
}

// Transport is the narrow slice of the NATS connection the dispatcher needs.
// Wrapping it keeps the dispatcher testable without a broker.
type Transport interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
	Publish(subj string, data []byte) error
}

// NATSDispatcher implements Dispatcher over a shared broker connection. It is
// safe for concurrent use from multiple request goroutines.
type NATSDispatcher struct {
	tr      Transport
	timeout time.Duration
	logger  zerolog.Logger
}

var _ Dispatcher = (*NATSDispatcher)(nil)

// NewDispatcher builds a dispatcher with a per-call request timeout. The
// timeout bounds how long a caller can be parked on a backend that never
// replies.
func NewDispatcher(tr Transport, timeout time.Duration, logger zerolog.Logger) *NATSDispatcher {
	return &NATSDispatcher{tr: tr, timeout: timeout, logger: logger}
}

// Send dispatches a command and decodes the single reply into out (which may
// be nil when the caller only cares about success). The returned error is
// always a *fault.Fault: business faults keep the handler's status and
// message, transport problems surface as KindTransport, and undecodable
// replies as KindUnknown.
func (d *NATSDispatcher) Send(ctx context.Context, command string, payload any, out any) error {
	env, err := newEnvelope(ctx, command, payload)
	if err != nil {
		return fault.Unknown(err, "Internal Server Error")
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fault.Unknown(err, "Internal Server Error")
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	msg, err := d.tr.RequestWithContext(ctx, Subject(command), data)
	if err != nil {
		metrics.RecordRPC(command, "transport")
		d.logger.Error().Err(err).
			Str("command", command).
			Str("request_id", env.RequestID).
			Msg("rpc transport failure")
		if errors.Is(err, nats.ErrNoResponders) {
			return fault.Transport(err, "Service unavailable")
		}
		if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return fault.Transport(err, "Service timed out")
		}
		return fault.Transport(err, "Service unavailable")
	}

	var reply replyEnvelope
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		metrics.RecordRPC(command, "unknown")
		d.logger.Error().Err(err).
			Str("command", command).
			Str("request_id", env.RequestID).
			Msg("rpc reply is not a valid envelope")
		return fault.Unknown(err, "Internal Server Error")
	}

	if reply.Error != nil {
		metrics.RecordRPC(command, "business")
		return fault.FromStatus(reply.Error.Status, reply.Error.Message)
	}

	if out != nil && len(reply.Data) > 0 {
		if err := json.Unmarshal(reply.Data, out); err != nil {
			metrics.RecordRPC(command, "unknown")
			return fault.Unknown(err, "Internal Server Error")
		}
	}

	metrics.RecordRPC(command, "ok")
	return nil
}

// Emit publishes a command without expecting a reply. Failures are logged
// and swallowed: a missing or slow subscriber must never fail the caller.
func (d *NATSDispatcher) Emit(ctx context.Context, command string, payload any) error {
	env, err := newEnvelope(ctx, command, payload)
	if err != nil {
		d.logger.Error().Err(err).Str("command", command).Msg("emit payload marshal failed")
		return nil
	}
	data, err := json.Marshal(env)
	if err != nil {
		d.logger.Error().Err(err).Str("command", command).Msg("emit envelope marshal failed")
		return nil
	}

	if err := d.tr.Publish(Subject(command), data); err != nil {
		d.logger.Warn().Err(err).
			Str("command", command).
			Str("request_id", env.RequestID).
			Msg("emit publish failed")
	}
	return nil
}
