// Package broker implements the command-based RPC contract between the
// gateway and the backend workers. A command is a plain subject on the
// message broker; requests carry a correlated envelope and replies carry
// either a data payload or a status/message error pair.
package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"taskflow-server/internal/utils/reqctx"
)

const subjectPrefix = "rpc."

// Subject returns the broker subject for a command name.
func Subject(command string) string {
	return subjectPrefix + command
}

// Envelope is the wire form of an outbound command. It is built once per
// call and never mutated after being sent.
type Envelope struct {
	Command   string          `json:"command"`
	RequestID string          `json:"requestId"`
	CallerID  string          `json:"callerId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// wireError is the reply-side encoding of a handler fault.
type wireError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// replyEnvelope is the wire form of an RPC reply: exactly one of Data or
// Error is set.
type replyEnvelope struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *wireError      `json:"error,omitempty"`
}

// newEnvelope marshals the payload and attaches correlation metadata from
// the context. A request id is generated when the context carries none so
// that every envelope is traceable.
func newEnvelope(ctx context.Context, command string, payload any) (*Envelope, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", command, err)
		}
		raw = b
	}

	requestID := reqctx.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	return &Envelope{
		Command:   command,
		RequestID: requestID,
		CallerID:  reqctx.CallerID(ctx),
		Payload:   raw,
	}, nil
}
