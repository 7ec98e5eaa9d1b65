package broker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"taskflow-server/internal/domain/fault"
	"taskflow-server/internal/utils/reqctx"
)

func requestData(t *testing.T, command, requestID, callerID string, payload any) []byte {
	t.Helper()
	env := Envelope{Command: command, RequestID: requestID, CallerID: callerID}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		env.Payload = b
	}
	b, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return b
}

func decodeReplyData(t *testing.T, raw []byte) replyEnvelope {
	t.Helper()
	var reply replyEnvelope
	if err := json.Unmarshal(raw, &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	return reply
}

func TestProcessSuccess(t *testing.T) {
	r := NewResponder(nil, "test", zerolog.Nop())
	handler := func(ctx context.Context, req Request) (any, error) {
		if got := reqctx.RequestID(ctx); got != "req-1" {
			t.Errorf("request id in ctx = %q, want req-1", got)
		}
		if got := reqctx.CallerID(ctx); got != "u-9" {
			t.Errorf("caller id in ctx = %q, want u-9", got)
		}
		var in map[string]string
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		return map[string]string{"echo": in["id"]}, nil
	}

	raw := r.process("users.findById", handler, requestData(t, "users.findById", "req-1", "u-9", map[string]string{"id": "x"}))
	reply := decodeReplyData(t, raw)
	if reply.Error != nil {
		t.Fatalf("unexpected error reply: %+v", reply.Error)
	}
	var out map[string]string
	if err := json.Unmarshal(reply.Data, &out); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if out["echo"] != "x" {
		t.Errorf("data = %v", out)
	}
}

func TestProcessBusinessFault(t *testing.T) {
	r := NewResponder(nil, "test", zerolog.Nop())
	handler := func(ctx context.Context, req Request) (any, error) {
		return nil, fault.NotFound("Task not found")
	}

	raw := r.process("tasks.findOne", handler, requestData(t, "tasks.findOne", "req-1", "", nil))
	reply := decodeReplyData(t, raw)
	if reply.Error == nil {
		t.Fatal("expected error reply")
	}
	if reply.Error.Status != 404 || reply.Error.Message != "Task not found" {
		t.Errorf("wire error = %+v", reply.Error)
	}
}

func TestProcessUnexpectedErrorHidesInternals(t *testing.T) {
	r := NewResponder(nil, "test", zerolog.Nop())
	handler := func(ctx context.Context, req Request) (any, error) {
		return nil, context.DeadlineExceeded
	}

	raw := r.process("tasks.findOne", handler, requestData(t, "tasks.findOne", "req-1", "", nil))
	reply := decodeReplyData(t, raw)
	if reply.Error == nil {
		t.Fatal("expected error reply")
	}
	if reply.Error.Status != 500 || reply.Error.Message != "Internal Server Error" {
		t.Errorf("wire error = %+v, internals must not leak", reply.Error)
	}
}

func TestProcessPanicRecovery(t *testing.T) {
	r := NewResponder(nil, "test", zerolog.Nop())
	handler := func(ctx context.Context, req Request) (any, error) {
		panic("boom")
	}

	raw := r.process("tasks.findOne", handler, requestData(t, "tasks.findOne", "req-1", "", nil))
	reply := decodeReplyData(t, raw)
	if reply.Error == nil {
		t.Fatal("a panicking handler must still reply")
	}
	if reply.Error.Status != 500 {
		t.Errorf("status = %d, want 500", reply.Error.Status)
	}
}

func TestProcessMalformedEnvelope(t *testing.T) {
	r := NewResponder(nil, "test", zerolog.Nop())
	handler := func(ctx context.Context, req Request) (any, error) {
		t.Fatal("handler must not run for a malformed envelope")
		return nil, nil
	}

	raw := r.process("tasks.findOne", handler, []byte("not json"))
	reply := decodeReplyData(t, raw)
	if reply.Error == nil || reply.Error.Status != 400 {
		t.Errorf("reply = %+v, want 400 wire error", reply.Error)
	}
}

func TestDecodeBadPayload(t *testing.T) {
	req := Request{payload: json.RawMessage(`{"limit": "ten"}`)}
	var in struct {
		Limit int `json:"limit"`
	}
	err := req.Decode(&in)
	f := fault.From(err)
	if f.Kind != fault.KindValidation {
		t.Errorf("kind = %s, want %s", f.Kind, fault.KindValidation)
	}
}

func TestHandleDuplicatePanics(t *testing.T) {
	r := NewResponder(nil, "test", zerolog.Nop())
	r.Handle("auth.login", func(ctx context.Context, req Request) (any, error) { return nil, nil })

	defer func() {
		if recover() == nil {
			t.Error("duplicate registration must panic")
		}
	}()
	r.Handle("auth.login", func(ctx context.Context, req Request) (any, error) { return nil, nil })
}
