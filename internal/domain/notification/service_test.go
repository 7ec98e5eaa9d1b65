package notification_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"taskflow-server/internal/domain/fault"
	"taskflow-server/internal/domain/notification"
	"taskflow-server/internal/domain/user"
	"taskflow-server/internal/infrastructure/events"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type mockDispatcher struct {
	SendFunc func(ctx context.Context, command string, payload any) (any, error)
}

func (m *mockDispatcher) Send(ctx context.Context, command string, payload any, out any) error {
	result, err := m.SendFunc(ctx, command, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (m *mockDispatcher) Emit(context.Context, string, any) error { return nil }

func marshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestHandleUserRegisterSendsVerificationMail(t *testing.T) {
	mail := &fakeMailer{}
	svc := notification.NewService(&mockDispatcher{}, mail, zerolog.Nop())

	svc.HandleUserRegister(context.Background(), marshal(t, events.UserRegistered{
		Email: "new@b.c",
		Token: "tok-123",
	}))

	if len(mail.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mail.sent))
	}
	if mail.sent[0].to != "new@b.c" {
		t.Errorf("to = %q", mail.sent[0].to)
	}
	if !strings.Contains(mail.sent[0].body, "tok-123") {
		t.Errorf("body %q must carry the verification token", mail.sent[0].body)
	}
}

func TestHandleUserRegisterBadPayload(t *testing.T) {
	mail := &fakeMailer{}
	svc := notification.NewService(&mockDispatcher{}, mail, zerolog.Nop())

	svc.HandleUserRegister(context.Background(), []byte("not json"))

	if len(mail.sent) != 0 {
		t.Error("undecodable event must not send mail")
	}
}

func TestHandleTaskAssignedResolvesRecipient(t *testing.T) {
	mail := &fakeMailer{}
	d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
		if command != "users.findById" {
			t.Errorf("command = %q", command)
		}
		return user.GetReply{
			Status: "success",
			User:   user.Public{ID: "u-2", Email: "assignee@b.c", Role: "user"},
		}, nil
	}}
	svc := notification.NewService(d, mail, zerolog.Nop())

	svc.HandleTaskAssigned(context.Background(), marshal(t, events.TaskAssigned{
		UserID: "u-2",
		TaskID: "t-1",
		Title:  "Ship it",
	}))

	if len(mail.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mail.sent))
	}
	if mail.sent[0].to != "assignee@b.c" {
		t.Errorf("to = %q", mail.sent[0].to)
	}
	if !strings.Contains(mail.sent[0].body, "Ship it") {
		t.Errorf("body %q must carry the task title", mail.sent[0].body)
	}
}

func TestHandleTaskAssignedUnknownUser(t *testing.T) {
	mail := &fakeMailer{}
	d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
		return nil, fault.NotFound("User not found")
	}}
	svc := notification.NewService(d, mail, zerolog.Nop())

	svc.HandleTaskAssigned(context.Background(), marshal(t, events.TaskAssigned{UserID: "ghost", TaskID: "t-1"}))

	if len(mail.sent) != 0 {
		t.Error("failed lookup must not send mail")
	}
}
