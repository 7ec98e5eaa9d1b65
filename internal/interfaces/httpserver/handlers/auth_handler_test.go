package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskflow-server/internal/domain/fault"
	"taskflow-server/internal/domain/user"
	"taskflow-server/internal/interfaces/httpserver/handlers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockDispatcher struct {
	SendFunc func(ctx context.Context, command string, payload any) (any, error)
	commands []string
}

func (m *mockDispatcher) Send(ctx context.Context, command string, payload any, out any) error {
	m.commands = append(m.commands, command)
	result, err := m.SendFunc(ctx, command, payload)
	if err != nil {
		return err
	}
	if out == nil || result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (m *mockDispatcher) Emit(context.Context, string, any) error { return nil }

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func authRouter(d *mockDispatcher) *gin.Engine {
	h := handlers.NewAuthHandler(d, zerolog.Nop())
	router := gin.New()
	router.POST("/api/auth/register", h.Register)
	router.POST("/api/auth/login", h.Login)
	router.GET("/api/auth/verify/:token", h.VerifyAccount)
	return router
}

func TestRegisterSuccess(t *testing.T) {
	d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
		if command != "auth.create" {
			t.Errorf("command = %q", command)
		}
		in, ok := payload.(user.CreateInput)
		if !ok {
			t.Fatalf("payload type %T", payload)
		}
		if in.Email != "a@b.c" {
			t.Errorf("email = %q", in.Email)
		}
		return user.StatusReply{Status: "success", Message: "Create user successfully"}, nil
	}}

	rec := postJSON(t, authRouter(d), "/api/auth/register", `{"email":"a@b.c","password":"hunter2hunter2"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
		t.Fatal("invalid body must never reach the dispatcher")
		return nil, nil
	}}

	rec := postJSON(t, authRouter(d), "/api/auth/register", `{"email":"not-an-email","password":"short"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "fail" || body.Message != "Your request is invalid" {
		t.Errorf("envelope = %+v", body)
	}
	if len(body.Details) != 2 {
		t.Errorf("details = %+v, want one per invalid field", body.Details)
	}
}

func TestLoginBusinessError(t *testing.T) {
	d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
		return nil, fault.Validation("Email or password incorrect")
	}}

	rec := postJSON(t, authRouter(d), "/api/auth/login", `{"email":"a@b.c","password":"wrong-password"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", rec.Code)
	}
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "fail" || body.Message != "Email or password incorrect" {
		t.Errorf("envelope = %+v", body)
	}
}

func TestLoginTransportFailure(t *testing.T) {
	d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
		return nil, fault.Transport(context.DeadlineExceeded, "Service timed out")
	}}

	rec := postJSON(t, authRouter(d), "/api/auth/login", `{"email":"a@b.c","password":"hunter2hunter2"}`)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("code = %d", rec.Code)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != "error" {
		t.Errorf("status word = %q, want error for 5xx", body.Status)
	}
}

func TestVerifyAccountPassesToken(t *testing.T) {
	d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
		if command != "auth.verify-account" {
			t.Errorf("command = %q", command)
		}
		m, ok := payload.(map[string]string)
		if !ok || m["token"] != "tok-123" {
			t.Errorf("payload = %v", payload)
		}
		return user.StatusReply{Status: "success", Message: "Account verified"}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify/tok-123", nil)
	rec := httptest.NewRecorder()
	authRouter(d).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
}
