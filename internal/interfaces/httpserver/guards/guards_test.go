package guards_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"taskflow-server/internal/domain"
	"taskflow-server/internal/domain/fault"
	"taskflow-server/internal/domain/task"
	"taskflow-server/internal/domain/user"
	"taskflow-server/internal/interfaces/httpserver/guards"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockDispatcher routes Send calls to per-command functions and decodes the
// result into the caller's out value.
type mockDispatcher struct {
	SendFunc func(ctx context.Context, command string, payload any) (any, error)
	sent     []string
}

func (m *mockDispatcher) Send(ctx context.Context, command string, payload any, out any) error {
	m.sent = append(m.sent, command)
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

func verifyTokenOK(p domain.Principal) func(ctx context.Context, command string, payload any) (any, error) {
	return func(ctx context.Context, command string, payload any) (any, error) {
		if command != "auth.verify-token" {
			return nil, fault.NotFound("unexpected command " + command)
		}
		return user.SessionReply{
			Status: "success",
			Token:  "renewed-token",
			User:   user.Public{ID: p.ID, Email: p.Email, Role: p.Role},
		}, nil
	}
}

func serve(t *testing.T, chain gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.GET("/tasks/:id", chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func authedRequest(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer some-token")
	return req
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) (status, message string) {
	t.Helper()
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body %q: %v", rec.Body.String(), err)
	}
	return body.Status, body.Message
}

func TestAuthenticateMissingToken(t *testing.T) {
	d := &mockDispatcher{SendFunc: verifyTokenOK(domain.Principal{ID: "u-1", Role: domain.RoleUser})}
	chain := guards.Chain(guards.Authenticate(d))

	req := httptest.NewRequest(http.MethodGet, "/tasks/t-1", nil)
	rec := serve(t, chain, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
	status, message := envelope(t, rec)
	if status != "fail" || message != "Unauthorized" {
		t.Errorf("envelope = %s/%s", status, message)
	}
	if len(d.sent) != 0 {
		t.Error("missing token must be rejected without an RPC")
	}
}

func TestAuthenticateSetsRenewedToken(t *testing.T) {
	p := domain.Principal{ID: "u-1", Email: "a@b.c", Role: domain.RoleAdmin}
	d := &mockDispatcher{SendFunc: verifyTokenOK(p)}
	chain := guards.Chain(guards.Authenticate(d))

	rec := serve(t, chain, authedRequest("/tasks/t-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Renewed-Token"); got != "renewed-token" {
		t.Errorf("X-Renewed-Token = %q", got)
	}
}

func TestAuthenticateTransportFailure(t *testing.T) {
	d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
		return nil, fault.Transport(context.DeadlineExceeded, "Service timed out")
	}}
	chain := guards.Chain(guards.Authenticate(d))

	rec := serve(t, chain, authedRequest("/tasks/t-1"))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("code = %d, want 502", rec.Code)
	}
	status, _ := envelope(t, rec)
	if status != "error" {
		t.Errorf("status word = %q, want error for 5xx", status)
	}
}

func TestRoleDenialRunsBeforeOwnership(t *testing.T) {
	p := domain.Principal{ID: "u-1", Role: domain.RoleUser}
	taskLookups := 0
	d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
		if command == "tasks.findOne" {
			taskLookups++
		}
		return verifyTokenOK(p)(ctx, command, payload)
	}}
	chain := guards.Chain(
		guards.Authenticate(d),
		guards.RequireRoles(domain.RoleAdmin, domain.RoleManager),
		guards.TaskAccess(d),
	)

	rec := serve(t, chain, authedRequest("/tasks/t-1"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", rec.Code)
	}
	_, message := envelope(t, rec)
	if message != "Not authorized" {
		t.Errorf("message = %q", message)
	}
	if taskLookups != 0 {
		t.Error("ownership stage must not run after a role denial")
	}
}

func TestTaskAccessMatrix(t *testing.T) {
	stored := task.Task{ID: "t-1", Title: "Ship it", AuthorID: "author-1", AssignedUserID: "assignee-1"}

	tests := []struct {
		name      string
		principal domain.Principal
		wantCode  int
	}{
		{"admin any task", domain.Principal{ID: "someone", Role: domain.RoleAdmin}, http.StatusOK},
		{"manager author", domain.Principal{ID: "author-1", Role: domain.RoleManager}, http.StatusOK},
		{"manager assignee", domain.Principal{ID: "assignee-1", Role: domain.RoleManager}, http.StatusOK},
		{"manager stranger", domain.Principal{ID: "stranger", Role: domain.RoleManager}, http.StatusForbidden},
		{"user assignee", domain.Principal{ID: "assignee-1", Role: domain.RoleUser}, http.StatusOK},
		{"user author only", domain.Principal{ID: "author-1", Role: domain.RoleUser}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
				if command == "tasks.findOne" {
					return task.OneReply{Status: "success", Task: &stored}, nil
				}
				return verifyTokenOK(tt.principal)(ctx, command, payload)
			}}
			chain := guards.Chain(guards.Authenticate(d), guards.TaskAccess(d))

			rec := serve(t, chain, authedRequest("/tasks/t-1"))
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusForbidden {
				_, message := envelope(t, rec)
				if message != "You don't have permission to access this task" {
					t.Errorf("message = %q", message)
				}
			}
		})
	}
}

func TestTaskAccessUnknownTask(t *testing.T) {
	p := domain.Principal{ID: "u-1", Role: domain.RoleUser}
	d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
		if command == "tasks.findOne" {
			return nil, fault.NotFound("Task not found")
		}
		return verifyTokenOK(p)(ctx, command, payload)
	}}
	chain := guards.Chain(guards.Authenticate(d), guards.TaskAccess(d))

	rec := serve(t, chain, authedRequest("/tasks/ghost"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404 before any permission verdict", rec.Code)
	}
	_, message := envelope(t, rec)
	if message != "Task not found" {
		t.Errorf("message = %q", message)
	}
}

func TestTaskAccessAdminSkipsLookup(t *testing.T) {
	d := &mockDispatcher{SendFunc: verifyTokenOK(domain.Principal{ID: "u-1", Role: domain.RoleAdmin})}
	chain := guards.Chain(guards.Authenticate(d), guards.TaskAccess(d))

	rec := serve(t, chain, authedRequest("/tasks/t-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	for _, cmd := range d.sent {
		if cmd == "tasks.findOne" {
			t.Error("admin access must not fetch the task")
		}
	}
}

func TestOwnOrElevated(t *testing.T) {
	tests := []struct {
		name      string
		principal domain.Principal
		wantCode  int
	}{
		{"admin other user", domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}, http.StatusOK},
		{"manager other user", domain.Principal{ID: "manager-1", Role: domain.RoleManager}, http.StatusOK},
		{"user own id", domain.Principal{ID: "t-1", Role: domain.RoleUser}, http.StatusOK},
		{"user other id", domain.Principal{ID: "someone-else", Role: domain.RoleUser}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &mockDispatcher{SendFunc: verifyTokenOK(tt.principal)}
			chain := guards.Chain(guards.Authenticate(d), guards.OwnOrElevated())

			rec := serve(t, chain, authedRequest("/tasks/t-1"))
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestAuthorOrAdmin(t *testing.T) {
	tests := []struct {
		name      string
		principal domain.Principal
		wantCode  int
	}{
		{"admin any author", domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}, http.StatusOK},
		{"manager own id", domain.Principal{ID: "t-1", Role: domain.RoleManager}, http.StatusOK},
		{"manager other id", domain.Principal{ID: "manager-2", Role: domain.RoleManager}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &mockDispatcher{SendFunc: verifyTokenOK(tt.principal)}
			chain := guards.Chain(guards.Authenticate(d), guards.AuthorOrAdmin())

			rec := serve(t, chain, authedRequest("/tasks/t-1"))
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestUserExists(t *testing.T) {
	p := domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}
	d := &mockDispatcher{SendFunc: func(ctx context.Context, command string, payload any) (any, error) {
		if command == "users.findById" {
			return nil, fault.NotFound("User not found")
		}
		return verifyTokenOK(p)(ctx, command, payload)
	}}
	chain := guards.Chain(guards.Authenticate(d), guards.UserExists(d, "id"))

	rec := serve(t, chain, authedRequest("/tasks/ghost"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
	_, message := envelope(t, rec)
	if message != "User not found" {
		t.Errorf("message = %q", message)
	}
}
