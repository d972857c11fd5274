package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/crmdesk/crm-system/internal/api/middleware"
	"github.com/crmdesk/crm-system/internal/core/domain"
)

func newAuthEcho(stub *stubAuthService, id *domain.Identity) *echo.Echo {
	e := newTestEcho()
	h := NewAuthHandler(stub)
	api := e.Group("/api", withIdentity(id))
	api.POST("/auth/token", h.Token)
	api.GET("/me", h.Me, middleware.RequireAuth())
	api.PUT("/me/password", h.ChangePassword, middleware.RequireAuth())
	return e
}

func TestAuthHandler_Token_Success(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(_ context.Context, username, password string) (*domain.User, error) {
			if username != "admin" || password != "admin" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.User{ID: 1, Username: "admin", Email: "admin@crm.local", PasswordHash: "secret-hash", Role: domain.RoleAdmin}, nil
		},
	}

	rec := doJSON(newAuthEcho(stub, nil), http.MethodPost, "/api/auth/token", `{"username":"admin","password":"admin"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token-for-admin" {
		t.Errorf("token = %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("missing user in response: %v", resp)
	}
	if _, leaked := user["PasswordHash"]; leaked {
		t.Error("password hash must not be serialised")
	}
	if user["role"] != domain.RoleAdmin {
		t.Errorf("role = %v", user["role"])
	}
}

func TestAuthHandler_Token_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(context.Context, string, string) (*domain.User, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}

	rec := doJSON(newAuthEcho(stub, nil), http.MethodPost, "/api/auth/token", `{"username":"admin","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "Invalid username or password." {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestAuthHandler_Token_MissingFields(t *testing.T) {
	stub := &stubAuthService{}
	rec := doJSON(newAuthEcho(stub, nil), http.MethodPost, "/api/auth/token", `{"username":"admin"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "password is required" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	rec := doJSON(newAuthEcho(&stubAuthService{}, userIdentity), http.MethodGet, "/api/me", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got domain.Identity
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got != *userIdentity {
		t.Errorf("got %+v", got)
	}

	rec = doJSON(newAuthEcho(&stubAuthService{}, nil), http.MethodGet, "/api/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	var gotUser int64
	stub := &stubAuthService{
		changePasswordFn: func(_ context.Context, userID int64, current, next string) error {
			gotUser = userID
			switch {
			case current != "old":
				return domain.ErrInvalidCredentials
			case len(next) < 4:
				return domain.NewFieldError("password", "Password must be at least 4 characters.")
			}
			return nil
		},
	}
	e := newAuthEcho(stub, userIdentity)

	rec := doJSON(e, http.MethodPut, "/api/me/password", `{"current_password":"old","new_password":"fresh"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotUser != userIdentity.UserID {
		t.Errorf("changed password of user %d", gotUser)
	}

	rec = doJSON(e, http.MethodPut, "/api/me/password", `{"current_password":"wrong","new_password":"fresh"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("wrong current: expected 400, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPut, "/api/me/password", `{"current_password":"old","new_password":"abc"}`)
	var resp errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusBadRequest || resp.Error != "Password must be at least 4 characters." {
		t.Errorf("short password: got %d %q", rec.Code, resp.Error)
	}
}
