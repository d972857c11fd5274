package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/crmdesk/crm-system/internal/core/domain"
)

func TestRBAC_Allows(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/customers")
	setIdentity(c, &domain.Identity{UserID: 1, Role: domain.RoleAdmin})

	called := false
	if err := RequireAdmin()(okHandler(&called))(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_ForbidsNonAdminAndAnonymous(t *testing.T) {
	cases := map[string]*domain.Identity{
		"anonymous": nil,
		"user":      {UserID: 2, Role: domain.RoleUser},
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			c, rec := newContext(http.MethodPost, "/api/customers")
			if id != nil {
				setIdentity(c, id)
			}

			called := false
			_ = RequireAdmin()(okHandler(&called))(c)
			if called {
				t.Fatal("should not reach next handler")
			}
			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
			var body map[string]string
			_ = json.Unmarshal(rec.Body.Bytes(), &body)
			if body["error"] != "Admin access required." {
				t.Errorf("unexpected body: %v", body)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/me")
	called := false
	_ = RequireAuth()(okHandler(&called))(c)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (called=%v)", rec.Code, called)
	}
}

func TestLoginRequired_RedirectsWithNext(t *testing.T) {
	flashes := newStubFlashes()
	s := &Sessions{Auth: newStubAuth(), Flashes: flashes}

	c, rec := newContext(http.MethodGet, "/customers?page=2")
	called := false
	if err := s.LoginRequired()(okHandler(&called))(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if called {
		t.Fatal("anonymous visitor reached the page")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fcustomers%3Fpage%3D2" {
		t.Errorf("location = %q", loc)
	}
	got := flashes.added[SessionIDFrom(c)]
	if len(got) != 1 || got[0].Message != "Please log in to access this page." {
		t.Errorf("unexpected flashes: %+v", got)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), DefaultCookieName) {
		t.Error("anonymous flash session cookie not written")
	}
}

func TestAdminRequired_NonAdminGoesHome(t *testing.T) {
	flashes := newStubFlashes()
	s := &Sessions{Auth: newStubAuth(), Flashes: flashes}

	c, rec := newContext(http.MethodGet, "/customers/add")
	setSessionID(c, "s1")
	setIdentity(c, &domain.Identity{UserID: 2, Role: domain.RoleUser})

	called := false
	_ = s.AdminRequired()(okHandler(&called))(c)
	if called {
		t.Fatal("non-admin reached admin page")
	}
	if rec.Header().Get("Location") != "/" {
		t.Errorf("location = %q", rec.Header().Get("Location"))
	}
	if got := flashes.added["s1"]; len(got) != 1 || got[0].Message != "Admin access required." {
		t.Errorf("unexpected flashes: %+v", got)
	}
}

func TestAdminRequired_AnonymousGoesToLogin(t *testing.T) {
	s := &Sessions{Auth: newStubAuth(), Flashes: newStubFlashes()}

	c, rec := newContext(http.MethodGet, "/leads/add")
	called := false
	_ = s.AdminRequired()(okHandler(&called))(c)
	if !strings.HasPrefix(rec.Header().Get("Location"), "/login?next=") {
		t.Errorf("location = %q", rec.Header().Get("Location"))
	}
}

func TestAdminRequired_AdminPasses(t *testing.T) {
	s := &Sessions{Auth: newStubAuth(), Flashes: newStubFlashes()}

	c, rec := newContext(http.MethodGet, "/leads/add")
	setIdentity(c, &domain.Identity{UserID: 1, Role: domain.RoleAdmin})
	called := false
	_ = s.AdminRequired()(okHandler(&called))(c)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("admin blocked: code=%d", rec.Code)
	}
}
