package middleware

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
)

func TestIdentify_SessionCookie(t *testing.T) {
	auth := newStubAuth()
	auth.sessions["s1"] = &ports.Session{ID: "s1", UserID: 3, Username: "bob", Role: domain.RoleUser}

	c, _ := newContext(http.MethodGet, "/")
	c.Request().AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "s1"})

	var got *domain.Identity
	mw := Identify(auth, SessionCookie{}, zerolog.Nop())
	err := mw(func(c echo.Context) error {
		got = IdentityFrom(c)
		return nil
	})(c)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got == nil || got.UserID != 3 || got.Username != "bob" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if SessionIDFrom(c) != "s1" {
		t.Errorf("session id = %q", SessionIDFrom(c))
	}
}

func TestIdentify_AnonymousSessionCarriesNoIdentity(t *testing.T) {
	auth := newStubAuth()
	auth.sessions["anon"] = &ports.Session{ID: "anon"}

	c, _ := newContext(http.MethodGet, "/")
	c.Request().AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "anon"})

	mw := Identify(auth, SessionCookie{}, zerolog.Nop())
	_ = mw(func(c echo.Context) error { return nil })(c)

	if IdentityFrom(c) != nil {
		t.Errorf("anonymous session must not produce an identity")
	}
	if SessionIDFrom(c) != "anon" {
		t.Errorf("anonymous session id should still be bound")
	}
}

func TestIdentify_ExpiredCookieIsCleared(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")
	c.Request().AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "gone"})

	mw := Identify(newStubAuth(), SessionCookie{}, zerolog.Nop())
	_ = mw(func(c echo.Context) error { return nil })(c)

	if IdentityFrom(c) != nil {
		t.Error("expected anonymous request")
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Errorf("expected cookie to be cleared, got %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestIdentify_BearerToken(t *testing.T) {
	auth := newStubAuth()
	auth.tokens["tok"] = &domain.Identity{UserID: 1, Username: "admin", Role: domain.RoleAdmin}

	c, _ := newContext(http.MethodGet, "/api/me")
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer tok")

	mw := Identify(auth, SessionCookie{}, zerolog.Nop())
	_ = mw(func(c echo.Context) error { return nil })(c)

	if id := IdentityFrom(c); id == nil || !id.IsAdmin() {
		t.Fatalf("expected admin identity, got %+v", id)
	}
}

func TestIdentify_InvalidBearerIsAnonymous(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/me")
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer nope")

	called := false
	mw := Identify(newStubAuth(), SessionCookie{}, zerolog.Nop())
	_ = mw(func(c echo.Context) error {
		called = true
		return nil
	})(c)

	if !called {
		t.Fatal("next handler not called")
	}
	if IdentityFrom(c) != nil {
		t.Error("invalid token must not authenticate")
	}
}

func TestSessions_BeginDropsPreviousSession(t *testing.T) {
	auth := newStubAuth()
	auth.sessions["anon"] = &ports.Session{ID: "anon"}
	s := &Sessions{Auth: auth, Flashes: newStubFlashes()}

	c, rec := newContext(http.MethodPost, "/login")
	setSessionID(c, "anon")

	if err := s.Begin(c, &ports.Session{ID: "fresh", UserID: 9, Username: "alice", Role: domain.RoleUser}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if len(auth.loggedOut) != 1 || auth.loggedOut[0] != "anon" {
		t.Errorf("previous session not destroyed: %v", auth.loggedOut)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "crm_session=fresh") {
		t.Errorf("cookie not written: %q", rec.Header().Get("Set-Cookie"))
	}
	if id := IdentityFrom(c); id == nil || id.UserID != 9 {
		t.Errorf("identity not bound: %+v", id)
	}
}
