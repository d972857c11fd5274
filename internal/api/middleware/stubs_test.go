package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
)

type stubAuth struct {
	sessions  map[string]*ports.Session
	tokens    map[string]*domain.Identity
	loggedOut []string
}

func newStubAuth() *stubAuth {
	return &stubAuth{sessions: map[string]*ports.Session{}, tokens: map[string]*domain.Identity{}}
}

func (s *stubAuth) Authenticate(context.Context, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (s *stubAuth) Login(context.Context, string, string) (*ports.Session, error) {
	return nil, errors.New("not implemented")
}
func (s *stubAuth) GuestLogin(context.Context) (*ports.Session, error) {
	return nil, errors.New("not implemented")
}
func (s *stubAuth) Register(context.Context, ports.RegisterInput) (*ports.Session, error) {
	return nil, errors.New("not implemented")
}
func (s *stubAuth) Logout(_ context.Context, id string) error {
	s.loggedOut = append(s.loggedOut, id)
	delete(s.sessions, id)
	return nil
}
func (s *stubAuth) Resolve(_ context.Context, id string) (*ports.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}
func (s *stubAuth) SetPassword(context.Context, int64, string) error { return nil }
func (s *stubAuth) ChangePassword(context.Context, int64, string, string) error {
	return nil
}
func (s *stubAuth) IssueToken(*domain.User) (string, error) { return "", nil }
func (s *stubAuth) ParseToken(token string) (*domain.Identity, error) {
	id, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return id, nil
}

type stubFlashes struct {
	added map[string][]ports.Flash
	next  int
}

func newStubFlashes() *stubFlashes {
	return &stubFlashes{added: map[string][]ports.Flash{}}
}

func (f *stubFlashes) AddFlash(_ context.Context, sid string, fl ports.Flash) (string, error) {
	if sid == "" {
		f.next++
		sid = "anon-" + string(rune('0'+f.next))
	}
	f.added[sid] = append(f.added[sid], fl)
	return sid, nil
}

func (f *stubFlashes) PopFlashes(_ context.Context, sid string) ([]ports.Flash, error) {
	out := f.added[sid]
	delete(f.added, sid)
	return out, nil
}

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(called *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*called = true
		return c.NoContent(http.StatusOK)
	}
}
