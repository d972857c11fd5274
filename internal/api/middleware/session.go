package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
)

const DefaultCookieName = "crm_session"

// SessionCookie describes the cookie carrying the session id.
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

func (sc SessionCookie) name() string {
	if sc.Name == "" {
		return DefaultCookieName
	}
	return sc.Name
}

func (sc SessionCookie) Read(c echo.Context) string {
	ck, err := c.Cookie(sc.name())
	if err != nil {
		return ""
	}
	return ck.Value
}

func (sc SessionCookie) Write(c echo.Context, id string) {
	c.SetCookie(&http.Cookie{
		Name:     sc.name(),
		Value:    id,
		Path:     "/",
		MaxAge:   int(sc.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (sc SessionCookie) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sc.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Sessions binds the session cookie to the auth and flash services for the
// server-rendered pages.
type Sessions struct {
	Auth    ports.AuthService
	Flashes ports.FlashService
	Cookie  SessionCookie
}

// Begin binds a freshly started session to the response. Any previous
// session on the request is destroyed so its id is never reused.
func (s *Sessions) Begin(c echo.Context, sess *ports.Session) error {
	if old := SessionIDFrom(c); old != "" && old != sess.ID {
		if err := s.Auth.Logout(c.Request().Context(), old); err != nil {
			return err
		}
	}
	s.Cookie.Write(c, sess.ID)
	setSessionID(c, sess.ID)
	setIdentity(c, &domain.Identity{UserID: sess.UserID, Username: sess.Username, Role: sess.Role})
	return nil
}

// End destroys the current session and clears the cookie.
func (s *Sessions) End(c echo.Context) error {
	if err := s.Auth.Logout(c.Request().Context(), SessionIDFrom(c)); err != nil {
		return err
	}
	s.Cookie.Clear(c)
	setSessionID(c, "")
	setIdentity(c, nil)
	return nil
}

// Flash queues a message for the next rendered page.
func (s *Sessions) Flash(c echo.Context, category, message string) error {
	sid, err := s.Flashes.AddFlash(c.Request().Context(), SessionIDFrom(c), ports.Flash{Category: category, Message: message})
	if err != nil {
		return err
	}
	if sid != SessionIDFrom(c) {
		s.Cookie.Write(c, sid)
		setSessionID(c, sid)
	}
	return nil
}

// PopFlashes drains the messages queued on the current session.
func (s *Sessions) PopFlashes(c echo.Context) ([]ports.Flash, error) {
	return s.Flashes.PopFlashes(c.Request().Context(), SessionIDFrom(c))
}
