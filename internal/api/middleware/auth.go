package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
)

const (
	ctxIdentity  = "identity"
	ctxSessionID = "session_id"
)

// IdentityFrom returns the caller resolved by Identify, or nil when anonymous.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(ctxIdentity).(*domain.Identity)
	return id
}

// SessionIDFrom returns the session id bound to the request, if any.
func SessionIDFrom(c echo.Context) string {
	id, _ := c.Get(ctxSessionID).(string)
	return id
}

func setIdentity(c echo.Context, id *domain.Identity) { c.Set(ctxIdentity, id) }

func setSessionID(c echo.Context, id string) { c.Set(ctxSessionID, id) }

// Identify resolves the caller once per request. A bearer token takes
// precedence over the session cookie; anything unresolvable leaves the
// request anonymous rather than failing it.
func Identify(auth ports.AuthService, cookie SessionCookie, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c); ok {
				if id, err := auth.ParseToken(token); err == nil {
					setIdentity(c, id)
				}
				return next(c)
			}

			sid := cookie.Read(c)
			if sid == "" {
				return next(c)
			}

			sess, err := auth.Resolve(c.Request().Context(), sid)
			switch {
			case err == nil:
				setSessionID(c, sess.ID)
				if sess.Authenticated() {
					setIdentity(c, &domain.Identity{UserID: sess.UserID, Username: sess.Username, Role: sess.Role})
				}
			case errors.Is(err, domain.ErrSessionNotFound):
				cookie.Clear(c)
			default:
				log.Error().Err(err).Msg("resolve session")
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
