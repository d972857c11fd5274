package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/pkg/metrics"
)

const (
	FlashError   = "error"
	FlashSuccess = "success"
	FlashInfo    = "info"

	msgLoginRequired = "Please log in to access this page."
)

// RBAC rejects API callers whose role is not allowed. Anonymous callers get
// the same 403 as callers with the wrong role.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var role string
			if id := IdentityFrom(c); id != nil {
				role = id.Role
			}
			if _, ok := allowed[role]; !ok {
				metrics.AuthorizationDeniedTotal.WithLabelValues("api").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": domain.ErrForbidden.Error()})
			}
			return next(c)
		}
	}
}

// RequireAdmin is RBAC restricted to the admin role.
func RequireAdmin() echo.MiddlewareFunc {
	return RBAC(domain.RoleAdmin)
}

// RequireAuth rejects anonymous API callers with 401.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFrom(c) == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authentication required."})
			}
			return next(c)
		}
	}
}

// LoginRequired redirects anonymous visitors to the login page, remembering
// where they were headed.
func (s *Sessions) LoginRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFrom(c) != nil {
				return next(c)
			}
			return s.redirectToLogin(c)
		}
	}
}

// AdminRequired sends anonymous visitors to login and non-admins back to the
// dashboard with a flash.
func (s *Sessions) AdminRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c)
			if id == nil {
				return s.redirectToLogin(c)
			}
			if !id.IsAdmin() {
				metrics.AuthorizationDeniedTotal.WithLabelValues("ui").Inc()
				if err := s.Flash(c, FlashError, domain.ErrForbidden.Error()); err != nil {
					return err
				}
				return c.Redirect(http.StatusFound, "/")
			}
			return next(c)
		}
	}
}

func (s *Sessions) redirectToLogin(c echo.Context) error {
	if err := s.Flash(c, FlashInfo, msgLoginRequired); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request().URL.RequestURI()))
}
