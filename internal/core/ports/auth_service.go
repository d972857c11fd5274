package ports

import (
	"context"

	"github.com/crmdesk/crm-system/internal/core/domain"
)

// RegisterInput carries a registration form submission.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	RequestAdmin    bool
}

// AuthService covers credential checks, registration and session lifecycle.
type AuthService interface {
	// Authenticate verifies credentials without starting a session.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	GuestLogin(ctx context.Context) (*Session, error)
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Logout(ctx context.Context, sessionID string) error
	// Resolve loads the session behind a cookie value.
	Resolve(ctx context.Context, sessionID string) (*Session, error)
	SetPassword(ctx context.Context, userID int64, password string) error
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	IssueToken(user *domain.User) (string, error)
	ParseToken(token string) (*domain.Identity, error)
}

// FlashService queues and drains flash messages on a session. It creates an
// anonymous session when sessionID is empty or unknown and returns the id in use.
type FlashService interface {
	AddFlash(ctx context.Context, sessionID string, f Flash) (string, error)
	PopFlashes(ctx context.Context, sessionID string) ([]Flash, error)
}
