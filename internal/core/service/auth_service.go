package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
	"github.com/crmdesk/crm-system/internal/pkg/metrics"
)

const (
	GuestUsername = "guest"
	GuestEmail    = "guest@crm.local"
	guestPassword = "guest"

	minPasswordLength = 4
)

// AuthOptions holds the policy switches of the auth gate.
type AuthOptions struct {
	// AllowAdminSelfRegistration lets registrants ask for the admin role.
	// When false the request flag is ignored and the user gets RoleUser.
	AllowAdminSelfRegistration bool
}

// AuthService implements login, registration and the session lifecycle.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	hasher   Hasher
	tokens   *TokenIssuer
	opts     AuthOptions
	logger   zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	hasher Hasher,
	tokens *TokenIssuer,
	opts AuthOptions,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		opts:     opts,
		logger:   logger,
	}
}

// Authenticate returns the user matching the credentials. Unknown usernames
// and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// burn a comparison so unknown usernames cost the same as bad passwords
			s.hasher.Verify(password, s.placeholderHash())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("password", "failure").Inc()
			s.logger.Info().Str("username", strings.TrimSpace(username)).Msg("login failed")
		}
		return nil, err
	}

	sess, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("password", "success").Inc()
	s.logger.Info().Str("username", user.Username).Str("role", user.Role).Msg("login succeeded")
	return sess, nil
}

// GuestLogin logs in as the shared guest account, creating it on first use.
func (s *AuthService) GuestLogin(ctx context.Context) (*ports.Session, error) {
	guest, err := s.users.FindByUsername(ctx, GuestUsername)
	if errors.Is(err, domain.ErrUserNotFound) {
		guest, err = s.createGuest(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("guest login: %w", err)
	}

	sess, err := s.startSession(ctx, guest)
	if err != nil {
		return nil, err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("guest", "success").Inc()
	s.logger.Info().Msg("guest login")
	return sess, nil
}

func (s *AuthService) createGuest(ctx context.Context) (*domain.User, error) {
	hash, err := s.hasher.Hash(guestPassword)
	if err != nil {
		return nil, err
	}

	guest, err := s.users.Create(ctx, &domain.User{
		Username:     GuestUsername,
		Email:        GuestEmail,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if errors.Is(err, domain.ErrDuplicateKey) {
		// another request created it first
		return s.users.FindByUsername(ctx, GuestUsername)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", guest.ID).Msg("guest account created")
	return guest, nil
}

// Register validates the submission, creates the user and logs them in.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.Session, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" || email == "" || in.Password == "" {
		return nil, domain.NewValidationError("All fields are required.")
	}
	if in.Password != in.ConfirmPassword {
		return nil, domain.NewFieldError("password2", "Passwords do not match.")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.NewFieldError("password", "Password must be at least 4 characters.")
	}

	// Friendly pre-checks; the unique indexes stay authoritative.
	if err := s.ensureFree(ctx, "username", s.users.FindByUsername, username); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, "email", s.users.FindByEmail, email); err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if in.RequestAdmin {
		if s.opts.AllowAdminSelfRegistration {
			role = domain.RoleAdmin
		} else {
			s.logger.Warn().Str("username", username).Msg("admin self-registration requested but disabled")
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	metrics.RegistrationsTotal.WithLabelValues(user.Role).Inc()
	s.logger.Info().Str("username", user.Username).Str("role", user.Role).Msg("user registered")

	return s.startSession(ctx, user)
}

func (s *AuthService) ensureFree(
	ctx context.Context,
	field string,
	find func(context.Context, string) (*domain.User, error),
	value string,
) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return &domain.DuplicateKeyError{Field: field}
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("register: lookup %s: %w", field, err)
	}
}

// Logout destroys the session. Unknown ids are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) Resolve(ctx context.Context, sessionID string) (*ports.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}
	return s.sessions.Get(ctx, sessionID)
}

// SetPassword replaces the stored digest for userID.
func (s *AuthService) SetPassword(ctx context.Context, userID int64, password string) error {
	if len(password) < minPasswordLength {
		return domain.NewFieldError("password", "Password must be at least 4 characters.")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	s.logger.Info().Int64("user_id", userID).Msg("password changed")
	return nil
}

// ChangePassword verifies the current password before calling SetPassword.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	return s.SetPassword(ctx, userID, next)
}

func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	return s.tokens.Issue(user)
}

func (s *AuthService) ParseToken(token string) (*domain.Identity, error) {
	return s.tokens.Parse(token)
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*ports.Session, error) {
	sess := &ports.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return sess, nil
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}
