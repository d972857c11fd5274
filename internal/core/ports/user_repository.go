package ports

import (
	"context"

	"github.com/crmdesk/crm-system/internal/core/domain"
)

// UserRepository defines persistence operations for the user directory.
// Lookups are exact, case-sensitive matches and return domain.ErrUserNotFound
// when nothing matches. Create returns an error matching domain.ErrDuplicateKey
// when the username or email is already taken.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	Count(ctx context.Context) (int64, error)
}
