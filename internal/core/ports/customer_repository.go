package ports

import (
	"context"

	"github.com/crmdesk/crm-system/internal/core/domain"
)

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	Create(ctx context.Context, fields domain.CustomerFields) (*domain.Customer, error)
	// List returns every customer ordered by id ascending.
	List(ctx context.Context) ([]*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	// Update replaces all writable fields. Missing ids are a no-op.
	Update(ctx context.Context, id int64, fields domain.CustomerFields) error
	// Delete removes the customer. Missing ids are a no-op.
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
