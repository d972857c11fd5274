package ports

import (
	"context"

	"github.com/crmdesk/crm-system/internal/core/domain"
)

// LeadRepository defines persistence operations for leads. Leads have no
// update operation.
type LeadRepository interface {
	Create(ctx context.Context, fields domain.LeadFields) (*domain.Lead, error)
	// List returns every lead ordered by id ascending.
	List(ctx context.Context) ([]*domain.Lead, error)
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
	// Delete removes the lead. Missing ids are a no-op.
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
