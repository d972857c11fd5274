package ports

import (
	"context"

	"github.com/crmdesk/crm-system/internal/core/domain"
)

// CreateCustomerInput is the raw customer payload before validation.
type CreateCustomerInput struct {
	Name    string
	Email   string
	Company string
	Phone   string
	Status  string
}

// CreateLeadInput is the raw lead payload. Value is kept as text so that both
// form posts and JSON strings share the same number parsing.
type CreateLeadInput struct {
	Name    string
	Email   string
	Company string
	Value   string
	Source  string
}

// CustomerService defines use-case operations for customers.
type CustomerService interface {
	Create(ctx context.Context, in CreateCustomerInput) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	Update(ctx context.Context, id int64, in CreateCustomerInput) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// LeadService defines use-case operations for leads.
type LeadService interface {
	Create(ctx context.Context, in CreateLeadInput) (*domain.Lead, error)
	List(ctx context.Context) ([]*domain.Lead, error)
	Get(ctx context.Context, id int64) (*domain.Lead, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
