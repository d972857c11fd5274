package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
	"github.com/crmdesk/crm-system/internal/pkg/metrics"
)

const msgCustomerFieldsRequired = "name, email, company and phone are required."

type CustomerService struct {
	repo   ports.CustomerRepository
	logger zerolog.Logger
}

func NewCustomerService(repo ports.CustomerRepository, logger zerolog.Logger) *CustomerService {
	return &CustomerService{repo: repo, logger: logger}
}

// Create validates the payload and stores a new customer. A blank status
// becomes domain.DefaultCustomerStatus.
func (s *CustomerService) Create(ctx context.Context, in ports.CreateCustomerInput) (*domain.Customer, error) {
	fields, err := customerFields(in)
	if err != nil {
		return nil, err
	}

	customer, err := s.repo.Create(ctx, fields)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create customer")
		return nil, fmt.Errorf("create customer: %w", err)
	}

	metrics.RecordsMutatedTotal.WithLabelValues("customer", "create").Inc()
	s.logger.Info().Int64("customer_id", customer.ID).Str("name", customer.Name).Msg("customer created")
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context) ([]*domain.Customer, error) {
	return s.repo.List(ctx)
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces every field of an existing customer.
func (s *CustomerService) Update(ctx context.Context, id int64, in ports.CreateCustomerInput) error {
	fields, err := customerFields(in)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return fmt.Errorf("update customer %d: %w", id, err)
	}

	metrics.RecordsMutatedTotal.WithLabelValues("customer", "update").Inc()
	s.logger.Info().Int64("customer_id", id).Msg("customer updated")
	return nil
}

func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}

	metrics.RecordsMutatedTotal.WithLabelValues("customer", "delete").Inc()
	s.logger.Info().Int64("customer_id", id).Msg("customer deleted")
	return nil
}

func (s *CustomerService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func customerFields(in ports.CreateCustomerInput) (domain.CustomerFields, error) {
	f := domain.CustomerFields{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Company: strings.TrimSpace(in.Company),
		Phone:   strings.TrimSpace(in.Phone),
		Status:  strings.TrimSpace(in.Status),
	}
	if f.Name == "" || f.Email == "" || f.Company == "" || f.Phone == "" {
		return f, domain.NewValidationError(msgCustomerFieldsRequired)
	}
	if f.Status == "" {
		f.Status = domain.DefaultCustomerStatus
	}
	return f, nil
}
