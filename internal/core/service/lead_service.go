package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
	"github.com/crmdesk/crm-system/internal/pkg/metrics"
)

const (
	msgLeadFieldsRequired = "name, email, company, value and source are required."
	msgLeadValueNumber    = "value must be a number."
	msgLeadValueNegative  = "value must not be negative."
)

type LeadService struct {
	repo   ports.LeadRepository
	logger zerolog.Logger
}

func NewLeadService(repo ports.LeadRepository, logger zerolog.Logger) *LeadService {
	return &LeadService{repo: repo, logger: logger}
}

// Create validates the payload, parses the deal value and stores a new lead
// with status domain.DefaultLeadStatus.
func (s *LeadService) Create(ctx context.Context, in ports.CreateLeadInput) (*domain.Lead, error) {
	fields, err := leadFields(in)
	if err != nil {
		return nil, err
	}

	lead, err := s.repo.Create(ctx, fields)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create lead")
		return nil, fmt.Errorf("create lead: %w", err)
	}

	metrics.RecordsMutatedTotal.WithLabelValues("lead", "create").Inc()
	s.logger.Info().Int64("lead_id", lead.ID).Str("source", lead.Source).Msg("lead created")
	return lead, nil
}

func (s *LeadService) List(ctx context.Context) ([]*domain.Lead, error) {
	return s.repo.List(ctx)
}

func (s *LeadService) Get(ctx context.Context, id int64) (*domain.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *LeadService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete lead %d: %w", id, err)
	}

	metrics.RecordsMutatedTotal.WithLabelValues("lead", "delete").Inc()
	s.logger.Info().Int64("lead_id", id).Msg("lead deleted")
	return nil
}

func (s *LeadService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func leadFields(in ports.CreateLeadInput) (domain.LeadFields, error) {
	f := domain.LeadFields{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Company: strings.TrimSpace(in.Company),
		Source:  strings.TrimSpace(in.Source),
	}
	raw := strings.TrimSpace(in.Value)
	if f.Name == "" || f.Email == "" || f.Company == "" || raw == "" || f.Source == "" {
		return f, domain.NewValidationError(msgLeadFieldsRequired)
	}

	value, err := ParseLeadValue(raw)
	if err != nil {
		return f, err
	}
	f.Value = value
	return f, nil
}

// ParseLeadValue parses a deal value. It must be a finite, non-negative number.
func ParseLeadValue(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.NewFieldError("value", msgLeadValueNumber)
	}
	if v < 0 {
		return 0, domain.NewFieldError("value", msgLeadValueNegative)
	}
	return v, nil
}
