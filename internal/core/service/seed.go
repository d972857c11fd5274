package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
)

type seedUser struct {
	username, email, password, role string
}

var demoUsers = []seedUser{
	{"admin", "admin@crm.local", "admin", domain.RoleAdmin},
	{"user", "user@crm.local", "user", domain.RoleUser},
}

var demoCustomers = []domain.CustomerFields{
	{Name: "John Doe", Email: "john@example.com", Company: "Acme Corp", Phone: "555-0001", Status: "active"},
	{Name: "Jane Smith", Email: "jane@example.com", Company: "Tech Solutions", Phone: "555-0002", Status: "prospect"},
	{Name: "Bob Wilson", Email: "bob@example.com", Company: "Global Industries", Phone: "555-0003", Status: "inactive"},
}

var demoLeads = []domain.LeadFields{
	{Name: "Alice Brown", Email: "alice@example.com", Company: "StartUp Inc", Value: 50000, Source: "Website"},
	{Name: "Charlie Davis", Email: "charlie@example.com", Company: "Enterprise Ltd", Value: 100000, Source: "Referral"},
}

// Seeder fills an empty store with demo accounts and records.
type Seeder struct {
	users     ports.UserRepository
	customers ports.CustomerRepository
	leads     ports.LeadRepository
	hasher    Hasher
	logger    zerolog.Logger
}

func NewSeeder(
	users ports.UserRepository,
	customers ports.CustomerRepository,
	leads ports.LeadRepository,
	hasher Hasher,
	logger zerolog.Logger,
) *Seeder {
	return &Seeder{users: users, customers: customers, leads: leads, hasher: hasher, logger: logger}
}

// Seed inserts demo users when there are no users at all, and demo records
// when there are neither customers nor leads. Running it twice is harmless.
func (s *Seeder) Seed(ctx context.Context) error {
	if err := s.seedUsers(ctx); err != nil {
		return err
	}
	return s.seedRecords(ctx)
}

func (s *Seeder) seedUsers(ctx context.Context) error {
	n, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	for _, u := range demoUsers {
		hash, err := s.hasher.Hash(u.password)
		if err != nil {
			return fmt.Errorf("seed: hash %s: %w", u.username, err)
		}
		_, err = s.users.Create(ctx, &domain.User{
			Username:     u.username,
			Email:        u.email,
			PasswordHash: hash,
			Role:         u.role,
		})
		if err != nil && !errors.Is(err, domain.ErrDuplicateKey) {
			return fmt.Errorf("seed: create %s: %w", u.username, err)
		}
	}
	s.logger.Info().Int("count", len(demoUsers)).Msg("seeded demo users")
	return nil
}

func (s *Seeder) seedRecords(ctx context.Context) error {
	nc, err := s.customers.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: count customers: %w", err)
	}
	nl, err := s.leads.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: count leads: %w", err)
	}
	if nc > 0 || nl > 0 {
		return nil
	}

	for _, c := range demoCustomers {
		if _, err := s.customers.Create(ctx, c); err != nil {
			return fmt.Errorf("seed: create customer %s: %w", c.Name, err)
		}
	}
	for _, l := range demoLeads {
		if _, err := s.leads.Create(ctx, l); err != nil {
			return fmt.Errorf("seed: create lead %s: %w", l.Name, err)
		}
	}
	s.logger.Info().Int("customers", len(demoCustomers)).Int("leads", len(demoLeads)).Msg("seeded demo records")
	return nil
}
