package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crmdesk/crm-system/internal/core/domain"
)

type LeadRepository struct {
	db *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

type leadRow struct {
	ID      int64   `db:"id"`
	Name    string  `db:"name"`
	Email   string  `db:"email"`
	Company string  `db:"company"`
	Value   float64 `db:"value"`
	Source  string  `db:"source"`
	Status  string  `db:"status"`
}

func (r leadRow) toDomain() *domain.Lead {
	return &domain.Lead{ID: r.ID, Name: r.Name, Email: r.Email, Company: r.Company, Value: r.Value, Source: r.Source, Status: r.Status}
}

const leadColumns = `id, name, email, company, value, source, status`

func (r *LeadRepository) Create(ctx context.Context, f domain.LeadFields) (*domain.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const q = `
		INSERT INTO leads (name, email, company, value, source, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + leadColumns
	var row leadRow
	if err := r.db.GetContext(ctx, &row, q, f.Name, f.Email, f.Company, f.Value, f.Source, domain.DefaultLeadStatus); err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	return row.toDomain(), nil
}

func (r *LeadRepository) List(ctx context.Context) ([]*domain.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []leadRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+leadColumns+` FROM leads ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	out := make([]*domain.Lead, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row leadRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return row.toDomain(), nil
}

func (r *LeadRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM leads`); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}
