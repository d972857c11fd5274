package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/crmdesk/crm-system/internal/core/domain"
)

type CustomerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

type customerRow struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Email   string `db:"email"`
	Company string `db:"company"`
	Phone   string `db:"phone"`
	Status  string `db:"status"`
}

func (r customerRow) toDomain() *domain.Customer {
	return &domain.Customer{ID: r.ID, Name: r.Name, Email: r.Email, Company: r.Company, Phone: r.Phone, Status: r.Status}
}

const customerColumns = `id, name, email, company, phone, status`

func (r *CustomerRepository) Create(ctx context.Context, f domain.CustomerFields) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const q = `
		INSERT INTO customers (name, email, company, phone, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + customerColumns
	var row customerRow
	if err := r.db.GetContext(ctx, &row, q, f.Name, f.Email, f.Company, f.Phone, f.Status); err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return row.toDomain(), nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []customerRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+customerColumns+` FROM customers ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	out := make([]*domain.Customer, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row customerRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return row.toDomain(), nil
}

func (r *CustomerRepository) Update(ctx context.Context, id int64, f domain.CustomerFields) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const q = `
		UPDATE customers
		SET name = $1, email = $2, company = $3, phone = $4, status = $5
		WHERE id = $6`
	if _, err := r.db.ExecContext(ctx, q, f.Name, f.Email, f.Company, f.Phone, f.Status, id); err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM customers`); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}
