package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bilemo/bilemo/internal/model"
)

// ErrCustomerExists is returned when a customer email is already registered.
var ErrCustomerExists = errors.New("customer already exists")

// CreateCustomer inserts a new customer into the database.
func (r *Repository) CreateCustomer(ctx context.Context, c *model.Customer) error {
	query := `
		INSERT INTO customers (id, email, name, siret, password_hash, created_at)
		VALUES (@id, @email, @name, @siret, @password_hash, @created_at)
	`

	_, err := r.pool.Exec(ctx, query, pgx.NamedArgs{
		"id":            c.ID,
		"email":         c.Email,
		"name":          c.Name,
		"siret":         c.Siret,
		"password_hash": c.PasswordHash,
		"created_at":    c.CreatedAt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCustomerExists
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// GetCustomerByEmail retrieves a customer by email address.
func (r *Repository) GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, siret, password_hash, created_at
		FROM customers
		WHERE email = $1
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Customer])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}

	return c, nil
}
