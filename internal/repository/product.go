package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bilemo/bilemo/internal/model"
)

// ErrProductNotFound is returned when no product has the requested id.
var ErrProductNotFound = errors.New("product not found")

// CreateProduct inserts a catalog entry.
func (r *Repository) CreateProduct(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, name, description, quantity, price, published_at)
		VALUES (@id, @name, @description, @quantity, @price, @published_at)
	`

	_, err := r.pool.Exec(ctx, query, pgx.NamedArgs{
		"id":           p.ID,
		"name":         p.Name,
		"description":  p.Description,
		"quantity":     p.Quantity,
		"price":        p.Price,
		"published_at": p.PublishedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetProductByID retrieves a product by its ID.
func (r *Repository) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, quantity, price, published_at
		FROM products
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}

	return p, nil
}
