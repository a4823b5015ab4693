package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bilemo/bilemo/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailExists      = errors.New("email already exists")
	ErrCustomerNotFound = errors.New("customer not found")
)

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, firstname, lastname, email, customer_id, created_at)
		VALUES (@id, @firstname, @lastname, @email, @customer_id, @created_at)
	`

	_, err := r.pool.Exec(ctx, query, pgx.NamedArgs{
		"id":          user.ID,
		"firstname":   user.Firstname,
		"lastname":    user.Lastname,
		"email":       user.Email,
		"customer_id": user.CustomerID,
		"created_at":  user.CreatedAt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		if isForeignKeyViolation(err) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, firstname, lastname, email, customer_id, created_at
		FROM users
		WHERE id = $1
	`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// UpdateUser overwrites the mutable fields of a user.
func (r *Repository) UpdateUser(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET firstname = @firstname, lastname = @lastname, email = @email
		WHERE id = @id
	`

	result, err := r.pool.Exec(ctx, query, pgx.NamedArgs{
		"id":        user.ID,
		"firstname": user.Firstname,
		"lastname":  user.Lastname,
		"email":     user.Email,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DeleteUser removes a user.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// EmailExists reports whether another user already uses email.
// exceptID excludes one user, so an update may keep its own address.
func (r *Repository) EmailExists(ctx context.Context, email, exceptID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email, exceptID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	return exists, nil
}
