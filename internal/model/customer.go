// Package model defines domain entities for the application.
package model

import "time"

// Customer is a tenant account. Customers own Users and API keys.
type Customer struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	Siret        string    `db:"siret"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// User is a record owned by exactly one Customer.
type User struct {
	ID         string    `db:"id"`
	Firstname  string    `db:"firstname"`
	Lastname   string    `db:"lastname"`
	Email      string    `db:"email"`
	CustomerID string    `db:"customer_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// Product is a catalog item visible to every principal.
type Product struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Quantity    int       `db:"quantity"`
	Price       Price     `db:"price"`
	PublishedAt time.Time `db:"published_at"`
}
