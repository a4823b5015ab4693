// Package dto provides Data Transfer Objects for API requests.
package dto

import "github.com/bilemo/bilemo/internal/service"

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

// Input converts the request into service input.
func (r CreateUserRequest) Input() service.CreateUserInput {
	return service.CreateUserInput{
		Firstname: r.Firstname,
		Lastname:  r.Lastname,
		Email:     r.Email,
	}
}

// UpdateUserRequest is the body of PUT /api/users/{id}. Absent fields are
// left unchanged.
type UpdateUserRequest struct {
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// Input converts the request into service input.
func (r UpdateUserRequest) Input() service.UpdateUserInput {
	return service.UpdateUserInput{
		Firstname: r.Firstname,
		Lastname:  r.Lastname,
		Email:     r.Email,
	}
}
