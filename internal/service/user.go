package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/metrics"
	"github.com/bilemo/bilemo/internal/model"
	"github.com/bilemo/bilemo/internal/paginate"
	"github.com/bilemo/bilemo/internal/policy"
	"github.com/bilemo/bilemo/internal/repository"
)

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
	EmailExists(ctx context.Context, email, exceptID string) (bool, error)
}

// UserService handles user business logic.
type UserService struct {
	store     UserStore
	pages     paginate.Source[*model.User]
	pageOpts  paginate.Options
	validator *Validator
	metrics   metrics.Recorder
	now       func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, pages paginate.Source[*model.User], pageOpts paginate.Options, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:     store,
		pages:     pages,
		pageOpts:  pageOpts,
		validator: NewValidator(),
		metrics:   recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// userFields are the client-editable attributes of a user.
type userFields struct {
	Firstname string `json:"firstname" validate:"required,min=2,max=255"`
	Lastname  string `json:"lastname" validate:"required,min=2,max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Firstname string
	Lastname  string
	Email     string
}

// UpdateUserInput is a partial update. Nil fields are left untouched.
type UpdateUserInput struct {
	Firstname *string
	Lastname  *string
	Email     *string
}

// Create validates the input and stores a user owned by the principal.
func (s *UserService) Create(ctx context.Context, p *model.Principal, in CreateUserInput) (*model.User, error) {
	if !p.Authenticated() {
		return nil, anonymous()
	}

	fields := userFields{
		Firstname: strings.TrimSpace(in.Firstname),
		Lastname:  strings.TrimSpace(in.Lastname),
		Email:     strings.TrimSpace(in.Email),
	}
	if err := s.check(ctx, fields, ""); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:         generateULID(),
		Firstname:  fields.Firstname,
		Lastname:   fields.Lastname,
		Email:      fields.Email,
		CustomerID: p.CustomerID,
		CreatedAt:  s.now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, emailTaken(fields.Email)
		case errors.Is(err, repository.ErrCustomerNotFound):
			return nil, anonymous()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserCreated()
	return user, nil
}

// List returns one page of the users owned by the principal.
func (s *UserService) List(ctx context.Context, p *model.Principal, req paginate.Request) (*paginate.Page[*model.User], error) {
	if !p.Authenticated() {
		return nil, anonymous()
	}

	page, err := paginate.Paginate(ctx, s.pages, repository.OwnedBy(p.CustomerID), req, s.pageOpts)
	if err != nil {
		countOutOfRange(s.metrics, err)
		return nil, err
	}
	return page, nil
}

// Get returns a user the principal owns.
func (s *UserService) Get(ctx context.Context, p *model.Principal, id string) (*model.User, error) {
	return s.authorized(ctx, p, policy.Show, id)
}

// Update applies a partial update to a user the principal owns.
func (s *UserService) Update(ctx context.Context, p *model.Principal, id string, in UpdateUserInput) (*model.User, error) {
	user, err := s.authorized(ctx, p, policy.Update, id)
	if err != nil {
		return nil, err
	}

	fields := userFields{Firstname: user.Firstname, Lastname: user.Lastname, Email: user.Email}
	if in.Firstname != nil {
		fields.Firstname = strings.TrimSpace(*in.Firstname)
	}
	if in.Lastname != nil {
		fields.Lastname = strings.TrimSpace(*in.Lastname)
	}
	if in.Email != nil {
		fields.Email = strings.TrimSpace(*in.Email)
	}

	if fields.Firstname == user.Firstname && fields.Lastname == user.Lastname && fields.Email == user.Email {
		return user, nil
	}

	if err := s.check(ctx, fields, user.ID); err != nil {
		return nil, err
	}

	updated := *user
	updated.Firstname = fields.Firstname
	updated.Lastname = fields.Lastname
	updated.Email = fields.Email

	if err := s.store.UpdateUser(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, emailTaken(fields.Email)
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, apierr.Wrap(err, http.StatusNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.metrics.IncUserUpdated()
	return &updated, nil
}

// Delete removes a user the principal owns.
func (s *UserService) Delete(ctx context.Context, p *model.Principal, id string) error {
	if _, err := s.authorized(ctx, p, policy.Delete, id); err != nil {
		return err
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apierr.Wrap(err, http.StatusNotFound, MsgUserNotFound)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.metrics.IncUserDeleted()
	return nil
}

// authorized loads a user and checks the principal may perform a on it.
// Existence is checked before ownership.
func (s *UserService) authorized(ctx context.Context, p *model.Principal, a policy.Action, id string) (*model.User, error) {
	if !p.Authenticated() {
		return nil, anonymous()
	}
	if !validID(id) {
		return nil, apierr.NotFound(MsgUserNotFound)
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apierr.Wrap(err, http.StatusNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !policy.Authorize(p, a, user) {
		s.metrics.IncAccessDenied()
		return nil, denied(a)
	}
	return user, nil
}

// check validates fields and email uniqueness, collecting every violation.
func (s *UserService) check(ctx context.Context, fields userFields, exceptID string) error {
	violations, err := s.validator.Violations(fields)
	if err != nil {
		return fmt.Errorf("validate user: %w", err)
	}

	if !hasViolation(violations, "email") {
		taken, err := s.store.EmailExists(ctx, fields.Email, exceptID)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			violations = append(violations, emailTakenViolation(fields.Email))
		}
	}

	if len(violations) > 0 {
		return apierr.Validation(violations...)
	}
	return nil
}

func emailTakenViolation(email string) apierr.Violation {
	return apierr.Violation{
		Field:   "email",
		Message: fmt.Sprintf("Please change your email because: %s is not available", email),
	}
}

func emailTaken(email string) error {
	e := apierr.Validation(emailTakenViolation(email))
	e.Err = repository.ErrEmailExists
	return e
}
