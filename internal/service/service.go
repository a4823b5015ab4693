// Package service provides business logic for the application.
package service

import (
	"errors"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/metrics"
	"github.com/bilemo/bilemo/internal/paginate"
	"github.com/bilemo/bilemo/internal/policy"
)

// Service errors.
var (
	ErrAccessDenied = errors.New("access denied")
	ErrAnonymous    = errors.New("request has no principal")
)

// Client-facing not-found messages.
const (
	MsgUserNotFound    = "No users found with this ID"
	MsgProductNotFound = "No product found with this ID"
	MsgUserDeleted     = "User has been deleted"
)

// generateULID returns a new time-ordered identifier.
func generateULID() string {
	return ulid.Make().String()
}

// validID reports whether id is a well-formed ULID. Malformed ids are
// reported as not found rather than as bad requests.
func validID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

func denied(a policy.Action) error {
	return apierr.Wrap(ErrAccessDenied, http.StatusUnauthorized, policy.DenialMessage(a))
}

func anonymous() error {
	return apierr.Wrap(ErrAnonymous, http.StatusUnauthorized, apierr.MsgUnauthorized)
}

// countOutOfRange records page-out-of-range failures.
func countOutOfRange(recorder metrics.Recorder, err error) {
	var oor *paginate.OutOfRangeError
	if errors.As(err, &oor) {
		recorder.IncPageOutOfRange()
	}
}
