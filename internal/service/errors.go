package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrSelfSubscription   = errors.New("you cannot subscribe to yourself")

	// ErrDuplicateMembership and ErrMissingMembership are the parents of the
	// specific membership errors below; match them with errors.Is.
	ErrDuplicateMembership = errors.New("already a member")
	ErrMissingMembership   = errors.New("not a member")
)

var (
	ErrAlreadyFavorited  error = &membershipError{"recipe is already in favorites", ErrDuplicateMembership}
	ErrAlreadyInCart     error = &membershipError{"recipe is already in the shopping cart", ErrDuplicateMembership}
	ErrAlreadySubscribed error = &membershipError{"you are already subscribed to this author", ErrDuplicateMembership}
	ErrNotFavorited      error = &membershipError{"recipe is not in favorites", ErrMissingMembership}
	ErrNotInCart         error = &membershipError{"recipe is not in the shopping cart", ErrMissingMembership}
	ErrNotSubscribed     error = &membershipError{"you are not subscribed to this author", ErrMissingMembership}
)

type membershipError struct {
	msg  string
	kind error
}

func (e *membershipError) Error() string { return e.msg }
func (e *membershipError) Unwrap() error { return e.kind }

// ValidationError collects per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// err returns nil when nothing was collected.
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
