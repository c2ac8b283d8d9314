// Package service implements the skillbuddy operations: accounts, profiles, XP,
// interview sessions and feedback.
package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a user, session or career path does not exist
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Not-found kinds
const (
	KindUser       = "user"
	KindSession    = "session"
	KindCareerPath = "career_path"
)

// ErrInvalidCareerPath returns the not-found error for an unknown career path.
func ErrInvalidCareerPath(path string) error {
	return &ErrNotFound{Kind: KindCareerPath, ID: path}
}

// ErrAlreadyExists indicates a registration for an existing user id
type ErrAlreadyExists struct {
	ID string
}

func (e *ErrAlreadyExists) Error() string {
	return fmt.Sprintf("user already exists: %s", e.ID)
}

// ErrAlreadyCompleted indicates a change to a completed session
type ErrAlreadyCompleted struct {
	SessionID string
}

func (e *ErrAlreadyCompleted) Error() string {
	return fmt.Sprintf("session already completed: %s", e.SessionID)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrInternal wraps a storage failure that no backend could absorb
type ErrInternal struct {
	Op  string
	Err error
}

func (e *ErrInternal) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ErrInternal) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an *ErrNotFound of the given kind.
func IsNotFound(err error, kind string) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf) && nf.Kind == kind
}

// validationError converts validator output into an *ErrValidation for the first failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ErrValidation{Field: "request", Message: err.Error()}
	}
	fe := verrs[0]
	return &ErrValidation{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
