// Package server provides the HTTP REST API for skillbuddy.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/skillbuddy/internal/service"
)

// Messages for responses whose text does not come from the error itself.
const (
	msgInvalidBody     = "Invalid request body"
	msgInternal        = "Internal server error"
	msgRegisterFirst   = "User not found. Please register first."
	msgUserNotFound    = "User not found"
	msgSessionNotFound = "Session not found"
	msgInvalidPath     = "Invalid career path"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *service.ErrValidation
		notFound   *service.ErrNotFound
		exists     *service.ErrAlreadyExists
		completed  *service.ErrAlreadyCompleted
		creds      *service.ErrInvalidCredentials
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &exists), errors.As(err, &completed):
		return http.StatusConflict
	case errors.As(err, &creds):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text shown to clients. Internal failures never leak details.
func publicMessage(err error) string {
	var notFound *service.ErrNotFound
	if errors.As(err, &notFound) {
		switch notFound.Kind {
		case service.KindSession:
			return msgSessionNotFound
		case service.KindCareerPath:
			return msgInvalidPath
		default:
			return msgUserNotFound
		}
	}

	var exists *service.ErrAlreadyExists
	if errors.As(err, &exists) {
		return "User already exists"
	}

	if HTTPStatus(err) == http.StatusInternalServerError {
		return msgInternal
	}
	return err.Error()
}
