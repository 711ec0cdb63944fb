package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrCatalogUnavailable is returned when the external catalog cannot serve a call:
	// transport failure, exhausted retries, non success status or a missing api key.
	ErrCatalogUnavailable = errors.New("movie catalog unavailable")
	// ErrMovieNotFound is returned when a movie is absent locally and upstream.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrMarkNotFound is returned when a favorite, rating or watchlist item does not belong to the user.
	ErrMarkNotFound = errors.New("mark not found")
	ErrValidation   = errors.New("validation failed")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field string, message string) error {
	return &ValidationError{Field: field, Message: message}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct tag rules and reports the first broken one.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return newValidationError(fe.Field(), fmt.Sprintf("failed on the '%s' rule", fe.Tag()))
	}
	return newValidationError("", err.Error())
}
