package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/versions"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound   *versions.NotFoundError
		last       *versions.LastVersionError
		load       *versions.LoadError
		busy       *export.BusyError
		badOptions *export.OptionsError
		invalid    *ErrValidation
		schema     *schemas.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &last), errors.As(err, &busy):
		return http.StatusConflict
	case errors.As(err, &badOptions), errors.As(err, &invalid), errors.As(err, &schema), errors.As(err, &load):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the text shown to the client. Engine failures carry their own
// notification text; other errors use their message.
func UserMessage(err error) string {
	var engine *export.EngineError
	if errors.As(err, &engine) {
		return engine.UserMessage()
	}
	return err.Error()
}

// extractValidationErrors converts validator errors into an ErrValidation
func extractValidationErrors(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
		}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}
