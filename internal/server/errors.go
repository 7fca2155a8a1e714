package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-enhancer/internal/fetch"
	"github.com/jonathan/resume-enhancer/internal/ingestion"
	"github.com/jonathan/resume-enhancer/internal/parsing"
	"github.com/jonathan/resume-enhancer/internal/rendering"
	"github.com/jonathan/resume-enhancer/internal/session"
	"github.com/jonathan/resume-enhancer/internal/speech"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrSessionRequired indicates a session route was reached without a session
type ErrSessionRequired struct{}

func (e *ErrSessionRequired) Error() string {
	return "session required"
}

// ErrNoResume indicates a feature that needs an uploaded resume was called before one exists
type ErrNoResume struct{}

func (e *ErrNoResume) Error() string {
	return "no resume uploaded: upload a resume first"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		sessionErr    *ErrSessionRequired
		noResumeErr   *ErrNoResume
		extractionErr *ingestion.ExtractionError
		fetchErr      *fetch.Error
		parseErr      *parsing.ParseError
		apiErr        *parsing.APICallError
		templateErr   *rendering.TemplateError
		speechErr     *speech.Error
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &validationErr), errors.As(err, &templateErr):
		return http.StatusBadRequest
	case errors.As(err, &sessionErr):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &noResumeErr):
		return http.StatusConflict
	case errors.As(err, &extractionErr), errors.As(err, &fetchErr), errors.Is(err, speech.ErrUnintelligible):
		return http.StatusUnprocessableEntity
	case errors.As(err, &parseErr):
		return http.StatusBadGateway
	case errors.As(err, &apiErr), errors.Is(err, speech.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &speechErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the text returned to clients for err. Upload and
// transcription failures use their fixed user-facing messages.
func errorMessage(err error) string {
	var (
		extractionErr *ingestion.ExtractionError
		speechErr     *speech.Error
	)
	switch {
	case errors.As(err, &extractionErr):
		return ingestion.UnreadableMessage
	case errors.As(err, &speechErr):
		return speechErr.Message()
	case errors.Is(err, speech.ErrUnintelligible), errors.Is(err, speech.ErrServiceUnavailable):
		return speech.DescribeFailure(err)
	default:
		return err.Error()
	}
}

// extractValidationErrors converts validator errors into an ErrValidation
// for the first failing field.
func extractValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Message: "invalid request"}
}
