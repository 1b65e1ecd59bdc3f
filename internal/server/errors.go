package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/analysis"
	"github.com/jonathan/knotic/internal/fetch"
	"github.com/jonathan/knotic/internal/history"
	"github.com/jonathan/knotic/internal/ingestion"
	"github.com/jonathan/knotic/internal/llm"
	"github.com/jonathan/knotic/internal/parsing"
	"github.com/jonathan/knotic/internal/scoring"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error,
// looking through wrapped errors.
func HTTPStatus(err error) int {
	var (
		emailExists *ErrEmailAlreadyExists
		badCreds    *ErrInvalidCredentials
		noUser      *ErrUserNotFound
		invalid     *ErrValidation
		duplicate   *history.DuplicateVersionError
		notFound    *history.NotFoundError
		cfgErr      *llm.ConfigurationError
		structErr   *parsing.StructuringError
		scoreErr    *scoring.ScoringError
		extractErr  *ingestion.ExtractionError
		fetchErr    *fetch.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &emailExists), errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &badCreds):
		return http.StatusUnauthorized
	case errors.As(err, &noUser), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid),
		errors.Is(err, ingestion.ErrNotPDF),
		errors.Is(err, analysis.ErrMissingJobDescription),
		errors.Is(err, analysis.ErrMissingResume),
		errors.Is(err, scoring.ErrEmptyJobDescription),
		errors.Is(err, scoring.ErrMissingResume):
		return http.StatusBadRequest
	case errors.Is(err, ingestion.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingestion.ErrScannedOrEmpty),
		errors.As(err, &extractErr),
		errors.Is(err, fetch.ErrNoContent):
		return http.StatusUnprocessableEntity
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &structErr), errors.As(err, &scoreErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
