package handlers

import (
	"errors"
	"net/http"

	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
)

// statusFromError maps the service error taxonomy onto HTTP status codes.
// Handlers use this for the transitions where every taxonomy member can
// surface; simple reads keep their inline errors.Is checks.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrAlreadyReversed):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrReversalNotEligible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrAccountNotActive):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing message for an error. Internal
// errors get a generic message so repository details never leak.
func errorMessage(err error, fallback string) string {
	if statusFromError(err) == http.StatusInternalServerError {
		return fallback
	}
	return err.Error()
}
