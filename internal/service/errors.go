package service

import (
	"errors"

	"github.com/amit-3245/campus-complaint-portal/internal/auth"
	"github.com/amit-3245/campus-complaint-portal/internal/models"
)

// Every operation fails with exactly one of these kinds. ValidationError
// values match ErrValidation through errors.Is.
var (
	ErrValidation         = models.ErrValidation
	ErrDuplicateEmail     = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUnauthorized       = errors.New("Not authorized, no token")
	ErrInvalidToken       = auth.ErrInvalidToken
	ErrUserNotFound       = errors.New("User not found")
	ErrForbidden          = errors.New("Access denied")
	ErrNotFound           = errors.New("Complaint not found")
	ErrStorage            = errors.New("storage failure")
)

type ValidationError = models.ValidationError

func validation(field, message string) error {
	return models.NewValidationError(field, message)
}
