package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when a request carries no valid session.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound is returned when an entity does not exist
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Entity, e.ID)
}

// ErrAccountExists is returned when signing up with an already registered email
type ErrAccountExists struct {
	Email string
}

func (e *ErrAccountExists) Error() string {
	return fmt.Sprintf("account already exists: %s", e.Email)
}

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}

// PermissionError represents insufficient permissions for an operation
type PermissionError struct {
	Role    Role   `json:"role"`
	DataKey string `json:"data_key,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *PermissionError) Error() string {
	return e.Message
}

// NewPermissionError creates a new permission error
func NewPermissionError(role Role, dataKey string, message string) *PermissionError {
	return &PermissionError{
		Role:    role,
		DataKey: dataKey,
		Message: message,
	}
}
