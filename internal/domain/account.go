package domain

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_account_repository.go -package mocks github.com/cluckhub/cluckhub/internal/domain AccountRepository
//go:generate mockgen -destination mocks/mock_auth_service.go -package mocks github.com/cluckhub/cluckhub/internal/domain AuthServiceInterface

// Key for storing the authenticated email in a request context
type contextKey string

const (
	AuthEmailKey contextKey = "auth_email"
)

// SessionTokenType is the claim value marking a token as a login session.
const SessionTokenType = "session"

// SessionDuration is the fixed lifetime of a session token and its cookie.
const SessionDuration = 7 * 24 * time.Hour

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 6

// Account represents a registered user, addressed by lowercase email
type Account struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NormalizeEmail lowercases and trims an email so it can be used as a store key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredentials checks signup input before any account is created.
func ValidateCredentials(email, password string) error {
	if !govalidator.IsEmail(email) {
		return NewValidationError("invalid email address")
	}
	if len(password) < MinPasswordLength {
		return NewValidationError("password must be at least 6 characters")
	}
	return nil
}

// AuthResponse is returned by signup and login alongside the session cookie
type AuthResponse struct {
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthServiceInterface defines the credential lifecycle operations
type AuthServiceInterface interface {
	Signup(ctx context.Context, email, password string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	// VerifySessionToken returns the subject email for a valid token, or ""
	// for a missing, tampered or expired one. It never returns an error:
	// an invalid token means "not authenticated", not a failure.
	VerifySessionToken(token string) string
}

type AccountRepository interface {
	// CreateAccount persists a new account; returns ErrAccountExists if the
	// email is already registered
	CreateAccount(ctx context.Context, account *Account) error

	// GetAccountByEmail retrieves an account by its normalized email
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
}
