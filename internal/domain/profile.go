package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_profile_repository.go -package mocks github.com/cluckhub/cluckhub/internal/domain ProfileRepository

// Profile holds account-level settings, one per account. It is created
// lazily with defaults on first fetch and replaced wholesale on update:
// fields the caller omits are dropped, not merged.
type Profile struct {
	Email           string    `json:"email"`
	DisplayName     string    `json:"displayName"`
	Timezone        string    `json:"timezone"`
	MarketingOptIn  bool      `json:"marketingOptIn"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DefaultProfile returns the profile created on first fetch.
func DefaultProfile(email string) *Profile {
	return &Profile{
		Email:     NormalizeEmail(email),
		Timezone:  "Australia/Sydney",
		UpdatedAt: time.Now().UTC(),
	}
}

// Validate checks an incoming profile update.
func (p *Profile) Validate() error {
	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			return NewValidationError("unknown timezone: " + p.Timezone)
		}
	}
	return nil
}

type ProfileRepository interface {
	// GetProfile returns the stored profile, or nil when never written.
	GetProfile(ctx context.Context, email string) (*Profile, error)

	// SetProfile overwrites the stored profile wholesale.
	SetProfile(ctx context.Context, profile *Profile) error
}

// ProfileServiceInterface reads and replaces account profiles.
type ProfileServiceInterface interface {
	// Get returns the profile, creating the default lazily when absent.
	Get(ctx context.Context, email string) (*Profile, error)

	// Update replaces the profile wholesale and stamps UpdatedAt.
	Update(ctx context.Context, email string, profile *Profile) (*Profile, error)
}
