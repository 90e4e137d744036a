package domain

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_farm_repository.go -package mocks github.com/cluckhub/cluckhub/internal/domain FarmRepository
//go:generate mockgen -destination mocks/mock_farm_service.go -package mocks github.com/cluckhub/cluckhub/internal/domain FarmServiceInterface

// Role governs what a member may do with a farm's data
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
	RoleViewer  Role = "viewer"
)

// IsValid reports whether the role is one of the four known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleWorker, RoleViewer:
		return true
	}
	return false
}

// Member is one account's membership in a farm
type Member struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Farm represents one poultry farm and its membership list
type Farm struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OwnerEmail string    `json:"ownerEmail"`
	Members    []Member  `json:"members"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate checks the farm invariants: non-empty name, at least the owner as
// a member, unique member emails, known roles.
func (f *Farm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return NewValidationError("farm name is required")
	}
	if len(f.Members) == 0 {
		return NewValidationError("farm must have at least one member")
	}

	seen := make(map[string]bool, len(f.Members))
	ownerPresent := false
	for _, m := range f.Members {
		email := NormalizeEmail(m.Email)
		if !govalidator.IsEmail(email) {
			return NewValidationError("invalid member email: " + m.Email)
		}
		if seen[email] {
			return NewValidationError("duplicate member email: " + email)
		}
		seen[email] = true
		if !m.Role.IsValid() {
			return NewValidationError("invalid member role: " + string(m.Role))
		}
		if email == NormalizeEmail(f.OwnerEmail) {
			ownerPresent = true
		}
	}
	if !ownerPresent {
		return NewValidationError("farm owner must be a member")
	}
	return nil
}

// MemberRole returns the role of the given email in the farm, or "" when the
// email is not a member.
func (f *Farm) MemberRole(email string) Role {
	email = NormalizeEmail(email)
	for _, m := range f.Members {
		if NormalizeEmail(m.Email) == email {
			return m.Role
		}
	}
	return ""
}

// FarmServiceInterface defines the farm and membership registry operations
type FarmServiceInterface interface {
	ListFarms(ctx context.Context, email string) ([]*Farm, error)
	CreateFarm(ctx context.Context, email, name string) (*Farm, error)
	GetFarm(ctx context.Context, farmID string) (*Farm, error)
	DeleteFarm(ctx context.Context, email, farmID string) error
	InviteMember(ctx context.Context, farmID, email string, role Role) (*Farm, error)
	ChangeRole(ctx context.Context, farmID, email string, role Role) (*Farm, error)
	RemoveMember(ctx context.Context, farmID, email string) (*Farm, error)
}

type FarmRepository interface {
	// CreateFarm persists a new farm and adds its ID to the farm index
	CreateFarm(ctx context.Context, farm *Farm) error

	// GetFarmByID retrieves a farm; returns *ErrNotFound when absent
	GetFarmByID(ctx context.Context, id string) (*Farm, error)

	// UpdateFarm overwrites an existing farm document (last-write-wins)
	UpdateFarm(ctx context.Context, farm *Farm) error

	// DeleteFarm removes the farm document and its index entry
	DeleteFarm(ctx context.Context, id string) error

	// ListFarmsByMember returns every farm whose members contain the email
	ListFarmsByMember(ctx context.Context, email string) ([]*Farm, error)

	// ListFarmIDs returns all known farm IDs from the index document
	ListFarmIDs(ctx context.Context) ([]string, error)
}
