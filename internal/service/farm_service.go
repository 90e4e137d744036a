package service

import (
	"context"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// FarmService implements the farm and membership registry. Membership
// mutations are read-modify-write on the farm document with no version
// check: concurrent editors race under last-write-wins.
type FarmService struct {
	repo   domain.FarmRepository
	logger logger.Logger
}

func NewFarmService(repo domain.FarmRepository, logger logger.Logger) *FarmService {
	return &FarmService{
		repo:   repo,
		logger: logger,
	}
}

var _ domain.FarmServiceInterface = (*FarmService)(nil)

func (s *FarmService) ListFarms(ctx context.Context, email string) ([]*domain.Farm, error) {
	return s.repo.ListFarmsByMember(ctx, domain.NormalizeEmail(email))
}

func (s *FarmService) CreateFarm(ctx context.Context, email, name string) (*domain.Farm, error) {
	email = domain.NormalizeEmail(email)

	farm := &domain.Farm{
		ID:         uuid.New().String(),
		Name:       name,
		OwnerEmail: email,
		Members:    []domain.Member{{Email: email, Role: domain.RoleOwner}},
		CreatedAt:  time.Now().UTC(),
	}
	if err := farm.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateFarm(ctx, farm); err != nil {
		s.logger.WithField("farm_id", farm.ID).WithField("error", err.Error()).Error("Failed to create farm")
		return nil, err
	}

	s.logger.WithField("farm_id", farm.ID).WithField("owner", email).Info("Farm created")
	return farm, nil
}

func (s *FarmService) GetFarm(ctx context.Context, farmID string) (*domain.Farm, error) {
	return s.repo.GetFarmByID(ctx, farmID)
}

// DeleteFarm removes the farm document and its index entry. Only the owner
// may delete a farm; the farm's data slices are left in place (orphaned keys
// are unreachable through the gateway once the farm is gone).
func (s *FarmService) DeleteFarm(ctx context.Context, email, farmID string) error {
	farm, err := s.repo.GetFarmByID(ctx, farmID)
	if err != nil {
		return err
	}

	if farm.MemberRole(email) != domain.RoleOwner {
		return domain.NewPermissionError(farm.MemberRole(email), "", "only the owner can delete a farm")
	}

	if err := s.repo.DeleteFarm(ctx, farmID); err != nil {
		return err
	}
	s.logger.WithField("farm_id", farmID).Info("Farm deleted")
	return nil
}

func (s *FarmService) InviteMember(ctx context.Context, farmID, email string, role domain.Role) (*domain.Farm, error) {
	email = domain.NormalizeEmail(email)
	if !govalidator.IsEmail(email) {
		return nil, domain.NewValidationError("invalid member email")
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError("invalid role: " + string(role))
	}

	return s.mutateMembers(ctx, farmID, func(farm *domain.Farm) error {
		for i, m := range farm.Members {
			if domain.NormalizeEmail(m.Email) == email {
				// re-inviting an existing member just updates the role
				farm.Members[i].Role = role
				return nil
			}
		}
		farm.Members = append(farm.Members, domain.Member{Email: email, Role: role})
		return nil
	})
}

func (s *FarmService) ChangeRole(ctx context.Context, farmID, email string, role domain.Role) (*domain.Farm, error) {
	email = domain.NormalizeEmail(email)
	if !role.IsValid() {
		return nil, domain.NewValidationError("invalid role: " + string(role))
	}

	return s.mutateMembers(ctx, farmID, func(farm *domain.Farm) error {
		for i, m := range farm.Members {
			if domain.NormalizeEmail(m.Email) == email {
				farm.Members[i].Role = role
				return nil
			}
		}
		return &domain.ErrNotFound{Entity: "member", ID: email}
	})
}

func (s *FarmService) RemoveMember(ctx context.Context, farmID, email string) (*domain.Farm, error) {
	email = domain.NormalizeEmail(email)

	return s.mutateMembers(ctx, farmID, func(farm *domain.Farm) error {
		if domain.NormalizeEmail(farm.OwnerEmail) == email {
			return domain.NewValidationError("cannot remove the farm owner")
		}
		members := make([]domain.Member, 0, len(farm.Members))
		for _, m := range farm.Members {
			if domain.NormalizeEmail(m.Email) != email {
				members = append(members, m)
			}
		}
		farm.Members = members
		return nil
	})
}

func (s *FarmService) mutateMembers(ctx context.Context, farmID string, mutate func(*domain.Farm) error) (*domain.Farm, error) {
	farm, err := s.repo.GetFarmByID(ctx, farmID)
	if err != nil {
		return nil, err
	}

	if err := mutate(farm); err != nil {
		return nil, err
	}
	if err := farm.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFarm(ctx, farm); err != nil {
		s.logger.WithField("farm_id", farmID).WithField("error", err.Error()).Error("Failed to update farm members")
		return nil, err
	}
	return farm, nil
}
