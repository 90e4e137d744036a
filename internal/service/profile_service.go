package service

import (
	"context"
	"time"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// ProfileService reads and replaces account profiles. A profile is created
// lazily with defaults on first fetch; updates replace the stored document
// wholesale, so callers must resend the full shape.
type ProfileService struct {
	repo   domain.ProfileRepository
	logger logger.Logger
}

func NewProfileService(repo domain.ProfileRepository, logger logger.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		logger: logger,
	}
}

var _ domain.ProfileServiceInterface = (*ProfileService)(nil)

func (s *ProfileService) Get(ctx context.Context, email string) (*domain.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, email)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	profile = domain.DefaultProfile(email)
	if err := s.repo.SetProfile(ctx, profile); err != nil {
		s.logger.WithField("email", email).WithField("error", err.Error()).Error("Failed to persist default profile")
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, email string, profile *domain.Profile) (*domain.Profile, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	// the email is bound to the session, never taken from the payload
	profile.Email = domain.NormalizeEmail(email)
	profile.UpdatedAt = time.Now().UTC()

	if err := s.repo.SetProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
