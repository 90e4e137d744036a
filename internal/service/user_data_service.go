package service

import (
	"context"
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// UserDataService is the user-scoped data gateway: the caller always owns
// their own namespace, so there are no role distinctions, only the
// authentication gate and a well-formed-JSON check on writes.
type UserDataService struct {
	repo   domain.UserDataRepository
	logger logger.Logger
}

func NewUserDataService(repo domain.UserDataRepository, logger logger.Logger) *UserDataService {
	return &UserDataService{
		repo:   repo,
		logger: logger,
	}
}

var _ domain.UserDataServiceInterface = (*UserDataService)(nil)

func (s *UserDataService) Read(ctx context.Context, email, key string) (json.RawMessage, error) {
	if key == "" {
		return nil, domain.NewValidationError("key parameter is required")
	}
	return s.repo.GetUserData(ctx, email, key)
}

func (s *UserDataService) Write(ctx context.Context, email, key string, value json.RawMessage) error {
	if key == "" {
		return domain.NewValidationError("key parameter is required")
	}
	if !gjson.ValidBytes(value) {
		return domain.NewValidationError("request body must be valid JSON")
	}
	return s.repo.SetUserData(ctx, email, key, value)
}
