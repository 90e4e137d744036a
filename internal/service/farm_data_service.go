package service

import (
	"context"
	"encoding/json"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// FarmDataService is the farm-scoped data gateway. Each request walks the
// same gates: logical key allow-list, farm lookup, membership, then for
// writes the per-key role gate and shape check. Writes overwrite the stored
// document wholesale.
type FarmDataService struct {
	farmRepo domain.FarmRepository
	dataRepo domain.FarmDataRepository
	logger   logger.Logger
}

func NewFarmDataService(farmRepo domain.FarmRepository, dataRepo domain.FarmDataRepository, logger logger.Logger) *FarmDataService {
	return &FarmDataService{
		farmRepo: farmRepo,
		dataRepo: dataRepo,
		logger:   logger,
	}
}

var _ domain.FarmDataServiceInterface = (*FarmDataService)(nil)

func (s *FarmDataService) Read(ctx context.Context, email, farmID, key string) (json.RawMessage, error) {
	if _, _, err := s.resolve(ctx, email, farmID, key); err != nil {
		return nil, err
	}
	// a never-written slice reads as nil, not an error
	return s.dataRepo.GetFarmData(ctx, farmID, key)
}

func (s *FarmDataService) Write(ctx context.Context, email, farmID, key string, value json.RawMessage) error {
	def, role, err := s.resolve(ctx, email, farmID, key)
	if err != nil {
		return err
	}

	if !def.CanWrite(role) {
		return domain.NewPermissionError(role, key, "role "+string(role)+" cannot write "+key)
	}
	if err := def.ValidateShape(value); err != nil {
		return err
	}

	if err := s.dataRepo.SetFarmData(ctx, farmID, key, value); err != nil {
		s.logger.WithField("farm_id", farmID).WithField("key", key).WithField("error", err.Error()).Error("Failed to write farm data")
		return err
	}
	return nil
}

// resolve runs the gates shared by reads and writes and returns the slice
// definition plus the caller's role in the farm.
func (s *FarmDataService) resolve(ctx context.Context, email, farmID, key string) (domain.SliceDefinition, domain.Role, error) {
	def, ok := domain.SliceDefinitionFor(key)
	if !ok {
		return domain.SliceDefinition{}, "", domain.NewValidationError("unknown data key: " + key)
	}

	farm, err := s.farmRepo.GetFarmByID(ctx, farmID)
	if err != nil {
		return domain.SliceDefinition{}, "", err
	}

	role := farm.MemberRole(email)
	if role == "" {
		return domain.SliceDefinition{}, "", domain.NewPermissionError("", key, "not a member of this farm")
	}
	return def, role, nil
}
