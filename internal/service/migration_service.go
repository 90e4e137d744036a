package service

import (
	"context"
	"errors"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/blob"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// legacyKeys are the un-namespaced documents written before data was scoped
// per farm. Each one maps onto the logical key of the same name.
var legacyKeys = []string{
	"dailyLog",
	"waterLogs",
	"deliveries",
	"weights",
	"sheds",
	"settings",
	"reminders",
}

// MigrationResult reports the per-key outcome of one migration run.
type MigrationResult struct {
	Migrated []string `json:"migrated"`
	Skipped  []string `json:"skipped"`
}

// MigrationService copies the fixed set of legacy un-namespaced keys into a
// farm-namespaced location. Best effort and idempotent: keys that are absent
// or already migrated are skipped, existing farm documents are not
// overwritten.
type MigrationService struct {
	store    blob.Store
	dataRepo domain.FarmDataRepository
	logger   logger.Logger
}

func NewMigrationService(store blob.Store, dataRepo domain.FarmDataRepository, logger logger.Logger) *MigrationService {
	return &MigrationService{
		store:    store,
		dataRepo: dataRepo,
		logger:   logger,
	}
}

// MigrateLegacyKeys copies each legacy document under the given farm.
func (s *MigrationService) MigrateLegacyKeys(ctx context.Context, farmID string) (*MigrationResult, error) {
	if farmID == "" {
		return nil, domain.NewValidationError("farmId is required")
	}

	result := &MigrationResult{
		Migrated: []string{},
		Skipped:  []string{},
	}
	for _, key := range legacyKeys {
		legacy, err := s.store.Get(ctx, key+".json")
		if errors.Is(err, blob.ErrKeyNotFound) {
			result.Skipped = append(result.Skipped, key)
			continue
		}
		if err != nil {
			return nil, err
		}

		existing, err := s.dataRepo.GetFarmData(ctx, farmID, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			result.Skipped = append(result.Skipped, key)
			continue
		}

		if err := s.dataRepo.SetFarmData(ctx, farmID, key, legacy); err != nil {
			return nil, err
		}
		result.Migrated = append(result.Migrated, key)
	}

	s.logger.WithFields(map[string]interface{}{
		"farm_id":  farmID,
		"migrated": len(result.Migrated),
		"skipped":  len(result.Skipped),
	}).Info("Legacy key migration completed")
	return result, nil
}
