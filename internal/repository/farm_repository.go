package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/blob"
)

// BlobFarmRepository stores one document per farm under "farms/{id}.json"
// plus a manually maintained id-list document at "farms/index.json". The
// index is the only way to enumerate farms; it races under concurrent
// create/delete like every other document (last-write-wins, accepted).
type BlobFarmRepository struct {
	store blob.Store
}

// NewBlobFarmRepository creates a new BlobFarmRepository
func NewBlobFarmRepository(store blob.Store) *BlobFarmRepository {
	return &BlobFarmRepository{store: store}
}

var _ domain.FarmRepository = (*BlobFarmRepository)(nil)

func (r *BlobFarmRepository) CreateFarm(ctx context.Context, farm *domain.Farm) error {
	if err := r.putFarm(ctx, farm); err != nil {
		return err
	}

	ids, err := r.ListFarmIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == farm.ID {
			return nil
		}
	}
	return r.writeIndex(ctx, append(ids, farm.ID))
}

func (r *BlobFarmRepository) GetFarmByID(ctx context.Context, id string) (*domain.Farm, error) {
	data, err := r.store.Get(ctx, farmKey(id))
	if errors.Is(err, blob.ErrKeyNotFound) {
		return nil, &domain.ErrNotFound{Entity: "farm", ID: id}
	}
	if err != nil {
		return nil, err
	}

	var farm domain.Farm
	if err := json.Unmarshal(data, &farm); err != nil {
		return nil, fmt.Errorf("failed to unmarshal farm %s: %w", id, err)
	}
	return &farm, nil
}

func (r *BlobFarmRepository) UpdateFarm(ctx context.Context, farm *domain.Farm) error {
	if _, err := r.GetFarmByID(ctx, farm.ID); err != nil {
		return err
	}
	return r.putFarm(ctx, farm)
}

func (r *BlobFarmRepository) DeleteFarm(ctx context.Context, id string) error {
	if _, err := r.GetFarmByID(ctx, id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, farmKey(id)); err != nil {
		return err
	}

	ids, err := r.ListFarmIDs(ctx)
	if err != nil {
		return err
	}
	remaining := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			remaining = append(remaining, existing)
		}
	}
	return r.writeIndex(ctx, remaining)
}

func (r *BlobFarmRepository) ListFarmsByMember(ctx context.Context, email string) ([]*domain.Farm, error) {
	ids, err := r.ListFarmIDs(ctx)
	if err != nil {
		return nil, err
	}

	farms := make([]*domain.Farm, 0)
	for _, id := range ids {
		farm, err := r.GetFarmByID(ctx, id)
		if err != nil {
			// index entries can outlive their documents; skip strays
			if _, ok := err.(*domain.ErrNotFound); ok {
				continue
			}
			return nil, err
		}
		if farm.MemberRole(email) != "" {
			farms = append(farms, farm)
		}
	}
	return farms, nil
}

func (r *BlobFarmRepository) ListFarmIDs(ctx context.Context) ([]string, error) {
	data, err := r.store.Get(ctx, farmIndexKey)
	if errors.Is(err, blob.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal farm index: %w", err)
	}
	return ids, nil
}

func (r *BlobFarmRepository) putFarm(ctx context.Context, farm *domain.Farm) error {
	data, err := json.Marshal(farm)
	if err != nil {
		return fmt.Errorf("failed to marshal farm: %w", err)
	}
	return r.store.Set(ctx, farmKey(farm.ID), data)
}

func (r *BlobFarmRepository) writeIndex(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal farm index: %w", err)
	}
	return r.store.Set(ctx, farmIndexKey, data)
}
