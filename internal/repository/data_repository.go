package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/blob"
)

// BlobDataRepository implements the farm-scoped, user-scoped and profile
// repositories on the blob store. A read of a never-written slice returns a
// nil document, never an error: slices are created implicitly on first write.
type BlobDataRepository struct {
	store blob.Store
}

// NewBlobDataRepository creates a new BlobDataRepository
func NewBlobDataRepository(store blob.Store) *BlobDataRepository {
	return &BlobDataRepository{store: store}
}

var (
	_ domain.FarmDataRepository = (*BlobDataRepository)(nil)
	_ domain.UserDataRepository = (*BlobDataRepository)(nil)
	_ domain.ProfileRepository  = (*BlobDataRepository)(nil)
)

func (r *BlobDataRepository) GetFarmData(ctx context.Context, farmID, key string) (json.RawMessage, error) {
	return r.get(ctx, farmDataKey(farmID, key))
}

func (r *BlobDataRepository) SetFarmData(ctx context.Context, farmID, key string, value json.RawMessage) error {
	return r.store.Set(ctx, farmDataKey(farmID, key), value)
}

func (r *BlobDataRepository) GetUserData(ctx context.Context, email, key string) (json.RawMessage, error) {
	return r.get(ctx, userDataKey(domain.NormalizeEmail(email), key))
}

func (r *BlobDataRepository) SetUserData(ctx context.Context, email, key string, value json.RawMessage) error {
	return r.store.Set(ctx, userDataKey(domain.NormalizeEmail(email), key), value)
}

func (r *BlobDataRepository) GetProfile(ctx context.Context, email string) (*domain.Profile, error) {
	data, err := r.get(ctx, profileKey(domain.NormalizeEmail(email)))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var profile domain.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", email, err)
	}
	return &profile, nil
}

func (r *BlobDataRepository) SetProfile(ctx context.Context, profile *domain.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return r.store.Set(ctx, profileKey(domain.NormalizeEmail(profile.Email)), data)
}

func (r *BlobDataRepository) get(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, blob.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
