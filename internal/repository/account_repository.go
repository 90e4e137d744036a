package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/blob"
)

// BlobAccountRepository stores one account document per normalized email
// under "users/{email}.json".
type BlobAccountRepository struct {
	store blob.Store
}

// NewBlobAccountRepository creates a new BlobAccountRepository
func NewBlobAccountRepository(store blob.Store) *BlobAccountRepository {
	return &BlobAccountRepository{store: store}
}

var _ domain.AccountRepository = (*BlobAccountRepository)(nil)

func (r *BlobAccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	email := domain.NormalizeEmail(account.Email)

	_, err := r.store.Get(ctx, accountKey(email))
	if err == nil {
		return &domain.ErrAccountExists{Email: email}
	}
	if !errors.Is(err, blob.ErrKeyNotFound) {
		return fmt.Errorf("failed to check existing account: %w", err)
	}

	account.Email = email
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	return r.store.Set(ctx, accountKey(email), data)
}

func (r *BlobAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)

	data, err := r.store.Get(ctx, accountKey(email))
	if errors.Is(err, blob.ErrKeyNotFound) {
		return nil, &domain.ErrNotFound{Entity: "account", ID: email}
	}
	if err != nil {
		return nil, err
	}

	var account domain.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account %s: %w", email, err)
	}
	return &account, nil
}
