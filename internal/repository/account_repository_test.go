package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/blob"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	repo := NewBlobAccountRepository(blob.NewMemoryStore())
	ctx := context.Background()

	account := &domain.Account{
		Email:        "Farmer@X.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.CreateAccount(ctx, account))

	// email was normalized on create; lookups normalize too
	got, err := repo.GetAccountByEmail(ctx, "FARMER@x.com")
	require.NoError(t, err)
	assert.Equal(t, "farmer@x.com", got.Email)
	assert.Equal(t, account.PasswordHash, got.PasswordHash)
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	repo := NewBlobAccountRepository(blob.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, &domain.Account{Email: "farmer@x.com"}))

	err := repo.CreateAccount(ctx, &domain.Account{Email: "Farmer@x.com"})
	require.Error(t, err)
	assert.IsType(t, &domain.ErrAccountExists{}, err)
}

func TestAccountRepository_GetMissing(t *testing.T) {
	repo := NewBlobAccountRepository(blob.NewMemoryStore())

	_, err := repo.GetAccountByEmail(context.Background(), "nobody@x.com")
	require.Error(t, err)
	assert.IsType(t, &domain.ErrNotFound{}, err)
}
