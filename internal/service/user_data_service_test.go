package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/internal/repository"
	"github.com/cluckhub/cluckhub/pkg/blob"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

func newUserDataService(t *testing.T) *UserDataService {
	t.Helper()
	repo := repository.NewBlobDataRepository(blob.NewMemoryStore())
	return NewUserDataService(repo, logger.NewTestLogger(t))
}

func TestUserDataService_RoundTrip(t *testing.T) {
	svc := newUserDataService(t)
	ctx := context.Background()

	data, err := svc.Read(ctx, "farmer@x.com", "uiPrefs")
	require.NoError(t, err)
	assert.Nil(t, data)

	value := json.RawMessage(`{"theme":"dark","selectedFarm":"f1"}`)
	require.NoError(t, svc.Write(ctx, "farmer@x.com", "uiPrefs", value))

	data, err = svc.Read(ctx, "farmer@x.com", "uiPrefs")
	require.NoError(t, err)
	assert.JSONEq(t, string(value), string(data))

	// namespaced per account
	data, err = svc.Read(ctx, "other@x.com", "uiPrefs")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestUserDataService_MissingKey(t *testing.T) {
	svc := newUserDataService(t)
	ctx := context.Background()

	_, err := svc.Read(ctx, "farmer@x.com", "")
	assert.IsType(t, domain.ValidationError{}, err)

	err = svc.Write(ctx, "farmer@x.com", "", json.RawMessage(`{}`))
	assert.IsType(t, domain.ValidationError{}, err)
}

func TestUserDataService_InvalidJSON(t *testing.T) {
	svc := newUserDataService(t)

	err := svc.Write(context.Background(), "farmer@x.com", "uiPrefs", json.RawMessage(`{broken`))
	assert.IsType(t, domain.ValidationError{}, err)
}
