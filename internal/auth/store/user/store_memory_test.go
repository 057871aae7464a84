package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinauth/internal/auth/models"
)

func TestInMemoryStore_FindByPinIdentifier(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	saved := &models.User{
		ID:            uuid.New(),
		Name:          "Ana Souza",
		PinIdentifier: "1234",
		HashedPin:     "$2a$10$fakehash",
		SchoolSlug:    "knn",
		SectorKey:     "comercial",
		RoleKey:       "sr",
	}
	require.NoError(t, store.Save(ctx, saved))

	found, err := store.FindByPinIdentifier(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, saved, found)
}

func TestInMemoryStore_NotFound(t *testing.T) {
	store := NewInMemory()

	_, err := store.FindByPinIdentifier(context.Background(), "9999")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
