package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/pkg/apperrors"
)

const (
	carolSticker = "5f0e7a52-6c1d-4b8e-a2f4-1d9c3b7e6a01"
	eveShirt     = "5f0e7a52-6c1d-4b8e-a2f4-1d9c3b7e6a02"
)

func TestTransactionStore_Create(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionStore(newTestDB(t))
	now := time.Date(2025, 3, 7, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	tx, err := s.CreateTransaction(ctx, "b", "Sticker", 2)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionPending, tx.Status)

	loaded, err := s.GetTransactionByID(ctx, tx.ID.String())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, tx.ID, loaded.ID)
	assert.Equal(t, 2, loaded.Count)
	assert.True(t, loaded.Timestamp.Equal(now))

	spent, err := s.GetUserTotalCoinsSpent(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 20, spent)
}

func TestTransactionStore_Lookups(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionStore(newTestDB(t))

	_, err := s.GetTransactionByID(ctx, "not-a-uuid")
	var invalid *apperrors.ErrInvalidIdentifier
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "not-a-uuid", invalid.Value)

	missing, err := s.GetTransactionByID(ctx, "00000000-0000-4000-8000-000000000000")
	require.NoError(t, err)
	assert.Nil(t, missing)

	counts, err := s.GetUserTotalCounts(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Sticker": 1}, counts)

	spent, err := s.GetUserTotalCoinsSpent(ctx, "e")
	require.NoError(t, err)
	assert.Equal(t, 40, spent)

	spent, err = s.GetUserTotalCoinsSpent(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, spent)

	history, err := s.GetUserRewardTransactions(ctx, "e", "Shirt")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, eveShirt, history[0].ID.String())

	none, err := s.GetUserRewardTransactions(ctx, "e", "Sticker")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTransactionStore_StatusAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionStore(newTestDB(t))

	updated, err := s.UpdateTransactionStatus(ctx, eveShirt, model.TransactionComplete)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.TransactionComplete, updated.Status)

	deleted, err := s.DeleteTransaction(ctx, carolSticker)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, "c", deleted.UserID)

	again, err := s.DeleteTransaction(ctx, carolSticker)
	require.NoError(t, err)
	assert.Nil(t, again)

	spent, err := s.GetUserTotalCoinsSpent(ctx, "c")
	require.NoError(t, err)
	assert.Zero(t, spent)

	_, err = s.DeleteTransaction(ctx, "bogus")
	assert.True(t, errors.Is(err, &apperrors.ErrInvalidIdentifier{}))
}
