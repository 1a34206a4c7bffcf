package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-leaderboard-cache/model"
)

func TestChallengeStore_Reads(t *testing.T) {
	ctx := context.Background()
	s := NewChallengeStore(newTestDB(t))

	all, err := s.GetAllChallenges(ctx)
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, ch := range all {
		names[i] = ch.Name
	}
	assert.Equal(t, []string{"Fence", "Gates", "Hunt", "Sorrells"}, names)

	fence, err := s.GetChallengeByName(ctx, "Fence")
	require.NoError(t, err)
	require.NotNil(t, fence)
	assert.Equal(t, 100, fence.ScottyCoins)

	missing, err := s.GetChallengeByName(ctx, "Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	counts, err := s.GetTotalChallengesByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"landmarks": 2, "libraries": 2}, counts)

	total, err := s.GetTotalChallengeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}

func TestChallengeStore_UpdateGeolocation(t *testing.T) {
	ctx := context.Background()
	s := NewChallengeStore(newTestDB(t))

	updated, err := s.UpdateChallengeGeolocation(ctx, "Gates", 40.44, -79.94, 5)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 40.44, *updated.Latitude)

	reloaded, err := s.GetChallengeByName(ctx, "Gates")
	require.NoError(t, err)
	require.NotNil(t, reloaded.LocationAccuracy)
	assert.Equal(t, 5.0, *reloaded.LocationAccuracy)

	missing, err := s.UpdateChallengeGeolocation(ctx, "Nope", 1, 2, 3)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestChallengeStore_UpsertBatch(t *testing.T) {
	ctx := context.Background()
	s := NewChallengeStore(newTestDB(t))

	_, err := s.UpdateChallengeGeolocation(ctx, "Fence", 1, 2, 3)
	require.NoError(t, err)

	unlock := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	n, err := s.UpsertChallengesBatch(ctx, []model.Challenge{
		{Name: "Fence", Category: "art", Location: "The Cut", ScottyCoins: 150, Tagline: "Again", Description: "Repaint", UnlockTimestamp: unlock},
		{Name: "Walk", Category: "outdoors", Location: "Schenley", ScottyCoins: 10, Tagline: "Go", Description: "Walk the park", UnlockTimestamp: unlock},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	fence, err := s.GetChallengeByName(ctx, "Fence")
	require.NoError(t, err)
	assert.Equal(t, "art", fence.Category)
	assert.Equal(t, 150, fence.ScottyCoins)
	require.NotNil(t, fence.Latitude, "geolocation survives an upsert")
	assert.Equal(t, 1.0, *fence.Latitude)

	total, err := s.GetTotalChallengeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	n, err = s.UpsertChallengesBatch(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
