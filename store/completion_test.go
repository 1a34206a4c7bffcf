package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCompletionStore_Reads(t *testing.T) {
	ctx := context.Background()
	s := NewCompletionStore(newTestDB(t))

	completed, err := s.GetUserCompletionMap(ctx, "b")
	require.NoError(t, err)
	require.Len(t, completed, 3)
	assert.True(t, completed["Hunt"].Equal(time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)))

	empty, err := s.GetUserCompletionMap(ctx, "d")
	require.NoError(t, err)
	assert.Empty(t, empty)

	exists, err := s.CompletionExists(ctx, "a", "Fence")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.CompletionExists(ctx, "a", "Gates")
	require.NoError(t, err)
	assert.False(t, exists)

	byCategory, err := s.GetUserCompletionsByCategory(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"landmarks": 1, "libraries": 2}, byCategory)

	count, err := s.GetUserCompletionCount(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	earned, err := s.GetUserTotalCoinsEarned(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 100, earned)

	earned, err = s.GetUserTotalCoinsEarned(ctx, "d")
	require.NoError(t, err)
	assert.Zero(t, earned)
}

func TestCompletionStore_WithChallenges(t *testing.T) {
	ctx := context.Background()
	s := NewCompletionStore(newTestDB(t))

	joined, err := s.GetUserCompletionsWithChallenges(ctx, "b")
	require.NoError(t, err)
	require.Len(t, joined, 3)
	// Oldest completion first.
	assert.Equal(t, "Gates", joined[0].Challenge.Name)
	assert.Equal(t, "Hunt", joined[2].Completion.ChallengeName)
	assert.Equal(t, 20, joined[2].Challenge.ScottyCoins)

	none, err := s.GetUserCompletionsWithChallenges(ctx, "d")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	single, err := s.GetUserCompletionWithChallenge(ctx, "b", "Hunt")
	require.NoError(t, err)
	require.NotNil(t, single)
	require.NotNil(t, single.Completion.Note)
	assert.Equal(t, "found it", *single.Completion.Note)
	assert.Equal(t, "libraries", single.Challenge.Category)

	missing, err := s.GetUserCompletionWithChallenge(ctx, "a", "Hunt")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCompletionStore_RecentActivityDays(t *testing.T) {
	ctx := context.Background()
	s := NewCompletionStore(newTestDB(t))
	s.now = func() time.Time { return time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC) }

	days, err := s.GetUserRecentActivityDays(ctx, "b", 7)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2025, 3, 1), day(2025, 3, 3)}, days)

	days, err = s.GetUserRecentActivityDays(ctx, "b", 3)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2025, 3, 3)}, days)

	days, err = s.GetUserRecentActivityDays(ctx, "d", 7)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestActivityDays(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	got := activityDays([]time.Time{
		time.Date(2025, 3, 2, 23, 0, 0, 0, est), // 2025-03-03 04:00 UTC
		time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 7, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, []time.Time{day(2025, 3, 1), day(2025, 3, 3)}, got)
}

func TestCompletionStore_Writes(t *testing.T) {
	ctx := context.Background()
	s := NewCompletionStore(newTestDB(t))
	now := time.Date(2025, 3, 6, 15, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	created, err := s.CreateCompletion(ctx, "d", "Hunt", strPtr("s3://bucket/d.jpg"), nil)
	require.NoError(t, err)
	assert.True(t, created.Timestamp.Equal(now))

	count, err := s.GetUserCompletionCount(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = s.CreateCompletion(ctx, "d", "Hunt", nil, nil)
	assert.Error(t, err, "a challenge is completed at most once")

	noted, err := s.UpdateCompletionNote(ctx, "d", "Hunt", strPtr("dusty"))
	require.NoError(t, err)
	require.NotNil(t, noted)
	assert.Equal(t, "dusty", *noted.Note)
	require.NotNil(t, noted.S3Link)

	photo, err := s.UpdateCompletionPhoto(ctx, "d", "Hunt", nil)
	require.NoError(t, err)
	require.NotNil(t, photo)
	assert.Nil(t, photo.S3Link)

	reloaded, err := s.GetUserCompletionWithChallenge(ctx, "d", "Hunt")
	require.NoError(t, err)
	assert.Equal(t, "dusty", *reloaded.Completion.Note)
	assert.Nil(t, reloaded.Completion.S3Link)

	missing, err := s.UpdateCompletionNote(ctx, "d", "Fence", strPtr("x"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}
