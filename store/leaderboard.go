package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/pkg/apperrors"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.LeaderboardService = (*LeaderboardStore)(nil)

// rankedUsersCTE ranks every user, including users with no activity. The
// %s slot takes the collation clause that makes name ordering byte-wise.
const rankedUsersCTE = `
WITH user_stats AS (
	SELECT
		u.user_id,
		u.name,
		u.dorm,
		CAST(COALESCE(earned.total_earned, 0) AS BIGINT) AS coins_earned,
		CAST(COALESCE(spent.total_spent, 0) AS BIGINT) AS coins_spent,
		CAST(COALESCE(completed.challenge_count, 0) AS BIGINT) AS challenges_completed
	FROM users u
	LEFT JOIN (
		SELECT c.user_id, SUM(ch.scotty_coins) AS total_earned
		FROM completions c
		JOIN challenges ch ON ch.name = c.challenge_name
		GROUP BY c.user_id
	) earned ON earned.user_id = u.user_id
	LEFT JOIN (
		SELECT t.user_id, SUM(t.count * r.cost) AS total_spent
		FROM transactions t
		JOIN rewards r ON r.name = t.reward_name
		GROUP BY t.user_id
	) spent ON spent.user_id = u.user_id
	LEFT JOIN (
		SELECT c.user_id, COUNT(*) AS challenge_count
		FROM completions c
		GROUP BY c.user_id
	) completed ON completed.user_id = u.user_id
),
ranked_users AS (
	SELECT
		user_stats.*,
		ROW_NUMBER() OVER (
			ORDER BY
				coins_earned - coins_spent DESC,
				challenges_completed DESC,
				name%s ASC,
				user_id ASC
		) AS rank
	FROM user_stats
)
`

const leaderboardPageQuery = `
SELECT rank, user_id, name, dorm, coins_earned, coins_spent, challenges_completed
FROM ranked_users
WHERE rank > ?
ORDER BY rank
LIMIT ?
`

const userPositionQuery = `
SELECT rank
FROM ranked_users
WHERE user_id = ?
`

type LeaderboardStore struct {
	db       *bun.DB
	page     string
	position string
}

func NewLeaderboardStore(db *bun.DB) *LeaderboardStore {
	cte := fmt.Sprintf(rankedUsersCTE, nameCollation(db))
	return &LeaderboardStore{
		db:       db,
		page:     cte + leaderboardPageQuery,
		position: cte + userPositionQuery,
	}
}

// nameCollation returns the clause that orders names by byte value. SQLite
// compares with BINARY by default.
func nameCollation(db *bun.DB) string {
	if db.Dialect().Name() == dialect.PG {
		return ` COLLATE "C"`
	}
	return ""
}

func (s *LeaderboardStore) GetLeaderboardPage(ctx context.Context, limit int, afterRank *int64) ([]model.LeaderboardEntry, error) {
	entries := []model.LeaderboardEntry{}
	if limit <= 0 {
		return entries, nil
	}

	var after int64
	if afterRank != nil && *afterRank > 0 {
		after = *afterRank
	}

	if err := s.db.NewRaw(s.page, after, limit).Scan(ctx, &entries); err != nil {
		return nil, apperrors.NewStoreError("get leaderboard page", err)
	}
	return entries, nil
}

func (s *LeaderboardStore) GetUserLeaderboardPosition(ctx context.Context, userID string) (int64, error) {
	var rank int64
	err := s.db.NewRaw(s.position, userID).Scan(ctx, &rank)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.NewUserNotFoundError(userID)
	}
	if err != nil {
		return 0, apperrors.NewStoreError("get leaderboard position", err)
	}
	return rank, nil
}
