package store

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/pkg/apperrors"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.ChallengeService = (*ChallengeStore)(nil)

type ChallengeStore struct {
	db         *bun.DB
	challenges repository.Repository[*model.Challenge]
}

func NewChallengeStore(db *bun.DB) *ChallengeStore {
	return &ChallengeStore{db: db, challenges: newChallengeRepository(db)}
}

func (s *ChallengeStore) GetAllChallenges(ctx context.Context) ([]model.Challenge, error) {
	return listAll(ctx, s.challenges, "get all challenges", "name")
}

func (s *ChallengeStore) GetChallengeByName(ctx context.Context, name string) (*model.Challenge, error) {
	return findChallenge(ctx, s.challenges, s.db, name)
}

func findChallenge(ctx context.Context, repo repository.Repository[*model.Challenge], db bun.IDB, name string) (*model.Challenge, error) {
	return findOne(ctx, repo, db, "get challenge", whereEq("name", name))
}

func (s *ChallengeStore) UpdateChallengeGeolocation(ctx context.Context, name string, latitude, longitude, accuracy float64) (*model.Challenge, error) {
	var updated *model.Challenge
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		challenge, err := findChallenge(ctx, s.challenges, tx, name)
		if err != nil || challenge == nil {
			return err
		}

		challenge.Latitude = &latitude
		challenge.Longitude = &longitude
		challenge.LocationAccuracy = &accuracy
		_, err = s.challenges.UpdateTx(ctx, tx, challenge,
			setColumn("latitude", latitude),
			setColumn("longitude", longitude),
			setColumn("location_accuracy", accuracy),
		)
		if err != nil {
			return apperrors.NewStoreError("update challenge geolocation", err)
		}
		updated = challenge
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type categoryCount struct {
	Category string `bun:"category"`
	Count    int    `bun:"count"`
}

func countsByCategory(rows []categoryCount) map[string]int {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts
}

func (s *ChallengeStore) GetTotalChallengesByCategory(ctx context.Context) (map[string]int, error) {
	var rows []categoryCount
	err := s.db.NewSelect().
		Model((*model.Challenge)(nil)).
		Column("category").
		ColumnExpr("COUNT(*) AS count").
		Group("category").
		Scan(ctx, &rows)
	if err != nil {
		return nil, apperrors.NewStoreError("count challenges by category", err)
	}
	return countsByCategory(rows), nil
}

func (s *ChallengeStore) GetTotalChallengeCount(ctx context.Context) (int, error) {
	count, err := s.challenges.Count(ctx)
	if err != nil {
		return 0, apperrors.NewStoreError("count challenges", err)
	}
	return count, nil
}

// UpsertChallengesBatch inserts or replaces challenges by name in a single
// statement. Geolocation columns are left untouched on conflict.
func (s *ChallengeStore) UpsertChallengesBatch(ctx context.Context, challenges []model.Challenge) (int, error) {
	if len(challenges) == 0 {
		return 0, nil
	}

	_, err := s.db.NewInsert().
		Model(&challenges).
		On("CONFLICT (name) DO UPDATE").
		Set("category = EXCLUDED.category").
		Set("location = EXCLUDED.location").
		Set("scotty_coins = EXCLUDED.scotty_coins").
		Set("maps_link = EXCLUDED.maps_link").
		Set("tagline = EXCLUDED.tagline").
		Set("description = EXCLUDED.description").
		Set("more_info_link = EXCLUDED.more_info_link").
		Set("unlock_timestamp = EXCLUDED.unlock_timestamp").
		Set("secret = EXCLUDED.secret").
		Exec(ctx)
	if err != nil {
		return 0, apperrors.NewStoreError("upsert challenges", err)
	}
	return len(challenges), nil
}
