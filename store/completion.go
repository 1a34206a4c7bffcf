package store

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/pkg/apperrors"
	"github.com/goliatone/go-leaderboard-cache/service"
)

var _ service.CompletionService = (*CompletionStore)(nil)

type CompletionStore struct {
	db         *bun.DB
	challenges repository.Repository[*model.Challenge]
	now        func() time.Time
}

func NewCompletionStore(db *bun.DB) *CompletionStore {
	return &CompletionStore{db: db, challenges: newChallengeRepository(db), now: time.Now}
}

func (s *CompletionStore) userCompletions(ctx context.Context, userID string) ([]model.Completion, error) {
	completions := []model.Completion{}
	err := s.db.NewSelect().
		Model(&completions).
		Where("user_id = ?", userID).
		OrderExpr("? ASC", bun.Ident("timestamp")).
		Scan(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("get user completions", err)
	}
	return completions, nil
}

func (s *CompletionStore) GetUserCompletionMap(ctx context.Context, userID string) (map[string]time.Time, error) {
	completions, err := s.userCompletions(ctx, userID)
	if err != nil {
		return nil, err
	}

	completed := make(map[string]time.Time, len(completions))
	for _, c := range completions {
		completed[c.ChallengeName] = c.Timestamp
	}
	return completed, nil
}

func (s *CompletionStore) CreateCompletion(ctx context.Context, userID, challengeName string, s3Link, note *string) (*model.Completion, error) {
	completion := &model.Completion{
		UserID:        userID,
		ChallengeName: challengeName,
		Timestamp:     s.now().UTC(),
		S3Link:        s3Link,
		Note:          note,
	}
	if _, err := s.db.NewInsert().Model(completion).Exec(ctx); err != nil {
		return nil, apperrors.NewStoreError("create completion", err)
	}
	return completion, nil
}

func (s *CompletionStore) CompletionExists(ctx context.Context, userID, challengeName string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*model.Completion)(nil)).
		Where("user_id = ?", userID).
		Where("challenge_name = ?", challengeName).
		Exists(ctx)
	if err != nil {
		return false, apperrors.NewStoreError("completion exists", err)
	}
	return exists, nil
}

func (s *CompletionStore) GetUserCompletionsByCategory(ctx context.Context, userID string) (map[string]int, error) {
	var rows []categoryCount
	err := s.db.NewSelect().
		TableExpr("completions AS c").
		Join("JOIN challenges AS ch ON ch.name = c.challenge_name").
		ColumnExpr("ch.category AS category").
		ColumnExpr("COUNT(*) AS count").
		Where("c.user_id = ?", userID).
		GroupExpr("ch.category").
		Scan(ctx, &rows)
	if err != nil {
		return nil, apperrors.NewStoreError("count user completions by category", err)
	}
	return countsByCategory(rows), nil
}

func (s *CompletionStore) GetUserCompletionCount(ctx context.Context, userID string) (int, error) {
	count, err := s.db.NewSelect().
		Model((*model.Completion)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, apperrors.NewStoreError("count user completions", err)
	}
	return count, nil
}

func (s *CompletionStore) GetUserRecentActivityDays(ctx context.Context, userID string, days int) ([]time.Time, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -days)

	var completions []model.Completion
	err := s.db.NewSelect().
		Model(&completions).
		Where("user_id = ?", userID).
		Where("? >= ?", bun.Ident("timestamp"), cutoff).
		Scan(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("get recent activity", err)
	}

	stamps := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		stamps = append(stamps, c.Timestamp)
	}
	return activityDays(stamps), nil
}

// activityDays collapses timestamps into distinct UTC midnights, ascending.
func activityDays(stamps []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(stamps))
	out := make([]time.Time, 0, len(stamps))
	for _, ts := range stamps {
		ts = ts.UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s *CompletionStore) GetUserTotalCoinsEarned(ctx context.Context, userID string) (int, error) {
	var total int
	err := s.db.NewSelect().
		TableExpr("completions AS c").
		Join("JOIN challenges AS ch ON ch.name = c.challenge_name").
		ColumnExpr("COALESCE(SUM(ch.scotty_coins), 0)").
		Where("c.user_id = ?", userID).
		Scan(ctx, &total)
	if err != nil {
		return 0, apperrors.NewStoreError("sum coins earned", err)
	}
	return total, nil
}

func (s *CompletionStore) GetUserCompletionsWithChallenges(ctx context.Context, userID string) ([]model.CompletionWithChallenge, error) {
	completions, err := s.userCompletions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(completions) == 0 {
		return []model.CompletionWithChallenge{}, nil
	}

	names := make([]string, len(completions))
	for i, c := range completions {
		names[i] = c.ChallengeName
	}

	var challenges []model.Challenge
	err = s.db.NewSelect().Model(&challenges).Where("name IN (?)", bun.In(names)).Scan(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("get completed challenges", err)
	}

	byName := make(map[string]model.Challenge, len(challenges))
	for _, ch := range challenges {
		byName[ch.Name] = ch
	}

	out := make([]model.CompletionWithChallenge, 0, len(completions))
	for _, c := range completions {
		ch, ok := byName[c.ChallengeName]
		if !ok {
			continue
		}
		out = append(out, model.CompletionWithChallenge{Completion: c, Challenge: ch})
	}
	return out, nil
}

func findCompletion(ctx context.Context, db bun.IDB, userID, challengeName string) (*model.Completion, error) {
	completion := new(model.Completion)
	err := db.NewSelect().
		Model(completion).
		Where("user_id = ?", userID).
		Where("challenge_name = ?", challengeName).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get completion", err)
	}
	return completion, nil
}

func (s *CompletionStore) GetUserCompletionWithChallenge(ctx context.Context, userID, challengeName string) (*model.CompletionWithChallenge, error) {
	completion, err := findCompletion(ctx, s.db, userID, challengeName)
	if err != nil || completion == nil {
		return nil, err
	}

	challenge, err := findChallenge(ctx, s.challenges, s.db, challengeName)
	if err != nil || challenge == nil {
		return nil, err
	}
	return &model.CompletionWithChallenge{Completion: *completion, Challenge: *challenge}, nil
}

func (s *CompletionStore) UpdateCompletionNote(ctx context.Context, userID, challengeName string, note *string) (*model.Completion, error) {
	return s.updateCompletion(ctx, userID, challengeName, "note", func(c *model.Completion) { c.Note = note })
}

func (s *CompletionStore) UpdateCompletionPhoto(ctx context.Context, userID, challengeName string, s3Link *string) (*model.Completion, error) {
	return s.updateCompletion(ctx, userID, challengeName, "s3_link", func(c *model.Completion) { c.S3Link = s3Link })
}

func (s *CompletionStore) updateCompletion(ctx context.Context, userID, challengeName, column string, apply func(*model.Completion)) (*model.Completion, error) {
	var updated *model.Completion
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		completion, err := findCompletion(ctx, tx, userID, challengeName)
		if err != nil || completion == nil {
			return err
		}

		apply(completion)
		if _, err := tx.NewUpdate().Model(completion).Column(column).WherePK().Exec(ctx); err != nil {
			return apperrors.NewStoreError("update completion "+column, err)
		}
		updated = completion
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
