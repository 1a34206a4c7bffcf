// Package leaderboard implements the cursor pagination protocol on top of
// service.LeaderboardService and the ranking order shared with the SQL query.
package leaderboard

import (
	"context"
	"sort"

	"github.com/goliatone/go-leaderboard-cache/model"
	"github.com/goliatone/go-leaderboard-cache/service"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// DefaultTopN is the size of the top block in a user view.
	DefaultTopN = 10
)

// Page is one page of the leaderboard. NextCursor is the rank of the last
// entry and is only set when HasNext is true.
type Page struct {
	Entries    []model.LeaderboardEntry `json:"entries"`
	HasNext    bool                     `json:"has_next"`
	NextCursor *int64                   `json:"next_cursor"`
}

// NormalizeLimit applies the default page size to non-positive limits and
// caps the rest at MaxPageLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// FetchPage asks svc for one row more than limit to find out whether another
// page follows, then trims it.
func FetchPage(ctx context.Context, svc service.LeaderboardService, limit int, afterRank *int64) (Page, error) {
	limit = NormalizeLimit(limit)

	entries, err := svc.GetLeaderboardPage(ctx, limit+1, afterRank)
	if err != nil {
		return Page{}, err
	}

	page := Page{Entries: entries}
	if len(entries) > limit {
		page.Entries = entries[:limit:limit]
		page.HasNext = true
		cursor := page.Entries[limit-1].Rank
		page.NextCursor = &cursor
	}
	if page.Entries == nil {
		page.Entries = []model.LeaderboardEntry{}
	}
	return page, nil
}

// UserView returns the top topN entries, followed by the user's own entry
// when it ranks below them.
func UserView(ctx context.Context, svc service.LeaderboardService, userID string, topN int) ([]model.LeaderboardEntry, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	top, err := svc.GetLeaderboardPage(ctx, topN, nil)
	if err != nil {
		return nil, err
	}

	position, err := svc.GetUserLeaderboardPosition(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := append([]model.LeaderboardEntry(nil), top...)
	if position <= int64(topN) {
		return entries, nil
	}

	after := position - 1
	own, err := svc.GetLeaderboardPage(ctx, 1, &after)
	if err != nil {
		return nil, err
	}
	for _, e := range own {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}

	return dedupeByUser(entries), nil
}

func dedupeByUser(entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Rank < entries[j].Rank })

	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, ok := seen[e.UserID]; ok {
			continue
		}
		seen[e.UserID] = struct{}{}
		out = append(out, e)
	}
	return out
}
